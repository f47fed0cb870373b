// Copyright © 2026 pe2 contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package garble_test

import (
	"testing"

	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/rng"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestGarble(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "garble suite")
}

// buildAXPlusB constructs the five-gate circuit out = a*x+b, with x an
// Alice input at major index 0 and a, b Bob inputs at major indices 0, 1.
func buildAXPlusB() *circuit.Circuit {
	var c circuit.Circuit
	x := c.InsertInput(circuit.AgentAlice, 0, 0)
	a := c.InsertInput(circuit.AgentBob, 0, 0)
	b := c.InsertInput(circuit.AgentBob, 1, 0)
	prod := c.InsertMul(a, x)
	out := c.InsertAdd(prod, b)
	c.AliceInputBegin, c.AliceInputEnd = 0, 1
	c.BobInputBegin, c.BobInputEnd = 1, 3
	c.AliceOutput = []circuit.Handle{out}
	return &c
}

var _ = Describe("Configure/Garble/Ungarble", func() {
	It("evaluates a*x+b for Alice x=7, Bob a=5,b=11", func() {
		c := buildAXPlusB()
		conf := garble.Configure(c)

		Expect(conf.AliceEncoding).Should(HaveLen(1))
		Expect(conf.BobEncoding).Should(HaveLen(2))
		// x (the Mul's multiplicand) is visited twice by Configure's
		// multiplication rewrite; a (the multiplier) likewise twice;
		// b is visited once by the Add's addend recursion.
		Expect(conf.AliceEncoding[0]).Should(Equal(2))
		Expect(conf.BobEncoding[0]).Should(Equal(2))
		Expect(conf.BobEncoding[1]).Should(Equal(1))

		source := rng.NewDeterministicSource([]byte("garble-e2e-3"))
		var kp garble.KeyPairs
		kp.ApplyConfiguration(conf)
		garble.Garble(c, &kp, source)

		x := field.New(7)
		a := field.New(5)
		b := field.New(11)

		var keys garble.Keys
		keys.ApplyConfiguration(conf)
		keys.OfflineEncoding = append(keys.OfflineEncoding, kp.OfflineEncoding...)
		for idx := range kp.AliceCoefficient {
			keys.AliceEncoding[idx] = garble.EvaluateKeys(kp.AliceCoefficient[idx], kp.AliceIntercept[idx], x)
		}
		bobInputs := []field.Elem{a, b}
		for idx := range kp.BobCoefficient {
			keys.BobEncoding[idx] = garble.EvaluateKeys(kp.BobCoefficient[idx], kp.BobIntercept[idx], bobInputs[idx])
		}

		surrogate := *conf
		surrogate.AliceEncoding = append([]int(nil), conf.AliceEncoding...)
		surrogate.BobEncoding = append([]int(nil), conf.BobEncoding...)
		surrogate.ResetPreserveConfiguration()

		out := garble.Ungarble(c, &surrogate, &keys)
		Expect(out).Should(HaveLen(1))
		Expect(out[0]).Should(Equal(field.New(46)))
	})

	It("stays correct across repeated fresh garblings of the same circuit", func() {
		c := buildAXPlusB()
		conf := garble.Configure(c)
		x := field.New(3)
		a := field.New(9)
		b := field.New(2)
		bobInputs := []field.Elem{a, b}

		for trial := 0; trial < 5; trial++ {
			source := rng.NewDeterministicSource([]byte{byte(trial)})
			var kp garble.KeyPairs
			kp.ApplyConfiguration(conf)
			garble.Garble(c, &kp, source)

			var keys garble.Keys
			keys.ApplyConfiguration(conf)
			keys.OfflineEncoding = append(keys.OfflineEncoding, kp.OfflineEncoding...)
			for idx := range kp.AliceCoefficient {
				keys.AliceEncoding[idx] = garble.EvaluateKeys(kp.AliceCoefficient[idx], kp.AliceIntercept[idx], x)
			}
			for idx := range kp.BobCoefficient {
				keys.BobEncoding[idx] = garble.EvaluateKeys(kp.BobCoefficient[idx], kp.BobIntercept[idx], bobInputs[idx])
			}

			surrogate := garble.Configuration{
				AliceEncoding: append([]int(nil), conf.AliceEncoding...),
				BobEncoding:   append([]int(nil), conf.BobEncoding...),
			}
			surrogate.ResetPreserveConfiguration()

			out := garble.Ungarble(c, &surrogate, &keys)
			Expect(out[0]).Should(Equal(field.New(29)))
		}
	})
})
