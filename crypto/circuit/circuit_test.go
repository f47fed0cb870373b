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

package circuit_test

import (
	"testing"

	"github.com/vecole/pe2/crypto/circuit"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestCircuit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "circuit suite")
}

var _ = Describe("Circuit", func() {
	It("assigns handles equal to insertion order", func() {
		var c circuit.Circuit
		h0 := c.InsertConstZero()
		h1 := c.InsertConstOne()
		h2 := c.InsertAdd(h0, h1)

		Expect(h0).Should(Equal(circuit.Handle(0)))
		Expect(h1).Should(Equal(circuit.Handle(1)))
		Expect(h2).Should(Equal(circuit.Handle(2)))
		Expect(c.Gate(h2).A).Should(Equal(h0))
		Expect(c.Gate(h2).B).Should(Equal(h1))
	})

	It("builds a·x+b from one multiplication and one addition gate", func() {
		var c circuit.Circuit
		x := c.InsertInput(circuit.AgentAlice, 0, 0)
		a := c.InsertInput(circuit.AgentBob, 0, 0)
		b := c.InsertInput(circuit.AgentBob, 1, 0)
		prod := c.InsertMul(a, x)
		out := c.InsertAdd(prod, b)
		c.AliceInputBegin, c.AliceInputEnd = 0, 1
		c.BobInputBegin, c.BobInputEnd = 1, 3
		c.AliceOutput = []circuit.Handle{out}

		Expect(c.Gates).Should(HaveLen(5))
		Expect(c.AliceOutput).Should(Equal([]circuit.Handle{out}))
	})
})
