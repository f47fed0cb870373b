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

package luby_test

import (
	"bytes"
	"testing"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/rng"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestLuby(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "luby suite")
}

func randomVector(n int, source rng.Source) []field.Elem {
	v := make([]field.Elem, n)
	for i := range v {
		v[i] = source.Zp()
	}
	return v
}

var _ = Describe("Distribution", func() {
	It("produces a V that is a multiple of 4 and at least K", func() {
		d := luby.NewDistribution(10000, 0.1, 0.05)
		Expect(d.V() % 4).Should(Equal(0))
		Expect(d.V()).Should(BeNumerically(">=", 10000))
	})
})

var _ = Describe("LT code", func() {
	It("encodes then decodes exactly with zero erasures", func() {
		source := rng.NewDeterministicSource([]byte("lt-zero-erasure"))
		const w = 500
		dist := luby.NewDistribution(w, 0.1, 0.05)
		code := luby.Build(dist, source)

		decoded := randomVector(w, source)
		encoded := make([]field.Elem, len(code.Bins))
		notNoisy := make([]bool, len(code.Bins))
		for i := range notNoisy {
			notNoisy[i] = true
		}
		code.Encode(encoded, notNoisy, decoded)

		got, ok := code.DecodeDestructive(encoded, notNoisy)
		Expect(ok).Should(BeTrue())
		Expect(got).Should(Equal(decoded))
	})

	It("round-trips through the text persistence format", func() {
		source := rng.NewDeterministicSource([]byte("lt-persist"))
		dist := luby.NewDistribution(200, 0.1, 0.05)
		code := luby.Build(dist, source)

		var buf bytes.Buffer
		Expect(code.SaveTo(&buf)).Should(Succeed())

		loaded, err := luby.LoadFrom(&buf)
		Expect(err).Should(BeNil())
		Expect(loaded.InputSymbolSize).Should(Equal(code.InputSymbolSize))
		Expect(loaded.Bins).Should(Equal(code.Bins))
		Expect(loaded.Storage).Should(Equal(code.Storage))
	})

	It("decodes successfully most of the time at canonical erasure load", func() {
		source := rng.NewDeterministicSource([]byte("lt-canonical"))
		const w = 2000
		dist := luby.NewDistribution(w, 0.1, 0.05)

		successes := 0
		const trials = 30
		for t := 0; t < trials; t++ {
			code := luby.Build(dist, source)
			v := len(code.Bins)
			decoded := randomVector(w, source)
			encoded := make([]field.Elem, v)
			notNoisy := make([]bool, v)
			for i := range notNoisy {
				notNoisy[i] = true
			}
			erase := v / 4
			for erase > 0 {
				idx := int(source.Uint32() % uint32(v))
				if notNoisy[idx] {
					notNoisy[idx] = false
					erase--
				}
			}
			code.Encode(encoded, notNoisy, decoded)
			if _, ok := code.DecodeDestructive(encoded, notNoisy); ok {
				successes++
			}
		}
		Expect(successes).Should(BeNumerically(">=", trials/2))
	})
})
