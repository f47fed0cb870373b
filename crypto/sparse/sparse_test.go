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

package sparse_test

import (
	"bytes"
	"testing"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/sparse"
	"github.com/vecole/pe2/crypto/rng"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestSparse(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "sparse suite")
}

func buildCode(source rng.Source, k, d, u, v int) *sparse.Code {
	c := &sparse.Code{K: k, D: d, U: u, V: v}
	c.Resample(source)
	return c
}

var _ = Describe("Code", func() {
	It("decodes the upper part exactly with no erasures", func() {
		source := rng.NewDeterministicSource([]byte("sparse-no-erasure"))
		const K, D, U, V = 50, 6, 80, 20
		c := buildCode(source, K, D, U, V)

		decoded := make([]field.Elem, K)
		for i := range decoded {
			decoded[i] = source.Zp()
		}

		encoded := make([]field.Elem, U)
		notNoisy := make([]bool, U)
		for i := range notNoisy {
			notNoisy[i] = true
		}
		c.EncodeUpperPart(encoded, notNoisy, decoded)

		got, ok := c.DecodeFromUpperPartDestructive(encoded, notNoisy)
		Expect(ok).Should(BeTrue())
		Expect(got).Should(Equal(decoded))
	})

	It("fails to decode when fewer than K rows are kept", func() {
		source := rng.NewDeterministicSource([]byte("sparse-too-few"))
		const K, D, U, V = 50, 6, 80, 20
		c := buildCode(source, K, D, U, V)

		encoded := make([]field.Elem, U)
		notNoisy := make([]bool, U)
		for i := 0; i < K-1; i++ {
			notNoisy[i] = true
		}
		_, ok := c.DecodeFromUpperPartDestructive(encoded, notNoisy)
		Expect(ok).Should(BeFalse())
	})

	It("produces an all-zero encoding when every row is marked noisy", func() {
		source := rng.NewDeterministicSource([]byte("sparse-all-noisy"))
		const K, D, U, V = 30, 5, 40, 20
		c := buildCode(source, K, D, U, V)

		decoded := make([]field.Elem, K)
		for i := range decoded {
			decoded[i] = source.Zp()
		}
		encoded := make([]field.Elem, U)
		notNoisy := make([]bool, U) // all false
		c.EncodeUpperPart(encoded, notNoisy, decoded)

		for _, v := range encoded {
			Expect(v).Should(Equal(field.Elem(0)))
		}
	})

	It("round-trips through the text persistence format", func() {
		source := rng.NewDeterministicSource([]byte("sparse-persist"))
		c := buildCode(source, 20, 4, 30, 10)

		var buf bytes.Buffer
		Expect(c.SaveTo(&buf)).Should(Succeed())

		loaded, err := sparse.LoadFrom(&buf)
		Expect(err).Should(BeNil())
		Expect(loaded.K).Should(Equal(c.K))
		Expect(loaded.D).Should(Equal(c.D))
		Expect(loaded.U).Should(Equal(c.U))
		Expect(loaded.V).Should(Equal(c.V))
		Expect(loaded.Entries).Should(Equal(c.Entries))
	})

	It("every row has D entries with distinct columns", func() {
		source := rng.NewDeterministicSource([]byte("sparse-distinct-cols"))
		const K, D, U, V = 40, 7, 15, 9
		c := buildCode(source, K, D, U, V)
		for row := 0; row < U+V; row++ {
			seen := map[int]bool{}
			for k := 0; k < D; k++ {
				e := c.Entries[row*D+k]
				Expect(seen[e.Column]).Should(BeFalse())
				seen[e.Column] = true
				Expect(e.Value).ShouldNot(Equal(field.Elem(0)))
			}
		}
	})
})
