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

package erasure_test

import (
	"testing"

	"github.com/vecole/pe2/crypto/erasure"
	"github.com/vecole/pe2/crypto/rng"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestErasure(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "erasure suite")
}

var _ = Describe("EraseExact", func() {
	It("clears exactly k positions, all previously kept", func() {
		source := rng.NewDeterministicSource([]byte("erasure-seed-1"))
		mask := make([]bool, 100)
		for i := range mask {
			mask[i] = true
		}
		Expect(erasure.EraseExact(mask, 37, source)).Should(Succeed())

		cleared := 0
		for _, kept := range mask {
			if !kept {
				cleared++
			}
		}
		Expect(cleared).Should(Equal(37))
	})

	It("rejects a count larger than the kept population", func() {
		source := rng.NewDeterministicSource([]byte("erasure-seed-2"))
		mask := []bool{true, true, false, false}
		err := erasure.EraseExact(mask, 3, source)
		Expect(err).Should(MatchError(erasure.ErrTooManyErasures))
	})

	It("distributes erasures roughly uniformly over many trials", func() {
		source := rng.NewDeterministicSource([]byte("erasure-seed-3"))
		const n, k, trials = 20, 5, 4000
		hits := make([]int, n)
		for t := 0; t < trials; t++ {
			mask := make([]bool, n)
			for i := range mask {
				mask[i] = true
			}
			Expect(erasure.EraseExact(mask, k, source)).Should(Succeed())
			for i, kept := range mask {
				if !kept {
					hits[i]++
				}
			}
		}
		expected := float64(trials*k) / float64(n)
		for _, h := range hits {
			Expect(float64(h)).Should(BeNumerically("~", expected, expected*0.35))
		}
	})
})
