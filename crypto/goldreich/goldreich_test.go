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

package goldreich_test

import (
	"testing"

	"github.com/vecole/pe2/crypto/goldreich"
	"github.com/vecole/pe2/crypto/rng"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestGoldreich(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "goldreich suite")
}

var _ = Describe("Graph", func() {
	It("wires exactly A+B distinct in-range indices per output, across resamples", func() {
		source := rng.NewDeterministicSource([]byte("goldreich-e2e-4"))
		g := &goldreich.Graph{A: 3, B: 3, InputLength: 300, OutputLength: 300 * 300}

		for pass := 0; pass < 2; pass++ {
			g.Resample(source)
			width := g.A + g.B
			Expect(len(g.Storage)).Should(Equal(width * g.OutputLength))
			for i := 0; i < g.OutputLength; i++ {
				seen := map[int]bool{}
				for j := 0; j < width; j++ {
					idx := g.Storage[i*width+j]
					Expect(idx).Should(BeNumerically(">=", 0))
					Expect(idx).Should(BeNumerically("<", g.InputLength))
					Expect(seen[idx]).Should(BeFalse())
					seen[idx] = true
				}
			}
		}
	})
})
