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

package ole_test

import (
	"testing"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/ole"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/crypto/sparse"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestOLE(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ole suite")
}

func buildCodes(source rng.Source) *ole.Codes {
	const k, d, u, v, w = 40, 6, 60, 40, 20

	sc := &sparse.Code{K: k, D: d, U: u, V: v}
	sc.Resample(source)

	dist := luby.NewDistribution(w, 0.1, 0.05)
	lc := luby.Build(dist, source)

	return &ole.Codes{Sparse: sc, Luby: lc}
}

var _ = Describe("Vector-OLE", func() {
	It("lets Alice recover x*a+b, retrying on decode failure, within 50 attempts", func() {
		source := rng.NewDeterministicSource([]byte("ole-roundtrip"))
		codes := buildCodes(source)
		w := codes.Luby.InputSymbolSize

		a := make([]field.Elem, w)
		b := make([]field.Elem, w)
		for i := range a {
			a[i] = source.Zp()
			b[i] = source.Zp()
		}
		x := source.Zp()

		var result []field.Elem
		for attempt := 0; attempt < 50; attempt++ {
			offer, err := ole.PrepareOffer(codes, a, source)
			Expect(err).ShouldNot(HaveOccurred())

			resp, err := ole.RespondToOffer(codes, offer.Vector, x, source)
			Expect(err).ShouldNot(HaveOccurred())

			share, err := ole.RecoverBobShare(codes, offer, resp.Vector)
			if err == ole.ErrDecodeFailure {
				continue
			}
			Expect(err).ShouldNot(HaveOccurred())

			combined := ole.CombineBobShare(share, b)
			result = ole.FinalizeAlice(combined, resp.BPrime)
			break
		}

		Expect(result).ShouldNot(BeNil())
		for i := range result {
			want := a[i].Mul(x).Add(b[i])
			Expect(result[i]).Should(Equal(want))
		}
	})
})
