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

package field_test

import (
	"math/rand"
	"testing"

	"github.com/vecole/pe2/crypto/field"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestField(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "field suite")
}

func randElem(r *rand.Rand) field.Elem {
	return field.FromUint32(r.Uint32() % field.P)
}

var _ = Describe("Z_p", func() {
	It("normalizes construction mod P", func() {
		Expect(uint32(field.New(uint64(field.P)))).Should(Equal(uint32(0)))
		Expect(uint32(field.New(uint64(field.P) + 5))).Should(Equal(uint32(5)))
	})

	DescribeTable("field laws hold for random triples",
		func(seed int64) {
			r := rand.New(rand.NewSource(seed))
			a, b, c := randElem(r), randElem(r), randElem(r)

			Expect(a.Add(b).Add(c)).Should(Equal(a.Add(b.Add(c))), "associativity of +")
			Expect(a.Mul(b.Add(c))).Should(Equal(a.Mul(b).Add(a.Mul(c))), "distributivity")
			Expect(a.Add(a.Neg())).Should(Equal(field.Elem(0)), "additive inverse")

			if a != 0 {
				inv, ok := a.Inverse()
				Expect(ok).Should(BeTrue())
				Expect(a.Mul(inv)).Should(Equal(field.Elem(1)))
			}
		},
		Entry("seed 1", int64(1)),
		Entry("seed 2", int64(2)),
		Entry("seed 42", int64(42)),
		Entry("seed 1000003", int64(1000003)),
	)

	It("fails to invert zero", func() {
		_, ok := field.Elem(0).Inverse()
		Expect(ok).Should(BeFalse())
	})

	It("inverts the multiplicative identity to itself", func() {
		inv, ok := field.Elem(1).Inverse()
		Expect(ok).Should(BeTrue())
		Expect(inv).Should(Equal(field.Elem(1)))
	})

	It("computes subtraction as the inverse of addition", func() {
		a := field.FromUint32(12345)
		b := field.FromUint32(field.P - 1)
		Expect(a.Sub(b).Add(b)).Should(Equal(a))
	})
})
