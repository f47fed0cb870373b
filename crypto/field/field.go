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

// Package field implements arithmetic in Z_p for the largest prime below
// 2^32, the working field of the batch-OLE protocol.
package field

import "fmt"

// P is the field modulus, the largest prime smaller than 2^32.
const P uint32 = 4294967291

// Elem is a normalized residue in [0, P). The zero value is the field's
// additive identity.
type Elem uint32

// New reduces any 64-bit value into a normalized field element.
func New(v uint64) Elem {
	return Elem(v % uint64(P))
}

// FromUint32 reduces a 32-bit value; always cheaper than New since it never
// needs more than one conditional subtraction.
func FromUint32(v uint32) Elem {
	if v >= P {
		v -= P
	}
	return Elem(v)
}

// Add returns a+b mod P.
func (a Elem) Add(b Elem) Elem {
	return New(uint64(a) + uint64(b))
}

// Neg returns -a mod P.
func (a Elem) Neg() Elem {
	if a == 0 {
		return 0
	}
	return Elem(P) - a
}

// Sub returns a-b mod P.
func (a Elem) Sub(b Elem) Elem {
	return New(uint64(P) - uint64(b) + uint64(a))
}

// Mul returns a*b mod P.
func (a Elem) Mul(b Elem) Elem {
	return New(uint64(a) * uint64(b))
}

// Inverse returns the multiplicative inverse of a, and false if a is zero
// (undefined) or the extended Euclidean algorithm otherwise fails to reach
// a remainder of 1.
//
// Implements extended Euclid on the (P, a) pair, keeping only the first row
// of the transition matrix; the accumulated coefficient's sign alternates
// with the recursion depth, so it is tracked as a signed int64 and reduced
// mod P only once at the end.
func (a Elem) Inverse() (Elem, bool) {
	if a == 0 {
		return 0, false
	}
	oldR, r := int64(P), int64(a)
	oldT, t := int64(0), int64(1)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldT, t = t, oldT-q*t
	}
	if oldR != 1 {
		return 0, false
	}
	result := oldT % int64(P)
	if result < 0 {
		result += int64(P)
	}
	return Elem(result), true
}

// Equal is value equality on the normalized representation.
func (a Elem) Equal(b Elem) bool {
	return a == b
}

func (a Elem) String() string {
	return fmt.Sprintf("%d", uint32(a))
}
