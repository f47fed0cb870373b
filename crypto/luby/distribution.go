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

// Package luby builds and evaluates a Luby Transform erasure code over
// Z_p, degree-distributed by Luby's robust soliton distribution.
package luby

import "math"

// Distribution is the robust soliton degree distribution over
// InputSymbolSize symbols. Derived quantities (R, M, Beta, V) are cached
// and must be recomputed with InvalidateCache after any field is edited.
type Distribution struct {
	InputSymbolSize int
	C               float64
	Delta           float64

	r     float64
	m     int
	beta  float64
	v     int
}

// NewDistribution builds a distribution and computes its cache
// immediately.
func NewDistribution(k int, c, delta float64) *Distribution {
	d := &Distribution{InputSymbolSize: k, C: c, Delta: delta}
	d.InvalidateCache()
	return d
}

// InvalidateCache recomputes R, M, Beta and the output symbol count V
// from the current K/C/Delta. V is rounded up to the next multiple of 4,
// matching the source's requirement that the sparse code's lower row
// count stays a multiple of 4 (it also erases in quarters, see §4.8).
func (d *Distribution) InvalidateCache() {
	k := float64(d.InputSymbolSize)
	d.r = d.C * math.Log(k/d.Delta) * math.Sqrt(k)
	d.m = int(math.Round(k / d.r))

	harmonic := 0.0
	for i := 1; i < d.m; i++ {
		harmonic += 1.0 / float64(i)
	}
	d.beta = 1 + (math.Log(d.r/d.Delta)+harmonic)*d.r/k

	v := int(math.Round(k * d.beta))
	if rem := v % 4; rem != 0 {
		v += 4 - rem
	}
	d.v = v
}

// V returns the cached output symbol count.
func (d *Distribution) V() int { return d.v }

// R returns the cached R parameter.
func (d *Distribution) R() float64 { return d.r }

// M returns the cached M parameter (K/R rounded to nearest integer).
func (d *Distribution) M() int { return d.m }

// Beta returns the cached normalizing constant.
func (d *Distribution) Beta() float64 { return d.beta }

// Rho is Luby's ideal soliton mass at degree i.
func (d *Distribution) Rho(i int) float64 {
	k := float64(d.InputSymbolSize)
	switch {
	case i == 1:
		return 1 / k
	case i > d.InputSymbolSize:
		return 0
	default:
		f := float64(i)
		return 1 / (f * (f - 1))
	}
}

// Tau is the robust soliton spike/taper term at degree i.
func (d *Distribution) Tau(i int) float64 {
	k := float64(d.InputSymbolSize)
	switch {
	case i < d.m:
		return d.r / (float64(i) * k)
	case i == d.m:
		return d.r * math.Log(d.r/d.Delta) / k
	default:
		return 0
	}
}

// Mu is the normalized robust soliton probability mass at degree i.
func (d *Distribution) Mu(i int) float64 {
	return (d.Rho(i) + d.Tau(i)) / d.beta
}

// SampleDegree maps a uniform r in [0,1) to a degree by walking the
// cumulative mass function mu(1), mu(1)+mu(2), ... until the partial sum
// reaches r. The result is clamped to [1, InputSymbolSize].
func (d *Distribution) SampleDegree(r float64) int {
	sum := 0.0
	for i := 1; i <= d.InputSymbolSize; i++ {
		sum += d.Mu(i)
		if sum >= r {
			return i
		}
	}
	return d.InputSymbolSize
}
