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

// Package goldreich implements the expander-graph description behind a
// Goldreich-style local PRG: G(s)_i = (sum of A inputs) + (product of B
// inputs), for a random bipartite wiring resampled per graph.
package goldreich

import (
	"io"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/internal/codec"
)

// Graph describes G: Z_p^InputLength -> Z_p^OutputLength. Storage is
// flattened (A+B)*OutputLength: for output i, Storage[i*(A+B):i*(A+B)+A]
// are the summand indices and the following B entries are the factor
// indices.
type Graph struct {
	InputLength  int
	OutputLength int
	A, B         int
	Storage      []int
}

// Resample draws a fresh random wiring: per output, A+B distinct indices
// in [0, InputLength).
func (g *Graph) Resample(source rng.Source) {
	g.Storage = make([]int, 0, (g.A+g.B)*g.OutputLength)
	used := make(map[int]struct{}, g.A+g.B)
	for i := 0; i < g.OutputLength; i++ {
		for k := range used {
			delete(used, k)
		}
		for j := 0; j < g.A+g.B; j++ {
			idx := g.sampleDistinct(source, used)
			used[idx] = struct{}{}
			g.Storage = append(g.Storage, idx)
		}
	}
}

func (g *Graph) sampleDistinct(source rng.Source, used map[int]struct{}) int {
	for {
		idx := int(source.Uint32() % uint32(g.InputLength))
		if _, seen := used[idx]; !seen {
			return idx
		}
	}
}

// Eval computes G(s) for the current wiring.
func (g *Graph) Eval(s []field.Elem) []field.Elem {
	out := make([]field.Elem, g.OutputLength)
	width := g.A + g.B
	for i := 0; i < g.OutputLength; i++ {
		base := i * width
		var sum field.Elem
		for j := 0; j < g.A; j++ {
			sum = sum.Add(s[g.Storage[base+j]])
		}
		prod := field.Elem(1)
		for j := 0; j < g.B; j++ {
			prod = prod.Mul(s[g.Storage[base+g.A+j]])
		}
		out[i] = sum.Add(prod)
	}
	return out
}

// SaveTo persists a checksum line followed by InputLength, OutputLength,
// A, B, |Storage|, then the flat storage, per §4.10.
func (g *Graph) SaveTo(w io.Writer) error {
	header := []int{g.InputLength, g.OutputLength, g.A, g.B, len(g.Storage)}
	return codec.WriteIntsChecksummed(w, header, g.Storage)
}

// LoadFrom reconstructs a graph from the format written by SaveTo,
// verifying the leading checksum first.
func LoadFrom(r io.Reader) (*Graph, error) {
	sc, err := codec.NewChecksummedIntScanner(r)
	if err != nil {
		return nil, err
	}
	fields := make([]int, 5)
	for i := range fields {
		v, err := sc.Next()
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	g := &Graph{InputLength: fields[0], OutputLength: fields[1], A: fields[2], B: fields[3]}
	storage := make([]int, fields[4])
	for i := range storage {
		v, err := sc.Next()
		if err != nil {
			return nil, err
		}
		storage[i] = v
	}
	g.Storage = storage
	return g, nil
}
