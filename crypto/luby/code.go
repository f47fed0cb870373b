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

package luby

import (
	"io"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/internal/codec"
)

// Bin is one output coordinate's parity-check description: it XOR-sums
// (field-sums) the Degree input-symbol indices stored at
// Storage[Index:Index+Degree].
type Bin struct {
	Index  int
	Degree int
}

// Code is a built Luby Transform code: InputSymbolSize source symbols,
// len(Bins) output symbols, and a flat Storage of source-symbol indices.
type Code struct {
	InputSymbolSize int
	Bins            []Bin
	Storage         []int
}

// Build samples len(Bins) = dist.V() output bins by drawing a degree from
// dist per bin and that many distinct column indices in [0, w) uniformly
// from source.
func Build(dist *Distribution, source rng.Source) *Code {
	w := dist.InputSymbolSize
	v := dist.V()
	c := &Code{InputSymbolSize: w}
	used := make(map[int]struct{})

	for i := 0; i < v; i++ {
		r := float64(source.Uint32()) / 4294967296.0
		d := dist.SampleDegree(r)
		for k := range used {
			delete(used, k)
		}
		start := len(c.Storage)
		for len(used) < d {
			idx := int(source.Uint32() % uint32(w))
			if _, seen := used[idx]; seen {
				continue
			}
			used[idx] = struct{}{}
			c.Storage = append(c.Storage, idx)
		}
		c.Bins = append(c.Bins, Bin{Index: start, Degree: d})
	}
	return c
}

// Encode accumulates the field-sum of each kept bin's source symbols
// into the corresponding position of encoded. It adds to whatever is
// already there, so the caller can layer this code's output on top of
// another code's (the sparse code's lower rows, per §4.8).
func (c *Code) Encode(encoded []field.Elem, notNoisy []bool, decoded []field.Elem) {
	for j, bin := range c.Bins {
		if !notNoisy[j] {
			continue
		}
		var sum field.Elem
		for _, idx := range c.Storage[bin.Index : bin.Index+bin.Degree] {
			sum = sum.Add(decoded[idx])
		}
		encoded[j] = encoded[j].Add(sum)
	}
}

// DecodeDestructive runs the two-round belief-propagation-style decode
// over a private working copy of the bins (the code itself is left
// untouched — "destructive" describes the decode's own scratch state,
// not c). It returns the recovered source symbols and whether every
// symbol was released.
//
// Round 1 makes a single opportunistic pass: erased positions are
// dropped, degree-1 bins release immediately, and degree-2 bins release
// their unsolved half as soon as the other half is solved — including by
// an earlier release in this same pass, since later entries observe
// updated solved state. (The source's two-cursor front/back sweep is an
// in-place compaction detail for the same single pass; a forward sweep
// with swap-remove produces the same set of releases.)
//
// Round 2 repeats until a pass releases nothing: each surviving bin drops
// any now-solved indices (subtracting their value out of its running
// sum), and a bin that shrinks to degree 1 releases.
func (c *Code) DecodeDestructive(encoded []field.Elem, notNoisy []bool) ([]field.Elem, bool) {
	w := c.InputSymbolSize
	decoded := make([]field.Elem, w)
	solved := make([]bool, w)
	remaining := w

	type entry struct {
		idx []int
		enc field.Elem
	}
	active := make([]*entry, 0, len(c.Bins))
	for j, bin := range c.Bins {
		if !notNoisy[j] {
			continue
		}
		idx := append([]int(nil), c.Storage[bin.Index:bin.Index+bin.Degree]...)
		active = append(active, &entry{idx: idx, enc: encoded[j]})
	}

	release := func(x int, value field.Elem) {
		decoded[x] = value
		solved[x] = true
		remaining--
	}

	// Round 1.
	for i := 0; i < len(active); {
		e := active[i]
		released := false
		switch len(e.idx) {
		case 1:
			release(e.idx[0], e.enc)
			released = true
		case 2:
			x0, x1 := e.idx[0], e.idx[1]
			switch {
			case solved[x0] && !solved[x1]:
				release(x1, e.enc.Sub(decoded[x0]))
				released = true
			case solved[x1] && !solved[x0]:
				release(x0, e.enc.Sub(decoded[x1]))
				released = true
			}
		}
		if released {
			active[i] = active[len(active)-1]
			active = active[:len(active)-1]
			continue
		}
		i++
	}

	// Round 2.
	for remaining > 0 {
		releasedAny := false
		for i := 0; i < len(active); {
			e := active[i]
			j := 0
			for j < len(e.idx) {
				x := e.idx[j]
				if solved[x] {
					e.enc = e.enc.Sub(decoded[x])
					e.idx[j] = e.idx[len(e.idx)-1]
					e.idx = e.idx[:len(e.idx)-1]
					continue
				}
				j++
			}
			switch len(e.idx) {
			case 0:
				active[i] = active[len(active)-1]
				active = active[:len(active)-1]
			case 1:
				release(e.idx[0], e.enc)
				releasedAny = true
				active[i] = active[len(active)-1]
				active = active[:len(active)-1]
			default:
				i++
			}
		}
		if !releasedAny {
			break
		}
	}

	return decoded, remaining == 0
}

// SaveTo persists the code as a checksum line followed by w, v, the v bin
// degrees, then the flat storage, per §4.10.
func (c *Code) SaveTo(w io.Writer) error {
	degrees := make([]int, len(c.Bins))
	for i, b := range c.Bins {
		degrees[i] = b.Degree
	}
	return codec.WriteIntsChecksummed(w, []int{c.InputSymbolSize, len(c.Bins)}, degrees, c.Storage)
}

// LoadFrom reconstructs a code from the format written by SaveTo,
// verifying the leading checksum and recomputing bin offsets from the
// degree sequence.
func LoadFrom(r io.Reader) (*Code, error) {
	sc, err := codec.NewChecksummedIntScanner(r)
	if err != nil {
		return nil, err
	}
	w, err := sc.Next()
	if err != nil {
		return nil, err
	}
	v, err := sc.Next()
	if err != nil {
		return nil, err
	}
	degrees := make([]int, v)
	for i := range degrees {
		d, err := sc.Next()
		if err != nil {
			return nil, err
		}
		degrees[i] = d
	}
	total := 0
	for _, d := range degrees {
		total += d
	}
	storage := make([]int, total)
	for i := range storage {
		s, err := sc.Next()
		if err != nil {
			return nil, err
		}
		storage[i] = s
	}
	bins := make([]Bin, v)
	offset := 0
	for i, d := range degrees {
		bins[i] = Bin{Index: offset, Degree: d}
		offset += d
	}
	return &Code{InputSymbolSize: w, Bins: bins, Storage: storage}, nil
}
