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

// Package sparse implements the fast sparse linear code used as the
// erasure-correcting code's upper, Gaussian-eliminable half (paired with
// an LT code for the lower half — see crypto/luby and §4.8).
package sparse

import (
	"io"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/internal/codec"
)

// Entry is one nonzero of the sparse matrix.
type Entry struct {
	Column int
	Value  field.Elem
}

// Code is a random D-sparse K-column matrix split into U upper rows (the
// Gaussian-eliminable part) and V lower rows (paired with an LT code).
// Entries is flattened row-major, D entries per row, upper rows first.
type Code struct {
	K, D, U, V int
	Entries    []Entry
}

// Resample draws D distinct columns in [0,K) and D nonzero values per row,
// for all U+V rows.
//
// The source this is ported from drew the per-row column count with a
// loop of the shape `for (j = D; j != 0u; ++j)`, which increments instead
// of decrements and so never terminates — flagged in §9 as a latent bug.
// This reimplementation uses a straightforward decrementing bound.
func (c *Code) Resample(source rng.Source) {
	rows := c.U + c.V
	c.Entries = make([]Entry, 0, rows*c.D)
	used := make(map[int]struct{}, c.D)
	for i := 0; i < rows; i++ {
		for k := range used {
			delete(used, k)
		}
		for j := c.D; j != 0; j-- {
			col := c.sampleDistinctColumn(source, used)
			used[col] = struct{}{}
			val := source.Zp()
			for val == 0 {
				val = source.Zp()
			}
			c.Entries = append(c.Entries, Entry{Column: col, Value: val})
		}
	}
}

func (c *Code) sampleDistinctColumn(source rng.Source, used map[int]struct{}) int {
	for {
		col := int(source.Uint32() % uint32(c.K))
		if _, seen := used[col]; !seen {
			return col
		}
	}
}

func encodeRows(entries []Entry, d, rowOffset, rowCount int, encoded []field.Elem, notNoisy []bool, decoded []field.Elem) {
	for row := 0; row < rowCount; row++ {
		if !notNoisy[row] {
			continue
		}
		base := (rowOffset + row) * d
		var sum field.Elem
		for k := 0; k < d; k++ {
			e := entries[base+k]
			sum = sum.Add(e.Value.Mul(decoded[e.Column]))
		}
		encoded[row] = encoded[row].Add(sum)
	}
}

// EncodeBothParts writes into encoded[0:U+V] from decoded[0:K], adding
// onto whatever values are already present at kept positions.
func (c *Code) EncodeBothParts(encoded []field.Elem, notNoisy []bool, decoded []field.Elem) {
	encodeRows(c.Entries, c.D, 0, c.U+c.V, encoded, notNoisy, decoded)
}

// EncodeUpperPart is the restriction of EncodeBothParts to the first U
// rows.
func (c *Code) EncodeUpperPart(encoded []field.Elem, notNoisy []bool, decoded []field.Elem) {
	encodeRows(c.Entries, c.D, 0, c.U, encoded, notNoisy, decoded)
}

// EncodeLowerPart is the restriction of EncodeBothParts to the last V
// rows; encoded/notNoisy here are indexed from 0 (i.e. row 0 is the
// code's row U).
func (c *Code) EncodeLowerPart(encoded []field.Elem, notNoisy []bool, decoded []field.Elem) {
	encodeRows(c.Entries, c.D, c.U, c.V, encoded, notNoisy, decoded)
}

// DecodeFromUpperPartDestructive recovers decoded[0:K] from the kept
// entries of encoded[0:U] (len(encoded) == U) by Gaussian elimination.
// It fails if fewer than K of the U upper rows are kept, or if at any
// pivot step no remaining row has a nonzero in the pivot column.
func (c *Code) DecodeFromUpperPartDestructive(encoded []field.Elem, notNoisy []bool) ([]field.Elem, bool) {
	K, D := c.K, c.D
	validRows := 0
	for _, kept := range notNoisy {
		if kept {
			validRows++
		}
	}
	if validRows < K {
		return nil, false
	}

	matrix := make([][]field.Elem, validRows)
	for i := range matrix {
		matrix[i] = make([]field.Elem, K+1)
	}
	row := 0
	for r := 0; r < c.U; r++ {
		if !notNoisy[r] {
			continue
		}
		base := r * D
		for k := 0; k < D; k++ {
			e := c.Entries[base+k]
			matrix[row][e.Column] = matrix[row][e.Column].Add(e.Value)
		}
		matrix[row][K] = matrix[row][K].Add(encoded[r])
		row++
	}

	for i := 0; i < K; i++ {
		if matrix[i][i] == 0 {
			found := -1
			for j := i + 1; j < validRows; j++ {
				if matrix[j][i] != 0 {
					found = j
					break
				}
			}
			if found == -1 {
				return nil, false
			}
			matrix[i], matrix[found] = matrix[found], matrix[i]
		}
		inv, ok := matrix[i][i].Inverse()
		if !ok {
			return nil, false
		}
		for k := i; k <= K; k++ {
			matrix[i][k] = matrix[i][k].Mul(inv)
		}
		if i != K-1 {
			for j := i + 1; j < validRows; j++ {
				leading := matrix[j][i]
				if leading == 0 {
					continue
				}
				for k := i + 1; k <= K; k++ {
					matrix[j][k] = matrix[j][k].Sub(leading.Mul(matrix[i][k]))
				}
				matrix[j][i] = 0
			}
		}
	}

	for i := K - 1; i >= 1; i-- {
		for j := i - 1; j >= 0; j-- {
			if matrix[j][i] == 0 {
				continue
			}
			matrix[j][K] = matrix[j][K].Sub(matrix[j][i].Mul(matrix[i][K]))
		}
	}

	decoded := make([]field.Elem, K)
	for i := 0; i < K; i++ {
		decoded[i] = matrix[i][K]
	}
	return decoded, true
}

// SaveTo persists a checksum line followed by K, D, U, V, the entry
// count, then each (column, value) record, per §4.10.
func (c *Code) SaveTo(w io.Writer) error {
	header := []int{c.K, c.D, c.U, c.V, len(c.Entries)}
	records := make([]int, 0, len(c.Entries)*2)
	for _, e := range c.Entries {
		records = append(records, e.Column, int(uint32(e.Value)))
	}
	return codec.WriteIntsChecksummed(w, header, records)
}

// LoadFrom reconstructs a code from the format written by SaveTo,
// verifying the leading checksum first.
func LoadFrom(r io.Reader) (*Code, error) {
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
	c := &Code{K: fields[0], D: fields[1], U: fields[2], V: fields[3]}
	count := fields[4]
	c.Entries = make([]Entry, count)
	for i := 0; i < count; i++ {
		col, err := sc.Next()
		if err != nil {
			return nil, err
		}
		val, err := sc.Next()
		if err != nil {
			return nil, err
		}
		c.Entries[i] = Entry{Column: col, Value: field.FromUint32(uint32(val))}
	}
	return c, nil
}
