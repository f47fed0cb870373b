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

// Package vecfile reads and writes the plain decimal-per-line vector
// files the CLI contract (§6) names for x, a, b and expected-z data:
// one Z_p residue per whitespace-delimited field, same text format as
// the persisted artifacts in internal/codec.
package vecfile

import (
	"io"
	"os"
	"strconv"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/internal/codec"
)

// Load reads every integer field in r as a field element.
func Load(r io.Reader) ([]field.Elem, error) {
	sc := codec.NewIntScanner(r)
	var out []field.Elem
	for {
		v, err := sc.Next()
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, field.New(uint64(v)))
	}
	return out, nil
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string) ([]field.Elem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Save writes one decimal value per line.
func Save(w io.Writer, v []field.Elem) error {
	for _, e := range v {
		if _, err := io.WriteString(w, strconv.FormatUint(uint64(uint32(e)), 10)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes v to path with Save.
func SaveFile(path string, v []field.Elem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Save(f, v)
}
