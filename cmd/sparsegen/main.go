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

// Command sparsegen searches for sparse linear codes that decode
// reliably at the requested dimensions, saving every improvement found:
//
//	sparsegen ofn k [d] [u] [v]
//
//	  ofn: the prefix of output file.
//	    k: the length of the random vector, 100 to 300 (182 or 240 typical).
//	    d: the sparsity parameter, default 10, 5 to 50.
//	    u: the number of upper (Gaussian-eliminable) rows,
//	       default and minimum 4*ceil(k/3), maximum 10x that.
//	    v: the number of lower rows, default k*k, minimum k, maximum k*k*k.
package main

import (
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/vecole/pe2/crypto/erasure"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/crypto/sparse"
)

const (
	smallSampleSize = 500
	largeSampleSize = 20000
)

func usage() {
	fmt.Fprint(os.Stderr, "Usage: sparsegen ofn k [d] [u] [v]\n\n"+
		"  ofn: the prefix of output file.\n"+
		"    k: the length of random vector, 182 or 240 (100 ~ 300).\n"+
		"    d: the sparsity parameter, default = 10 (5 ~ 50).\n"+
		"    u: the length of top rows,\n"+
		"       default = minimum = 4*ceiling(k/3),\n"+
		"       maximum = 10 * default.\n"+
		"    v: the length of bottom rows, default = k*k,\n"+
		"       minimum = k, maximum = k * k * k.\n")
}

func isValidName(s string) bool {
	if len(s) < 3 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func run() error {
	if len(os.Args) < 3 || len(os.Args) > 6 {
		usage()
		return fmt.Errorf("sparsegen: wrong number of arguments")
	}
	ofn := os.Args[1]
	if !isValidName(ofn) {
		usage()
		return fmt.Errorf("sparsegen: invalid output file prefix %q", ofn)
	}
	k, err := strconv.Atoi(os.Args[2])
	if err != nil || k < 100 || k > 300 {
		usage()
		return fmt.Errorf("sparsegen: invalid k")
	}

	d := 10
	uDefault := (k + 2) / 3 * 4
	u := uDefault
	v := k * k

	if len(os.Args) >= 4 {
		d, err = strconv.Atoi(os.Args[3])
		if err != nil || d < 5 || d > 50 {
			usage()
			return fmt.Errorf("sparsegen: invalid d")
		}
	}
	if len(os.Args) >= 5 {
		u, err = strconv.Atoi(os.Args[4])
		if err != nil || u < uDefault || u > 10*uDefault {
			usage()
			return fmt.Errorf("sparsegen: invalid u")
		}
	}
	if len(os.Args) >= 6 {
		v, err = strconv.Atoi(os.Args[5])
		if err != nil || v < k || v > k*k*k {
			usage()
			return fmt.Errorf("sparsegen: invalid v")
		}
	}

	source := rng.CryptoSource{}
	bestSuccessRate := 0.0
	candidateIndex := 0
	for {
		code := &sparse.Code{K: k, D: d, U: u, V: v}
		code.Resample(source)

		successRate, err := testSparseCode(code, smallSampleSize, source)
		if err != nil {
			return err
		}
		if successRate <= bestSuccessRate {
			continue
		}
		fmt.Fprintf(os.Stderr, "\nFound a good candidate (%f%%, sample size = %d), testing more.\n", successRate*100, smallSampleSize)
		successRate, err = testSparseCode(code, largeSampleSize, source)
		if err != nil {
			return err
		}
		if successRate <= bestSuccessRate {
			fmt.Fprintln(os.Stderr, "Further test finished: discarded.")
			continue
		}
		fmt.Fprintf(os.Stderr, "Further test finished: saving (%f%%, sample size = %d).\n", successRate*100, largeSampleSize)
		outputFileName := fmt.Sprintf("%s.%03d.sparse", ofn, candidateIndex)
		candidateIndex++
		if err := saveCode(outputFileName, code); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Further test finished: saved.")
		bestSuccessRate = successRate
	}
}

func saveCode(path string, code *sparse.Code) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open %s for writing: %w", path, err)
	}
	defer f.Close()
	return code.SaveTo(f)
}

// testSparseCode runs count independent encode/erase/decode trials,
// checking both the Gaussian-eliminable upper rows and that re-encoding
// the negated recovered vector through the lower rows cancels out, per
// the phase-2 check the original generator runs (§4.8's composite
// codeword invariant).
func testSparseCode(code *sparse.Code, count int, source rng.Source) (float64, error) {
	k, u, v := code.K, code.U, code.V
	uErased, vErased := u/4, v/4
	outcomes := make([]float64, count)
	for i := 0; i < count; i++ {
		plain := make([]field.Elem, k)
		for j := range plain {
			plain[j] = source.Zp()
		}
		mask := make([]bool, u+v)
		for j := range mask {
			mask[j] = true
		}
		if err := erasure.EraseExact(mask[:u], uErased, source); err != nil {
			return 0, err
		}
		if err := erasure.EraseExact(mask[u:], vErased, source); err != nil {
			return 0, err
		}
		encoded := make([]field.Elem, u+v)
		code.EncodeBothParts(encoded, mask, plain)

		decoded, ok := code.DecodeFromUpperPartDestructive(encoded[:u], mask[:u])
		if !ok {
			continue
		}
		for j := range plain {
			if decoded[j] != plain[j] {
				return -1, fmt.Errorf("sparsegen: decode mismatch at index %d: want %v, got %v", j, plain[j], decoded[j])
			}
			decoded[j] = decoded[j].Neg()
		}
		lowerCheck := make([]field.Elem, v)
		copy(lowerCheck, encoded[u:])
		code.EncodeLowerPart(lowerCheck, mask[u:], decoded)
		for j := range lowerCheck {
			if lowerCheck[j] != 0 {
				return -1, fmt.Errorf("sparsegen: lower-row derandomisation failed at index %d: got %v", j, lowerCheck[j])
			}
		}
		outcomes[i] = 1
	}
	return stat.Mean(outcomes, nil), nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
