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

// Command ltgen searches for Luby Transform codes that decode reliably
// at a target output length, saving every improvement found:
//
//	ltgen ofn w v [c]
//
//	  ofn: the prefix of output file names.
//	    w: the number of LT code inputs, 5000 to 40000.
//	    v: the number of LT code outputs, 2*w to 4*w.
//	    c: optional, the distribution's minimum C, defaults to 0.5.
//
// Candidates are accepted only once they beat the best success rate
// seen so far, first over a small sample and then, if still promising,
// over a larger one — mirroring the original generator's two-stage
// filter so an unlucky run doesn't waste a large sample on a candidate
// a small one would have rejected.
package main

import (
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/vecole/pe2/crypto/erasure"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/rng"
)

const (
	smallSampleSize = 500
	largeSampleSize = 20000
)

func usage() {
	fmt.Fprint(os.Stderr, "Usage: ltgen ofn w v [c]\n\n"+
		"  ofn: the prefix of output file.\n"+
		"    w: the number of inputs to LT code (10000 for k = 182, 20000 for k = 240).\n"+
		"    v: the number of outputs from LT code (33124 for k = 182, 57600 for k = 240).\n"+
		"    c: optional, minimum c in LT code, defaults to 0.5.\n")
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
	if len(os.Args) < 4 || len(os.Args) > 5 {
		usage()
		return fmt.Errorf("ltgen: wrong number of arguments")
	}
	ofn := os.Args[1]
	if !isValidName(ofn) {
		usage()
		return fmt.Errorf("ltgen: invalid output file prefix %q", ofn)
	}
	w, err := strconv.Atoi(os.Args[2])
	if err != nil || w < 5000 || w > 40000 {
		usage()
		return fmt.Errorf("ltgen: invalid w")
	}
	v, err := strconv.Atoi(os.Args[3])
	if err != nil || v < 2*w || v > 4*w {
		usage()
		return fmt.Errorf("ltgen: invalid v")
	}
	c := 0.5
	if len(os.Args) >= 5 {
		c, err = strconv.ParseFloat(os.Args[4], 64)
		if err != nil || c < 0.5 || c > 20 {
			usage()
			return fmt.Errorf("ltgen: invalid c")
		}
	}

	source := rng.CryptoSource{}

	dist := luby.NewDistribution(w, c, 0.01)
	for dist.V() <= v {
		dist.C += 1e-5
		dist.InvalidateCache()
	}
	for dist.V() > v {
		dist.C -= 1e-5
		dist.InvalidateCache()
	}
	fmt.Fprintf(os.Stderr, "Found c = %f giving v = %d.\n", dist.C, dist.V())

	bestSuccessRate := 0.0
	candidateIndex := 0
	for {
		code := luby.Build(dist, source)
		successRate, err := testLTCode(code, smallSampleSize, source)
		if err != nil {
			return err
		}
		if successRate <= bestSuccessRate {
			continue
		}
		fmt.Fprintf(os.Stderr, "\nFound a good candidate (%f%%, sample size = %d), testing more.\n", successRate*100, smallSampleSize)
		successRate, err = testLTCode(code, largeSampleSize, source)
		if err != nil {
			return err
		}
		if successRate <= bestSuccessRate {
			fmt.Fprintln(os.Stderr, "Further test finished: discarded.")
			continue
		}
		fmt.Fprintf(os.Stderr, "Further test finished: saving (%f%%, sample size = %d).\n", successRate*100, largeSampleSize)
		outputFileName := fmt.Sprintf("%s.%03d.luby", ofn, candidateIndex)
		candidateIndex++
		if err := saveCode(outputFileName, code); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Further test finished: saved.")
		bestSuccessRate = successRate
	}
}

func saveCode(path string, code *luby.Code) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open %s for writing: %w", path, err)
	}
	defer f.Close()
	return code.SaveTo(f)
}

// testLTCode runs count independent encode/erase/decode trials and
// returns the fraction that both decoded successfully and reproduced
// every plaintext symbol exactly, computed as the mean of each trial's
// 0/1 outcome.
func testLTCode(code *luby.Code, count int, source rng.Source) (float64, error) {
	w, v := code.InputSymbolSize, len(code.Bins)
	vErased := v / 4
	outcomes := make([]float64, count)
	for i := 0; i < count; i++ {
		plain := make([]field.Elem, w)
		for j := range plain {
			plain[j] = source.Zp()
		}
		mask := make([]bool, v)
		for j := range mask {
			mask[j] = true
		}
		if err := erasure.EraseExact(mask, vErased, source); err != nil {
			return 0, err
		}
		encoded := make([]field.Elem, v)
		code.Encode(encoded, mask, plain)

		decoded, ok := code.DecodeDestructive(encoded, mask)
		if !ok {
			continue
		}
		for j := range plain {
			if decoded[j] != plain[j] {
				return -1, fmt.Errorf("ltgen: decode mismatch at index %d: want %v, got %v", j, plain[j], decoded[j])
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
