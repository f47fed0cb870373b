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

// Command datagen writes a fixed-size random x, a, b triple and the
// matching expected output z = x*a+b to four files in the current
// directory (x, a, b, stdans), for exercising a pe2 run end to end.
package main

import (
	"fmt"
	"os"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/internal/vecfile"
)

// batchSize matches the original generator's fixed batch dimension.
const batchSize = 238328

func run() error {
	source := rng.CryptoSource{}

	x := make([]field.Elem, batchSize)
	a := make([]field.Elem, batchSize)
	b := make([]field.Elem, batchSize)
	z := make([]field.Elem, batchSize)

	for i := range x {
		x[i] = source.Zp()
	}
	for i := range a {
		a[i] = source.Zp()
	}
	for i := range b {
		b[i] = source.Zp()
	}
	for i := range z {
		z[i] = x[i].Mul(a[i]).Add(b[i])
	}

	if err := vecfile.SaveFile("x", x); err != nil {
		return err
	}
	if err := vecfile.SaveFile("a", a); err != nil {
		return err
	}
	if err := vecfile.SaveFile("b", b); err != nil {
		return err
	}
	return vecfile.SaveFile("stdans", z)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
