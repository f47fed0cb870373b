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

// Command goldgen samples a fresh Goldreich-style expander graph and
// writes it to stdout in the persisted artifact format (§4.13):
//
//	goldgen a b i [o]
//
//	  a: additive arity, 3 to 50.
//	  b: multiplicative arity, 3 to 50.
//	  i: number of inputs, a+b+100 to 20000.
//	  o: optional, i to i*i*i, defaults to i*i.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vecole/pe2/crypto/goldreich"
	"github.com/vecole/pe2/crypto/rng"
)

func parseUint(arg, name string, mini, maxi int) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("the format for %s is incorrect", name)
	}
	if v < mini || v > maxi {
		return 0, fmt.Errorf("the allowed range of %s is [%d, %d]", name, mini, maxi)
	}
	return v, nil
}

func usage() {
	fmt.Fprint(os.Stderr, "Usage: goldgen a b i [o]\n\n"+
		"    a: the additive arity, minimum 3, maximum 50.\n"+
		"    b: the multiplicative arity, minimum 3, maximum 50.\n"+
		"    i: the number of inputs, minimum a+b+100, maximum 20000.\n"+
		"    o: optional, minimum i, maximum i*i*i, defaults to i*i\n")
}

func run() error {
	if len(os.Args) < 4 || len(os.Args) > 5 {
		usage()
		return fmt.Errorf("goldgen: wrong number of arguments")
	}
	a, err := parseUint(os.Args[1], "a", 3, 50)
	if err != nil {
		usage()
		return err
	}
	b, err := parseUint(os.Args[2], "b", 3, 50)
	if err != nil {
		usage()
		return err
	}
	il, err := parseUint(os.Args[3], "i", a+b+100, 20000)
	if err != nil {
		usage()
		return err
	}
	ol := il * il
	if len(os.Args) >= 5 {
		ol, err = parseUint(os.Args[4], "o", il, il*il*il)
		if err != nil {
			usage()
			return err
		}
	}

	graph := &goldreich.Graph{A: a, B: b, InputLength: il, OutputLength: ol}
	graph.Resample(rng.CryptoSource{})
	return graph.SaveTo(os.Stdout)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
