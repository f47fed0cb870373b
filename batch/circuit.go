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

package batch

import (
	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/goldreich"
)

// BuildPRGCircuit compiles the one circuit every batch garbles: given
// Alice's PRG seed s (graph.InputLength values) and Bob's (a, c) (each
// graph.OutputLength values), output u = a*G(s)+c. Alice input major
// index i is s[i]; Bob input major index i is a[i] for i <
// graph.OutputLength and c[i-graph.OutputLength] beyond that (§4.9's
// "separately the parties compute u = a·G(s) + c via a garbled
// evaluation").
func BuildPRGCircuit(graph *goldreich.Graph) *circuit.Circuit {
	var c circuit.Circuit
	width := graph.A + graph.B

	seed := make([]circuit.Handle, graph.InputLength)
	for i := range seed {
		seed[i] = c.InsertInput(circuit.AgentAlice, i, 0)
	}
	c.AliceInputBegin, c.AliceInputEnd = seed[0], seed[len(seed)-1]+1

	a := make([]circuit.Handle, graph.OutputLength)
	for i := range a {
		a[i] = c.InsertInput(circuit.AgentBob, i, 0)
	}
	cc := make([]circuit.Handle, graph.OutputLength)
	for i := range cc {
		cc[i] = c.InsertInput(circuit.AgentBob, graph.OutputLength+i, 0)
	}
	c.BobInputBegin, c.BobInputEnd = a[0], cc[len(cc)-1]+1

	c.AliceOutput = make([]circuit.Handle, graph.OutputLength)
	for i := 0; i < graph.OutputLength; i++ {
		base := i * width
		sum := seed[graph.Storage[base]]
		for j := 1; j < graph.A; j++ {
			sum = c.InsertAdd(sum, seed[graph.Storage[base+j]])
		}
		prod := seed[graph.Storage[base+graph.A]]
		for j := 1; j < graph.B; j++ {
			prod = c.InsertMul(prod, seed[graph.Storage[base+graph.A+j]])
		}
		gi := c.InsertAdd(sum, prod)
		ui := c.InsertAdd(c.InsertMul(a[i], gi), cc[i])
		c.AliceOutput[i] = ui
	}

	return &c
}
