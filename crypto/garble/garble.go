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

// Package garble is the streaming (imperative) Decomposable Affine
// Randomized Encoding compiler used by the batch driver: Configure once
// per circuit, then Garble/Ungarble once per batch against fresh
// randomness, without ever materializing an encoder/decoder circuit pair.
//
// The three passes mirror the source's Configure/Garble/Ungarble visitors
// almost line for line; where the source dispatches through a CRTP
// visitor keyed on gate kind, these walk the circuit with a plain
// recursive function and a switch on the gate's Kind, per the accompanying design
// notes (a direct match is simpler than the source's dispatch-cost
// workaround).
package garble

import (
	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/rng"
)

// Configuration holds only counts: the number of offline-encoding values
// and, per Alice/Bob input major index, the number of key-pair slots that
// index needs. A copy is reused, after ResetPreserveConfiguration, as the
// surrogate read-cursor that Ungarble advances; Garble appends to KeyPairs
// and uses no cursor.
type Configuration struct {
	OfflineEncoding int
	AliceEncoding   []int
	BobEncoding     []int
}

// Configure traverses the circuit once from every Alice output, counting
// how many offline-encoding values and per-input key-pair slots a garbling
// of this circuit will need. The traversal revisits a multiplication
// gate's operands four times (matching the four recursive compiles the
// rewrite rule needs, §4.6.1), so a heavily-multiplied input accumulates
// proportionally more key-pair slots — this is why the Configuration must
// be (re)computed once per circuit shape, not assumed to equal the number
// of distinct input gates.
func Configure(c *circuit.Circuit) *Configuration {
	conf := &Configuration{
		AliceEncoding: make([]int, c.AliceInputEnd-c.AliceInputBegin),
		BobEncoding:   make([]int, c.BobInputEnd-c.BobInputBegin),
	}
	var visit func(h circuit.Handle)
	visit = func(h circuit.Handle) {
		g := c.Gate(h)
		switch g.Kind {
		case circuit.ConstZero, circuit.ConstOne, circuit.ConstMinusOne:
			conf.OfflineEncoding++
		case circuit.Input:
			switch g.Agent {
			case circuit.AgentAlice:
				conf.AliceEncoding[g.Major]++
			case circuit.AgentBob:
				conf.BobEncoding[g.Major]++
			default:
				panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
			}
		case circuit.Add, circuit.Sub:
			visit(g.A)
			visit(g.B)
		case circuit.Neg:
			visit(g.A)
		case circuit.Mul:
			visit(g.A)
			visit(g.B)
			visit(g.A)
			visit(g.B)
		default:
			panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
		}
	}
	for _, ao := range c.AliceOutput {
		visit(ao)
	}
	return conf
}

// ResetPreserveConfiguration zeros the counters while keeping the slice
// lengths, rewinding a Configuration back into a fresh cursor for the
// next Ungarble pass.
func (conf *Configuration) ResetPreserveConfiguration() {
	conf.OfflineEncoding = 0
	for i := range conf.AliceEncoding {
		conf.AliceEncoding[i] = 0
	}
	for i := range conf.BobEncoding {
		conf.BobEncoding[i] = 0
	}
}

// KeyPairs holds, per Alice/Bob input major index, the (coefficient,
// intercept) pairs produced by one Garble pass, plus the offline-encoding
// values. Each pair encodes one linear mask y = coefficient*input+intercept
// that the peer must learn without either side alone recovering input.
type KeyPairs struct {
	OfflineEncoding  []field.Elem
	AliceCoefficient [][]field.Elem
	AliceIntercept   [][]field.Elem
	BobCoefficient   [][]field.Elem
	BobIntercept     [][]field.Elem
}

// ApplyConfiguration resizes every slice to match conf, discarding any
// previous contents — a fresh KeyPairs is built by every batch's Garble
// pass.
func (kp *KeyPairs) ApplyConfiguration(conf *Configuration) {
	kp.OfflineEncoding = make([]field.Elem, 0, conf.OfflineEncoding)
	kp.AliceCoefficient = make([][]field.Elem, len(conf.AliceEncoding))
	kp.AliceIntercept = make([][]field.Elem, len(conf.AliceEncoding))
	for i, n := range conf.AliceEncoding {
		kp.AliceCoefficient[i] = make([]field.Elem, 0, n)
		kp.AliceIntercept[i] = make([]field.Elem, 0, n)
	}
	kp.BobCoefficient = make([][]field.Elem, len(conf.BobEncoding))
	kp.BobIntercept = make([][]field.Elem, len(conf.BobEncoding))
	for i, n := range conf.BobEncoding {
		kp.BobCoefficient[i] = make([]field.Elem, 0, n)
		kp.BobIntercept[i] = make([]field.Elem, 0, n)
	}
}

// Keys holds, per input major index, one concrete Z_p value per key-pair
// slot: the evaluation of coefficient*input+intercept. Ungarble reads
// these in the exact order Garble produced the matching KeyPairs.
type Keys struct {
	OfflineEncoding []field.Elem
	AliceEncoding   [][]field.Elem
	BobEncoding     [][]field.Elem
}

// ApplyConfiguration resizes every slice to match conf.
func (k *Keys) ApplyConfiguration(conf *Configuration) {
	k.OfflineEncoding = make([]field.Elem, 0, conf.OfflineEncoding)
	k.AliceEncoding = make([][]field.Elem, len(conf.AliceEncoding))
	for i, n := range conf.AliceEncoding {
		k.AliceEncoding[i] = make([]field.Elem, 0, n)
	}
	k.BobEncoding = make([][]field.Elem, len(conf.BobEncoding))
	for i, n := range conf.BobEncoding {
		k.BobEncoding[i] = make([]field.Elem, 0, n)
	}
}

// EvaluateKeys computes coefficient*input+intercept for every key-pair
// slot of a single major index, given the one raw input value that index
// represents. This is how Bob turns his own KeyPairs directly into Keys
// to stream to Alice (§4.9's S1 channel); Alice's own keys instead arrive
// through the vector-OLE subprotocol, since she cannot locally evaluate a
// formula that depends on coefficients only Bob knows.
func EvaluateKeys(coefficient, intercept []field.Elem, input field.Elem) []field.Elem {
	out := make([]field.Elem, len(coefficient))
	for i := range coefficient {
		out[i] = coefficient[i].Mul(input).Add(intercept[i])
	}
	return out
}

// Garble traverses the circuit a second time, immediately evaluating the
// rewrite rules of §4.6.1 against fresh randomness from source instead of
// emitting encoder gates, and pushes the resulting (coefficient,
// intercept) pairs onto keypairs (already sized by ApplyConfiguration).
func Garble(c *circuit.Circuit, keypairs *KeyPairs, source rng.Source) {
	var visit func(h circuit.Handle, k, b field.Elem)
	visit = func(h circuit.Handle, k, b field.Elem) {
		g := c.Gate(h)
		switch g.Kind {
		case circuit.ConstZero:
			keypairs.OfflineEncoding = append(keypairs.OfflineEncoding, b)
		case circuit.ConstOne:
			keypairs.OfflineEncoding = append(keypairs.OfflineEncoding, k.Add(b))
		case circuit.ConstMinusOne:
			keypairs.OfflineEncoding = append(keypairs.OfflineEncoding, b.Sub(k))
		case circuit.Input:
			idx := g.Major
			switch g.Agent {
			case circuit.AgentAlice:
				keypairs.AliceCoefficient[idx] = append(keypairs.AliceCoefficient[idx], k)
				keypairs.AliceIntercept[idx] = append(keypairs.AliceIntercept[idx], b)
			case circuit.AgentBob:
				keypairs.BobCoefficient[idx] = append(keypairs.BobCoefficient[idx], k)
				keypairs.BobIntercept[idx] = append(keypairs.BobIntercept[idx], b)
			default:
				panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
			}
		case circuit.Add:
			r := source.Zp()
			visit(g.A, k, r)
			visit(g.B, k, b.Sub(r))
		case circuit.Neg:
			visit(g.A, k.Neg(), b)
		case circuit.Sub:
			r := source.Zp()
			visit(g.A, k, b.Add(r))
			visit(g.B, k, r)
		case circuit.Mul:
			r1, r2, r3 := source.Zp(), source.Zp(), source.Zp()
			kr2 := k.Mul(r2)
			bNew := b.Sub(r1.Mul(r2).Add(r3))
			g1, g2 := g.A, g.B
			visit(g1, k, r1.Neg())
			visit(g2, field.Elem(1), r2.Neg())
			visit(g1, kr2, r3)
			visit(g2, r1, bNew)
		default:
			panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
		}
	}
	for _, ao := range c.AliceOutput {
		visit(ao, field.Elem(1), field.Elem(0))
	}
}

// Ungarble traverses the circuit a third time, reading each input gate's
// concrete key from keys at the position tracked by surrogate (which the
// caller must have just reset with ResetPreserveConfiguration so the
// cursors replay in the same order Garble filled them), and returns the
// Alice output values.
func Ungarble(c *circuit.Circuit, surrogate *Configuration, keys *Keys) []field.Elem {
	var visit func(h circuit.Handle) field.Elem
	visit = func(h circuit.Handle) field.Elem {
		g := c.Gate(h)
		switch g.Kind {
		case circuit.ConstZero, circuit.ConstOne, circuit.ConstMinusOne:
			v := keys.OfflineEncoding[surrogate.OfflineEncoding]
			surrogate.OfflineEncoding++
			return v
		case circuit.Input:
			idx := g.Major
			switch g.Agent {
			case circuit.AgentAlice:
				cur := surrogate.AliceEncoding[idx]
				surrogate.AliceEncoding[idx]++
				return keys.AliceEncoding[idx][cur]
			case circuit.AgentBob:
				cur := surrogate.BobEncoding[idx]
				surrogate.BobEncoding[idx]++
				return keys.BobEncoding[idx][cur]
			default:
				panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
			}
		case circuit.Add:
			g1 := visit(g.A)
			g2 := visit(g.B)
			return g1.Add(g2)
		case circuit.Neg:
			return visit(g.A)
		case circuit.Sub:
			g1 := visit(g.A)
			g2 := visit(g.B)
			return g1.Sub(g2)
		case circuit.Mul:
			x1 := visit(g.A)
			x2 := visit(g.B)
			x3 := visit(g.A)
			x4 := visit(g.B)
			return x1.Mul(x2).Add(x3.Add(x4))
		default:
			panic(circuit.ErrUnmatchedGateKind{Handle: h, Kind: g.Kind})
		}
	}
	out := make([]field.Elem, len(c.AliceOutput))
	for i, ao := range c.AliceOutput {
		out[i] = visit(ao)
	}
	return out
}
