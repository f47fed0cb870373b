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

// Package circuit is the two-party arithmetic circuit data model: a
// topologically-sorted DAG of gates over Z_p, ready to be compiled by
// crypto/garble into a garbling scheme.
//
// The source models gate dispatch with a CRTP visitor so the compiler
// resolves each gate kind's handler at template-instantiation time; per
// the accompanying design notes that indirection is an artifact of the
// source language's dispatch cost model; here each compiler pass
// (crypto/garble) just switches on Kind directly.
package circuit

import "fmt"

// Handle identifies a gate by its position in a Circuit's Gates slice.
// Every operand handle of a gate is required to be less than the gate's
// own handle, so the sequence is a topological order by construction.
type Handle int

// Agent names who owns an input gate's value.
type Agent int

const (
	AgentNone Agent = iota
	AgentAlice
	AgentBob
	AgentRandom
)

// Kind tags the eight gate shapes.
type Kind int

const (
	ConstZero Kind = iota
	ConstOne
	ConstMinusOne
	Input
	Add
	Neg
	Sub
	Mul
)

// Gate is a tagged union over the eight kinds. Only the fields relevant
// to Kind are meaningful:
//
//	ConstZero / ConstOne / ConstMinusOne: no payload.
//	Input:  Agent, Major, Minor.
//	Add:    A (augend), B (addend).
//	Neg:    A (target).
//	Sub:    A (minuend), B (subtrahend).
//	Mul:    A (multiplier), B (multiplicand).
type Gate struct {
	Kind  Kind
	Agent Agent
	Major int
	Minor int
	A, B  Handle
}

// Circuit is an ordered gate sequence plus the Alice/Bob input ranges and
// the list of gates whose value Alice learns.
type Circuit struct {
	Gates           []Gate
	AliceInputBegin Handle
	AliceInputEnd   Handle
	BobInputBegin   Handle
	BobInputEnd     Handle
	AliceOutput     []Handle
}

func (c *Circuit) insert(g Gate) Handle {
	h := Handle(len(c.Gates))
	c.Gates = append(c.Gates, g)
	return h
}

// InsertConstZero appends a ConstZero gate.
func (c *Circuit) InsertConstZero() Handle { return c.insert(Gate{Kind: ConstZero}) }

// InsertConstOne appends a ConstOne gate.
func (c *Circuit) InsertConstOne() Handle { return c.insert(Gate{Kind: ConstOne}) }

// InsertConstMinusOne appends a ConstMinusOne gate.
func (c *Circuit) InsertConstMinusOne() Handle { return c.insert(Gate{Kind: ConstMinusOne}) }

// InsertInput appends an Input gate owned by agent, identified by
// (major, minor) within that agent's input space.
func (c *Circuit) InsertInput(agent Agent, major, minor int) Handle {
	return c.insert(Gate{Kind: Input, Agent: agent, Major: major, Minor: minor})
}

// InsertAdd appends an Add gate computing augend+addend.
func (c *Circuit) InsertAdd(augend, addend Handle) Handle {
	return c.insert(Gate{Kind: Add, A: augend, B: addend})
}

// InsertNeg appends a Neg gate computing -target.
func (c *Circuit) InsertNeg(target Handle) Handle {
	return c.insert(Gate{Kind: Neg, A: target})
}

// InsertSub appends a Sub gate computing minuend-subtrahend.
func (c *Circuit) InsertSub(minuend, subtrahend Handle) Handle {
	return c.insert(Gate{Kind: Sub, A: minuend, B: subtrahend})
}

// InsertMul appends a Mul gate computing multiplier*multiplicand.
func (c *Circuit) InsertMul(multiplier, multiplicand Handle) Handle {
	return c.insert(Gate{Kind: Mul, A: multiplier, B: multiplicand})
}

// Gate returns the gate at h.
func (c *Circuit) Gate(h Handle) Gate { return c.Gates[h] }

// ErrUnmatchedGateKind is the invariant-violation condition from §7: a
// gate carries a Kind the compiler doesn't recognize, or an input gate
// names an agent other than Alice/Bob. It should never occur for a
// circuit assembled through the Insert* constructors; callers that reach
// it have a compiler bug, not a bad input, and per §7 it is fatal rather
// than a retryable DecodeFailure.
type ErrUnmatchedGateKind struct {
	Handle Handle
	Kind   Kind
}

func (e ErrUnmatchedGateKind) Error() string {
	return fmt.Sprintf("circuit: unmatched gate kind %d at handle %d", e.Kind, e.Handle)
}
