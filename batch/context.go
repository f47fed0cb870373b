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
	"net"
	"sync"

	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/goldreich"
	"github.com/vecole/pe2/crypto/ole"
	"github.com/vecole/pe2/crypto/rng"
)

// Artifacts bundles the three persisted, publicly-shared parameters
// every batch iteration compiles against: the PRG expander graph and the
// paired erasure-correcting codes the vector-OLE subprotocol rides on.
// Both peers load identical copies from the files named on the command
// line (§6).
type Artifacts struct {
	Graph *goldreich.Graph
	Codes *ole.Codes
}

// Stats counts vector-OLE attempts and successes across a run, read by
// the caller after the end-of-batch join (§5's "statistics counters").
type Stats struct {
	VecOLEAttempts  int
	VecOLESuccesses int
}

// Context is the shared, partitioned execution state for one peer's run
// of the batch-OLE driver: the three foreground channel tasks each own
// an exclusive slice of it, and only the error slots and Stats are
// touched from more than one goroutine (guarded by mu).
type Context struct {
	Artifacts *Artifacts
	Source    rng.Source

	S1, S2, S3 net.Conn

	mu    sync.Mutex
	errS1 error
	errS2 error
	errS3 error
	Stats Stats
}

func (ctx *Context) setS1Err(err error) { ctx.mu.Lock(); ctx.errS1 = err; ctx.mu.Unlock() }
func (ctx *Context) setS2Err(err error) { ctx.mu.Lock(); ctx.errS2 = err; ctx.mu.Unlock() }
func (ctx *Context) setS3Err(err error) { ctx.mu.Lock(); ctx.errS3 = err; ctx.mu.Unlock() }

func (ctx *Context) addVecOLEAttempt(success bool) {
	ctx.mu.Lock()
	ctx.Stats.VecOLEAttempts++
	if success {
		ctx.Stats.VecOLESuccesses++
	}
	ctx.mu.Unlock()
}

// Join inspects the three per-channel error slots after all three
// foreground tasks have returned, per §5/§7's partial-failure policy: any
// non-nil slot aborts the batch.
func (ctx *Context) Join() error {
	if ctx.errS1 != nil {
		return ctx.errS1
	}
	if ctx.errS2 != nil {
		return ctx.errS2
	}
	if ctx.errS3 != nil {
		return ctx.errS3
	}
	return nil
}

// AliceState is Alice's private per-run state: her circuit, its
// Configuration, the garbled Keys she accumulates, and the surrogate
// cursor Ungarble consumes.
type AliceState struct {
	PRGCircuit *circuit.Circuit
	Config     *garble.Configuration
	Surrogate  *garble.Configuration
	Keys       *garble.Keys
	Seed       []field.Elem
	X          []field.Elem
}

// BobState is Bob's private per-run state: the same public circuit and
// Configuration, plus his actual inputs and the fresh KeyPairs Garble
// produces each iteration.
type BobState struct {
	PRGCircuit *circuit.Circuit
	Config     *garble.Configuration
	KeyPairs   *garble.KeyPairs
	A          []field.Elem
	B          []field.Elem
}
