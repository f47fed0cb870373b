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
	"fmt"
	"sync"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/ole"
)

// RunAliceBatch executes one batch-OLE iteration from Alice's side: the
// three foreground tasks run concurrently over S1/S2/S3, join, and Alice
// ungarbles to recover her share z = a·x+b (§4.9, §5).
func RunAliceBatch(ctx *Context, state *AliceState) ([]field.Elem, error) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if err := aliceReceiveBobKeys(ctx, state); err != nil {
			ctx.setS1Err(fmt.Errorf("S1: %w", err))
		}
	}()

	go func() {
		defer wg.Done()
		if err := aliceDriveVectorOLE(ctx, state); err != nil {
			ctx.setS2Err(fmt.Errorf("S2: %w", err))
		}
	}()

	var v []field.Elem
	go func() {
		defer wg.Done()
		var err error
		v, err = aliceExchangeDAndV(ctx, state)
		if err != nil {
			ctx.setS3Err(fmt.Errorf("S3: %w", err))
		}
	}()

	wg.Wait()
	if err := ctx.Join(); err != nil {
		return nil, err
	}

	state.Surrogate.ResetPreserveConfiguration()
	u := garble.Ungarble(state.PRGCircuit, state.Surrogate, state.Keys)

	z := make([]field.Elem, len(u))
	for i := range z {
		z[i] = u[i].Add(v[i])
	}
	return z, nil
}

// aliceReceiveBobKeys is Alice's S1 task: receive, per Bob input major
// index, the already-evaluated keys Bob streams.
func aliceReceiveBobKeys(ctx *Context, state *AliceState) error {
	conn := ctx.S1
	if err := RecvHello(conn); err != nil {
		return err
	}
	for i := range state.Config.BobEncoding {
		v, err := RecvVector(conn)
		if err != nil {
			return err
		}
		state.Keys.BobEncoding[i] = v
	}
	return RecvByeBye(conn)
}

// aliceDriveVectorOLE is Alice's S2 task: for each of her own input
// major indices, run one vector-OLE per chunk of up to w slots, playing
// the scalar-input role with x = her seed value at that index.
func aliceDriveVectorOLE(ctx *Context, state *AliceState) error {
	conn := ctx.S2
	if err := RecvHello(conn); err != nil {
		return err
	}
	w := ctx.Artifacts.Codes.Luby.InputSymbolSize

	for idx, total := range state.Config.AliceEncoding {
		x := state.Seed[idx]
		lens := chunkLengths(total, w)
		keys := make([]field.Elem, 0, total)

		for _, length := range lens {
			for {
				offerVec, err := RecvVector(conn)
				if err != nil {
					return err
				}
				resp, err := ole.RespondToOffer(ctx.Artifacts.Codes, offerVec, x, ctx.Source)
				if err != nil {
					return err
				}
				if err := SendVector(conn, resp.Vector); err != nil {
					return err
				}
				if err := SendVector(conn, resp.Vector); err != nil {
					return err
				}
				ok, err := RecvVecOLEResult(conn)
				if err != nil {
					return err
				}
				ctx.addVecOLEAttempt(ok)
				if !ok {
					continue
				}
				combined, err := RecvVector(conn)
				if err != nil {
					return err
				}
				chunkKeys := make([]field.Elem, len(combined))
				for i := range chunkKeys {
					chunkKeys[i] = combined[i].Sub(resp.BPrime[i])
				}
				keys = append(keys, chunkKeys[:length]...)
				break
			}
		}
		state.Keys.AliceEncoding[idx] = keys
	}
	return RecvByeBye(conn)
}

// aliceExchangeDAndV is Alice's S3 task: send D = x - G(s), receive
// Bob's v = a·D + b - c.
func aliceExchangeDAndV(ctx *Context, state *AliceState) ([]field.Elem, error) {
	conn := ctx.S3
	if err := RecvHello(conn); err != nil {
		return nil, err
	}
	gs := ctx.Artifacts.Graph.Eval(state.Seed)
	d := make([]field.Elem, len(state.X))
	for i := range d {
		d[i] = state.X[i].Sub(gs[i])
	}
	if err := SendVector(conn, d); err != nil {
		return nil, err
	}
	v, err := RecvVector(conn)
	if err != nil {
		return nil, err
	}
	if err := RecvByeBye(conn); err != nil {
		return nil, err
	}
	return v, nil
}
