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

// RunBobBatch executes one batch-OLE iteration from Bob's side: fresh
// KeyPairs are garbled, then the three foreground tasks stream Bob's
// evaluated keys, service Alice's vector-OLE requests, and exchange D/v
// concurrently (§4.9, §5).
func RunBobBatch(ctx *Context, state *BobState, c []field.Elem) error {
	state.KeyPairs.ApplyConfiguration(state.Config)
	garble.Garble(state.PRGCircuit, state.KeyPairs, ctx.Source)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if err := bobSendKeys(ctx, state, c); err != nil {
			ctx.setS1Err(fmt.Errorf("S1: %w", err))
		}
	}()

	go func() {
		defer wg.Done()
		if err := bobServiceVectorOLE(ctx, state); err != nil {
			ctx.setS2Err(fmt.Errorf("S2: %w", err))
		}
	}()

	go func() {
		defer wg.Done()
		if err := bobExchangeDAndV(ctx, state, c); err != nil {
			ctx.setS3Err(fmt.Errorf("S3: %w", err))
		}
	}()

	wg.Wait()
	return ctx.Join()
}

// bobSendKeys is Bob's S1 task: evaluate his own keys directly from the
// fresh KeyPairs (coefficient*input+intercept) and stream them, one
// vector per Bob input major index. Major indices [0,M) are the a[i]
// inputs to the PRG circuit; [M,2M) are the c[i] inputs.
func bobSendKeys(ctx *Context, state *BobState, c []field.Elem) error {
	conn := ctx.S1
	if err := SendHello(conn); err != nil {
		return err
	}
	m := len(state.A)
	for idx := range state.KeyPairs.BobCoefficient {
		var input field.Elem
		if idx < m {
			input = state.A[idx]
		} else {
			input = c[idx-m]
		}
		keys := garble.EvaluateKeys(state.KeyPairs.BobCoefficient[idx], state.KeyPairs.BobIntercept[idx], input)
		if err := SendVector(conn, keys); err != nil {
			return err
		}
	}
	return SendByeBye(conn)
}

// bobServiceVectorOLE is Bob's S2 task: for each Alice input major
// index, run one vector-OLE per chunk of up to w slots, playing the
// vector-holder role with (a,b) = the coefficient/intercept chunk.
func bobServiceVectorOLE(ctx *Context, state *BobState) error {
	conn := ctx.S2
	if err := SendHello(conn); err != nil {
		return err
	}
	w := ctx.Artifacts.Codes.Luby.InputSymbolSize

	for idx, coeffs := range state.KeyPairs.AliceCoefficient {
		intercepts := state.KeyPairs.AliceIntercept[idx]
		total := len(coeffs)
		offset := 0
		for _, length := range chunkLengths(total, w) {
			coeffChunk := padToWidth(coeffs[offset:offset+length], w)
			interceptChunk := padToWidth(intercepts[offset:offset+length], w)
			offset += length

			for {
				offer, err := ole.PrepareOffer(ctx.Artifacts.Codes, coeffChunk, ctx.Source)
				if err != nil {
					return err
				}
				if err := SendVector(conn, offer.Vector); err != nil {
					return err
				}
				if err := SkipVector(conn); err != nil {
					return err
				}
				response, err := RecvVector(conn)
				if err != nil {
					return err
				}
				recovered, err := ole.RecoverBobShare(ctx.Artifacts.Codes, offer, response)
				if err == ole.ErrDecodeFailure {
					ctx.addVecOLEAttempt(false)
					if err := SendVecOLEResult(conn, false); err != nil {
						return err
					}
					continue
				}
				if err != nil {
					return err
				}
				ctx.addVecOLEAttempt(true)
				if err := SendVecOLEResult(conn, true); err != nil {
					return err
				}
				combined := ole.CombineBobShare(recovered, interceptChunk)
				if err := SendVector(conn, combined); err != nil {
					return err
				}
				break
			}
		}
	}
	return SendByeBye(conn)
}

// bobExchangeDAndV is Bob's S3 task: receive Alice's D = x - G(s),
// compute v = a·D + b - c, and send it.
func bobExchangeDAndV(ctx *Context, state *BobState, c []field.Elem) error {
	conn := ctx.S3
	if err := SendHello(conn); err != nil {
		return err
	}
	d, err := RecvVector(conn)
	if err != nil {
		return err
	}
	v := make([]field.Elem, len(d))
	for i := range v {
		v[i] = state.A[i].Mul(d[i]).Add(state.B[i]).Sub(c[i])
	}
	if err := SendVector(conn, v); err != nil {
		return err
	}
	return SendByeBye(conn)
}
