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

// Package ole implements the single-scalar vector-OLE subprotocol: Alice
// holds x ∈ Z_p, Bob holds a,b ∈ Z_p^w, and the exchange lets Alice alone
// learn z = x·a+b.
//
// The exchange rides on the composite erasure-correcting code from
// crypto/sparse (K inputs -> U codeword symbols) paired with an LT code
// from crypto/luby (w -> V codeword symbols): Bob ships a noised
// codeword, Alice returns it scaled and re-masked, and Bob peels off his
// own mask to recover the scaled vectors without ever learning x, while
// Alice never learns a or b directly — only their combination through
// the codes. The "Oblivious Transfer" mentioned in the message flow is
// not implemented as a real OT: per the non-goals this package only
// emulates its traffic shape (an extra same-size vector is exchanged and
// discarded) so the socket framing matches a design that, with a genuine
// OT primitive substituted in, would be secure against a malicious
// receiver.
package ole

import (
	"errors"

	"github.com/vecole/pe2/crypto/erasure"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/crypto/sparse"
)

// ErrDecodeFailure reports that Bob's reconstruction of the masked
// vectors failed — a non-fatal, retryable condition per §7's
// DecodeFailure kind: the caller should resample and retry the same
// chunk.
var ErrDecodeFailure = errors.New("ole: decode failure, retry this chunk")

// Codes bundles the two erasure-correcting codes the exchange rides on.
// Sparse.K is the size of the random masking vector r; Sparse.U+Sparse.V
// is the codeword length; Luby.InputSymbolSize must equal w, the length
// of Bob's a and b.
type Codes struct {
	Sparse *sparse.Code
	Luby   *luby.Code
}

func (c *Codes) codewordLen() int { return c.Sparse.U + c.Sparse.V }

// BobOffer is the first message Bob sends: a noised codeword of
// E(r,a)-with-lower-LT-part, length U+V.
type BobOffer struct {
	Vector []field.Elem
	Mask   []bool // true where the position was left un-noised ("not noisy")
	R      []field.Elem
}

// PrepareOffer runs Bob's step 1-3 of §4.8: sample r and a noise mask,
// encode (r,a) through the composite code, and overwrite noisy positions
// with fresh uniform values.
func PrepareOffer(codes *Codes, a []field.Elem, source rng.Source) (*BobOffer, error) {
	K, U, V := codes.Sparse.K, codes.Sparse.U, codes.Sparse.V
	r := make([]field.Elem, K)
	for i := range r {
		r[i] = source.Zp()
	}

	mask := make([]bool, U+V)
	for i := range mask {
		mask[i] = true
	}
	if err := erasure.EraseExact(mask[:U], U/4, source); err != nil {
		return nil, err
	}
	if err := erasure.EraseExact(mask[U:], V/4, source); err != nil {
		return nil, err
	}

	vec := make([]field.Elem, U+V)
	codes.Sparse.EncodeUpperPart(vec[:U], mask[:U], r)
	codes.Sparse.EncodeLowerPart(vec[U:], mask[U:], r)
	codes.Luby.Encode(vec[U:], mask[U:], a)

	for i, keep := range mask {
		if !keep {
			vec[i] = source.Zp()
		}
	}
	return &BobOffer{Vector: vec, Mask: mask, R: r}, nil
}

// AliceResponse is the vector Alice returns after scaling Bob's offer by
// x and layering on her own fresh masking contribution.
type AliceResponse struct {
	Vector []field.Elem
	RPrime []field.Elem
	BPrime []field.Elem
}

// RespondToOffer runs Alice's steps 1-3: scale the received offer by x,
// then additively mask it with a fresh E(r',0) on the upper part and
// LT(0,b') on the lower part.
func RespondToOffer(codes *Codes, offer []field.Elem, x field.Elem, source rng.Source) (*AliceResponse, error) {
	K, U, V, w := codes.Sparse.K, codes.Sparse.U, codes.Sparse.V, codes.Luby.InputSymbolSize
	scaled := make([]field.Elem, len(offer))
	for i, v := range offer {
		scaled[i] = v.Mul(x)
	}

	rPrime := make([]field.Elem, K)
	for i := range rPrime {
		rPrime[i] = source.Zp()
	}
	bPrime := make([]field.Elem, w)
	for i := range bPrime {
		bPrime[i] = source.Zp()
	}

	allKept := make([]bool, U+V)
	for i := range allKept {
		allKept[i] = true
	}
	codes.Sparse.EncodeUpperPart(scaled[:U], allKept[:U], rPrime)
	codes.Sparse.EncodeLowerPart(scaled[U:], allKept[U:], rPrime)
	codes.Luby.Encode(scaled[U:], allKept[U:], bPrime)

	return &AliceResponse{Vector: scaled, RPrime: rPrime, BPrime: bPrime}, nil
}

// RecoverBobShare is Bob's steps 6-7. Because both codes are linear,
// Alice's response upper part equals E_upper(x·r+r') wherever Bob's own
// mask kept a position (the noisy positions carry no information and
// are skipped by the decoder), so Gaussian elimination recovers x·r+r'
// directly — without Bob ever needing to know x. Re-encoding that
// recovered vector through the sparse code's lower rows and subtracting
// it from the response's lower part cancels the matching x·r+r'
// contribution there, leaving x·a+b', which the LT code then decodes.
// It returns ErrDecodeFailure (never a fatal error) on either decode
// failing, per the retry policy of §4.9/§7.
func RecoverBobShare(codes *Codes, offer *BobOffer, response []field.Elem) ([]field.Elem, error) {
	U, V := codes.Sparse.U, codes.Sparse.V

	xrPlusRPrime, ok := codes.Sparse.DecodeFromUpperPartDestructive(response[:U], offer.Mask[:U])
	if !ok {
		return nil, ErrDecodeFailure
	}

	lowerAdjustment := make([]field.Elem, V)
	allKept := make([]bool, V)
	for i := range allKept {
		allKept[i] = true
	}
	codes.Sparse.EncodeLowerPart(lowerAdjustment, allKept, xrPlusRPrime)

	lower := make([]field.Elem, V)
	for i := range lower {
		lower[i] = response[U+i].Sub(lowerAdjustment[i])
	}

	decoded, ok := codes.Luby.DecodeDestructive(lower, offer.Mask[U:])
	if !ok {
		return nil, ErrDecodeFailure
	}
	return decoded, nil
}

// FinalizeAlice is Alice's step 5: given Bob's (x·a+b+b') share, subtract
// the locally-known b' to recover x·a+b.
func FinalizeAlice(bobShare []field.Elem, bPrime []field.Elem) []field.Elem {
	out := make([]field.Elem, len(bobShare))
	for i := range out {
		out[i] = bobShare[i].Sub(bPrime[i])
	}
	return out
}

// CombineBobShare is Bob's final step: add his own b to the recovered
// x·a+b' share to produce the value sent back to Alice (x·a+b+b').
func CombineBobShare(recovered []field.Elem, b []field.Elem) []field.Elem {
	out := make([]field.Elem, len(recovered))
	for i := range out {
		out[i] = recovered[i].Add(b[i])
	}
	return out
}
