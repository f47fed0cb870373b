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

// Package rng provides the injectable randomness source used throughout
// the batch-OLE protocol: every sampling step (erasure masks, LT/sparse
// code construction, garbler blinding, seeds) draws from a Source rather
// than touching a global generator, so the same code path can run against
// crypto/rand in production and a reproducible stream in tests.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/minio/blake2b-simd"
	"github.com/vecole/pe2/crypto/field"
)

// Source produces uniform 32-bit words and, from them, uniform Z_p
// elements via rejection sampling (values in [P, 2^32) are redrawn so
// every residue class below P is equally likely).
type Source interface {
	Uint32() uint32
	Zp() field.Elem
}

// zpFrom bounds the rejection-sampling loop: 2^32 mod P is small relative
// to P, so in practice a redraw is needed on roughly 1 in 2^30 samples.
func zpFrom(next func() uint32) field.Elem {
	const limit = (1 << 32) - (1<<32)%uint64(field.P)
	for {
		v := next()
		if uint64(v) < limit {
			return field.FromUint32(v % field.P)
		}
	}
}

// CryptoSource draws from crypto/rand. This is the production source used
// by pe2, goldgen, ltgen and sparsegen.
type CryptoSource struct{}

// Uint32 returns a uniform 32-bit word from the operating system CSPRNG.
func (CryptoSource) Uint32() uint32 {
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// Zp returns a uniform element of Z_p.
func (s CryptoSource) Zp() field.Elem {
	return zpFrom(s.Uint32)
}

// DeterministicSource expands a caller-supplied seed into an unbounded,
// reproducible stream of 32-bit words using BLAKE2b in counter mode: word
// i is the first four bytes of BLAKE2b-256(seed || i). This mirrors the
// teacher's use of blake2b-simd for the half-gates hash construction
// (crypto/circuit's h()/sigma()), repurposed here as a keyed expansion
// function instead of a garbling hash. Tests use this so
// failures reproduce exactly from a logged seed.
type DeterministicSource struct {
	seed    []byte
	counter uint64
}

// NewDeterministicSource builds a source keyed on seed. Distinct seeds
// produce distinct, uncorrelated streams; the same seed always reproduces
// the same stream.
func NewDeterministicSource(seed []byte) *DeterministicSource {
	cp := make([]byte, len(seed))
	copy(cp, seed)
	return &DeterministicSource{seed: cp}
}

// Uint32 returns the next word of the expanded stream.
func (s *DeterministicSource) Uint32() uint32 {
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], s.counter)
	s.counter++
	h := blake2b.New256()
	h.Write(s.seed)
	h.Write(ctr[:])
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint32(sum[:4])
}

// Zp returns the next uniform element of Z_p drawn from the expanded
// stream.
func (s *DeterministicSource) Zp() field.Elem {
	return zpFrom(s.Uint32)
}
