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

// Package erasure samples an exact-count erasure mask over a boolean
// "kept" region via rejection sampling.
package erasure

import (
	"errors"

	"github.com/vecole/pe2/crypto/rng"
)

// ErrTooManyErasures is returned when k exceeds the number of positions
// still marked kept in notErased.
var ErrTooManyErasures = errors.New("erasure: k exceeds the number of kept positions")

// EraseExact flips exactly k of the true entries in notErased to false,
// chosen uniformly without replacement, by repeatedly sampling a random
// index in [0, len(notErased)) and retrying on a miss or an
// already-cleared hit. This never touches memory outside notErased and
// needs no side storage, at the cost of an expected
// O(n log n / (n-k)) number of draws.
func EraseExact(notErased []bool, k int, source rng.Source) error {
	n := len(notErased)
	kept := 0
	for _, b := range notErased {
		if b {
			kept++
		}
	}
	if k > kept {
		return ErrTooManyErasures
	}
	for k != 0 {
		idx := int(source.Uint32() % uint32(n))
		if notErased[idx] {
			notErased[idx] = false
			k--
		}
	}
	return nil
}
