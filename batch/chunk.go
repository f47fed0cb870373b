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

import "github.com/vecole/pe2/crypto/field"

// chunkLengths splits total key-pair slots into chunks of at most w, the
// vector-OLE code's fixed input-symbol size (§4.9: "one vector-OLE per
// chunk of up to w per Alice input index").
func chunkLengths(total, w int) []int {
	if total == 0 {
		return nil
	}
	n := (total + w - 1) / w
	out := make([]int, n)
	remaining := total
	for i := range out {
		if remaining >= w {
			out[i] = w
		} else {
			out[i] = remaining
		}
		remaining -= out[i]
	}
	return out
}

// padToWidth returns a copy of v zero-padded (or truncated) to exactly
// width elements, since the codes backing a vector-OLE invocation are
// sized for a fixed w.
func padToWidth(v []field.Elem, width int) []field.Elem {
	out := make([]field.Elem, width)
	copy(out, v)
	return out
}
