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

package vecfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/internal/vecfile"
)

// This file's input is plain decimal text, not a composed Z_p
// operation, so a testify table-driven test fits better than a Ginkgo
// spec built around Describe/Context narration.
func TestLoad(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []field.Elem
	}{
		{name: "empty", in: "", want: nil},
		{name: "single value", in: "42\n", want: []field.Elem{field.New(42)}},
		{name: "multiple lines", in: "1\n2\n3\n", want: []field.Elem{field.New(1), field.New(2), field.New(3)}},
		{name: "whitespace separated", in: "7 8 9", want: []field.Elem{field.New(7), field.New(8), field.New(9)}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := vecfile.Load(strings.NewReader(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := []field.Elem{field.New(0), field.New(1), field.New(uint64(field.P - 1))}

	var buf bytes.Buffer
	require.NoError(t, vecfile.Save(&buf, v))

	got, err := vecfile.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
