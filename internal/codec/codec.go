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

// Package codec holds the shared whitespace-delimited decimal text format
// used by every persisted artifact (LT code, sparse code, PRG graph):
// a header of counts, followed by payload fields, all separated by
// whitespace. This mirrors the source's tiny helpers.hpp, which offered
// the same two primitives (SaveSizeTRange/LoadSizeTRange) to every
// artifact's own SaveTo/LoadFrom.
package codec

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ErrChecksumMismatch is returned by NewChecksummedIntScanner when the
// leading checksum line doesn't match the payload that follows it,
// meaning the artifact file was truncated or corrupted in transit.
var ErrChecksumMismatch = errors.New("codec: artifact checksum mismatch")

// WriteInts writes one or more int slices to w, space-separated within a
// group and newline-separated between groups, matching the "header line,
// then payload lines" shape every artifact format uses.
func WriteInts(w io.Writer, groups ...[]int) error {
	bw := bufio.NewWriter(w)
	for _, g := range groups {
		for i, v := range g {
			if i > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%d", v); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// IntScanner reads a whitespace/newline-delimited stream of decimal
// integers one at a time, without caring where line breaks fall — the
// source format is whitespace-delimited, not line-structured.
type IntScanner struct {
	sc *bufio.Scanner
}

// NewIntScanner wraps r for sequential integer reads.
func NewIntScanner(r io.Reader) *IntScanner {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	return &IntScanner{sc: sc}
}

// Next reads the next integer field.
func (s *IntScanner) Next() (int, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	var v int
	if _, err := fmt.Sscanf(s.sc.Text(), "%d", &v); err != nil {
		return 0, fmt.Errorf("codec: malformed integer field %q: %w", s.sc.Text(), err)
	}
	return v, nil
}

// WriteIntsChecksummed writes the same format as WriteInts, preceded by a
// hex BLAKE2b-256 checksum line over the payload that follows it, so a
// truncated or bit-flipped artifact file is caught at load time instead of
// silently feeding a wrong decode.
func WriteIntsChecksummed(w io.Writer, groups ...[]int) error {
	var buf bytes.Buffer
	if err := WriteInts(&buf, groups...); err != nil {
		return err
	}
	sum := blake2b.Sum256(buf.Bytes())
	if _, err := fmt.Fprintf(w, "%s\n", hex.EncodeToString(sum[:])); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// NewChecksummedIntScanner reads and verifies the checksum line written by
// WriteIntsChecksummed, then returns an IntScanner over the verified
// payload that follows it.
func NewChecksummedIntScanner(r io.Reader) (*IntScanner, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("codec: reading checksum line: %w", err)
	}
	want, err := hex.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("codec: malformed checksum line: %w", err)
	}
	payload, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	got := blake2b.Sum256(payload)
	if !bytes.Equal(got[:], want) {
		return nil, ErrChecksumMismatch
	}
	return NewIntScanner(bytes.NewReader(payload)), nil
}
