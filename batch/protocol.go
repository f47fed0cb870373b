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

// Package batch drives the three-socket batch-OLE exchange: one TCP
// connection per logical channel (Bob's key stream, the vector-OLE
// traffic, and the D/v roundtrip), each bracketed by a ping/pong
// handshake and hello/bye-bye frame tags.
package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/vecole/pe2/crypto/field"
)

// Frame tags, exact per the on-wire contract: both peers must observe
// these byte-identically, which doubles as an endianness sanity check
// since every value is written little-endian.
const (
	TagHello        uint64 = 0x4242424242424242
	TagByeBye       uint64 = 0x8888888888888888
	TagVecOLESucc   uint64 = 0x6666666666666666
	TagVecOLEFail   uint64 = 0
	TagPing         uint64 = 0x42de0135245310ed
	TagPong         uint64 = 0x4201356738573920
)

// ErrProtocol reports a misaligned stream: a tag or handshake value
// didn't match what the wire contract requires. Treated the same as a
// NetworkError per §7 — the offending channel's task records it and
// aborts.
var ErrProtocol = errors.New("batch: protocol framing mismatch")

func sendUint64(conn net.Conn, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := conn.Write(buf[:])
	return err
}

func recvUint64(conn net.Conn) (uint64, error) {
	var buf [8]byte
	if _, err := readFull(conn, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// HandshakeConnect performs the connecting side's half of the ping/pong
// handshake: send Ping, expect Pong.
func HandshakeConnect(conn net.Conn) error {
	if err := sendUint64(conn, TagPing); err != nil {
		return err
	}
	v, err := recvUint64(conn)
	if err != nil {
		return err
	}
	if v != TagPong {
		return fmt.Errorf("%w: expected pong, got %#x", ErrProtocol, v)
	}
	return nil
}

// HandshakeAccept performs the listening side's half: expect Ping, send
// Pong.
func HandshakeAccept(conn net.Conn) error {
	v, err := recvUint64(conn)
	if err != nil {
		return err
	}
	if v != TagPing {
		return fmt.Errorf("%w: expected ping, got %#x", ErrProtocol, v)
	}
	return sendUint64(conn, TagPong)
}

// SendHello writes the channel-open frame tag.
func SendHello(conn net.Conn) error { return sendUint64(conn, TagHello) }

// RecvHello reads and validates the channel-open frame tag.
func RecvHello(conn net.Conn) error {
	v, err := recvUint64(conn)
	if err != nil {
		return err
	}
	if v != TagHello {
		return fmt.Errorf("%w: expected hello, got %#x", ErrProtocol, v)
	}
	return nil
}

// SendByeBye writes the channel-close frame tag.
func SendByeBye(conn net.Conn) error { return sendUint64(conn, TagByeBye) }

// RecvByeBye reads and validates the channel-close frame tag.
func RecvByeBye(conn net.Conn) error {
	v, err := recvUint64(conn)
	if err != nil {
		return err
	}
	if v != TagByeBye {
		return fmt.Errorf("%w: expected bye-bye, got %#x", ErrProtocol, v)
	}
	return nil
}

// SendVecOLEResult writes the vector-OLE success/fail tag.
func SendVecOLEResult(conn net.Conn, ok bool) error {
	if ok {
		return sendUint64(conn, TagVecOLESucc)
	}
	return sendUint64(conn, TagVecOLEFail)
}

// RecvVecOLEResult reads the vector-OLE success/fail tag.
func RecvVecOLEResult(conn net.Conn) (bool, error) {
	v, err := recvUint64(conn)
	if err != nil {
		return false, err
	}
	switch v {
	case TagVecOLESucc:
		return true, nil
	case TagVecOLEFail:
		return false, nil
	default:
		return false, fmt.Errorf("%w: unexpected vector-OLE result tag %#x", ErrProtocol, v)
	}
}

// SendVector writes a length-prefixed vector of field elements: a 4-byte
// count followed by that many 4-byte little-endian words.
func SendVector(conn net.Conn, v []field.Elem) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return err
	}
	buf := make([]byte, 4*len(v))
	for i, e := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(e))
	}
	_, err := conn.Write(buf)
	return err
}

// RecvVector reads a length-prefixed vector of field elements written by
// SendVector.
func RecvVector(conn net.Conn) ([]field.Elem, error) {
	var lenBuf [4]byte
	if _, err := readFull(conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, 4*n)
	if _, err := readFull(conn, buf); err != nil {
		return nil, err
	}
	out := make([]field.Elem, n)
	for i := range out {
		out[i] = field.FromUint32(binary.LittleEndian.Uint32(buf[i*4:]) % field.P)
	}
	return out, nil
}

// SkipVector discards a length-prefixed vector without materializing it,
// the Go analogue of the source's MSG_TRUNC-based Skip: used to emulate
// the Oblivious Transfer decoy leg of the vector-OLE exchange (§4.8 step
// 4), where Bob must receive and discard a same-size vector from Alice.
func SkipVector(conn net.Conn) error {
	var lenBuf [4]byte
	if _, err := readFull(conn, lenBuf[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, 4096)
	remaining := int(n) * 4
	for remaining > 0 {
		chunk := len(buf)
		if remaining < chunk {
			chunk = remaining
		}
		got, err := readFull(conn, buf[:chunk])
		remaining -= got
		if err != nil {
			return err
		}
	}
	return nil
}
