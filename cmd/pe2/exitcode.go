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

package main

import (
	"errors"
	"fmt"
)

// invariantViolationExitCode is the reserved exit code for a panic
// recovered at the top of main: an unmatched gate kind or unknown
// input agent, which indicates a compiler defect rather than a data
// condition and is kept deliberately loud.
const invariantViolationExitCode = -99

// exitError pairs an error with the specific exit code the CLI
// contract promises for its kind (usage, port, count-range, I/O,
// network-connect, network-mid-protocol).
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...interface{}) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

func portError(format string, args ...interface{}) error {
	return &exitError{code: -1, err: fmt.Errorf(format, args...)}
}

func portCollisionError(format string, args ...interface{}) error {
	return &exitError{code: -2, err: fmt.Errorf(format, args...)}
}

func countRangeError(format string, args ...interface{}) error {
	return &exitError{code: -3, err: fmt.Errorf(format, args...)}
}

// ioError wraps a file open/read/write failure encountered before the
// batch protocol starts.
func ioError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: -10, err: err}
}

// networkConnectError wraps a socket create/bind/connect/handshake
// failure.
func networkConnectError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: -11, err: err}
}

// networkProtocolError wraps a send/recv failure once the batch
// protocol is underway.
func networkProtocolError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: -12, err: err}
}

// exitCode extracts the exit code an error was tagged with, or 1
// (generic usage/runtime failure) if it carries none.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
