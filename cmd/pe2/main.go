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

// Command pe2 drives one peer's side of the batch-OLE exchange over
// three TCP connections, per the positional contract:
//
//	pe2 {alice|<ipv4>} port1 port2 port3 luby sparse prg {x | a b} count
//
// "alice" as the first argument means this process listens on the three
// ports and plays Alice; any other value is read as the peer's IPv4
// address and this process dials out three times and plays Bob.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vecole/pe2/batch"
	"github.com/vecole/pe2/config"
	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/goldreich"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/ole"
	"github.com/vecole/pe2/crypto/sparse"
	"github.com/vecole/pe2/internal/vecfile"
	"github.com/vecole/pe2/logger"
)

const (
	minPort  = 1
	maxPort  = 65535
	minCount = 1
	maxCount = 5000000
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "pe2 {alice|<ipv4>} port1 port2 port3 luby sparse prg {x | a b} count",
	Short:         "drives one peer's side of a batch oblivious-linear-evaluation exchange",
	Args:          cobra.MinimumNArgs(8),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML runtime config")
	rootCmd.PersistentFlags().Int("dial-timeout", 0, "override the dial/accept timeout in seconds (0 = use config/default)")
	rootCmd.PersistentFlags().String("log-level", "", "override the runtime log level (trace/debug/info/warn/error/crit)")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(circuit.ErrUnmatchedGateKind); ok {
				logger.Logger().Crit("pe2: invariant violation", "err", r)
				os.Exit(invariantViolationExitCode)
			}
			panic(r)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		logger.Logger().Crit("pe2 failed", "err", err)
		os.Exit(exitCode(err))
	}
}

// loadRuntime loads the YAML config (if any), then applies any
// non-positional --dial-timeout/--log-level overrides bound through
// viper, so a flag always wins over the file and the file always wins
// over the built-in default.
func loadRuntime() config.Runtime {
	rt := config.Default()
	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err != nil {
			logger.Logger().Warn("failed to read config, using defaults", "path", cfgFile, "err", err)
		} else if parsed, err := config.Load(data); err != nil {
			logger.Logger().Warn("failed to parse config, using defaults", "path", cfgFile, "err", err)
		} else {
			rt = parsed
		}
	}
	if v := viper.GetInt("dial-timeout"); v > 0 {
		rt.DialTimeoutSeconds = v
	}
	if v := viper.GetString("log-level"); v != "" {
		rt.LogLevel = v
	}
	return rt
}

func run(cmd *cobra.Command, args []string) error {
	rt := loadRuntime()
	logger.SetLevel(rt.LogLevel)
	lg := logger.Logger()

	isAlice := args[0] == "alice"

	port1, err := parsePort(args[1], "port1")
	if err != nil {
		return err
	}
	port2, err := parsePort(args[2], "port2")
	if err != nil {
		return err
	}
	port3, err := parsePort(args[3], "port3")
	if err != nil {
		return err
	}
	if port1 == port2 || port1 == port3 || port2 == port3 {
		return portCollisionError("pe2: port1, port2, port3 must be mutually distinct, got %d %d %d", port1, port2, port3)
	}

	lubyPath, sparsePath, prgPath := args[4], args[5], args[6]

	var xPath, aPath, bPath string
	var countArg string
	if isAlice {
		if len(args) != 9 {
			return usageError("pe2: alice expects exactly 9 positional args, got %d", len(args))
		}
		xPath, countArg = args[7], args[8]
	} else {
		if len(args) != 10 {
			return usageError("pe2: bob expects exactly 10 positional args, got %d", len(args))
		}
		aPath, bPath, countArg = args[7], args[8], args[9]
	}

	count, err := strconv.Atoi(countArg)
	if err != nil {
		return usageError("pe2: bad count %q", countArg)
	}
	if count < minCount || count > maxCount {
		return countRangeError("pe2: count %d out of range [%d, %d]", count, minCount, maxCount)
	}

	lc, err := loadLuby(lubyPath)
	if err != nil {
		return ioError(fmt.Errorf("pe2: loading luby code: %w", err))
	}
	sc, err := loadSparse(sparsePath)
	if err != nil {
		return ioError(fmt.Errorf("pe2: loading sparse code: %w", err))
	}
	graph, err := loadGraph(prgPath)
	if err != nil {
		return ioError(fmt.Errorf("pe2: loading prg graph: %w", err))
	}

	artifacts := &batch.Artifacts{
		Graph: graph,
		Codes: &ole.Codes{Sparse: sc, Luby: lc},
	}

	prgCircuit := batch.BuildPRGCircuit(graph)
	conf := garble.Configure(prgCircuit)

	dialTimeout := time.Duration(rt.DialTimeoutSeconds) * time.Second

	if isAlice {
		x, err := vecfile.LoadFile(xPath)
		if err != nil {
			return ioError(fmt.Errorf("pe2: loading x: %w", err))
		}
		x = padVector(x, graph.OutputLength)

		s1, s2, s3, err := acceptThree(port1, port2, port3, dialTimeout)
		if err != nil {
			return networkConnectError(fmt.Errorf("pe2: accepting connections: %w", err))
		}
		defer s1.Close()
		defer s2.Close()
		defer s3.Close()

		if err := runAliceLoop(lg, artifacts, prgCircuit, conf, s1, s2, s3, x, count); err != nil {
			return networkProtocolError(err)
		}
		return nil
	}

	a, err := vecfile.LoadFile(aPath)
	if err != nil {
		return ioError(fmt.Errorf("pe2: loading a: %w", err))
	}
	b, err := vecfile.LoadFile(bPath)
	if err != nil {
		return ioError(fmt.Errorf("pe2: loading b: %w", err))
	}
	a = padVector(a, graph.OutputLength)
	b = padVector(b, graph.OutputLength)

	s1, s2, s3, err := dialThree(args[0], port1, port2, port3, dialTimeout)
	if err != nil {
		return networkConnectError(fmt.Errorf("pe2: dialing peer: %w", err))
	}
	defer s1.Close()
	defer s2.Close()
	defer s3.Close()

	if err := runBobLoop(lg, artifacts, prgCircuit, conf, s1, s2, s3, a, b, count); err != nil {
		return networkProtocolError(err)
	}
	return nil
}

// parsePort parses a decimal port number and validates it falls in
// [1, 65535], per the CLI contract's "ports: decimal, 1-65535" rule.
func parsePort(s, name string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageError("pe2: bad %s %q", name, s)
	}
	if p < minPort || p > maxPort {
		return 0, portError("pe2: %s %d out of range [%d, %d]", name, p, minPort, maxPort)
	}
	return p, nil
}

func padVector(v []field.Elem, n int) []field.Elem {
	if len(v) >= n {
		return v[:n]
	}
	out := make([]field.Elem, n)
	copy(out, v)
	return out
}

func loadLuby(path string) (*luby.Code, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return luby.LoadFrom(f)
}

func loadSparse(path string) (*sparse.Code, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sparse.LoadFrom(f)
}

func loadGraph(path string) (*goldreich.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return goldreich.LoadFrom(f)
}

func acceptThree(port1, port2, port3 int, timeout time.Duration) (net.Conn, net.Conn, net.Conn, error) {
	accept := func(port int) (net.Conn, error) {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return nil, err
		}
		defer ln.Close()
		type result struct {
			conn net.Conn
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			conn, err := ln.Accept()
			ch <- result{conn, err}
		}()
		select {
		case r := <-ch:
			if r.err != nil {
				return nil, r.err
			}
			if err := batch.HandshakeAccept(r.conn); err != nil {
				r.conn.Close()
				return nil, err
			}
			return r.conn, nil
		case <-time.After(timeout):
			return nil, fmt.Errorf("pe2: timed out waiting for connection on port %d", port)
		}
	}

	c1, err := accept(port1)
	if err != nil {
		return nil, nil, nil, err
	}
	c2, err := accept(port2)
	if err != nil {
		c1.Close()
		return nil, nil, nil, err
	}
	c3, err := accept(port3)
	if err != nil {
		c1.Close()
		c2.Close()
		return nil, nil, nil, err
	}
	return c1, c2, c3, nil
}

func dialThree(host string, port1, port2, port3 int, timeout time.Duration) (net.Conn, net.Conn, net.Conn, error) {
	dial := func(port int) (net.Conn, error) {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, err
		}
		if err := batch.HandshakeConnect(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}

	c1, err := dial(port1)
	if err != nil {
		return nil, nil, nil, err
	}
	c2, err := dial(port2)
	if err != nil {
		c1.Close()
		return nil, nil, nil, err
	}
	c3, err := dial(port3)
	if err != nil {
		c1.Close()
		c2.Close()
		return nil, nil, nil, err
	}
	return c1, c2, c3, nil
}
