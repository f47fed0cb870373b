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
	"net"

	"github.com/getamis/sirius/log"

	"github.com/vecole/pe2/batch"
	"github.com/vecole/pe2/crypto/circuit"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/rng"
)

func cloneConfiguration(conf *garble.Configuration) *garble.Configuration {
	return &garble.Configuration{
		OfflineEncoding: conf.OfflineEncoding,
		AliceEncoding:   append([]int(nil), conf.AliceEncoding...),
		BobEncoding:     append([]int(nil), conf.BobEncoding...),
	}
}

func sampleSeed(n int, source rng.Source) []field.Elem {
	seed := make([]field.Elem, n)
	for i := range seed {
		seed[i] = source.Zp()
	}
	return seed
}

// runAliceLoop repeats the batch-OLE exchange count times against the
// same three connections, each time with a fresh PRG seed, and logs each
// iteration's vector-OLE counts, output length and first output value
// (§6's "count" argument).
func runAliceLoop(
	lg log.Logger,
	artifacts *batch.Artifacts,
	prgCircuit *circuit.Circuit,
	conf *garble.Configuration,
	s1, s2, s3 net.Conn,
	x []field.Elem,
	count int,
) error {
	source := rng.CryptoSource{}
	surrogate := cloneConfiguration(conf)

	for iter := 0; iter < count; iter++ {
		keys := &garble.Keys{}
		keys.ApplyConfiguration(conf)

		state := &batch.AliceState{
			PRGCircuit: prgCircuit,
			Config:     conf,
			Surrogate:  surrogate,
			Keys:       keys,
			Seed:       sampleSeed(artifacts.Graph.InputLength, source),
			X:          x,
		}
		ctx := &batch.Context{Artifacts: artifacts, Source: source, S1: s1, S2: s2, S3: s3}

		z, err := batch.RunAliceBatch(ctx, state)
		if err != nil {
			return err
		}
		lg.Info("batch iteration complete",
			"iteration", iter,
			"vecOLEAttempts", ctx.Stats.VecOLEAttempts,
			"vecOLESuccesses", ctx.Stats.VecOLESuccesses,
			"outputLen", len(z),
			"z0", z[0].String(),
		)
	}
	return nil
}

// runBobLoop is Bob's mirror of runAliceLoop: one fresh KeyPairs garbling
// per iteration against the same fixed a, b inputs.
func runBobLoop(
	lg log.Logger,
	artifacts *batch.Artifacts,
	prgCircuit *circuit.Circuit,
	conf *garble.Configuration,
	s1, s2, s3 net.Conn,
	a, b []field.Elem,
	count int,
) error {
	source := rng.CryptoSource{}

	for iter := 0; iter < count; iter++ {
		c := sampleSeed(len(a), source)
		state := &batch.BobState{
			PRGCircuit: prgCircuit,
			Config:     conf,
			KeyPairs:   &garble.KeyPairs{},
			A:          a,
			B:          b,
		}
		ctx := &batch.Context{Artifacts: artifacts, Source: source, S1: s1, S2: s2, S3: s3}

		if err := batch.RunBobBatch(ctx, state, c); err != nil {
			return err
		}
		lg.Info("batch iteration complete",
			"iteration", iter,
			"vecOLEAttempts", ctx.Stats.VecOLEAttempts,
			"vecOLESuccesses", ctx.Stats.VecOLESuccesses,
		)
	}
	return nil
}
