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

package batch_test

import (
	"net"
	"sync"
	"testing"

	"github.com/vecole/pe2/batch"
	"github.com/vecole/pe2/crypto/field"
	"github.com/vecole/pe2/crypto/garble"
	"github.com/vecole/pe2/crypto/goldreich"
	"github.com/vecole/pe2/crypto/luby"
	"github.com/vecole/pe2/crypto/ole"
	"github.com/vecole/pe2/crypto/rng"
	"github.com/vecole/pe2/crypto/sparse"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestBatch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "batch suite")
}

func cloneConfiguration(conf *garble.Configuration) *garble.Configuration {
	return &garble.Configuration{
		OfflineEncoding: conf.OfflineEncoding,
		AliceEncoding:   append([]int(nil), conf.AliceEncoding...),
		BobEncoding:     append([]int(nil), conf.BobEncoding...),
	}
}

func buildArtifacts() *batch.Artifacts {
	graphSource := rng.NewDeterministicSource([]byte("batch-graph"))
	graph := &goldreich.Graph{A: 3, B: 3, InputLength: 20, OutputLength: 5}
	graph.Resample(graphSource)

	codeSource := rng.NewDeterministicSource([]byte("batch-codes"))
	const w = 8
	dist := luby.NewDistribution(w, 0.5, 0.01)
	lc := luby.Build(dist, codeSource)

	sc := &sparse.Code{K: 20, D: 6, U: 32, V: dist.V()}
	sc.Resample(codeSource)

	return &batch.Artifacts{
		Graph: graph,
		Codes: &ole.Codes{Sparse: sc, Luby: lc},
	}
}

var _ = Describe("batch-OLE driver", func() {
	It("lets Alice recover z = a*x+b end to end over three pipe connections", func() {
		artifacts := buildArtifacts()
		prgCircuit := batch.BuildPRGCircuit(artifacts.Graph)
		conf := garble.Configure(prgCircuit)

		aliceSource := rng.NewDeterministicSource([]byte("batch-alice"))
		bobSource := rng.NewDeterministicSource([]byte("batch-bob"))

		m := artifacts.Graph.OutputLength
		x := make([]field.Elem, m)
		a := make([]field.Elem, m)
		b := make([]field.Elem, m)
		c := make([]field.Elem, m)
		for i := 0; i < m; i++ {
			x[i] = aliceSource.Zp()
			a[i] = bobSource.Zp()
			b[i] = bobSource.Zp()
			c[i] = bobSource.Zp()
		}

		seed := make([]field.Elem, artifacts.Graph.InputLength)
		for i := range seed {
			seed[i] = aliceSource.Zp()
		}

		aliceKeys := &garble.Keys{}
		aliceKeys.ApplyConfiguration(conf)
		aliceState := &batch.AliceState{
			PRGCircuit: prgCircuit,
			Config:     conf,
			Surrogate:  cloneConfiguration(conf),
			Keys:       aliceKeys,
			Seed:       seed,
			X:          x,
		}
		bobState := &batch.BobState{
			PRGCircuit: prgCircuit,
			Config:     conf,
			KeyPairs:   &garble.KeyPairs{},
			A:          a,
			B:          b,
		}

		aliceS1, bobS1 := net.Pipe()
		aliceS2, bobS2 := net.Pipe()
		aliceS3, bobS3 := net.Pipe()

		aliceCtx := &batch.Context{Artifacts: artifacts, Source: aliceSource, S1: aliceS1, S2: aliceS2, S3: aliceS3}
		bobCtx := &batch.Context{Artifacts: artifacts, Source: bobSource, S1: bobS1, S2: bobS2, S3: bobS3}

		var wg sync.WaitGroup
		wg.Add(2)

		var z []field.Elem
		var aliceErr, bobErr error
		go func() {
			defer wg.Done()
			z, aliceErr = batch.RunAliceBatch(aliceCtx, aliceState)
		}()
		go func() {
			defer wg.Done()
			bobErr = batch.RunBobBatch(bobCtx, bobState, c)
		}()
		wg.Wait()

		Expect(bobErr).ShouldNot(HaveOccurred())
		Expect(aliceErr).ShouldNot(HaveOccurred())
		Expect(z).Should(HaveLen(m))
		for i := 0; i < m; i++ {
			want := a[i].Mul(x[i]).Add(b[i])
			Expect(z[i]).Should(Equal(want))
		}
	})
})
