// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"slices"

	"cogentcore.org/lab/base/randx"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of consecutive targets sharing one random
// stream.  Chunks are the unit of parallel work, and because the chunk
// boundaries do not depend on the number of threads, neither does the
// resulting edge set.
const ChunkSize = 512

// FixedInDegree connects every receiving neuron to exactly K distinct
// sending neurons drawn uniformly at random, independently per receiver.
// Senders may be shared across receivers (fan-out is unconstrained).
type FixedInDegree struct {

	// number of distinct senders per receiver
	K int
}

func NewFixedInDegree(k int) *FixedInDegree {
	return &FixedInDegree{K: k}
}

func (fd *FixedInDegree) Name() string { return "FixedInDegree" }

// Validate returns an *InvalidDegreeError if K senders cannot be drawn
// without replacement from nSend neurons.
func (fd *FixedInDegree) Validate(path string, nSend int) error {
	if fd.K < 0 || fd.K > nSend {
		return &InvalidDegreeError{Path: path, InDegree: fd.K, NSend: nSend}
	}
	return nil
}

// Connect draws the senders for nRecv receivers, returning them as a flat
// receiver-major list of sender indexes (0..nSend-1), K per receiver,
// each receiver's senders in ascending order.  seed and stream select
// the random streams: the same (seed, stream) always yields the same
// list, for any number of threads.
func (fd *FixedInDegree) Connect(path string, nSend, nRecv int, seed int64, stream uint64, threads int) ([]int32, error) {
	if err := fd.Validate(path, nSend); err != nil {
		return nil, err
	}
	k := fd.K
	cons := make([]int32, nRecv*k)
	if k == 0 || nRecv == 0 {
		return cons, nil
	}
	nchunk := (nRecv + ChunkSize - 1) / ChunkSize
	var eg errgroup.Group
	eg.SetLimit(max(threads, 1))
	for ci := range nchunk {
		eg.Go(func() error {
			rnd := randx.NewSysRand(StreamSeed(seed, stream, uint64(ci)))
			mark := make([]bool, nSend)
			st := ci * ChunkSize
			ed := min(st+ChunkSize, nRecv)
			for ri := st; ri < ed; ri++ {
				rc := cons[ri*k : (ri+1)*k]
				sampleDistinct(nSend, rc, rnd, mark)
				slices.Sort(rc)
			}
			return nil
		})
	}
	return cons, eg.Wait()
}

// sampleDistinct fills out with len(out) distinct values from [0, n),
// uniformly over all subsets, using Floyd's algorithm.  mark is scratch
// space of length n that must be all false, and is left all false.
func sampleDistinct(n int, out []int32, rnd randx.Rand, mark []bool) {
	k := len(out)
	i := 0
	for j := n - k; j < n; j++ {
		t := rnd.Intn(j + 1)
		if mark[t] {
			t = j
		}
		mark[t] = true
		out[i] = int32(t)
		i++
	}
	for _, s := range out {
		mark[s] = false
	}
}

// StreamSeed derives the seed of one random stream from the base seed,
// a stream id (e.g., the path index) and a chunk index.
func StreamSeed(seed int64, stream, chunk uint64) int64 {
	h := splitMix64(uint64(seed))
	h = splitMix64(h ^ stream)
	h = splitMix64(h ^ chunk)
	return int64(h >> 1)
}

func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
