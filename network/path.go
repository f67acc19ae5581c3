// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"math"

	"cogentcore.org/core/math32/minmax"
)

// Path is a directed connectivity relation from a sending population onto
// an ordered selection of receiving neurons, realized with a fixed in-degree
// pattern.  Connections are stored receiver-major: the senders of receiver
// ri (an index into Recv) are
// Send.St + RConIndex[RConIndexSt[ri] : RConIndexSt[ri]+RConN[ri]].
type Path struct {

	// name of the path, e.g., "ExToAll"
	Name string

	// index in the network's list of paths, also its random stream id
	Index int

	// sending population
	Send *Population

	// receiving neurons, in order
	Recv Selection

	// synapse class applied to every connection
	Syn *SynapseClass

	// connectivity pattern
	Pattern *FixedInDegree

	// number of recv connections for each receiver
	RConN []int32 `display:"-"`

	// average and maximum number of recv connections
	RConNAvgMax minmax.AvgMax32 `display:"inline"`

	// starting index into RConIndex for each receiver
	RConIndexSt []int32 `display:"-"`

	// index of the sender within Send, receiver-major
	RConIndex []int32 `display:"-"`

	// number of sending connections for each neuron in Send
	SConN []int32 `display:"-"`

	// average and maximum number of sending connections (fan-out)
	SConNAvgMax minmax.AvgMax32 `display:"inline"`
}

// NumSyns returns the number of realized connections.
func (pt *Path) NumSyns() int {
	return len(pt.RConIndex)
}

// Built reports whether the connections have been drawn.
func (pt *Path) Built() bool {
	return pt.RConN != nil
}

// Validate checks the path before any connection is drawn.
func (pt *Path) Validate() error {
	emsg := ""
	if pt.Send == nil {
		emsg += "Send is nil; "
	}
	if pt.Syn == nil {
		emsg += "Syn is nil; "
	}
	if pt.Pattern == nil {
		emsg += "Pattern is nil; "
	}
	if emsg != "" {
		return fmt.Errorf("path %s: %s", pt.Name, emsg)
	}
	if err := pt.Syn.Validate(); err != nil {
		return err
	}
	if err := pt.Pattern.Validate(pt.Name, pt.Send.N); err != nil {
		return err
	}
	if nc := int64(len(pt.Recv)) * int64(pt.Pattern.K); nc > math.MaxInt32 {
		return fmt.Errorf("path %s: %w: %d exceeds %d", pt.Name, ErrTooLarge, nc, math.MaxInt32)
	}
	return nil
}

// Build draws the connections and sets up the index arrays.
func (pt *Path) Build(seed int64, threads int) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	cons, err := pt.Pattern.Connect(pt.Name, pt.Send.N, len(pt.Recv), seed, uint64(pt.Index), threads)
	if err != nil {
		return err
	}
	rlen := len(pt.Recv)
	recvn := make([]int32, rlen)
	for ri := range recvn {
		recvn[ri] = int32(pt.Pattern.K)
	}
	pt.SetNIndexSt(&pt.RConN, &pt.RConNAvgMax, &pt.RConIndexSt, recvn)
	pt.RConIndex = cons
	pt.SConN = make([]int32, pt.Send.N)
	for _, si := range cons {
		pt.SConN[si]++
	}
	pt.SConNAvgMax.Init()
	for si, n := range pt.SConN {
		pt.SConNAvgMax.UpdateValue(float32(n), int32(si))
	}
	pt.SConNAvgMax.CalcAvg()
	return nil
}

// SetNIndexSt sets the *ConN and *ConIndexSt values from the per-neuron
// counts in tn.  Returns total number of connections for this direction.
func (pt *Path) SetNIndexSt(n *[]int32, avgmax *minmax.AvgMax32, idxst *[]int32, tn []int32) int32 {
	ln := len(tn)
	*n = make([]int32, ln)
	*idxst = make([]int32, ln)
	idx := int32(0)
	avgmax.Init()
	for i := 0; i < ln; i++ {
		nv := tn[i]
		(*n)[i] = nv
		(*idxst)[i] = idx
		idx += nv
		avgmax.UpdateValue(float32(nv), int32(i))
	}
	avgmax.CalcAvg()
	return idx
}

// RecvSenders returns the global ids of the senders onto receiver ri
// (an index into Recv).
func (pt *Path) RecvSenders(ri int) Selection {
	st := pt.RConIndexSt[ri]
	nc := pt.RConN[ri]
	sl := make(Selection, nc)
	for i, si := range pt.RConIndex[st : st+nc] {
		sl[i] = int32(pt.Send.St) + si
	}
	return sl
}

// String satisfies fmt.Stringer for path
func (pt *Path) String() string {
	str := fmt.Sprintf("%d recv <- ", len(pt.Recv))
	if pt.Send == nil {
		str += "send=nil"
	} else {
		str += pt.Send.Name
	}
	if pt.Pattern == nil {
		str += " Pat=nil"
	} else {
		str += fmt.Sprintf(" Pat=%s(%d)", pt.Pattern.Name(), pt.Pattern.K)
	}
	return str
}
