// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import "fmt"

// SynTypes distinguishes the two synapse classes of the network.
type SynTypes int32

const (
	// Excitatory synapses carry a positive current weight.
	Excitatory SynTypes = iota

	// Inhibitory synapses carry a negative current weight.
	Inhibitory
)

func (st SynTypes) String() string {
	switch st {
	case Excitatory:
		return "Excitatory"
	case Inhibitory:
		return "Inhibitory"
	}
	return fmt.Sprintf("SynTypes(%d)", int32(st))
}

// SynapseClass is a named template applied uniformly to all synapses
// of that class.  The sign of Weight encodes the current direction.
type SynapseClass struct {

	// name of the class, e.g., "excitatory"
	Name string

	// base synapse model the class derives from
	Base string

	// intended type, used to flag weights of the wrong sign
	Type SynTypes

	// synaptic current weight, in pA
	Weight float64

	// transmission delay, in ms
	Delay float64
}

// Validate checks that the delay is positive.
// A weight whose sign does not match Type is not an error here,
// see SignOK.
func (sc *SynapseClass) Validate() error {
	if !(sc.Delay > 0) {
		return fmt.Errorf("synapse class %q: delay = %v must be > 0", sc.Name, sc.Delay)
	}
	return nil
}

// SignOK reports whether the weight sign matches the class type.
func (sc *SynapseClass) SignOK() bool {
	if sc.Type == Inhibitory {
		return sc.Weight < 0
	}
	return sc.Weight > 0
}
