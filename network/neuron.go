// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import "fmt"

// ModelIAFPSCAlpha is the only neuron model name used by the network:
// a leaky integrate-and-fire neuron with alpha-shaped postsynaptic currents.
const ModelIAFPSCAlpha = "iaf_psc_alpha"

// NeuronParams are the homogeneous model parameters of a population.
// Potentials are in mV, times in ms, capacitance in pF, current in pA.
type NeuronParams struct {

	// membrane capacitance
	CMem float64 `default:"250"`

	// membrane time constant
	TauMem float64 `default:"20"`

	// rise time of the excitatory alpha current
	TauSynEx float64 `default:"0.5"`

	// rise time of the inhibitory alpha current
	TauSynIn float64 `default:"0.5"`

	// absolute refractory period
	TRef float64 `default:"2"`

	// resting potential
	EL float64 `default:"0"`

	// reset potential, absolute
	VReset float64 `default:"0"`

	// initial membrane potential, absolute
	VInit float64 `default:"0"`

	// spike threshold, absolute
	VTh float64 `default:"20"`

	// constant external input current
	IE float64 `default:"0"`
}

func (np *NeuronParams) Defaults() {
	np.CMem = 250
	np.TauMem = 20
	np.TauSynEx = 0.5
	np.TauSynIn = 0.5
	np.TRef = 2
	np.EL = 0
	np.VReset = 0
	np.VInit = 0
	np.VTh = 20
	np.IE = 0
}

// Validate checks that the parameters describe a usable neuron.
func (np *NeuronParams) Validate() error {
	switch {
	case !(np.CMem > 0):
		return fmt.Errorf("neuron params: CMem = %v must be > 0", np.CMem)
	case !(np.TauMem > 0):
		return fmt.Errorf("neuron params: TauMem = %v must be > 0", np.TauMem)
	case !(np.TauSynEx > 0) || !(np.TauSynIn > 0):
		return fmt.Errorf("neuron params: TauSynEx = %v, TauSynIn = %v must be > 0", np.TauSynEx, np.TauSynIn)
	case np.TRef < 0:
		return fmt.Errorf("neuron params: TRef = %v must be >= 0", np.TRef)
	case !(np.VTh > np.VReset):
		return fmt.Errorf("neuron params: VTh = %v must be above VReset = %v", np.VTh, np.VReset)
	}
	return nil
}

// Theta returns the threshold relative to rest.
func (np *NeuronParams) Theta() float64 {
	return np.VTh - np.EL
}
