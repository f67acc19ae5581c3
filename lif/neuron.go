// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"math"

	"github.com/emer/brunel/network"
)

// Neuron holds the state of one iaf_psc_alpha neuron.
// Potentials are relative to the resting potential EL.
type Neuron struct {

	// membrane potential, relative to EL
	Vm float64

	// derivative of the excitatory synaptic current
	DIEx float64

	// excitatory synaptic current, in pA
	IEx float64

	// derivative of the inhibitory synaptic current
	DIIn float64

	// inhibitory synaptic current, in pA
	IIn float64

	// remaining refractory steps
	Refr int32

	// total number of spikes since Init
	NSpikes int32
}

// Propagators are the exact integration matrix of the linear
// iaf_psc_alpha dynamics for one time step, with the derived constants
// needed to apply it.
type Propagators struct {

	// decay of the excitatory current derivative, and of the current
	P11Ex float64

	// coupling of current derivative into current, excitatory
	P21Ex float64

	// decay of the inhibitory current derivative, and of the current
	P11In float64

	// coupling of current derivative into current, inhibitory
	P21In float64

	// effect of constant input current on Vm
	P30 float64

	// effect of excitatory current derivative on Vm
	P31Ex float64

	// effect of excitatory current on Vm
	P32Ex float64

	// effect of inhibitory current derivative on Vm
	P31In float64

	// effect of inhibitory current on Vm
	P32In float64

	// membrane decay
	P33 float64

	// jump of the current derivative per pA of weight, excitatory: e / tauSynEx
	PSCEx float64

	// jump of the current derivative per pA of weight, inhibitory: e / tauSynIn
	PSCIn float64

	// threshold, relative to EL
	Theta float64

	// reset potential, relative to EL
	VReset float64

	// constant input current
	IE float64

	// refractory period in steps
	RefrSteps int32
}

// Compute sets the propagators for neurons with parameters np and
// time step h, in ms.
func (pr *Propagators) Compute(np *network.NeuronParams, h float64) {
	pr.P33 = math.Exp(-h / np.TauMem)
	pr.P30 = np.TauMem / np.CMem * -math.Expm1(-h/np.TauMem)
	pr.P11Ex, pr.P21Ex, pr.P31Ex, pr.P32Ex = alphaProps(np.TauMem, np.TauSynEx, np.CMem, h)
	pr.P11In, pr.P21In, pr.P31In, pr.P32In = alphaProps(np.TauMem, np.TauSynIn, np.CMem, h)
	pr.PSCEx = math.E / np.TauSynEx
	pr.PSCIn = math.E / np.TauSynIn
	pr.Theta = np.VTh - np.EL
	pr.VReset = np.VReset - np.EL
	pr.IE = np.IE
	pr.RefrSteps = int32(math.Round(np.TRef / h))
}

// seriesMax is the |b h| below which alphaProps uses the Taylor series
// of P31 and P32, whose closed forms cancel catastrophically as
// tauSyn approaches tauMem.
const seriesMax = 1.0e-3

// alphaProps returns the synaptic propagators for one current.
func alphaProps(tauMem, tauSyn, cMem, h float64) (p11, p21, p31, p32 float64) {
	em := math.Exp(-h / tauMem)
	es := math.Exp(-h / tauSyn)
	p11 = es
	p21 = h * es
	b := 1/tauSyn - 1/tauMem
	if x := b * h; math.Abs(x) < seriesMax {
		p32 = em * h / cMem * (1 - x/2 + x*x/6 - x*x*x/24)
		p31 = em * h * h / cMem * (0.5 - x/3 + x*x/8 - x*x*x/30)
		return
	}
	p32 = (em - es) / (b * cMem)
	p31 = (em - es*(1+b*h)) / (b * b * cMem)
	return
}

// Update advances the neuron by one step.  inEx and inIn are the summed
// weights (pA) of excitatory and inhibitory spikes arriving in this step.
// Returns true if the neuron fired.
func (pr *Propagators) Update(nrn *Neuron, inEx, inIn float64) bool {
	if nrn.Refr == 0 {
		nrn.Vm = pr.P30*pr.IE + pr.P31Ex*nrn.DIEx + pr.P32Ex*nrn.IEx + pr.P31In*nrn.DIIn + pr.P32In*nrn.IIn + pr.P33*nrn.Vm
	} else {
		nrn.Refr--
	}
	nrn.IEx = pr.P21Ex*nrn.DIEx + pr.P11Ex*nrn.IEx
	nrn.DIEx *= pr.P11Ex
	nrn.DIEx += pr.PSCEx * inEx

	nrn.IIn = pr.P21In*nrn.DIIn + pr.P11In*nrn.IIn
	nrn.DIIn *= pr.P11In
	nrn.DIIn += pr.PSCIn * inIn

	if nrn.Vm >= pr.Theta {
		nrn.Refr = pr.RefrSteps
		nrn.Vm = pr.VReset
		nrn.NSpikes++
		return true
	}
	return false
}

// Init sets the initial state for parameters np.
func (nrn *Neuron) Init(np *network.NeuronParams) {
	*nrn = Neuron{Vm: np.VInit - np.EL}
}
