// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package calib derives the synaptic weights and the external Poisson drive
rate of the Brunel (2000) balanced excitatory / inhibitory network from a
small set of physiological parameters.

The chain is computed once, in order:

  - JUnit: peak PSP of a unit current (see package psp)
  - JEx, JIn: excitatory and inhibitory current weights for a PSP of J mV
  - NuTh, NuEx, PRate: threshold rate, external rate and generator rate
*/
package calib

import (
	"fmt"
	"math"

	"github.com/emer/brunel/psp"
)

// Params are the inputs to the calibration chain.
type Params struct {

	// J is the target amplitude of an excitatory PSP, in mV.
	J float64 `default:"0.1"`

	// G is the ratio of inhibitory to excitatory weight magnitude.
	G float64 `default:"5"`

	// Eta is the external rate relative to the threshold rate.
	Eta float64 `default:"2"`

	// Epsilon is the connection probability, which sets the in-degrees.
	Epsilon float64 `default:"0.1"`

	// NE is the size of the excitatory population.
	NE int `default:"10000"`

	// NI is the size of the inhibitory population.
	NI int `default:"2500"`

	// Theta is the firing threshold relative to rest, in mV.
	Theta float64 `default:"20"`

	// CMem is the membrane capacitance, in pF.
	CMem float64 `default:"250"`

	// TauMem is the membrane time constant, in ms.
	TauMem float64 `default:"20"`

	// TauSyn is the synaptic time constant, in ms.
	TauSyn float64 `default:"0.5"`
}

// Defaults sets the reference benchmark values (order = 2500).
func (p *Params) Defaults() {
	p.J = 0.1
	p.G = 5
	p.Eta = 2
	p.Epsilon = 0.1
	p.NE = 10000
	p.NI = 2500
	p.Theta = 20
	p.CMem = 250
	p.TauMem = 20
	p.TauSyn = 0.5
}

// InDegrees returns the excitatory and inhibitory in-degrees:
// floor(Epsilon * N) for each population.
func (p *Params) InDegrees() (ce, ci int) {
	ce = int(math.Floor(p.Epsilon * float64(p.NE)))
	ci = int(math.Floor(p.Epsilon * float64(p.NI)))
	return
}

// Calibrated holds the derived network constants.
// It is a plain value: copies cannot alter the original.
type Calibrated struct {

	// JUnit is the peak PSP (mV) of a unit (1 pA peak) synaptic current.
	JUnit float64

	// JEx is the excitatory synaptic current weight, in pA.
	JEx float64

	// JIn is the inhibitory synaptic current weight, in pA (negative for G > 0).
	JIn float64

	// NuTh is the external rate (per ms, per synapse) needed to reach
	// threshold in the absence of feedback.
	NuTh float64

	// NuEx is the external rate (per ms, per synapse): Eta * NuTh.
	NuEx float64

	// PRate is the rate of the Poisson generator, in Hz, standing in for
	// CE external synapses each firing at NuEx.
	PRate float64

	// CE is the excitatory in-degree.
	CE int

	// CI is the inhibitory in-degree.
	CI int
}

// InhibSignOK reports whether the inhibitory weight has the opposite sign
// of the excitatory weight, which fails for G <= 0.
func (c *Calibrated) InhibSignOK() bool {
	return math.Signbit(c.JIn) != math.Signbit(c.JEx) && c.JIn != 0
}

// String returns a one-line summary.
func (c *Calibrated) String() string {
	return fmt.Sprintf("JUnit: %.6g mV  JEx: %.6g pA  JIn: %.6g pA  NuTh: %.6g /ms  NuEx: %.6g /ms  PRate: %.6g Hz  CE: %d  CI: %d",
		c.JUnit, c.JEx, c.JIn, c.NuTh, c.NuEx, c.PRate, c.CE, c.CI)
}

// Weights converts the target PSP amplitude j (mV) into synaptic current
// weights, given the unit PSP norm: jEx = j / norm and jIn = -g * jEx.
// g is not checked; g <= 0 yields an inhibitory weight that is not negative.
func Weights(j, g, norm float64) (jEx, jIn float64) {
	jEx = j / norm
	jIn = -g * jEx
	return
}

// Drive computes the threshold rate nuTh = theta*cMem / (jEx*ce*e*tauMem*tauSyn),
// the external rate nuEx = eta*nuTh (both per ms), and the Poisson generator
// rate pRate = 1000*nuEx*ce (Hz).  jEx == 0 or ce <= 0 is a configuration error.
func Drive(theta, cMem, jEx, tauMem, tauSyn, eta float64, ce int) (nuTh, nuEx, pRate float64, err error) {
	if jEx == 0 || math.IsNaN(jEx) {
		err = &ConfigError{Param: "JEx", Value: jEx, Reason: "excitatory weight must be non-zero"}
		return
	}
	if ce <= 0 {
		err = &ConfigError{Param: "CE", Value: float64(ce), Reason: "excitatory in-degree must be > 0"}
		return
	}
	nuTh = (theta * cMem) / (jEx * float64(ce) * math.E * tauMem * tauSyn)
	nuEx = eta * nuTh
	pRate = 1000 * nuEx * float64(ce)
	return
}

// Calibrate runs the full chain: PSP norm, weights, drive.
func Calibrate(p Params) (Calibrated, error) {
	var c Calibrated
	c.CE, c.CI = p.InDegrees()
	nrm, err := psp.Norm(p.TauMem, p.TauSyn, p.CMem)
	if err != nil {
		return c, &ConfigError{Param: "TauMem/TauSyn/CMem", Value: p.TauMem, Reason: "invalid PSP kernel", Err: err}
	}
	c.JUnit = nrm
	c.JEx, c.JIn = Weights(p.J, p.G, nrm)
	c.NuTh, c.NuEx, c.PRate, err = Drive(p.Theta, p.CMem, c.JEx, p.TauMem, p.TauSyn, p.Eta, c.CE)
	if err != nil {
		return c, err
	}
	return c, nil
}
