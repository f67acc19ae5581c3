// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package psp computes the postsynaptic potential (PSP) produced in a leaky
integrate-and-fire membrane by an alpha-shaped synaptic current of unit peak
amplitude.  The peak of that PSP is used to convert a desired PSP amplitude
(in mV) into a synaptic current weight (in pA).

With a = TauMem / TauSyn and b = 1/TauSyn - 1/TauMem, the PSP reaches its
maximum at

	t_max = (1/b) * (-W₋₁(-exp(-1/a)/a) - 1/a)

where W₋₁ is the lower real branch of the Lambert W function.  When the
synapse is slower than the membrane (a < 1) the principal branch W₀ holds
the non-trivial root instead.
*/
package psp

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate is returned (wrapped) when the time constants or
// capacitance do not define a PSP kernel: non-positive values, or
// TauMem == TauSyn which makes b zero.
var ErrDegenerate = errors.New("psp: degenerate kernel parameters")

func checkParams(tauMem, tauSyn, cMem float64) error {
	switch {
	case !(tauMem > 0):
		return fmt.Errorf("%w: tauMem = %v must be > 0", ErrDegenerate, tauMem)
	case !(tauSyn > 0):
		return fmt.Errorf("%w: tauSyn = %v must be > 0", ErrDegenerate, tauSyn)
	case !(cMem > 0):
		return fmt.Errorf("%w: cMem = %v must be > 0", ErrDegenerate, cMem)
	case tauMem == tauSyn:
		return fmt.Errorf("%w: tauMem == tauSyn = %v", ErrDegenerate, tauMem)
	}
	return nil
}

// PeakTime returns the time (ms) after spike arrival at which the PSP
// elicited by an alpha current peaks.
func PeakTime(tauMem, tauSyn float64) (float64, error) {
	if err := checkParams(tauMem, tauSyn, 1); err != nil {
		return 0, err
	}
	return peakTime(tauMem, tauSyn), nil
}

func peakTime(tauMem, tauSyn float64) float64 {
	a := tauMem / tauSyn
	b := 1/tauSyn - 1/tauMem
	z := -math.Exp(-1/a) / a
	var w float64
	if a > 1 {
		w = LambertWm1(z)
	} else { // lower branch would give the trivial root -1/a, i.e., t = 0
		w = LambertW0(z)
	}
	return (1 / b) * (-w - 1/a)
}

// Norm returns the peak PSP amplitude (mV) produced by an alpha-shaped
// synaptic current of unit peak amplitude (pA), for membrane time constant
// tauMem (ms), synaptic time constant tauSyn (ms) and membrane capacitance
// cMem (pF).  A target PSP of J mV thus needs a weight of J / Norm pA.
func Norm(tauMem, tauSyn, cMem float64) (float64, error) {
	if err := checkParams(tauMem, tauSyn, cMem); err != nil {
		return 0, err
	}
	return Kernel(peakTime(tauMem, tauSyn), tauMem, tauSyn, cMem), nil
}

// Kernel returns the membrane potential deflection (mV) at time t (ms)
// after the arrival of a unit-peak alpha current, starting from rest.
// Parameters are not checked: tauMem == tauSyn gives NaN.
func Kernel(t, tauMem, tauSyn, cMem float64) float64 {
	if t <= 0 {
		return 0
	}
	b := 1/tauSyn - 1/tauMem
	et := math.Exp(-t / tauSyn)
	return math.E / (tauSyn * cMem * b) * ((math.Exp(-t/tauMem)-et)/b - t*et)
}
