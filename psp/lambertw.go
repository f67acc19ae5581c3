// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import "math"

const (
	// wMaxIter caps the Halley iteration in LambertWm1.
	wMaxIter = 100

	// wTol is the relative step size at which LambertWm1 stops iterating.
	wTol = 1.0e-15
)

// LambertWm1 returns the lower real branch W₋₁(z) of the Lambert W function,
// i.e., the solution w <= -1 of w·e^w = z, for z in [-1/e, 0).
// Returns -1 at the branch point z = -1/e, -Inf at z = 0,
// and NaN outside of the domain.
//
// The iteration is seeded from the series expansion around the branch point
// for z < -0.25 and from the logarithmic asymptote otherwise, then refined
// with Halley's method.
func LambertWm1(z float64) float64 {
	switch {
	case math.IsNaN(z) || z > 0 || z < -1/math.E:
		return math.NaN()
	case z == 0:
		return math.Inf(-1)
	case z == -1/math.E:
		return -1
	}
	return halley(z, wm1Seed(z))
}

// LambertW0 returns the principal real branch W₀(z) of the Lambert W
// function, i.e., the solution w >= -1 of w·e^w = z, for z >= -1/e.
// Returns NaN outside of the domain.
func LambertW0(z float64) float64 {
	switch {
	case math.IsNaN(z) || z < -1/math.E:
		return math.NaN()
	case z == 0:
		return 0
	case z == -1/math.E:
		return -1
	case math.IsInf(z, 1):
		return z
	}
	var w float64
	if z < -0.25 {
		p := math.Sqrt(math.Max(0, 2*(1+math.E*z)))
		w = -1 + p - p*p/3 + 11.0/72.0*p*p*p
	} else {
		w = math.Log1p(z)
	}
	return halley(z, w)
}

// halley refines w as a root of w·e^w - z.
func halley(z, w float64) float64 {
	for range wMaxIter {
		ew := math.Exp(w)
		f := w*ew - z
		w1 := w + 1
		if w1 == 0 {
			break
		}
		dw := f / (ew*w1 - (w+2)*f/(2*w1))
		w -= dw
		if math.Abs(dw) <= wTol*math.Abs(w) {
			break
		}
	}
	return w
}

// wm1Seed is the starting point for the Halley iteration.
func wm1Seed(z float64) float64 {
	if z < -0.25 {
		p := -math.Sqrt(math.Max(0, 2*(1+math.E*z)))
		return -1 + p - p*p/3 + 11.0/72.0*p*p*p
	}
	l1 := math.Log(-z)
	l2 := math.Log(-l1)
	return l1 - l2 + l2/l1
}
