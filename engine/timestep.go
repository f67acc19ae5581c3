// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"math"
)

// multTol is the relative tolerance for deciding that one time is an
// integer multiple of another.
const multTol = 1e-9

// IsMultiple reports whether x is an integer multiple of unit,
// up to floating point rounding.
func IsMultiple(x, unit float64) bool {
	if unit <= 0 {
		return false
	}
	r := x / unit
	return math.Abs(r-math.Round(r)) <= multTol*math.Max(1, math.Abs(r))
}

// CheckTimestep returns warnings about timing settings that are
// allowed but may affect results: a delay that is not a multiple of the
// resolution is rounded to the grid, and a duration that is not a
// multiple of the delay makes the result depend on how the run is split
// when several random sources are active.  None of these are fatal.
func CheckTimestep(duration, resolution, delay float64) []string {
	var warns []string
	if !IsMultiple(delay, resolution) {
		warns = append(warns, fmt.Sprintf("delay %g ms is not a multiple of the resolution %g ms and will be rounded to %g ms", delay, resolution, DelaySteps(delay, resolution)*resolution))
	}
	if !IsMultiple(duration, delay) {
		warns = append(warns, fmt.Sprintf("simulation time %g ms is not a multiple of the delay %g ms", duration, delay))
	}
	return warns
}

// DelaySteps returns the delay in whole time steps, at least 1.
func DelaySteps(delay, resolution float64) float64 {
	return math.Max(1, math.Round(delay/resolution))
}
