// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

// lif.Time contains the timing state and parameters of a simulation run.
type Time struct {

	// accumulated amount of simulated time, in ms
	Time float64

	// step counter: total number of integration steps taken since Reset
	Step int

	// integration time step, in ms
	Dt float64 `default:"0.1"`
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.Dt = 0.1
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Time = 0
	tm.Step = 0
	if tm.Dt == 0 {
		tm.Defaults()
	}
}

// StepInc increments at the step level
func (tm *Time) StepInc() {
	tm.Step++
	tm.Time = float64(tm.Step) * tm.Dt
}

// Steps returns the number of whole steps in ms of simulated time.
func (tm *Time) Steps(ms float64) int {
	return int(ms/tm.Dt + 0.5)
}

// StepEnd returns the time at the end of the current step, which is when
// spikes emitted during the step are stamped.
func (tm *Time) StepEnd() float64 {
	return float64(tm.Step+1) * tm.Dt
}
