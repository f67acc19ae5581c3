// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"errors"
	"math"
	"testing"
)

// relTol is the relative tolerance for comparing vs. reference values
const relTol = 1.0e-6

func relDif(a, b float64) float64 {
	return math.Abs(a-b) / math.Abs(b)
}

func TestLambertWm1(t *testing.T) {
	tstz := []float64{-0.1, -0.3, -1e-300}
	corw := []float64{-3.577152063957297, -1.7813370234216277, -697.3227762954601}
	for i, z := range tstz {
		w := LambertWm1(z)
		if dif := relDif(w, corw[i]); dif > 1.0e-12 {
			t.Errorf("Wm1 err: z: %v, w: %v, cor w: %v, dif: %v\n", z, w, corw[i], dif)
		}
		if w > -1 {
			t.Errorf("Wm1(%v) = %v not on lower branch", z, w)
		}
		if dif := relDif(w*math.Exp(w), z); dif > 1.0e-12 {
			t.Errorf("Wm1 identity err: z: %v, w·e^w: %v, dif: %v\n", z, w*math.Exp(w), dif)
		}
	}
	// near the branch point both branches meet at -1
	z := -1/math.E + 1e-12
	if w := LambertWm1(z); math.Abs(w+1) > 1e-5 || w > -1 {
		t.Errorf("Wm1 near branch point: %v", w)
	}
	if w := LambertWm1(-1 / math.E); w != -1 {
		t.Errorf("Wm1(-1/e) = %v, want -1", w)
	}
	if w := LambertWm1(0); !math.IsInf(w, -1) {
		t.Errorf("Wm1(0) = %v, want -Inf", w)
	}
	for _, z := range []float64{0.1, -0.5, math.NaN()} {
		if w := LambertWm1(z); !math.IsNaN(w) {
			t.Errorf("Wm1(%v) = %v, want NaN", z, w)
		}
	}
}

func TestLambertW0(t *testing.T) {
	tstz := []float64{-0.1, -0.3, 0.5, 1}
	corw := []float64{-0.11183255915896297, -0.489402227180215, 0.35173371124919584, 0.5671432904097838}
	for i, z := range tstz {
		w := LambertW0(z)
		if dif := relDif(w, corw[i]); dif > 1.0e-12 {
			t.Errorf("W0 err: z: %v, w: %v, cor w: %v, dif: %v\n", z, w, corw[i], dif)
		}
	}
	if w := LambertW0(-1); !math.IsNaN(w) {
		t.Errorf("W0(-1) = %v, want NaN", w)
	}
}

func TestNorm(t *testing.T) {
	type args struct{ tauMem, tauSyn, cMem float64 }
	tsta := []args{{20, 0.5, 250}, {10, 2, 250}, {20, 5, 100}, {20, 2, 250}, {5, 20, 250}}
	cornorm := []float64{0.004835553641724627, 0.013000662476173704, 0.0751264453232393, 0.015734467797231054, 0.019230372804665198}
	cortmax := []float64{2.7565854767698394, 6.650997646159213, 15.577753215087025, 8.033223171305623, 26.137935965819242}
	for i, a := range tsta {
		nrm, err := Norm(a.tauMem, a.tauSyn, a.cMem)
		if err != nil {
			t.Fatal(err)
		}
		if dif := relDif(nrm, cornorm[i]); dif > relTol {
			t.Errorf("Norm err: args: %+v, norm: %v, cor norm: %v, dif: %v\n", a, nrm, cornorm[i], dif)
		}
		tmax, err := PeakTime(a.tauMem, a.tauSyn)
		if err != nil {
			t.Fatal(err)
		}
		if dif := relDif(tmax, cortmax[i]); dif > relTol {
			t.Errorf("PeakTime err: args: %+v, tmax: %v, cor tmax: %v, dif: %v\n", a, tmax, cortmax[i], dif)
		}
	}
}

func TestNormPositive(t *testing.T) {
	taus := []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50}
	for _, tm := range taus {
		for _, ts := range taus {
			if tm == ts {
				continue
			}
			nrm, err := Norm(tm, ts, 250)
			if err != nil {
				t.Fatal(err)
			}
			if !(nrm > 0) || math.IsInf(nrm, 0) {
				t.Errorf("Norm(%v, %v) = %v, want positive and finite", tm, ts, nrm)
			}
		}
	}
}

func TestKernelPeak(t *testing.T) {
	tm, ts, c := 20.0, 0.5, 250.0
	nrm, _ := Norm(tm, ts, c)
	tmax, _ := PeakTime(tm, ts)
	for _, dt := range []float64{-0.5, -0.01, 0.01, 0.5} {
		if v := Kernel(tmax+dt, tm, ts, c); v >= nrm {
			t.Errorf("Kernel(tmax%+v) = %v >= peak %v", dt, v, nrm)
		}
	}
	if v := Kernel(0, tm, ts, c); v != 0 {
		t.Errorf("Kernel(0) = %v, want 0", v)
	}
}

func TestNormDegenerate(t *testing.T) {
	type args struct{ tauMem, tauSyn, cMem float64 }
	for _, a := range []args{{10, 10, 250}, {0, 0.5, 250}, {20, -1, 250}, {20, 0.5, 0}, {math.NaN(), 0.5, 250}} {
		_, err := Norm(a.tauMem, a.tauSyn, a.cMem)
		if !errors.Is(err, ErrDegenerate) {
			t.Errorf("Norm(%+v) err = %v, want ErrDegenerate", a, err)
		}
	}
	if _, err := PeakTime(3, 3); !errors.Is(err, ErrDegenerate) {
		t.Errorf("PeakTime(3, 3) err = %v, want ErrDegenerate", err)
	}
}
