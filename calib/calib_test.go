// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calib

import (
	"errors"
	"math"
	"testing"

	"github.com/emer/brunel/psp"
)

// relTol is the relative tolerance for comparing vs. reference values
const relTol = 1.0e-6

func relDif(a, b float64) float64 {
	return math.Abs(a-b) / math.Abs(b)
}

func TestCalibrateReference(t *testing.T) {
	var p Params
	p.Defaults()
	c, err := Calibrate(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.CE != 1000 || c.CI != 250 {
		t.Errorf("in-degrees: CE %d CI %d, want 1000 250", c.CE, c.CI)
	}
	vals := []float64{c.JUnit, c.JEx, c.JIn, c.NuTh, c.PRate}
	cors := []float64{0.004835553641724627, 20.68015524367846, -103.4007762183923, 0.008894503857360942, 17789.007714721884}
	nms := []string{"JUnit", "JEx", "JIn", "NuTh", "PRate"}
	for i := range vals {
		if dif := relDif(vals[i], cors[i]); dif > relTol {
			t.Errorf("%s err: %v, cor: %v, dif: %v\n", nms[i], vals[i], cors[i], dif)
		}
	}
	if c.NuEx != 2*c.NuTh {
		t.Errorf("NuEx %v != Eta * NuTh %v", c.NuEx, 2*c.NuTh)
	}
	if !c.InhibSignOK() {
		t.Errorf("inhibitory sign should be ok: %v", c.String())
	}
}

func TestWeightsSign(t *testing.T) {
	nrm, err := psp.Norm(20, 0.5, 250)
	if err != nil {
		t.Fatal(err)
	}
	for _, j := range []float64{0.05, 0.1, 0.2, -0.1} {
		for _, g := range []float64{0.5, 1, 4, 5, 6, 8} {
			jEx, jIn := Weights(j, g, nrm)
			if math.Signbit(jEx) == math.Signbit(jIn) {
				t.Errorf("j %v g %v: jEx %v and jIn %v have the same sign", j, g, jEx, jIn)
			}
			if math.Abs(jIn) != g*math.Abs(jEx) {
				t.Errorf("j %v g %v: |jIn| %v != g*|jEx| %v", j, g, math.Abs(jIn), g*math.Abs(jEx))
			}
		}
	}
}

func TestWeightsNonPositiveGain(t *testing.T) {
	// accepted without error, but flagged by InhibSignOK
	for _, g := range []float64{0, -1} {
		var p Params
		p.Defaults()
		p.G = g
		c, err := Calibrate(p)
		if err != nil {
			t.Fatalf("g %v: unexpected error %v", g, err)
		}
		if c.InhibSignOK() {
			t.Errorf("g %v: InhibSignOK should be false, JIn = %v", g, c.JIn)
		}
	}
}

func TestDriveErrors(t *testing.T) {
	_, _, _, err := Drive(20, 250, 0, 20, 0.5, 2, 1000)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("jEx == 0: err = %v, want ErrConfig", err)
	}
	_, _, _, err = Drive(20, 250, 20, 20, 0.5, 2, 0)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Param != "CE" {
		t.Errorf("ce == 0: err = %v, want *ConfigError on CE", err)
	}
}

func TestCalibrateErrors(t *testing.T) {
	var p Params
	p.Defaults()
	p.TauSyn = p.TauMem
	_, err := Calibrate(p)
	if !errors.Is(err, ErrConfig) || !errors.Is(err, psp.ErrDegenerate) {
		t.Errorf("tauMem == tauSyn: err = %v, want ErrConfig wrapping psp.ErrDegenerate", err)
	}

	p.Defaults()
	p.J = 0
	_, err = Calibrate(p)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("J == 0: err = %v, want ErrConfig", err)
	}

	p.Defaults()
	p.Epsilon = 0.00001
	_, err = Calibrate(p)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("CE == 0: err = %v, want ErrConfig", err)
	}
}
