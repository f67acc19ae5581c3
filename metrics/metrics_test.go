// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRate(t *testing.T) {
	if r := Rate(2080, 1000.0, 50); r != 41.6 {
		t.Errorf("Rate(2080, 1000, 50) = %v, want exactly 41.6", r)
	}
	if r := Rate(2080, 1000.0, 50); r != 2080*1000/(1000.0*50) {
		t.Errorf("Rate(2080, 1000, 50) = %v, differs from events*1000/(simtime*nRec)", r)
	}
	tests := []struct {
		ev   int
		st   float64
		nrec int
		want float64
	}{
		{0, 1000, 50, 0},
		{100, 100, 10, 100},
		{5, 1000, 0, 0},
		{5, 0, 10, 0},
	}
	for _, tt := range tests {
		if r := Rate(tt.ev, tt.st, tt.nrec); r != tt.want {
			t.Errorf("Rate(%d, %g, %d) = %v, want %v", tt.ev, tt.st, tt.nrec, r, tt.want)
		}
	}
}

func testReport() *Report {
	rp := &Report{Name: "Brunel", Seed: 1, Order: 2500, NNeurons: 12500, CE: 1000, CI: 250, NRec: 50, SimTime: 1000, Dt: 0.1,
		NumSynapses: 15637500, NumExcitatory: 12512500, NumInhibitory: 3125000, NumDrive: 12500,
		EventsEx: 2080, EventsIn: 2000, SynMem: 1 << 26, BuildTime: 1500 * time.Millisecond, RunTime: 12 * time.Second}
	rp.SetRates()
	return rp
}

func TestReport(t *testing.T) {
	rp := testReport()
	if rp.RateEx != 41.6 || rp.RateIn != 40 {
		t.Errorf("rates: %v %v", rp.RateEx, rp.RateIn)
	}
	s := rp.String()
	for _, want := range []string{"Number of synapses: 15637500", "Excitatory rate   : 41.60 Hz", "Building time     : 1.50 s", "64.0 MB"} {
		if !strings.Contains(s, want) {
			t.Errorf("report missing %q:\n%s", want, s)
		}
	}
}

func TestReportYAML(t *testing.T) {
	rp := testReport()
	var b bytes.Buffer
	if err := rp.WriteYAML(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "rate_ex: 41.6") {
		t.Errorf("yaml missing rate_ex:\n%s", b.String())
	}
	got, err := ReadYAML(&b)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *rp {
		t.Errorf("yaml round trip:\n got %+v\nwant %+v", got, rp)
	}
}

func TestReportTable(t *testing.T) {
	dt := testReport().Table()
	if dt.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", dt.NumRows())
	}
	if dt.NumColumns() != 9 {
		t.Errorf("columns = %d, want 9", dt.NumColumns())
	}
}
