// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/emer/brunel/engine"
	"github.com/emer/brunel/network"
	"github.com/emer/brunel/psp"
)

const difTol = 1.0e-9

func testKernel() engine.Kernel {
	var k engine.Kernel
	k.Defaults()
	return k
}

func TestPSPShape(t *testing.T) {
	var np network.NeuronParams
	np.Defaults()
	np.VTh = 1000
	var pr Propagators
	h := 0.1
	pr.Compute(&np, h)
	for _, w := range []float64{20.68015524367846, -103.4007762183923} {
		var nrn Neuron
		nrn.Init(&np)
		if w > 0 {
			pr.Update(&nrn, w, 0)
		} else {
			pr.Update(&nrn, 0, w)
		}
		for k := 1; k <= 100; k++ {
			pr.Update(&nrn, 0, 0)
			want := w * psp.Kernel(float64(k)*h, np.TauMem, np.TauSynEx, np.CMem)
			if math.Abs(nrn.Vm-want) > difTol*math.Abs(want) {
				t.Fatalf("w %g step %d: Vm %v, want %v", w, k, nrn.Vm, want)
			}
		}
	}
}

func TestPropagatorsEqualTau(t *testing.T) {
	var np network.NeuronParams
	np.Defaults()
	np.TauSynEx = np.TauMem
	var pr Propagators
	pr.Compute(&np, 0.1)
	near := np
	near.TauSynEx = np.TauMem * (1 + 1e-7)
	var prn Propagators
	prn.Compute(&near, 0.1)
	if math.Abs(pr.P31Ex-prn.P31Ex) > 1e-6*prn.P31Ex || math.Abs(pr.P32Ex-prn.P32Ex) > 1e-6*prn.P32Ex {
		t.Errorf("equal tau limit: P31 %v vs %v, P32 %v vs %v", pr.P31Ex, prn.P31Ex, pr.P32Ex, prn.P32Ex)
	}
}

func TestPropagatorsNearEqualTau(t *testing.T) {
	tauMem, cMem, h := 20.0, 250.0, 0.1
	_, _, lim31, lim32 := alphaProps(tauMem, tauMem, cMem, h)
	em := math.Exp(-h / tauMem)
	for _, tauSyn := range []float64{20 * (1 + 1e-8), 20 * (1 + 1e-7), 20 * (1 - 1e-6), 20 * (1 + 1e-6),
		20 * (1 + 1e-5), 20 * (1 + 1e-4), 20 * (1 + 1e-2), 16, 17, 24, 26, 40, 0.5} {
		_, _, p31, p32 := alphaProps(tauMem, tauSyn, cMem, h)
		b := 1/tauSyn - 1/tauMem
		x := b * h
		// em - es = -em expm1(-x) does not cancel
		d := -math.Expm1(-x)
		ref32 := em * d / (b * cMem)
		if math.Abs(p32-ref32) > 1e-11*ref32 {
			t.Errorf("tauSyn %v: P32 %v, want %v", tauSyn, p32, ref32)
		}
		if p31 <= 0 {
			t.Fatalf("tauSyn %v: P31 %v must be > 0", tauSyn, p31)
		}
		if math.Abs(x) < 1e-5 {
			if math.Abs(p31-lim31) > (2*math.Abs(x)+1e-12)*lim31 || math.Abs(p32-lim32) > (2*math.Abs(x)+1e-12)*lim32 {
				t.Errorf("tauSyn %v: P31 %v P32 %v, limits %v %v", tauSyn, p31, p32, lim31, lim32)
			}
			continue
		}
		ref31 := em * (d - x*math.Exp(-x)) / (b * b * cMem)
		if math.Abs(p31-ref31) > 1e-9*ref31 {
			t.Errorf("tauSyn %v: P31 %v, want %v", tauSyn, p31, ref31)
		}
	}
}

// twoNeurons makes neuron 0 fire regularly from a constant current and
// connects it to neuron 1 with weight w.
func twoNeurons(t *testing.T, w float64) (*Engine, engine.Handle) {
	t.Helper()
	var np network.NeuronParams
	np.Defaults()
	ev := New()
	if err := ev.Init(testKernel()); err != nil {
		t.Fatal(err)
	}
	drv := np
	drv.IE = 500
	if _, err := ev.CreatePopulation(network.ModelIAFPSCAlpha, 1, drv); err != nil {
		t.Fatal(err)
	}
	if _, err := ev.CreatePopulation(network.ModelIAFPSCAlpha, 1, np); err != nil {
		t.Fatal(err)
	}
	net := network.NewNetwork("Two")
	src, _ := net.AddPopulation("Src", network.ModelIAFPSCAlpha, 1, drv)
	net.AddPopulation("Dst", network.ModelIAFPSCAlpha, 1, np)
	sc, _ := net.AddSynapseClass("excitatory", "static_synapse", network.Excitatory, w, 1.5)
	pt, err := net.ConnectFixedInDegree(src, network.Selection{1}, 1, sc)
	if err != nil {
		t.Fatal(err)
	}
	if err := net.Build(1, 1); err != nil {
		t.Fatal(err)
	}
	syn, err := ev.CreateSynapseClass(sc.Name, sc.Base, sc.Weight, sc.Delay)
	if err != nil {
		t.Fatal(err)
	}
	if err := ev.Connect(pt, syn); err != nil {
		t.Fatal(err)
	}
	rec, err := ev.CreateRecorder(network.Selection{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	return ev, rec
}

func TestRegularFiring(t *testing.T) {
	ev, rec := twoNeurons(t, 1)
	if err := ev.Run(context.Background(), 40); err != nil {
		t.Fatal(err)
	}
	evs, err := ev.Events(rec)
	if err != nil {
		t.Fatal(err)
	}
	// V(t) = 40 (1 - exp(-t/20)) crosses 20 between 13.8 and 13.9 ms,
	// then 2 ms refractory and the same again.
	want := []float64{13.9, 29.8}
	if len(evs) != len(want) {
		t.Fatalf("events %v, want times %v", evs, want)
	}
	for i, e := range evs {
		if e.Sender != 0 || math.Abs(e.Time-want[i]) > difTol {
			t.Errorf("event %d: %+v, want sender 0 at %v", i, e, want[i])
		}
	}
	if n, _ := ev.EventCount(rec); n != 2 {
		t.Errorf("EventCount = %d, want 2", n)
	}
	if ev.Neurons[0].NSpikes != 2 {
		t.Errorf("NSpikes = %d, want 2", ev.Neurons[0].NSpikes)
	}
}

func TestDelay(t *testing.T) {
	w := 20.68015524367846
	ev, _ := twoNeurons(t, w)
	ctx := context.Background()
	// spike at 13.9 ms arrives at 15.4 ms
	if err := ev.Run(ctx, 15.4); err != nil {
		t.Fatal(err)
	}
	if vm := ev.Neurons[1].Vm; vm != 0 {
		t.Fatalf("Vm before arrival = %v, want 0", vm)
	}
	if err := ev.Run(ctx, 1); err != nil {
		t.Fatal(err)
	}
	want := w * psp.Kernel(1, 20, 0.5, 250)
	if vm := ev.Neurons[1].Vm; math.Abs(vm-want) > difTol*want {
		t.Errorf("Vm 1 ms after arrival = %v, want %v", vm, want)
	}
	if ev.Time.Step != 164 || math.Abs(ev.Time.Time-16.4) > difTol {
		t.Errorf("time: step %d time %v", ev.Time.Step, ev.Time.Time)
	}
}

func TestSilence(t *testing.T) {
	var np network.NeuronParams
	np.Defaults()
	ev := New()
	ev.Init(testKernel())
	sel, _ := ev.CreatePopulation(network.ModelIAFPSCAlpha, 10, np)
	rec, _ := ev.CreateRecorder(sel)
	if err := ev.Run(context.Background(), 100); err != nil {
		t.Fatal(err)
	}
	if n, _ := ev.EventCount(rec); n != 0 {
		t.Errorf("EventCount = %d, want 0", n)
	}
	for i := range ev.Neurons {
		if ev.Neurons[i].Vm != 0 {
			t.Errorf("neuron %d: Vm = %v, want 0", i, ev.Neurons[i].Vm)
		}
	}
}

// randomNet runs a small driven E/I network and returns the events
// of a recorder on all neurons.
func randomNet(t *testing.T, seed int64, threads int) ([]engine.Event, int) {
	t.Helper()
	var np network.NeuronParams
	np.Defaults()
	net := network.NewNetwork("Rand")
	ex, _ := net.AddPopulation("Ex", network.ModelIAFPSCAlpha, 400, np)
	in, _ := net.AddPopulation("In", network.ModelIAFPSCAlpha, 100, np)
	exs, _ := net.AddSynapseClass("excitatory", "static_synapse", network.Excitatory, 20.68015524367846, 1.5)
	ins, _ := net.AddSynapseClass("inhibitory", "static_synapse", network.Inhibitory, -103.4007762183923, 1.5)
	all := net.AllNodes()
	net.ConnectFixedInDegree(ex, all, 40, exs)
	net.ConnectFixedInDegree(in, all, 10, ins)
	if err := net.Build(seed, threads); err != nil {
		t.Fatal(err)
	}

	ev := New()
	k := testKernel()
	k.Seed = seed
	k.Threads = threads
	if err := ev.Init(k); err != nil {
		t.Fatal(err)
	}
	for _, ps := range net.Pops {
		if _, err := ev.CreatePopulation(ps.Model, ps.N, ps.Params); err != nil {
			t.Fatal(err)
		}
	}
	hs := map[string]engine.Handle{}
	for _, sc := range net.Syns {
		h, err := ev.CreateSynapseClass(sc.Name, sc.Base, sc.Weight, sc.Delay)
		if err != nil {
			t.Fatal(err)
		}
		hs[sc.Name] = h
	}
	for _, pt := range net.Paths {
		if err := ev.Connect(pt, hs[pt.Syn.Name]); err != nil {
			t.Fatal(err)
		}
	}
	drv, _ := ev.CreatePoissonDrive(17789.007714721884)
	if err := ev.ConnectAll(drv, all, hs["excitatory"]); err != nil {
		t.Fatal(err)
	}
	rec, _ := ev.CreateRecorder(all)
	if err := ev.Run(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	evs, err := ev.Events(rec)
	if err != nil {
		t.Fatal(err)
	}
	return evs, ev.NumConnections()
}

func TestDeterminism(t *testing.T) {
	a, ncon := randomNet(t, 3, 1)
	b, _ := randomNet(t, 3, 4)
	c, _ := randomNet(t, 4, 1)
	if len(a) == 0 {
		t.Fatal("driven network produced no spikes")
	}
	if ncon != 500*40+500*10+500 {
		t.Errorf("NumConnections = %d, want %d", ncon, 500*50+500)
	}
	if !slices.Equal(a, b) {
		t.Errorf("thread count changed the spikes: %d vs %d events", len(a), len(b))
	}
	if slices.Equal(a, c) {
		t.Errorf("different seeds gave identical spikes")
	}
	for i := 1; i < len(a); i++ {
		if a[i].Time < a[i-1].Time {
			t.Fatalf("events out of time order at %d", i)
		}
	}
}

func TestRecorderTable(t *testing.T) {
	ev, rec := twoNeurons(t, 1)
	ev.Run(context.Background(), 40)
	rc, err := ev.Recorder(rec)
	if err != nil {
		t.Fatal(err)
	}
	dt := rc.Table()
	if dt.NumRows() != 2 {
		t.Errorf("table rows = %d, want 2", dt.NumRows())
	}
	fn := filepath.Join(t.TempDir(), "spikes.tsv")
	if err := rc.SaveCSV(fn); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(fn); err != nil || fi.Size() == 0 {
		t.Errorf("spike file not written: %v", err)
	}
}

func TestErrors(t *testing.T) {
	var np network.NeuronParams
	np.Defaults()
	ev := New()
	var ee *engine.Error
	err := ev.Run(context.Background(), 10)
	if !errors.As(err, &ee) || !errors.Is(err, engine.ErrNotInit) {
		t.Errorf("Run before Init: %v", err)
	}
	if err := ev.Init(engine.Kernel{}); err == nil {
		t.Errorf("zero resolution should fail")
	}
	ev.Init(testKernel())
	if _, err := ev.CreatePopulation("hh_psc_alpha", 1, np); !errors.As(err, &ee) {
		t.Errorf("unknown model: %v", err)
	}
	sel, _ := ev.CreatePopulation(network.ModelIAFPSCAlpha, 5, np)
	rec, _ := ev.CreateRecorder(sel)
	if _, err := ev.CreateRecorder(network.Selection{5}); err == nil {
		t.Errorf("out of range recorder target should fail")
	}
	if _, err := ev.EventCount(rec); !errors.Is(err, engine.ErrNotRun) {
		t.Errorf("EventCount before Run: %v", err)
	}
	if _, err := ev.EventCount(engine.Handle(99)); !errors.Is(err, engine.ErrHandle) {
		t.Errorf("bad handle: %v", err)
	}
	drv, _ := ev.CreatePoissonDrive(100)
	if err := ev.ConnectAll(drv, sel, rec); !errors.Is(err, engine.ErrHandle) {
		t.Errorf("recorder used as synapse class: %v", err)
	}
	if _, err := ev.CreateSynapseClass("x", "static_synapse", 1, 0); err == nil {
		t.Errorf("zero delay should fail")
	}
	net := network.NewNetwork("U")
	ps, _ := net.AddPopulation("P", network.ModelIAFPSCAlpha, 5, np)
	sc, _ := net.AddSynapseClass("s", "static_synapse", network.Excitatory, 1, 1)
	pt, _ := net.ConnectFixedInDegree(ps, ps.Nodes(), 2, sc)
	syn, _ := ev.CreateSynapseClass("s", "static_synapse", 1, 1)
	if err := ev.Connect(pt, syn); err == nil {
		t.Errorf("unbuilt path should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ev.Run(ctx, 10); !errors.Is(err, context.Canceled) || !errors.As(err, &ee) {
		t.Errorf("cancelled Run: %v", err)
	}
	if _, err := ev.CreatePopulation(network.ModelIAFPSCAlpha, 1, np); err == nil {
		t.Errorf("CreatePopulation after Run should fail")
	}
	ev.Teardown()
	if _, err := ev.CreatePoissonDrive(1); !errors.Is(err, engine.ErrNotInit) {
		t.Errorf("after Teardown: %v", err)
	}
}
