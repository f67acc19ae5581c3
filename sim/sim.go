// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sim runs the Brunel (2000) balanced network benchmark: it
calibrates the weights and drive, generates the random topology, hands
everything to a simulation engine, runs it and reports the firing rates.

A Sim is an explicit, caller-owned context with a fixed lifecycle:

	ss := sim.New(cfg, eng)
	ss.Init()
	ss.Calibrate()
	ss.Build()
	ss.Run(ctx)
	rp, _ := ss.Report()
	ss.Teardown()

Calls out of order return an error wrapping ErrLifecycle.  Errors from the
engine are returned unmodified.
*/
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"cogentcore.org/core/base/timer"
	"github.com/emer/brunel/calib"
	"github.com/emer/brunel/engine"
	"github.com/emer/brunel/metrics"
	"github.com/emer/brunel/network"
)

// ErrLifecycle is wrapped by errors from Sim methods called out of order.
var ErrLifecycle = errors.New("sim lifecycle")

// States are the lifecycle states of a Sim.
type States int32

const (
	// NotInited is the state after New and after Teardown.
	NotInited States = iota

	// Inited is the state after Init.
	Inited

	// Calibrated is the state after Calibrate.
	Calibrated

	// Built is the state after Build.
	Built

	// Ran is the state after Run.
	Ran
)

func (st States) String() string {
	switch st {
	case NotInited:
		return "NotInited"
	case Inited:
		return "Inited"
	case Calibrated:
		return "Calibrated"
	case Built:
		return "Built"
	case Ran:
		return "Ran"
	}
	return fmt.Sprintf("States(%d)", int32(st))
}

// Sim holds the whole state of one benchmark run.
type Sim struct {

	// configuration, read-only during the run
	Config *Config

	// simulation engine
	Engine engine.Engine

	// derived weights and drive
	Calib calib.Calibrated

	// the network, with its realized connectivity after Build
	Net *network.Network

	// excitatory population
	Ex *network.Population

	// inhibitory population
	In *network.Population

	// engine handles of the recorders on Ex and In
	RecEx, RecIn engine.Handle

	// wall-clock timer of Build
	BuildTimer timer.Time

	// wall-clock timer of Run
	RunTimer timer.Time

	// current lifecycle state
	State States

	report *metrics.Report
}

// New returns a new Sim running cfg on the engine eng.
func New(cfg *Config, eng engine.Engine) *Sim {
	return &Sim{Config: cfg, Engine: eng}
}

// need returns an ErrLifecycle error unless the state is one of sts.
func (ss *Sim) need(op string, sts ...States) error {
	for _, st := range sts {
		if ss.State == st {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires state %v, not %v", ErrLifecycle, op, sts, ss.State)
}

// Threads returns the number of goroutines to use.
func (ss *Sim) Threads() int {
	if ss.Config.Run.Threads > 0 {
		return ss.Config.Run.Threads
	}
	return runtime.GOMAXPROCS(0)
}

// Init validates the configuration and initializes the engine.
func (ss *Sim) Init() error {
	if err := ss.need("Init", NotInited); err != nil {
		return err
	}
	if err := ss.Config.Validate(); err != nil {
		return err
	}
	if err := ss.Engine.Init(ss.kernel()); err != nil {
		return err
	}
	ss.State = Inited
	return nil
}

// kernel returns the engine settings from the configuration.
func (ss *Sim) kernel() engine.Kernel {
	return engine.Kernel{Resolution: ss.Config.Run.Dt, Seed: ss.Config.Run.Seed, Threads: ss.Threads()}
}

// Calibrate computes the weights and the drive rate.
func (ss *Sim) Calibrate() error {
	if err := ss.need("Calibrate", Inited); err != nil {
		return err
	}
	c, err := calib.Calibrate(ss.Config.CalibParams())
	if err != nil {
		return err
	}
	if !c.InhibSignOK() {
		slog.Warn("inhibitory weight is not opposite in sign to the excitatory weight", "G", ss.Config.Syn.G, "JEx", c.JEx, "JIn", c.JIn)
	}
	ss.Calib = c
	slog.Info("calibrated", "JUnit", c.JUnit, "JEx", c.JEx, "JIn", c.JIn, "NuTh", c.NuTh, "PRate", c.PRate, "CE", c.CE, "CI", c.CI)
	ss.State = Calibrated
	return nil
}

// BuildNetwork declares the network and draws its connections,
// without involving the engine.
func (ss *Sim) BuildNetwork() error {
	if err := ss.need("BuildNetwork", Calibrated); err != nil {
		return err
	}
	cfg := ss.Config
	c := &ss.Calib
	np := cfg.NeuronParams()
	net := network.NewNetwork(cfg.Name)
	ex, err := net.AddPopulation("Ex", network.ModelIAFPSCAlpha, cfg.NE(), np)
	if err != nil {
		return err
	}
	in, err := net.AddPopulation("In", network.ModelIAFPSCAlpha, cfg.NI(), np)
	if err != nil {
		return err
	}
	exs, err := net.AddSynapseClass("excitatory", "static_synapse", network.Excitatory, c.JEx, cfg.Syn.Delay)
	if err != nil {
		return err
	}
	ins, err := net.AddSynapseClass("inhibitory", "static_synapse", network.Inhibitory, c.JIn, cfg.Syn.Delay)
	if err != nil {
		return err
	}
	all := network.Union(ex.Nodes(), in.Nodes())
	expt, err := net.ConnectFixedInDegree(ex, all, c.CE, exs)
	if err != nil {
		return err
	}
	expt.Name = "ExToAll"
	inpt, err := net.ConnectFixedInDegree(in, all, c.CI, ins)
	if err != nil {
		return err
	}
	inpt.Name = "InToAll"
	if _, err := net.AddDrive("Noise", c.PRate, all, exs); err != nil {
		return err
	}
	if _, err := net.AddRecorder("ExSpikes", ex.First(cfg.Net.NRec)); err != nil {
		return err
	}
	if _, err := net.AddRecorder("InSpikes", in.First(cfg.Net.NRec)); err != nil {
		return err
	}
	if err := net.Build(cfg.Run.Seed, ss.Threads()); err != nil {
		return err
	}
	ss.Net, ss.Ex, ss.In = net, ex, in
	return nil
}

// Build generates the network and hands it to the engine.
func (ss *Sim) Build() error {
	if err := ss.need("Build", Calibrated); err != nil {
		return err
	}
	ss.BuildTimer.Reset()
	ss.BuildTimer.Start()
	if err := ss.BuildNetwork(); err != nil {
		ss.BuildTimer.Stop()
		return err
	}
	if err := ss.handOff(); err != nil {
		ss.BuildTimer.Stop()
		ss.Net, ss.Ex, ss.In = nil, nil, nil
		return ss.resetEngine(err)
	}
	ss.BuildTimer.Stop()
	slog.Debug("network built\n" + ss.Net.SizeReport())
	slog.Info("built", "neurons", ss.Net.NNeurons, "synapses", ss.Net.NumSynapses(), "time", ss.BuildTimer.Total)
	ss.State = Built
	return nil
}

// resetEngine discards whatever a failed handOff left in the engine,
// so that Build can be retried, and returns err.  If the engine cannot
// be reset the Sim goes back to NotInited.
func (ss *Sim) resetEngine(err error) error {
	if terr := ss.Engine.Teardown(); terr != nil {
		ss.State = NotInited
		return errors.Join(err, terr)
	}
	if ierr := ss.Engine.Init(ss.kernel()); ierr != nil {
		ss.State = NotInited
		return errors.Join(err, ierr)
	}
	return err
}

// handOff creates the network inside the engine.
func (ss *Sim) handOff() error {
	eng := ss.Engine
	net := ss.Net
	for _, ps := range net.Pops {
		sel, err := eng.CreatePopulation(ps.Model, ps.N, ps.Params)
		if err != nil {
			return err
		}
		if len(sel) != ps.N || (ps.N > 0 && int(sel[0]) != ps.St) {
			return fmt.Errorf("engine ids for population %s do not match the network: %d neurons from %d expected", ps.Name, ps.N, ps.St)
		}
	}
	syns := make(map[*network.SynapseClass]engine.Handle, len(net.Syns))
	for _, sc := range net.Syns {
		h, err := eng.CreateSynapseClass(sc.Name, sc.Base, sc.Weight, sc.Delay)
		if err != nil {
			return err
		}
		syns[sc] = h
	}
	for _, pt := range net.Paths {
		if err := eng.Connect(pt, syns[pt.Syn]); err != nil {
			return err
		}
	}
	for _, dr := range net.Drives {
		h, err := eng.CreatePoissonDrive(dr.Rate)
		if err != nil {
			return err
		}
		if err := eng.ConnectAll(h, dr.Targets, syns[dr.Syn]); err != nil {
			return err
		}
	}
	recs := make([]engine.Handle, len(net.Recorders))
	for i, rc := range net.Recorders {
		h, err := eng.CreateRecorder(rc.Targets)
		if err != nil {
			return err
		}
		recs[i] = h
	}
	ss.RecEx, ss.RecIn = recs[0], recs[1]
	return nil
}

// Run simulates SimTime ms.  A simulation time that is not a multiple
// of the delay is logged as a warning and the run proceeds.
func (ss *Sim) Run(ctx context.Context) error {
	if err := ss.need("Run", Built); err != nil {
		return err
	}
	cfg := ss.Config
	for _, w := range engine.CheckTimestep(cfg.Run.SimTime, cfg.Run.Dt, cfg.Syn.Delay) {
		slog.Warn(w)
	}
	ss.RunTimer.Reset()
	ss.RunTimer.Start()
	if err := ss.Engine.Run(ctx, cfg.Run.SimTime); err != nil {
		return err
	}
	ss.RunTimer.Stop()
	rp, err := ss.makeReport()
	if err != nil {
		return err
	}
	ss.report = rp
	ss.State = Ran
	return nil
}

func (ss *Sim) makeReport() (*metrics.Report, error) {
	nex, err := ss.Engine.EventCount(ss.RecEx)
	if err != nil {
		return nil, err
	}
	nin, err := ss.Engine.EventCount(ss.RecIn)
	if err != nil {
		return nil, err
	}
	cfg := ss.Config
	c := &ss.Calib
	net := ss.Net
	rp := &metrics.Report{
		Name:          cfg.Name,
		Seed:          cfg.Run.Seed,
		Order:         cfg.Net.Order,
		NNeurons:      net.NNeurons,
		CE:            c.CE,
		CI:            c.CI,
		NRec:          cfg.Net.NRec,
		SimTime:       cfg.Run.SimTime,
		Dt:            cfg.Run.Dt,
		JEx:           c.JEx,
		JIn:           c.JIn,
		NuTh:          c.NuTh,
		NuEx:          c.NuEx,
		PRate:         c.PRate,
		NumSynapses:   net.NumSynapses(),
		NumExcitatory: net.SynapsesBySyn("excitatory"),
		NumInhibitory: net.SynapsesBySyn("inhibitory"),
		NumDrive:      net.NumDriveConnections(),
		SynMem:        net.SynMemBytes(),
		EventsEx:      nex,
		EventsIn:      nin,
		BuildTime:     ss.BuildTimer.Total,
		RunTime:       ss.RunTimer.Total,
	}
	rp.SetRates()
	return rp, nil
}

// Report returns the report of the run.
func (ss *Sim) Report() (*metrics.Report, error) {
	if err := ss.need("Report", Ran); err != nil {
		return nil, err
	}
	return ss.report, nil
}

// Teardown releases the engine.  The Sim returns to the NotInited state
// and can be Init'ed again.
func (ss *Sim) Teardown() error {
	if ss.State == NotInited {
		return nil
	}
	ss.State = NotInited
	ss.Net, ss.Ex, ss.In, ss.report = nil, nil, nil, nil
	return ss.Engine.Teardown()
}
