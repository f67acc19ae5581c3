// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif is an in-process simulation engine for networks of
iaf_psc_alpha neurons: leaky integrate-and-fire neurons with
alpha-shaped postsynaptic currents, integrated exactly on a fixed time
grid, with static synapses, Poisson drives and spike recorders.

It implements engine.Engine.  Neurons are updated in fixed chunks that
can run in parallel; each chunk owns its random stream, so the spike
trains for a given seed do not depend on the number of threads.
*/
package lif

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"cogentcore.org/lab/base/randx"
	"github.com/emer/brunel/engine"
	"github.com/emer/brunel/network"
	"golang.org/x/sync/errgroup"
)

// UpdtChunk is the number of consecutive neurons updated by one goroutine
// and sharing one random stream.
const UpdtChunk = 256

// driveStream is the stream id of the drive random streams, distinct
// from the path indexes used for connectivity.
const driveStream = 1 << 32

type kinds int8

const (
	synKind kinds = iota
	driveKind
	recKind
)

type handle struct {
	kind kinds
	idx  int
}

type synClass struct {
	name   string
	base   string
	weight float64
	delay  float64
	dsteps int
}

type pop struct {
	nodes  network.Selection
	params network.NeuronParams
	props  Propagators
}

// driveIn is one drive connection onto a neuron.
type driveIn struct {

	// mean number of events per step
	mean float64

	// synaptic weight, in pA
	weight float64
}

type pendingPath struct {
	pt  *network.Path
	syn int
}

// Engine is the reference iaf_psc_alpha engine.
type Engine struct {

	// kernel settings, from Init
	Kernel engine.Kernel

	// timing state
	Time Time

	// neuron state, by global id
	Neurons []Neuron

	pops    []pop
	nrnPop  []int32
	syns    []synClass
	drives  []float64
	recs    []*Recorder
	hnds    []handle
	pending []pendingPath
	nrnDrv  [][]driveIn
	nrnRecs [][]int32

	// sender-major connections: targets of sender s are
	// sendTarg[sendSt[s]:sendSt[s+1]], with synapse class sendSyn[j]
	sendSt   []int32
	sendTarg []int32
	sendSyn  []uint16

	ringLen int
	ringEx  []float64
	ringIn  []float64
	rnds    []randx.Rand
	spikes  [][]int32

	nCons  int
	inited bool
	frozen bool
	hasRun bool
}

// New returns a new engine, which must be Init'ed before use.
func New() *Engine {
	return &Engine{}
}

var _ engine.Engine = (*Engine)(nil)

func (ev *Engine) Init(k engine.Kernel) error {
	if !(k.Resolution > 0) {
		return engine.Errorf("Init", "resolution = %v must be > 0", k.Resolution)
	}
	*ev = Engine{Kernel: k}
	ev.Kernel.Threads = max(1, k.Threads)
	ev.Time.Dt = k.Resolution
	ev.Time.Reset()
	ev.inited = true
	return nil
}

// check returns an error if the engine is not ready for op.
func (ev *Engine) check(op string, structural bool) error {
	if !ev.inited {
		return &engine.Error{Op: op, Err: engine.ErrNotInit}
	}
	if structural && ev.frozen {
		return engine.Errorf(op, "network cannot be changed after Run")
	}
	return nil
}

// NumNeurons returns the number of neurons created.
func (ev *Engine) NumNeurons() int {
	return len(ev.Neurons)
}

func (ev *Engine) CreatePopulation(model string, size int, params network.NeuronParams) (network.Selection, error) {
	if err := ev.check("CreatePopulation", true); err != nil {
		return nil, err
	}
	if model != network.ModelIAFPSCAlpha {
		return nil, engine.Errorf("CreatePopulation", "unknown neuron model %q", model)
	}
	if size < 0 {
		return nil, engine.Errorf("CreatePopulation", "size = %d must be >= 0", size)
	}
	if err := params.Validate(); err != nil {
		return nil, &engine.Error{Op: "CreatePopulation", Err: err}
	}
	st := len(ev.Neurons)
	p := pop{nodes: network.Range(st, size), params: params}
	p.props.Compute(&p.params, ev.Time.Dt)
	pi := int32(len(ev.pops))
	ev.pops = append(ev.pops, p)
	for range size {
		var nrn Neuron
		nrn.Init(&params)
		ev.Neurons = append(ev.Neurons, nrn)
		ev.nrnPop = append(ev.nrnPop, pi)
	}
	return p.nodes, nil
}

func (ev *Engine) CreateSynapseClass(name, baseType string, weight, delay float64) (engine.Handle, error) {
	if err := ev.check("CreateSynapseClass", true); err != nil {
		return -1, err
	}
	if !(delay > 0) {
		return -1, engine.Errorf("CreateSynapseClass", "synapse class %q: delay = %v must be > 0", name, delay)
	}
	sc := synClass{name: name, base: baseType, weight: weight, delay: delay}
	sc.dsteps = int(engine.DelaySteps(delay, ev.Time.Dt))
	ev.syns = append(ev.syns, sc)
	return ev.newHandle(synKind, len(ev.syns)-1), nil
}

func (ev *Engine) newHandle(kind kinds, idx int) engine.Handle {
	ev.hnds = append(ev.hnds, handle{kind: kind, idx: idx})
	return engine.Handle(len(ev.hnds) - 1)
}

// lookup returns the index of handle h, which must be of the given kind.
func (ev *Engine) lookup(op string, h engine.Handle, kind kinds) (int, error) {
	if h < 0 || int(h) >= len(ev.hnds) || ev.hnds[h].kind != kind {
		return -1, engine.Errorf(op, "%w: %d", engine.ErrHandle, h)
	}
	return ev.hnds[h].idx, nil
}

// checkNodes returns an error if any id is not a neuron of this engine.
func (ev *Engine) checkNodes(op string, sel network.Selection) error {
	n := int32(len(ev.Neurons))
	for _, id := range sel {
		if id < 0 || id >= n {
			return engine.Errorf(op, "neuron id %d out of range [0, %d)", id, n)
		}
	}
	return nil
}

func (ev *Engine) Connect(pt *network.Path, syn engine.Handle) error {
	const op = "Connect"
	if err := ev.check(op, true); err != nil {
		return err
	}
	si, err := ev.lookup(op, syn, synKind)
	if err != nil {
		return err
	}
	if !pt.Built() {
		return engine.Errorf(op, "path %s has no connections; build the network first", pt.Name)
	}
	if pt.Send.St+pt.Send.N > len(ev.Neurons) {
		return engine.Errorf(op, "path %s: senders [%d, %d) out of range", pt.Name, pt.Send.St, pt.Send.St+pt.Send.N)
	}
	if err := ev.checkNodes(op, pt.Recv); err != nil {
		return err
	}
	if int64(ev.nCons)+int64(pt.NumSyns()) > math.MaxInt32 {
		return engine.Errorf(op, "path %s: %d connections in total exceed %d", pt.Name, int64(ev.nCons)+int64(pt.NumSyns()), math.MaxInt32)
	}
	ev.pending = append(ev.pending, pendingPath{pt: pt, syn: si})
	ev.nCons += pt.NumSyns()
	return nil
}

func (ev *Engine) CreatePoissonDrive(rate float64) (engine.Handle, error) {
	if err := ev.check("CreatePoissonDrive", true); err != nil {
		return -1, err
	}
	if !(rate >= 0) {
		return -1, engine.Errorf("CreatePoissonDrive", "rate = %v must be >= 0", rate)
	}
	ev.drives = append(ev.drives, rate)
	return ev.newHandle(driveKind, len(ev.drives)-1), nil
}

func (ev *Engine) ConnectAll(drive engine.Handle, targets network.Selection, syn engine.Handle) error {
	const op = "ConnectAll"
	if err := ev.check(op, true); err != nil {
		return err
	}
	di, err := ev.lookup(op, drive, driveKind)
	if err != nil {
		return err
	}
	si, err := ev.lookup(op, syn, synKind)
	if err != nil {
		return err
	}
	if err := ev.checkNodes(op, targets); err != nil {
		return err
	}
	if ev.nrnDrv == nil {
		ev.nrnDrv = make([][]driveIn, len(ev.Neurons))
	} else if len(ev.nrnDrv) < len(ev.Neurons) {
		ev.nrnDrv = append(ev.nrnDrv, make([][]driveIn, len(ev.Neurons)-len(ev.nrnDrv))...)
	}
	in := driveIn{mean: ev.drives[di] * ev.Time.Dt / 1000, weight: ev.syns[si].weight}
	for _, id := range targets {
		ev.nrnDrv[id] = append(ev.nrnDrv[id], in)
	}
	ev.nCons += len(targets)
	return nil
}

func (ev *Engine) CreateRecorder(targets network.Selection) (engine.Handle, error) {
	const op = "CreateRecorder"
	if err := ev.check(op, true); err != nil {
		return -1, err
	}
	if err := ev.checkNodes(op, targets); err != nil {
		return -1, err
	}
	ri := len(ev.recs)
	ev.recs = append(ev.recs, &Recorder{Name: fmt.Sprintf("Recorder%d", ri), Targets: targets})
	return ev.newHandle(recKind, ri), nil
}

func (ev *Engine) NumConnections() int {
	return ev.nCons
}

// freeze builds the run-time structures: sender-major connections,
// input ring buffers, recorder lookup and random streams.
// After this the network can no longer be changed.
func (ev *Engine) freeze() {
	nn := len(ev.Neurons)
	cnt := make([]int32, nn+1)
	for _, pp := range ev.pending {
		st := int32(pp.pt.Send.St)
		for _, si := range pp.pt.RConIndex {
			cnt[st+si+1]++
		}
	}
	for i := 1; i <= nn; i++ {
		cnt[i] += cnt[i-1]
	}
	ev.sendSt = cnt
	ncon := cnt[nn]
	ev.sendTarg = make([]int32, ncon)
	ev.sendSyn = make([]uint16, ncon)
	fill := make([]int32, nn)
	copy(fill, cnt[:nn])
	for _, pp := range ev.pending {
		pt := pp.pt
		st := int32(pt.Send.St)
		for ri, recv := range pt.Recv {
			cst := pt.RConIndexSt[ri]
			for _, si := range pt.RConIndex[cst : cst+pt.RConN[ri]] {
				s := st + si
				ev.sendTarg[fill[s]] = recv
				ev.sendSyn[fill[s]] = uint16(pp.syn)
				fill[s]++
			}
		}
	}
	ev.pending = nil

	maxd := 1
	for _, sc := range ev.syns {
		maxd = max(maxd, sc.dsteps)
	}
	ev.ringLen = maxd + 1
	ev.ringEx = make([]float64, nn*ev.ringLen)
	ev.ringIn = make([]float64, nn*ev.ringLen)

	if len(ev.nrnDrv) < nn {
		ev.nrnDrv = append(ev.nrnDrv, make([][]driveIn, nn-len(ev.nrnDrv))...)
	}
	ev.nrnRecs = make([][]int32, nn)
	for ri, rc := range ev.recs {
		for _, id := range rc.Targets {
			ev.nrnRecs[id] = append(ev.nrnRecs[id], int32(ri))
		}
	}

	nchunk := (nn + UpdtChunk - 1) / UpdtChunk
	ev.rnds = make([]randx.Rand, nchunk)
	for ci := range ev.rnds {
		ev.rnds[ci] = randx.NewSysRand(network.StreamSeed(ev.Kernel.Seed, driveStream, uint64(ci)))
	}
	ev.spikes = make([][]int32, nchunk)
	ev.frozen = true
	slog.Debug("lif: network frozen", "neurons", nn, "connections", ncon, "ringLen", ev.ringLen, "chunks", nchunk)
}

// Run simulates durationMs of time, rounded to whole steps.
func (ev *Engine) Run(ctx context.Context, durationMs float64) error {
	const op = "Run"
	if err := ev.check(op, false); err != nil {
		return err
	}
	if !(durationMs >= 0) {
		return engine.Errorf(op, "duration = %v must be >= 0", durationMs)
	}
	if !ev.frozen {
		ev.freeze()
	}
	nsteps := ev.Time.Steps(durationMs)
	for range nsteps {
		if err := ctx.Err(); err != nil {
			return &engine.Error{Op: op, Err: err}
		}
		if err := ev.Step(); err != nil {
			return err
		}
	}
	ev.hasRun = true
	return nil
}

// Step advances all neurons by one time step and delivers their spikes.
func (ev *Engine) Step() error {
	if !ev.frozen {
		if err := ev.check("Step", false); err != nil {
			return err
		}
		ev.freeze()
	}
	nchunk := len(ev.spikes)
	if ev.Kernel.Threads <= 1 || nchunk <= 1 {
		for ci := range nchunk {
			ev.updateChunk(ci)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(ev.Kernel.Threads)
		for ci := range nchunk {
			eg.Go(func() error {
				ev.updateChunk(ci)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return &engine.Error{Op: "Step", Err: err}
		}
	}
	ev.deliver()
	ev.Time.StepInc()
	return nil
}

// updateChunk updates the neurons of chunk ci, collecting their spikes.
func (ev *Engine) updateChunk(ci int) {
	L := ev.ringLen
	slot := ev.Time.Step % L
	rnd := ev.rnds[ci]
	spk := ev.spikes[ci][:0]
	st := ci * UpdtChunk
	ed := min(st+UpdtChunk, len(ev.Neurons))
	for ni := st; ni < ed; ni++ {
		ri := ni*L + slot
		inEx := ev.ringEx[ri]
		inIn := ev.ringIn[ri]
		ev.ringEx[ri] = 0
		ev.ringIn[ri] = 0
		for _, dr := range ev.nrnDrv[ni] {
			if dr.mean <= 0 {
				continue
			}
			n := randx.PoissonGen(dr.mean, rnd)
			if dr.weight >= 0 {
				inEx += n * dr.weight
			} else {
				inIn += n * dr.weight
			}
		}
		pr := &ev.pops[ev.nrnPop[ni]].props
		if pr.Update(&ev.Neurons[ni], inEx, inIn) {
			spk = append(spk, int32(ni))
		}
	}
	ev.spikes[ci] = spk
}

// deliver records the spikes of the current step and schedules them
// onto their targets.
func (ev *Engine) deliver() {
	L := ev.ringLen
	slot := ev.Time.Step % L
	tm := ev.Time.StepEnd()
	for _, spk := range ev.spikes {
		for _, s := range spk {
			for _, ri := range ev.nrnRecs[s] {
				ev.recs[ri].record(s, tm)
			}
			for j := ev.sendSt[s]; j < ev.sendSt[s+1]; j++ {
				sc := &ev.syns[ev.sendSyn[j]]
				ti := int(ev.sendTarg[j])*L + (slot+sc.dsteps)%L
				if sc.weight >= 0 {
					ev.ringEx[ti] += sc.weight
				} else {
					ev.ringIn[ti] += sc.weight
				}
			}
		}
	}
}

// recorder returns the recorder for handle rec, which can only be
// queried after Run.
func (ev *Engine) recorder(op string, rec engine.Handle) (*Recorder, error) {
	if err := ev.check(op, false); err != nil {
		return nil, err
	}
	ri, err := ev.lookup(op, rec, recKind)
	if err != nil {
		return nil, err
	}
	if !ev.hasRun {
		return nil, &engine.Error{Op: op, Err: engine.ErrNotRun}
	}
	return ev.recs[ri], nil
}

func (ev *Engine) EventCount(rec engine.Handle) (int, error) {
	rc, err := ev.recorder("EventCount", rec)
	if err != nil {
		return 0, err
	}
	return len(rc.Events), nil
}

func (ev *Engine) Events(rec engine.Handle) ([]engine.Event, error) {
	rc, err := ev.recorder("Events", rec)
	if err != nil {
		return nil, err
	}
	return rc.Events, nil
}

// Recorder returns the recorder for handle rec, for export of its events.
func (ev *Engine) Recorder(rec engine.Handle) (*Recorder, error) {
	return ev.recorder("Recorder", rec)
}

func (ev *Engine) Teardown() error {
	*ev = Engine{}
	return nil
}
