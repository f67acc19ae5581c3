// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package engine defines the boundary between the network construction code
and the simulation engine that integrates the neuron dynamics.

An Engine is an explicit, caller-owned object: there is no global kernel.
Its lifecycle is Init, then the Create* and Connect* calls, then Run, then
queries of the recorders, then Teardown.  Connectivity is drawn by the
network package and handed to the engine as realized paths, so the edge
set does not depend on the engine.
*/
package engine

import (
	"context"

	"github.com/emer/brunel/network"
)

// Handle identifies an object created inside an engine: a synapse class,
// a drive or a recorder.  Handles are only meaningful to the engine
// that returned them.
type Handle int32

// Event is one recorded spike.
type Event struct {

	// global id of the neuron that fired
	Sender int32

	// spike time, in ms
	Time float64
}

// Kernel holds the global settings of a simulation run.
type Kernel struct {

	// integration time step, in ms
	Resolution float64 `default:"0.1"`

	// seed of all random streams used by the engine
	Seed int64 `default:"1"`

	// maximum number of goroutines used to update neurons
	Threads int `default:"1"`
}

func (k *Kernel) Defaults() {
	k.Resolution = 0.1
	k.Seed = 1
	k.Threads = 1
}

// Engine is implemented by simulation engines.  Methods are not safe for
// concurrent use; an engine may use goroutines internally.
type Engine interface {

	// Init resets the engine and applies the kernel settings.
	// It must be called before anything else.
	Init(k Kernel) error

	// CreatePopulation creates size neurons of the given model and returns
	// their ids, which are contiguous and follow previously created ones.
	CreatePopulation(model string, size int, params network.NeuronParams) (network.Selection, error)

	// CreateSynapseClass registers a static synapse class.
	CreateSynapseClass(name, baseType string, weight, delay float64) (Handle, error)

	// Connect installs the realized connections of a built path,
	// all using the synapse class syn.
	Connect(pt *network.Path, syn Handle) error

	// CreatePoissonDrive creates a Poisson spike source with rate in Hz.
	CreatePoissonDrive(rate float64) (Handle, error)

	// ConnectAll connects the drive to every target through syn.
	// Each target receives an independent realization of the process.
	ConnectAll(drive Handle, targets network.Selection, syn Handle) error

	// CreateRecorder creates a spike recorder bound to the targets.
	CreateRecorder(targets network.Selection) (Handle, error)

	// Run advances the simulation by durationMs.  It blocks until done,
	// and returns the context error if ctx is cancelled first.
	Run(ctx context.Context, durationMs float64) error

	// EventCount returns the number of spikes recorded so far.
	EventCount(rec Handle) (int, error)

	// Events returns the spikes recorded so far, in time order.
	Events(rec Handle) ([]Event, error)

	// NumConnections returns the number of synapses in the engine,
	// counting network and drive connections.
	NumConnections() int

	// Teardown releases all resources.  The engine must be Init'ed again
	// before further use.
	Teardown() error
}
