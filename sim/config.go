// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/reflectx"
	"github.com/emer/brunel/calib"
	"github.com/emer/brunel/network"
)

// NetConfig has config parameters related to the network structure.
type NetConfig struct {

	// Order scales the network: NE = 4 Order excitatory and
	// NI = Order inhibitory neurons.
	Order int `default:"2500" min:"1"`

	// Epsilon is the connection probability: each neuron receives
	// floor(Epsilon N) connections from each population of size N.
	Epsilon float64 `default:"0.1"`

	// NRec is the number of neurons recorded from each population.
	NRec int `default:"50"`
}

// SynConfig has config parameters related to the synapses and drive.
type SynConfig struct {

	// J is the amplitude of an excitatory PSP, in mV.
	J float64 `default:"0.1"`

	// G is the ratio of inhibitory to excitatory weight magnitude.
	// It is not checked: G <= 0 is logged as a warning only.
	G float64 `default:"5"`

	// Eta is the external rate relative to the threshold rate.
	Eta float64 `default:"2"`

	// Delay is the synaptic delay, in ms.
	Delay float64 `default:"1.5"`
}

// NeuronConfig has the iaf_psc_alpha neuron parameters.
type NeuronConfig struct {

	// CMem is the membrane capacitance, in pF.
	CMem float64 `default:"250"`

	// TauMem is the membrane time constant, in ms.
	TauMem float64 `default:"20"`

	// TauSyn is the rise time of the synaptic currents, in ms.
	TauSyn float64 `default:"0.5"`

	// TRef is the refractory period, in ms.
	TRef float64 `default:"2"`

	// Theta is the threshold relative to EL, in mV.
	Theta float64 `default:"20"`

	// EL is the resting potential, in mV.
	EL float64 `default:"0"`

	// VReset is the reset potential, in mV.
	VReset float64 `default:"0"`

	// VInit is the initial membrane potential, in mV.
	VInit float64 `default:"0"`
}

// RunConfig has config parameters related to running the sim.
type RunConfig struct {

	// SimTime is the simulated time, in ms.
	SimTime float64 `default:"1000"`

	// Dt is the integration time step, in ms.
	Dt float64 `default:"0.1"`

	// Seed determines all random connections and drive spikes.
	Seed int64 `default:"1" flag:"seed"`

	// Threads is the number of goroutines for building and running.
	// 0 uses GOMAXPROCS.
	Threads int `default:"0"`
}

// LogConfig has config parameters related to logging and output.
type LogConfig struct {

	// Level is the log level: debug, info, warn or error.
	Level string `default:"info"`

	// SpikeDir is a directory to save the recorded spikes to,
	// as one tab-separated file per population.  Empty for none.
	SpikeDir string

	// Report is a file to save the run report to, in YAML.  Empty for none.
	Report string

	// Store is the run history backend: memory or sqlite.
	// Empty to not save runs.
	Store string

	// StorePath is the database file for the sqlite store.
	StorePath string `default:"brunel.db"`
}

// Config has the overall Sim configuration options.
type Config struct {

	// Name is the short name of the sim.
	Name string `display:"-" default:"Brunel"`

	// Title is the longer title of the sim.
	Title string `display:"-" default:"Brunel balanced random network"`

	// Doc is brief documentation of the sim.
	Doc string `display:"-" default:"Sparsely connected network of excitatory and inhibitory integrate-and-fire neurons driven by Poisson input (Brunel, 2000)."`

	// Net has network structure options.
	Net NetConfig `display:"add-fields"`

	// Syn has synapse and drive options.
	Syn SynConfig `display:"add-fields"`

	// Neuron has neuron model options.
	Neuron NeuronConfig `display:"add-fields"`

	// Run has sim running related configuration options.
	Run RunConfig `display:"add-fields"`

	// Log has logging and output options.
	Log LogConfig `display:"add-fields"`
}

func (cfg *Config) Defaults() {
	errors.Log(reflectx.SetFromDefaultTags(cfg))
}

func NewConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

// NE returns the size of the excitatory population.
func (cfg *Config) NE() int { return 4 * cfg.Net.Order }

// NI returns the size of the inhibitory population.
func (cfg *Config) NI() int { return cfg.Net.Order }

// Validate checks the structural settings.  Physiological values
// are checked by the calibration, and the in-degrees by the network.
func (cfg *Config) Validate() error {
	emsg := ""
	if cfg.Net.Order < 1 {
		emsg += fmt.Sprintf("Order = %d must be >= 1; ", cfg.Net.Order)
	}
	if !(cfg.Net.Epsilon > 0) {
		emsg += fmt.Sprintf("Epsilon = %v must be > 0; ", cfg.Net.Epsilon)
	}
	if cfg.Net.NRec < 0 || cfg.Net.NRec > cfg.NI() {
		emsg += fmt.Sprintf("NRec = %d must be in [0, NI = %d]; ", cfg.Net.NRec, cfg.NI())
	}
	if !(cfg.Run.Dt > 0) {
		emsg += fmt.Sprintf("Dt = %v must be > 0; ", cfg.Run.Dt)
	}
	if !(cfg.Run.SimTime >= 0) {
		emsg += fmt.Sprintf("SimTime = %v must be >= 0; ", cfg.Run.SimTime)
	}
	if !(cfg.Syn.Delay > 0) {
		emsg += fmt.Sprintf("Delay = %v must be > 0; ", cfg.Syn.Delay)
	}
	if cfg.Run.Threads < 0 {
		emsg += fmt.Sprintf("Threads = %d must be >= 0; ", cfg.Run.Threads)
	}
	if emsg != "" {
		return fmt.Errorf("sim config: %s", emsg)
	}
	return nil
}

// CalibParams returns the inputs of the calibration chain.
func (cfg *Config) CalibParams() calib.Params {
	return calib.Params{
		J:       cfg.Syn.J,
		G:       cfg.Syn.G,
		Eta:     cfg.Syn.Eta,
		Epsilon: cfg.Net.Epsilon,
		NE:      cfg.NE(),
		NI:      cfg.NI(),
		Theta:   cfg.Neuron.Theta,
		CMem:    cfg.Neuron.CMem,
		TauMem:  cfg.Neuron.TauMem,
		TauSyn:  cfg.Neuron.TauSyn,
	}
}

// NeuronParams returns the parameters shared by all neurons.
func (cfg *Config) NeuronParams() network.NeuronParams {
	nc := &cfg.Neuron
	return network.NeuronParams{
		CMem:     nc.CMem,
		TauMem:   nc.TauMem,
		TauSynEx: nc.TauSyn,
		TauSynIn: nc.TauSyn,
		TRef:     nc.TRef,
		EL:       nc.EL,
		VReset:   nc.VReset,
		VInit:    nc.VInit,
		VTh:      nc.EL + nc.Theta,
	}
}
