// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics computes and formats the summary of a simulation run:
// firing rates from recorded spike counts, synapse counts and timings.
package metrics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/lab/table"
	"cogentcore.org/lab/tensor"
	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"
)

// Rate returns the average firing rate in Hz of nRec recorded neurons
// that emitted events spikes during simtime ms.
// It is events / simtime * 1000 / nRec, evaluated in that order.
// nRec <= 0 or simtime <= 0 gives 0.
func Rate(events int, simtime float64, nRec int) float64 {
	if nRec <= 0 || !(simtime > 0) {
		return 0
	}
	return float64(events) / simtime * 1000 / float64(nRec)
}

// Report is the summary of one simulation run.
type Report struct {

	// name of the network
	Name string `yaml:"name"`

	// identifier of the run, set when it is stored
	RunID string `yaml:"run_id,omitempty"`

	// random seed
	Seed int64 `yaml:"seed"`

	// network scale: NE = 4 Order, NI = Order
	Order int `yaml:"order"`

	// number of neurons
	NNeurons int `yaml:"neurons"`

	// excitatory in-degree
	CE int `yaml:"ce"`

	// inhibitory in-degree
	CI int `yaml:"ci"`

	// number of recorded neurons per population
	NRec int `yaml:"n_rec"`

	// simulated time, in ms
	SimTime float64 `yaml:"simtime_ms"`

	// integration time step, in ms
	Dt float64 `yaml:"dt_ms"`

	// excitatory weight, in pA
	JEx float64 `yaml:"j_ex"`

	// inhibitory weight, in pA
	JIn float64 `yaml:"j_in"`

	// threshold rate, in spikes per ms
	NuTh float64 `yaml:"nu_th"`

	// external rate per input, in spikes per ms
	NuEx float64 `yaml:"nu_ex"`

	// rate of the Poisson drive, in Hz
	PRate float64 `yaml:"p_rate"`

	// total synapses: network plus drive connections
	NumSynapses int `yaml:"synapses"`

	// synapses using the excitatory class, including the drive
	NumExcitatory int `yaml:"synapses_ex"`

	// synapses using the inhibitory class
	NumInhibitory int `yaml:"synapses_in"`

	// drive-to-neuron connections
	NumDrive int `yaml:"synapses_drive"`

	// memory of the connectivity arrays, in bytes
	SynMem uint64 `yaml:"syn_mem_bytes"`

	// spikes recorded from the excitatory population
	EventsEx int `yaml:"events_ex"`

	// spikes recorded from the inhibitory population
	EventsIn int `yaml:"events_in"`

	// excitatory firing rate, in Hz
	RateEx float64 `yaml:"rate_ex"`

	// inhibitory firing rate, in Hz
	RateIn float64 `yaml:"rate_in"`

	// wall-clock time to build the network
	BuildTime time.Duration `yaml:"build_time"`

	// wall-clock time to simulate
	RunTime time.Duration `yaml:"run_time"`
}

// SetRates computes RateEx and RateIn from the event counts.
func (rp *Report) SetRates() {
	rp.RateEx = Rate(rp.EventsEx, rp.SimTime, rp.NRec)
	rp.RateIn = Rate(rp.EventsIn, rp.SimTime, rp.NRec)
}

func (rp *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s network simulation\n", rp.Name)
	fmt.Fprintf(&b, "Number of neurons : %d\n", rp.NNeurons)
	fmt.Fprintf(&b, "Number of synapses: %d\n", rp.NumSynapses)
	fmt.Fprintf(&b, "       Excitatory : %d\n", rp.NumExcitatory)
	fmt.Fprintf(&b, "       Inhibitory : %d\n", rp.NumInhibitory)
	fmt.Fprintf(&b, "Synapse memory    : %s\n", datasize.ByteSize(rp.SynMem).HumanReadable())
	fmt.Fprintf(&b, "Excitatory rate   : %.2f Hz\n", rp.RateEx)
	fmt.Fprintf(&b, "Inhibitory rate   : %.2f Hz\n", rp.RateIn)
	fmt.Fprintf(&b, "Building time     : %.2f s\n", rp.BuildTime.Seconds())
	fmt.Fprintf(&b, "Simulation time   : %.2f s\n", rp.RunTime.Seconds())
	return b.String()
}

// WriteYAML writes the report to w in YAML format.
func (rp *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rp); err != nil {
		return err
	}
	return enc.Close()
}

// SaveYAML saves the report to a YAML file.
func (rp *Report) SaveYAML(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return rp.WriteYAML(f)
}

// ReadYAML reads a report written by WriteYAML.
func ReadYAML(r io.Reader) (*Report, error) {
	rp := &Report{}
	if err := yaml.NewDecoder(r).Decode(rp); err != nil {
		return nil, err
	}
	return rp, nil
}

// Table returns the report as a one-row table, for logging runs to CSV.
func (rp *Report) Table() *table.Table {
	dt := table.New("Report")
	errors.Log(dt.AddColumn("Name", tensor.NewStringFromValues(rp.Name)))
	errors.Log(dt.AddColumn("Seed", tensor.NewIntFromValues(int(rp.Seed))))
	errors.Log(dt.AddColumn("Order", tensor.NewIntFromValues(rp.Order)))
	errors.Log(dt.AddColumn("Neurons", tensor.NewIntFromValues(rp.NNeurons)))
	errors.Log(dt.AddColumn("Synapses", tensor.NewIntFromValues(rp.NumSynapses)))
	errors.Log(dt.AddColumn("RateEx", tensor.NewFloat64FromValues(rp.RateEx)))
	errors.Log(dt.AddColumn("RateIn", tensor.NewFloat64FromValues(rp.RateIn)))
	errors.Log(dt.AddColumn("BuildTime", tensor.NewFloat64FromValues(rp.BuildTime.Seconds())))
	errors.Log(dt.AddColumn("RunTime", tensor.NewFloat64FromValues(rp.RunTime.Seconds())))
	return dt
}
