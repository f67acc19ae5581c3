// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package network describes a spiking network as plain data: populations of
neurons with contiguous ids, synapse classes, fixed in-degree connectivity
relations between them, Poisson drives and recorder bindings.

Construction is two-step, as in the emergent framework: the structure is
declared with AddPopulation, AddSynapseClass, ConnectFixedInDegree, AddDrive
and AddRecorder, and Build then validates everything and draws all random
connections.  After Build the network is immutable.
*/
package network

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/c2h5oh/datasize"
)

// Drive is a Poisson spike source connected to every neuron in Targets.
type Drive struct {

	// name of the drive
	Name string

	// rate of the Poisson process, in Hz
	Rate float64

	// receiving neurons
	Targets Selection

	// synapse class of the connections
	Syn *SynapseClass
}

// Recorder binds a passive spike sink to a set of neurons.
type Recorder struct {

	// name of the recorder
	Name string

	// recorded neurons
	Targets Selection
}

// Network holds the declared structure and, after Build, the realized
// connectivity.
type Network struct {

	// overall name of network
	Name string

	// populations in creation order
	Pops []*Population

	// map of name to population
	PopMap map[string]*Population `display:"-"`

	// synapse classes
	Syns []*SynapseClass

	// map of name to synapse class
	SynMap map[string]*SynapseClass `display:"-"`

	// connectivity relations
	Paths []*Path

	// Poisson drives
	Drives []*Drive

	// recorder bindings
	Recorders []*Recorder

	// total number of neurons
	NNeurons int

	// seed used to draw the connections
	Seed int64

	// true after Build
	IsBuilt bool
}

// NewNetwork returns a new, empty network.
func NewNetwork(name string) *Network {
	return &Network{
		Name:   name,
		PopMap: map[string]*Population{},
		SynMap: map[string]*SynapseClass{},
	}
}

// AddPopulation creates a population of size neurons, with ids following
// those of all previously created populations.
func (nt *Network) AddPopulation(name, model string, size int, params NeuronParams) (*Population, error) {
	if nt.IsBuilt {
		return nil, ErrBuilt
	}
	if _, has := nt.PopMap[name]; has {
		return nil, fmt.Errorf("population %q already exists", name)
	}
	if size < 0 {
		return nil, fmt.Errorf("population %q: size = %d must be >= 0", name, size)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("population %q: %w", name, err)
	}
	ps := &Population{Name: name, Index: len(nt.Pops), Model: model, St: nt.NNeurons, N: size, Params: params}
	nt.Pops = append(nt.Pops, ps)
	nt.PopMap[name] = ps
	nt.NNeurons += size
	return ps, nil
}

// PopByName returns the population of the given name.
func (nt *Network) PopByName(name string) (*Population, error) {
	ps, ok := nt.PopMap[name]
	if !ok {
		return nil, fmt.Errorf("population %q: %w", name, ErrNotFound)
	}
	return ps, nil
}

// AllNodes returns the ids of all neurons in creation order.
func (nt *Network) AllNodes() Selection {
	return Range(0, nt.NNeurons)
}

// AddSynapseClass registers a synapse class.
func (nt *Network) AddSynapseClass(name, base string, typ SynTypes, weight, delay float64) (*SynapseClass, error) {
	if nt.IsBuilt {
		return nil, ErrBuilt
	}
	if _, has := nt.SynMap[name]; has {
		return nil, fmt.Errorf("synapse class %q already exists", name)
	}
	sc := &SynapseClass{Name: name, Base: base, Type: typ, Weight: weight, Delay: delay}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	nt.Syns = append(nt.Syns, sc)
	nt.SynMap[name] = sc
	return sc, nil
}

// SynByName returns the synapse class of the given name.
func (nt *Network) SynByName(name string) (*SynapseClass, error) {
	sc, ok := nt.SynMap[name]
	if !ok {
		return nil, fmt.Errorf("synapse class %q: %w", name, ErrNotFound)
	}
	return sc, nil
}

// ConnectFixedInDegree declares a path giving every neuron in recv exactly
// inDegree distinct senders from send.  An impossible in-degree is rejected
// here with an *InvalidDegreeError and nothing is added.
func (nt *Network) ConnectFixedInDegree(send *Population, recv Selection, inDegree int, syn *SynapseClass) (*Path, error) {
	if nt.IsBuilt {
		return nil, ErrBuilt
	}
	if send == nil || syn == nil {
		return nil, fmt.Errorf("ConnectFixedInDegree: send and syn must be non-nil")
	}
	pt := &Path{
		Name:    fmt.Sprintf("%sPath%d", send.Name, len(nt.Paths)),
		Index:   len(nt.Paths),
		Send:    send,
		Recv:    recv,
		Syn:     syn,
		Pattern: NewFixedInDegree(inDegree),
	}
	if err := pt.Validate(); err != nil {
		return nil, err
	}
	nt.Paths = append(nt.Paths, pt)
	return pt, nil
}

// AddDrive declares a Poisson drive at rate Hz onto every target.
func (nt *Network) AddDrive(name string, rate float64, targets Selection, syn *SynapseClass) (*Drive, error) {
	if nt.IsBuilt {
		return nil, ErrBuilt
	}
	if syn == nil {
		return nil, fmt.Errorf("drive %q: syn must be non-nil", name)
	}
	if !(rate >= 0) {
		return nil, fmt.Errorf("drive %q: rate = %v must be >= 0", name, rate)
	}
	dr := &Drive{Name: name, Rate: rate, Targets: targets, Syn: syn}
	nt.Drives = append(nt.Drives, dr)
	return dr, nil
}

// AddRecorder declares a recorder bound to the targets.
func (nt *Network) AddRecorder(name string, targets Selection) (*Recorder, error) {
	if nt.IsBuilt {
		return nil, ErrBuilt
	}
	rc := &Recorder{Name: name, Targets: targets}
	nt.Recorders = append(nt.Recorders, rc)
	return rc, nil
}

// Build validates every path and then draws all connections using
// the given seed and up to threads goroutines.  If any path is invalid,
// no connection is drawn at all.  A network can only be built once.
func (nt *Network) Build(seed int64, threads int) error {
	if nt.IsBuilt {
		return ErrBuilt
	}
	for _, pt := range nt.Paths {
		if err := pt.Validate(); err != nil {
			return err
		}
	}
	for _, sc := range nt.Syns {
		if !sc.SignOK() {
			slog.Warn("synapse weight sign does not match class type", "class", sc.Name, "type", sc.Type, "weight", sc.Weight)
		}
	}
	for _, pt := range nt.Paths {
		if err := pt.Build(seed, threads); err != nil {
			return err
		}
	}
	nt.Seed = seed
	nt.IsBuilt = true
	return nil
}

// NumNeurons returns the total number of neurons.
func (nt *Network) NumNeurons() int {
	return nt.NNeurons
}

// NumNetworkSynapses returns the number of connections among neurons.
func (nt *Network) NumNetworkSynapses() int {
	n := 0
	for _, pt := range nt.Paths {
		n += pt.NumSyns()
	}
	return n
}

// NumDriveConnections returns the number of drive-to-neuron connections.
func (nt *Network) NumDriveConnections() int {
	n := 0
	for _, dr := range nt.Drives {
		n += len(dr.Targets)
	}
	return n
}

// NumSynapses returns the total of network and drive connections.
func (nt *Network) NumSynapses() int {
	return nt.NumNetworkSynapses() + nt.NumDriveConnections()
}

// SynapsesBySyn returns the number of connections, including drive
// connections, that use the named synapse class.
func (nt *Network) SynapsesBySyn(name string) int {
	n := 0
	for _, pt := range nt.Paths {
		if pt.Syn.Name == name {
			n += pt.NumSyns()
		}
	}
	for _, dr := range nt.Drives {
		if dr.Syn.Name == name {
			n += len(dr.Targets)
		}
	}
	return n
}

// SynMemBytes returns the memory used by the connection index arrays.
func (nt *Network) SynMemBytes() uint64 {
	mem := uint64(0)
	for _, pt := range nt.Paths {
		mem += 4 * uint64(len(pt.RConN)+len(pt.RConIndexSt)+len(pt.RConIndex)+len(pt.SConN))
	}
	return mem
}

// SizeReport returns a string reporting the size of each path and of
// the network as a whole, in connections and memory.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	for _, ps := range nt.Pops {
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Sends To:\n", ps.Name, ps.N)
		for _, pt := range nt.Paths {
			if pt.Send != ps {
				continue
			}
			pmem := 4 * uint64(len(pt.RConN)+len(pt.RConIndexSt)+len(pt.RConIndex)+len(pt.SConN))
			fmt.Fprintf(&b, "\t%14s:\t Recv: %d\t Syns: %d\t FanOut: %g avg %g max\t SynMem: %v\n", pt.Name, len(pt.Recv), pt.NumSyns(), pt.SConNAvgMax.Avg, pt.SConNAvgMax.Max, datasize.ByteSize(pmem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n%14s:\t Neurons: %d\t Syns: %d\t Drive cons: %d\t SynMem: %v\n", nt.Name, nt.NNeurons, nt.NumNetworkSynapses(), nt.NumDriveConnections(), datasize.ByteSize(nt.SynMemBytes()).HumanReadable())
	return b.String()
}
