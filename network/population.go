// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

// Selection is an ordered list of global neuron ids.  Order is significant:
// it is the creation order of the neurons, and subsets such as the
// recorded neurons are defined as prefixes of it.
type Selection []int32

// Range returns the contiguous selection [st, st+n).
func Range(st, n int) Selection {
	sl := make(Selection, n)
	for i := range sl {
		sl[i] = int32(st + i)
	}
	return sl
}

// Union concatenates the selections in order.  Duplicates are kept,
// which does not arise for disjoint populations.
func Union(sels ...Selection) Selection {
	n := 0
	for _, s := range sels {
		n += len(s)
	}
	un := make(Selection, 0, n)
	for _, s := range sels {
		un = append(un, s...)
	}
	return un
}

// Len returns the number of ids.
func (sl Selection) Len() int { return len(sl) }

// First returns the first n ids (all of them if n exceeds the length).
func (sl Selection) First(n int) Selection {
	n = max(0, min(n, len(sl)))
	return sl[:n:n]
}

// Population is a fixed-size group of neurons sharing one model and one
// set of parameters.  Its neurons have contiguous global ids [St, St+N),
// assigned in creation order by Network.AddPopulation.
type Population struct {

	// name of the population, unique within the network
	Name string

	// index in the network's list of populations
	Index int

	// neuron model name
	Model string

	// global id of the first neuron
	St int

	// number of neurons
	N int

	// model parameters shared by all neurons
	Params NeuronParams
}

// Nodes returns all neuron ids in creation order.
func (ps *Population) Nodes() Selection {
	return Range(ps.St, ps.N)
}

// First returns the first n neuron ids in creation order.
func (ps *Population) First(n int) Selection {
	return Range(ps.St, max(0, min(n, ps.N)))
}

// Contains reports whether the global id belongs to this population.
func (ps *Population) Contains(id int32) bool {
	return int(id) >= ps.St && int(id) < ps.St+ps.N
}

// Local converts a global id into the index within the population.
func (ps *Population) Local(id int32) int {
	return int(id) - ps.St
}
