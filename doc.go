// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package brunel is the overall repository for the Brunel (2000) sparsely
connected network of excitatory and inhibitory spiking neurons, implemented
in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* psp: the normalization of the postsynaptic potential of an alpha-shaped
current, including a Lambert W solver for the time of the peak.

* calib: derives the synaptic weights and the external drive rate from the
target PSP amplitude, the inhibition ratio g and the external rate ratio eta.

* network: populations, synapse classes and the fixed in-degree random
connectivity, drawn in parallel with results that depend only on the seed.

* engine: the interface to a simulation engine, which integrates the neurons.

* lif: an in-process engine for iaf_psc_alpha neurons using exact integration.

* metrics: firing rates and the run report.

* store: history of runs, in memory or in an SQLite database.

* sim: the benchmark itself, as an explicit Init, Calibrate, Build, Run,
Teardown lifecycle, and its configuration.

* examples: examples/bench compiles into the runnable benchmark program.
*/
package brunel
