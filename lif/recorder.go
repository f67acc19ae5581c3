// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lif

import (
	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/fsx"
	"cogentcore.org/lab/table"
	"cogentcore.org/lab/tensor"
	"github.com/emer/brunel/engine"
	"github.com/emer/brunel/network"
)

// Recorder collects the spikes of a set of neurons, in time order.
type Recorder struct {

	// name of the recorder
	Name string

	// recorded neurons
	Targets network.Selection

	// recorded spikes
	Events []engine.Event
}

func (rc *Recorder) record(sender int32, tm float64) {
	rc.Events = append(rc.Events, engine.Event{Sender: sender, Time: tm})
}

// Table returns the events as a table with Senders and Times columns.
func (rc *Recorder) Table() *table.Table {
	snd := make([]int, len(rc.Events))
	tms := make([]float64, len(rc.Events))
	for i, ev := range rc.Events {
		snd[i] = int(ev.Sender)
		tms[i] = ev.Time
	}
	dt := table.New(rc.Name)
	errors.Log(dt.AddColumn("Senders", tensor.NewIntFromValues(snd...)))
	errors.Log(dt.AddColumn("Times", tensor.NewFloat64FromValues(tms...)))
	return dt
}

// SaveCSV saves the events to a tab-separated file with headers.
func (rc *Recorder) SaveCSV(filename string) error {
	return rc.Table().SaveCSV(fsx.Filename(filename), tensor.Tab, table.Headers)
}
