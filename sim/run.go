// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"cogentcore.org/core/base/errors"
	"github.com/emer/brunel/engine"
	"github.com/emer/brunel/lif"
	"github.com/emer/brunel/metrics"
	"github.com/emer/brunel/store"
)

// RunSim runs the whole benchmark with the reference engine and writes
// the outputs selected in cfg.Log.  It is the entry point of the command.
func RunSim(cfg *Config) error {
	slog.SetDefault(NewLogger(cfg.Log.Level, os.Stderr))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ss := New(cfg, lif.New())
	defer func() { errors.Log(ss.Teardown()) }()
	rp, err := ss.RunAll(ctx)
	if err != nil {
		return err
	}
	fmt.Print(rp.String())
	return ss.SaveOutputs(ctx, rp)
}

// RunAll runs the lifecycle from Init to Report.
func (ss *Sim) RunAll(ctx context.Context) (*metrics.Report, error) {
	if err := ss.Init(); err != nil {
		return nil, err
	}
	if err := ss.Calibrate(); err != nil {
		return nil, err
	}
	if err := ss.Build(); err != nil {
		return nil, err
	}
	if err := ss.Run(ctx); err != nil {
		return nil, err
	}
	return ss.Report()
}

// SaveOutputs writes the spike files and the report, and saves the run
// to the store, as configured.
func (ss *Sim) SaveOutputs(ctx context.Context, rp *metrics.Report) error {
	lc := &ss.Config.Log
	if lc.SpikeDir != "" {
		if err := ss.SaveSpikes(lc.SpikeDir); err != nil {
			return err
		}
	}
	if lc.Store != "" {
		st, err := store.New(lc.Store, lc.StorePath)
		if err != nil {
			return err
		}
		if err := st.Init(ctx); err != nil {
			return err
		}
		id, err := st.SaveRun(ctx, rp)
		errors.Log(st.Close())
		if err != nil {
			return err
		}
		slog.Info("run saved", "store", lc.Store, "id", id)
	}
	if lc.Report != "" {
		if err := rp.SaveYAML(lc.Report); err != nil {
			return err
		}
	}
	return nil
}

// SaveSpikes saves the recorded spikes of each population to
// dir/<name>-<pop>.tsv.
func (ss *Sim) SaveSpikes(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, r := range []struct {
		pop string
		h   engine.Handle
	}{{"ex", ss.RecEx}, {"in", ss.RecIn}} {
		evs, err := ss.Engine.Events(r.h)
		if err != nil {
			return err
		}
		rc := &lif.Recorder{Name: r.pop, Events: evs}
		fn := filepath.Join(dir, fmt.Sprintf("%s-%s.tsv", ss.Config.Name, r.pop))
		if err := rc.SaveCSV(fn); err != nil {
			return err
		}
		slog.Debug("spikes saved", "file", fn, "events", len(evs))
	}
	return nil
}
