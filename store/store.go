// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store keeps the history of simulation runs, as metrics reports
// keyed by a run id, in memory or in an SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/emer/brunel/metrics"
	"github.com/google/uuid"
)

// ErrNotInit is returned by stores used before Init.
var ErrNotInit = errors.New("store not initialized")

// Store persists run reports.
type Store interface {

	// Init opens the store, creating it if needed.
	Init(ctx context.Context) error

	// SaveRun saves the report, assigning a new RunID if it has none,
	// and returns the RunID.
	SaveRun(ctx context.Context, rp *metrics.Report) (string, error)

	// GetRun returns the report of the given run, and false if there is none.
	GetRun(ctx context.Context, id string) (*metrics.Report, bool, error)

	// ListRuns returns all reports in the order they were first saved.
	ListRuns(ctx context.Context) ([]*metrics.Report, error)

	// Close releases the store.
	Close() error
}

// New returns a store of the given kind: "memory" (or "") or "sqlite",
// which uses the database file at path.
func New(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// setID assigns a new run id if the report has none.
func setID(rp *metrics.Report) string {
	if rp.RunID == "" {
		rp.RunID = uuid.NewString()
	}
	return rp.RunID
}
