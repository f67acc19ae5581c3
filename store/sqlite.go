// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/emer/brunel/metrics"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps reports in an SQLite database file.  Each report is
// stored as a YAML document, with a few columns for querying.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			seed INTEGER NOT NULL,
			neurons INTEGER NOT NULL,
			synapses INTEGER NOT NULL,
			rate_ex REAL NOT NULL,
			rate_in REAL NOT NULL,
			payload TEXT NOT NULL
		)`)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInit
	}
	return s.db, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rp *metrics.Report) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	id := setID(rp)
	var b bytes.Buffer
	if err := rp.WriteYAML(&b); err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, name, seed, neurons, synapses, rate_ex, rate_in, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			seed = excluded.seed,
			neurons = excluded.neurons,
			synapses = excluded.synapses,
			rate_ex = excluded.rate_ex,
			rate_in = excluded.rate_in,
			payload = excluded.payload
	`, id, rp.Name, rp.Seed, rp.NNeurons, rp.NumSynapses, rp.RateEx, rp.RateIn, b.String())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*metrics.Report, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload string
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	rp, err := metrics.ReadYAML(bytes.NewBufferString(payload))
	if err != nil {
		return nil, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return rp, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*metrics.Report, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM runs ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*metrics.Report
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		rp, err := metrics.ReadYAML(bytes.NewBufferString(payload))
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, rp)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
