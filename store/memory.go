// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"sync"

	"github.com/emer/brunel/metrics"
)

// MemoryStore keeps reports in memory, for tests and one-off runs.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]metrics.Report
	order       []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]metrics.Report)
	s.order = nil
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, rp *metrics.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return "", ErrNotInit
	}
	id := setID(rp)
	if _, has := s.runs[id]; !has {
		s.order = append(s.order, id)
	}
	s.runs[id] = *rp
	return id, nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (*metrics.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInit
	}
	rp, ok := s.runs[id]
	if !ok {
		return nil, false, nil
	}
	return &rp, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]*metrics.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInit
	}
	runs := make([]*metrics.Report, len(s.order))
	for i, id := range s.order {
		rp := s.runs[id]
		runs[i] = &rp
	}
	return runs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
