// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInit is returned by any call made before Init.
	ErrNotInit = errors.New("engine not initialized")

	// ErrNotRun is returned when recorders are queried before Run.
	ErrNotRun = errors.New("engine has not run")

	// ErrHandle is returned for handles the engine did not create,
	// or of the wrong kind.
	ErrHandle = errors.New("invalid handle")
)

// Error is an error reported by an engine.  Drivers propagate it
// unmodified; it is always fatal for the run.
type Error struct {

	// Op is the engine operation that failed, e.g., "Run".
	Op string

	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns an *Error for op with a formatted message,
// which may wrap another error with %w.
func Errorf(op, format string, a ...any) *Error {
	return &Error{Op: op, Err: fmt.Errorf(format, a...)}
}
