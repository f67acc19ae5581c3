// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDegree is matched by every *InvalidDegreeError via errors.Is.
	ErrInvalidDegree = errors.New("invalid in-degree")

	// ErrBuilt is returned when modifying or re-building a built network.
	ErrBuilt = errors.New("network already built")

	// ErrNotFound is returned for unknown populations or synapse classes.
	ErrNotFound = errors.New("not found")

	// ErrTooLarge is returned for a path with more connections than
	// its int32 indexes can address.
	ErrTooLarge = errors.New("too many connections")
)

// InvalidDegreeError reports an in-degree that cannot be drawn without
// replacement from the sending population.  It is structural and fatal.
type InvalidDegreeError struct {
	// Path is the name of the offending path.
	Path string

	// InDegree is the requested number of sources per target.
	InDegree int

	// NSend is the size of the sending population.
	NSend int
}

func (e *InvalidDegreeError) Error() string {
	return fmt.Sprintf("invalid in-degree on path %s: %d sources requested from a population of %d", e.Path, e.InDegree, e.NSend)
}

// Is makes errors.Is(err, ErrInvalidDegree) true for any *InvalidDegreeError.
func (e *InvalidDegreeError) Is(target error) bool { return target == ErrInvalidDegree }
