// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calib

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every *ConfigError via errors.Is.
var ErrConfig = errors.New("configuration error")

// ConfigError is a fatal, pre-run error in the calibration inputs.
type ConfigError struct {
	// Param names the offending parameter.
	Param string

	// Value is the offending value.
	Value float64

	// Reason describes the violated condition.
	Reason string

	// Err is an optional underlying cause.
	Err error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("configuration error: %s = %v: %s", e.Param, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfig) true for any *ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
