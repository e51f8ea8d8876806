// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify].
type ErrorClassification int

const (
	// Unavailable indicates a transient or environmental failure; the
	// persisted state is assumed intact.
	Unavailable ErrorClassification = iota

	// Corrupt indicates the persisted state cannot be trusted.
	Corrupt
)

// Err returns the sentinel matching c.
func (c ErrorClassification) Err() error {
	if c == Corrupt {
		return ErrCorrupt
	}
	return ErrStorageUnavailable
}

// classifyError wraps err with op and the failure kind reported by c.
// Errors that already carry a failure kind are wrapped with op only.
func classifyError(c ErrorClassificator, op, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("%w: %w", op, err)
	}

	kind := Unavailable
	if c != nil {
		kind = c.Classify(err)
	}
	return fmt.Errorf("%w: %w: %w", kind.Err(), op, err)
}
