package service

import (
	"errors"

	"github.com/MKhiriev/go-sync-keeper/internal/store"
)

// Storage failure kinds, re-exported so callers of the service layer do not
// need to import the store package to match them.
var (
	ErrStorageUnavailable = store.ErrStorageUnavailable
	ErrCorrupt            = store.ErrCorrupt
)

// Classification errors.
var (
	// ErrDuplicateIdentity is returned when an item source yields the same
	// identity twice within one pass.
	ErrDuplicateIdentity = errors.New("duplicate item identity")

	// ErrInvalidItem is returned for an item with an empty identity or an
	// empty fingerprint.
	ErrInvalidItem = errors.New("invalid item")
)

// Session errors.
var (
	// ErrApplyFailed wraps a per-change apply failure. The session continues.
	ErrApplyFailed = errors.New("apply failed")

	// ErrTimeout is returned when a phase exceeds its time budget.
	ErrTimeout = errors.New("phase timed out")

	// ErrConnectFailed is returned when the member configuration cannot be
	// loaded or the device refuses the connection.
	ErrConnectFailed = errors.New("connect failed")

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current session state.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrHandleClosed is returned by a fingerprint handle after Commit or
	// Discard.
	ErrHandleClosed = errors.New("fingerprint handle closed")

	// ErrSessionErrored is returned when success is reported for a session
	// that has already failed.
	ErrSessionErrored = errors.New("session errored")

	// ErrUnknownObjectType is returned for an object type the session does
	// not accept.
	ErrUnknownObjectType = errors.New("object type not accepted by session")

	// ErrSessionInProgress is returned when a session is requested while
	// another one is still running.
	ErrSessionInProgress = errors.New("sync session in progress")
)
