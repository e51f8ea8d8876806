// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SessionState is a position in the session lifecycle.
type SessionState int

const (
	Disconnected SessionState = iota
	Connected
	ChangesEnumerated
	Committing
	Done
	// Errored is absorbing: nothing but a discard-only finalize is accepted.
	Errored
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case ChangesEnumerated:
		return "changes_enumerated"
	case Committing:
		return "committing"
	case Done:
		return "done"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ApplyResult is returned by an applier after a change has been written to
// the target system.
type ApplyResult struct {
	// Fingerprint is the fingerprint of the item as now held by the member.
	// Empty means it equals the fingerprint carried by the applied change.
	Fingerprint Fingerprint `json:"fingerprint,omitempty"`
}

// ChangeFailure pairs a change with the reason its apply failed.
type ChangeFailure struct {
	Change ChangeRecord
	Err    error
}

// CommitReport summarises one commit phase.
type CommitReport struct {
	Applied []ChangeRecord
	Failed  []ChangeFailure
}

// SyncStatus is the running summary of the sessions run by one daemon.
type SyncStatus struct {
	Running  bool
	Sessions int
	Failures int

	// LastReport is nil until the first session finished.
	LastReport    *SessionReport
	LastError     string
	LastSuccessAt time.Time
}

// SessionReport summarises a full session run.
type SessionReport struct {
	SessionID  string
	MemberID   string
	StartedAt  time.Time
	FinishedAt time.Time
	ChangeSets []ChangeSet
	Commit     CommitReport
	Committed  bool
}
