// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ChangeKind classifies an item against the remembered fingerprint state.
type ChangeKind int

const (
	// Unchanged means the stored fingerprint equals the observed one.
	Unchanged ChangeKind = iota

	// Added means no fingerprint was stored for the item.
	Added

	// Modified means a different fingerprint was stored for the item.
	Modified

	// Deleted means the item was stored but not observed this session.
	Deleted
)

// String implements fmt.Stringer.
func (k ChangeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeRecord is the classified delta for one item.
type ChangeRecord struct {
	ID          ItemID      `json:"id"`
	ObjectType  ObjectType  `json:"object_type"`
	Kind        ChangeKind  `json:"kind"`
	Fingerprint Fingerprint `json:"fingerprint,omitempty"`
	Format      string      `json:"format,omitempty"`
	Payload     []byte      `json:"payload,omitempty"`

	// Deferred is set when Payload has to be fetched before use.
	Deferred bool `json:"deferred,omitempty"`

	// FullPass is set when the record was produced by a slow-sync pass.
	FullPass bool `json:"full_pass,omitempty"`
}

// ChangeSet is the outcome of classifying one object type.
type ChangeSet struct {
	ObjectType ObjectType
	FullPass   bool

	// Changes holds every Added, Modified and Deleted record in emission order.
	Changes []ChangeRecord

	// Unchanged counts items whose fingerprint matched the stored one.
	Unchanged int
}

// Count returns the number of records of the given kind in the set.
func (s ChangeSet) Count(kind ChangeKind) int {
	if kind == Unchanged {
		return s.Unchanged
	}

	n := 0
	for _, c := range s.Changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
