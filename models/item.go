// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ItemID is an opaque, stable identifier of an item, unique within its
// ObjectType and assigned by the data source.
type ItemID string

// Fingerprint is an opaque content-derived token. Two fingerprints are equal
// iff the item content is considered unchanged for sync purposes.
type Fingerprint string

// Item is one element of the sequence an item source yields for the current
// session.
type Item struct {
	// ID identifies the item within its object type.
	ID ItemID `json:"id"`

	// Fingerprint is computed by the source's formatter, never by the engine.
	Fingerprint Fingerprint `json:"fingerprint"`

	// Format names the object format of Payload (e.g. "zdtm-contact").
	Format string `json:"format,omitempty"`

	// Payload holds the encoded item body. Empty when Deferred is set.
	Payload []byte `json:"payload,omitempty"`

	// Deferred marks that the body was not sent and must be requested
	// separately through the source's payload fetch call.
	Deferred bool `json:"deferred,omitempty"`
}

// FingerprintRecord is the durable state kept for a single item.
type FingerprintRecord struct {
	ID          ItemID      `json:"id"`
	Fingerprint Fingerprint `json:"fingerprint"`

	// Seen is set once the item has been observed during the running session.
	// It is never persisted.
	Seen bool `json:"-"`
}

// ListOptions tunes how an item source enumerates items.
type ListOptions struct {
	// Full requests a complete pass with full payload bodies. It is set
	// during slow sync; sources must not defer bodies or rely on any
	// "changed since" bookkeeping when it is true.
	Full bool
}
