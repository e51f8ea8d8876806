// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport to the synchronized device.
//
// The primary abstraction is [DeviceBridge]: one value that connects to the
// device, enumerates its items, fetches deferred bodies and writes changes
// back. It satisfies the service layer's Device, ItemSource and Applier
// contracts, so the daemon can wire a single bridge into the sync service.
// The package ships an HTTP/REST implementation ([NewHTTPDeviceBridge]).
//
// Non-2xx responses are mapped by mapHTTPError to the sentinel values in
// errors.go so callers can use [errors.Is] (e.g. [ErrNotFound] for 404).
package adapter

import (
	"context"
	"iter"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// DeviceBridge is the device side of a sync session.
type DeviceBridge interface {
	// Connect opens a bridge session with the opaque member configuration.
	Connect(ctx context.Context, config []byte) error

	// Disconnect closes the bridge session.
	Disconnect(ctx context.Context) error

	// Anchor returns the device's change anchor.
	Anchor(ctx context.Context) (string, error)

	// Items lazily pages through the items of objectType. With opts.Full
	// the bridge returns every item with its body.
	Items(ctx context.Context, objectType models.ObjectType, opts models.ListOptions) iter.Seq2[models.Item, error]

	// FetchPayload returns the body of a deferred item.
	FetchPayload(ctx context.Context, objectType models.ObjectType, id models.ItemID) ([]byte, error)

	// Apply writes change to the device: Added and Modified items are
	// stored, Deleted items are removed. The returned fingerprint is the
	// one the device computed for the stored item.
	Apply(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error)
}
