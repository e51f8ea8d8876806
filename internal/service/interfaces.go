package service

import (
	"context"
	"iter"
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// ConfigLoader returns the opaque member configuration handed to the device.
type ConfigLoader interface {
	LoadConfig(ctx context.Context) ([]byte, error)
}

// Device is the connection to the synchronized member.
type Device interface {
	Connect(ctx context.Context, config []byte) error
	Disconnect(ctx context.Context) error
	// Anchor returns the device's current change anchor, for example a
	// database generation counter. An empty value is a valid anchor.
	Anchor(ctx context.Context) (string, error)
}

// ItemSource enumerates the member's current items.
type ItemSource interface {
	// Items returns a lazy, single-pass sequence of the current items of
	// objectType. Iteration stops at the first non-nil error.
	Items(ctx context.Context, objectType models.ObjectType, opts models.ListOptions) iter.Seq2[models.Item, error]
	// FetchPayload returns the body of an item yielded as deferred.
	FetchPayload(ctx context.Context, objectType models.ObjectType, id models.ItemID) ([]byte, error)
}

// Applier writes a single change to its destination.
type Applier interface {
	Apply(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error)
}

// ChangeReporter receives every Added, Modified and Deleted record produced
// during enumeration.
type ChangeReporter interface {
	ReportChange(ctx context.Context, change models.ChangeRecord) error
}

// SyncService runs one complete sync session.
type SyncService interface {
	RunSession(ctx context.Context) (models.SessionReport, error)
}

// StatusService reports the outcome of past sessions.
type StatusService interface {
	Status() models.SyncStatus
}

// SyncJob runs sessions periodically.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

// ApplierFunc adapts a function to [Applier].
type ApplierFunc func(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error)

// Apply calls f.
func (f ApplierFunc) Apply(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error) {
	return f(ctx, change)
}
