package store

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// FingerprintRepository persists the identity → fingerprint mapping of one
// member, partitioned by object type.
type FingerprintRepository interface {
	// LoadFingerprints returns every record stored for objectType.
	// A namespace that was never written yields an empty slice.
	LoadFingerprints(ctx context.Context, objectType models.ObjectType) ([]models.FingerprintRecord, error)
	// ReplaceFingerprints atomically swaps the whole namespace of objectType
	// for records. On error the previous contents stay in place.
	ReplaceFingerprints(ctx context.Context, objectType models.ObjectType, records []models.FingerprintRecord) error
}

// AnchorRepository persists the member's key → value anchors.
type AnchorRepository interface {
	// GetAnchor returns the stored value and whether the key exists.
	GetAnchor(ctx context.Context, key string) (string, bool, error)
	// SetAnchor durably stores value under key.
	SetAnchor(ctx context.Context, key, value string) error
}

// ErrorClassificator maps a driver error to a failure kind.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
