package service

import (
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
)

// Services groups the engine's services for one member.
type Services struct {
	Fingerprints  *FingerprintStore
	Anchors       *AnchorStore
	SyncService   SyncService
	StatusService StatusService
	SyncJob       SyncJob
}

// NewServices wires the stores over storages and the sync service over deps.
// A nil deps.Reporter is replaced by a logging reporter. SyncService and
// SyncJob share one StatusTracker, so a manual session and a scheduled one
// never overlap.
func NewServices(storages *store.Storages, deps SyncDependencies, cfg SessionConfig, log *logger.Logger) *Services {
	fingerprints := NewFingerprintStore(storages.FingerprintRepository, log)
	anchors := NewAnchorStore(storages.AnchorRepository, log)

	if deps.Reporter == nil {
		deps.Reporter = NewLogReporter(log)
	}

	tracker := NewStatusTracker(NewSyncService(fingerprints, anchors, deps, cfg, log), log)

	return &Services{
		Fingerprints:  fingerprints,
		Anchors:       anchors,
		SyncService:   tracker,
		StatusService: tracker,
		SyncJob:       NewSyncJob(tracker, log),
	}
}
