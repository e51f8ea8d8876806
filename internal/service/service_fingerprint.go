// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// FingerprintStore opens per object type handles over a
// [store.FingerprintRepository].
type FingerprintStore struct {
	repo   store.FingerprintRepository
	logger *logger.Logger
}

// NewFingerprintStore returns a FingerprintStore backed by repo.
func NewFingerprintStore(repo store.FingerprintRepository, log *logger.Logger) *FingerprintStore {
	return &FingerprintStore{repo: repo, logger: log}
}

// Open loads the persisted records of objectType into a new handle.
func (s *FingerprintStore) Open(ctx context.Context, objectType models.ObjectType) (*FingerprintHandle, error) {
	records, err := s.repo.LoadFingerprints(ctx, objectType)
	if err != nil {
		s.logger.Err(err).
			Str("func", "FingerprintStore.Open").
			Str("object_type", objectType.String()).
			Msg("failed to load fingerprints")
		return nil, fmt.Errorf("open %s fingerprints: %w", objectType, err)
	}

	h := newFingerprintHandle(objectType, s.repo, s.logger)
	for _, r := range records {
		h.prior[r.ID] = r.Fingerprint
	}

	s.logger.Debug().
		Str("func", "FingerprintStore.Open").
		Str("object_type", objectType.String()).
		Int("records", len(records)).
		Msg("fingerprint handle opened")
	return h, nil
}

// OpenFresh returns a handle with an empty prior state without reading the
// backend. Committing it replaces whatever is stored for objectType.
func (s *FingerprintStore) OpenFresh(_ context.Context, objectType models.ObjectType) (*FingerprintHandle, error) {
	s.logger.Warn().
		Str("func", "FingerprintStore.OpenFresh").
		Str("object_type", objectType.String()).
		Msg("opening fingerprint handle without prior state")
	return newFingerprintHandle(objectType, s.repo, s.logger), nil
}

// FingerprintHandle buffers the fingerprint changes of one object type for
// the duration of a session. Lookups always read the state loaded at open
// time, so classifying the same input twice gives the same result until the
// handle is committed.
type FingerprintHandle struct {
	objectType models.ObjectType
	repo       store.FingerprintRepository
	logger     *logger.Logger

	mu       sync.Mutex
	prior    map[models.ItemID]models.Fingerprint
	seen     map[models.ItemID]models.Fingerprint
	slowSync bool
	closed   bool
}

func newFingerprintHandle(objectType models.ObjectType, repo store.FingerprintRepository, log *logger.Logger) *FingerprintHandle {
	return &FingerprintHandle{
		objectType: objectType,
		repo:       repo,
		logger:     log,
		prior:      make(map[models.ItemID]models.Fingerprint),
		seen:       make(map[models.ItemID]models.Fingerprint),
	}
}

// ObjectType returns the namespace of the handle.
func (h *FingerprintHandle) ObjectType() models.ObjectType {
	return h.objectType
}

// Lookup returns the persisted fingerprint of id.
func (h *FingerprintHandle) Lookup(id models.ItemID) (models.Fingerprint, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", false, ErrHandleClosed
	}
	fp, ok := h.prior[id]
	return fp, ok, nil
}

// MarkSeen records id as present with fingerprint fp.
func (h *FingerprintHandle) MarkSeen(id models.ItemID, fp models.Fingerprint) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	h.seen[id] = fp
	return nil
}

// Forget drops the seen mark of id so the record is removed on commit.
func (h *FingerprintHandle) Forget(id models.ItemID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	delete(h.seen, id)
	return nil
}

// Revert restores id to its persisted state: the prior fingerprint is kept
// on commit, and an id without a prior record is not stored.
func (h *FingerprintHandle) Revert(id models.ItemID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	if fp, ok := h.prior[id]; ok {
		h.seen[id] = fp
	} else {
		delete(h.seen, id)
	}
	return nil
}

// UnseenRecords returns the persisted records not marked seen, ordered by id.
func (h *FingerprintHandle) UnseenRecords() ([]models.FingerprintRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHandleClosed
	}

	var unseen []models.FingerprintRecord
	for id, fp := range h.prior {
		if _, ok := h.seen[id]; !ok {
			unseen = append(unseen, models.FingerprintRecord{ID: id, Fingerprint: fp})
		}
	}
	slices.SortFunc(unseen, func(a, b models.FingerprintRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return unseen, nil
}

// SetSlowSync marks the handle for a full reconciliation pass.
func (h *FingerprintHandle) SetSlowSync() {
	h.mu.Lock()
	h.slowSync = true
	h.mu.Unlock()
}

// IsSlowSync reports whether SetSlowSync was called.
func (h *FingerprintHandle) IsSlowSync() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.slowSync
}

// Commit replaces the persisted namespace with the seen records and closes
// the handle. Unseen records are removed. The handle is closed even when the
// backend write fails; the persisted state is then unchanged.
func (h *FingerprintHandle) Commit(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	h.closed = true

	records := make([]models.FingerprintRecord, 0, len(h.seen))
	for _, id := range slices.Sorted(maps.Keys(h.seen)) {
		records = append(records, models.FingerprintRecord{ID: id, Fingerprint: h.seen[id]})
	}

	if err := h.repo.ReplaceFingerprints(ctx, h.objectType, records); err != nil {
		h.logger.Err(err).
			Str("func", "FingerprintHandle.Commit").
			Str("object_type", h.objectType.String()).
			Msg("failed to commit fingerprints")
		return fmt.Errorf("commit %s fingerprints: %w", h.objectType, err)
	}

	h.logger.Info().
		Str("func", "FingerprintHandle.Commit").
		Str("object_type", h.objectType.String()).
		Int("records", len(records)).
		Int("removed", countMissing(h.prior, h.seen)).
		Msg("fingerprints committed")
	return nil
}

// Discard closes the handle without writing. Calling it on a closed handle
// is a no-op.
func (h *FingerprintHandle) Discard() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.seen = nil

	h.logger.Debug().
		Str("func", "FingerprintHandle.Discard").
		Str("object_type", h.objectType.String()).
		Msg("fingerprint changes discarded")
}

func countMissing(prior, seen map[models.ItemID]models.Fingerprint) int {
	n := 0
	for id := range prior {
		if _, ok := seen[id]; !ok {
			n++
		}
	}
	return n
}
