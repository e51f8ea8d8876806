package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// Anchor keys written by the session.
const (
	AnchorKeyDevice = "device"
	AnchorKeyConfig = "config"

	resetAnchorPrefix = "reset:"
	resetMarkCorrupt  = "corrupt"
)

// ResetAnchorKey returns the key of the corruption marker of objectType.
func ResetAnchorKey(objectType models.ObjectType) string {
	return resetAnchorPrefix + objectType.String()
}

// ConfigDigest returns the hex BLAKE2b-256 digest of a member configuration
// blob, stored under [AnchorKeyConfig].
func ConfigDigest(config []byte) string {
	sum := blake2b.Sum256(config)
	return hex.EncodeToString(sum[:])
}

// AnchorStore keeps small key/value markers that detect whether the member
// was synchronized elsewhere or reconfigured since the last session. Unlike
// fingerprints, anchor updates are durable immediately.
type AnchorStore struct {
	repo   store.AnchorRepository
	logger *logger.Logger
}

// NewAnchorStore returns an AnchorStore backed by repo.
func NewAnchorStore(repo store.AnchorRepository, log *logger.Logger) *AnchorStore {
	return &AnchorStore{repo: repo, logger: log}
}

// Compare reports whether the stored value of key equals current. A missing
// key never matches.
func (a *AnchorStore) Compare(ctx context.Context, key, current string) (bool, error) {
	stored, found, err := a.Get(ctx, key)
	if err != nil {
		return false, err
	}

	match := found && stored == current
	if !match {
		a.logger.Info().
			Str("func", "AnchorStore.Compare").
			Str("key", key).
			Bool("found", found).
			Msg("anchor mismatch")
	}
	return match, nil
}

// Update stores value under key.
func (a *AnchorStore) Update(ctx context.Context, key, value string) error {
	if err := a.repo.SetAnchor(ctx, key, value); err != nil {
		a.logger.Err(err).Str("func", "AnchorStore.Update").Str("key", key).Msg("failed to update anchor")
		return fmt.Errorf("update anchor %s: %w", key, err)
	}
	return nil
}

// Get returns the stored value of key. Unreadable anchor state is reported
// as a missing key, which forces a slow sync and lets the next Update
// rewrite it.
func (a *AnchorStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := a.repo.GetAnchor(ctx, key)
	if errors.Is(err, ErrCorrupt) {
		a.logger.Warn().Err(err).Str("func", "AnchorStore.Get").Str("key", key).Msg("anchor state is corrupt; treating key as missing")
		return "", false, nil
	}
	if err != nil {
		a.logger.Err(err).Str("func", "AnchorStore.Get").Str("key", key).Msg("failed to read anchor")
		return "", false, fmt.Errorf("read anchor %s: %w", key, err)
	}
	return value, found, nil
}

// markCorrupt records that the fingerprints of objectType cannot be trusted.
func (a *AnchorStore) markCorrupt(ctx context.Context, objectType models.ObjectType) error {
	return a.Update(ctx, ResetAnchorKey(objectType), resetMarkCorrupt)
}

// isMarkedCorrupt reports whether markCorrupt was called for objectType and
// not cleared since.
func (a *AnchorStore) isMarkedCorrupt(ctx context.Context, objectType models.ObjectType) (bool, error) {
	value, _, err := a.Get(ctx, ResetAnchorKey(objectType))
	if err != nil {
		return false, err
	}
	return value == resetMarkCorrupt, nil
}

// clearCorrupt removes the marker of objectType.
func (a *AnchorStore) clearCorrupt(ctx context.Context, objectType models.ObjectType) error {
	return a.Update(ctx, ResetAnchorKey(objectType), "")
}
