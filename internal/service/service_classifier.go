// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"iter"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// PayloadFetcher returns the body of a deferred item.
type PayloadFetcher func(ctx context.Context, id models.ItemID) ([]byte, error)

// EmitFunc receives each Added, Modified and Deleted record as soon as it is
// classified. A non-nil error aborts classification.
type EmitFunc func(ctx context.Context, change models.ChangeRecord) error

// ChangeClassifier compares the items of one pass with a fingerprint handle.
type ChangeClassifier struct {
	logger *logger.Logger
}

// NewChangeClassifier returns a ChangeClassifier.
func NewChangeClassifier(log *logger.Logger) *ChangeClassifier {
	return &ChangeClassifier{logger: log}
}

// Classify consumes items once and classifies each against handle:
//
//   - no stored fingerprint: Added
//   - equal fingerprint: Unchanged (counted, not emitted)
//   - different fingerprint: Modified
//
// Every observed item is marked seen. Once items is exhausted every stored
// record that was not observed is emitted as Deleted.
//
// When the handle is in slow sync every record carries FullPass and the
// deferred bodies of emitted records are fetched through fetch.
func (c *ChangeClassifier) Classify(
	ctx context.Context,
	handle *FingerprintHandle,
	items iter.Seq2[models.Item, error],
	fetch PayloadFetcher,
	emit EmitFunc,
) (models.ChangeSet, error) {
	objectType := handle.ObjectType()
	fullPass := handle.IsSlowSync()
	log := c.logger.WithFields("object_type", objectType.String())

	set := models.ChangeSet{ObjectType: objectType, FullPass: fullPass}
	observed := make(map[models.ItemID]struct{})

	push := func(change models.ChangeRecord) error {
		set.Changes = append(set.Changes, change)
		if emit == nil {
			return nil
		}
		if err := emit(ctx, change); err != nil {
			return fmt.Errorf("report %s %s: %w", change.Kind, change.ID, err)
		}
		return nil
	}

	for item, err := range items {
		if err != nil {
			log.Err(err).Str("func", "ChangeClassifier.Classify").Msg("item source failed")
			return set, fmt.Errorf("enumerate %s: %w", objectType, err)
		}
		if err := ctx.Err(); err != nil {
			return set, err
		}

		if item.ID == "" || item.Fingerprint == "" {
			log.Error().
				Str("func", "ChangeClassifier.Classify").
				Str("item_id", string(item.ID)).
				Msg("item without identity or fingerprint")
			return set, fmt.Errorf("%w: %s item %q", ErrInvalidItem, objectType, item.ID)
		}
		if _, dup := observed[item.ID]; dup {
			log.Error().
				Str("func", "ChangeClassifier.Classify").
				Str("item_id", string(item.ID)).
				Msg("item yielded twice")
			return set, fmt.Errorf("%w: %s item %q", ErrDuplicateIdentity, objectType, item.ID)
		}
		observed[item.ID] = struct{}{}

		prior, found, err := handle.Lookup(item.ID)
		if err != nil {
			return set, err
		}
		if err := handle.MarkSeen(item.ID, item.Fingerprint); err != nil {
			return set, err
		}

		kind := models.Added
		switch {
		case found && prior == item.Fingerprint:
			set.Unchanged++
			continue
		case found:
			kind = models.Modified
		}

		change := models.ChangeRecord{
			ID:          item.ID,
			ObjectType:  objectType,
			Kind:        kind,
			Fingerprint: item.Fingerprint,
			Format:      item.Format,
			Payload:     item.Payload,
			Deferred:    item.Deferred,
			FullPass:    fullPass,
		}
		if fullPass && change.Deferred && fetch != nil {
			payload, err := fetch(ctx, item.ID)
			if err != nil {
				log.Err(err).
					Str("func", "ChangeClassifier.Classify").
					Str("item_id", string(item.ID)).
					Msg("failed to fetch deferred payload")
				return set, fmt.Errorf("fetch %s payload %q: %w", objectType, item.ID, err)
			}
			change.Payload = payload
			change.Deferred = false
		}

		if err := push(change); err != nil {
			return set, err
		}
	}

	if err := ctx.Err(); err != nil {
		return set, err
	}

	unseen, err := handle.UnseenRecords()
	if err != nil {
		return set, err
	}
	for _, r := range unseen {
		if err := push(models.ChangeRecord{
			ID:          r.ID,
			ObjectType:  objectType,
			Kind:        models.Deleted,
			Fingerprint: r.Fingerprint,
			FullPass:    fullPass,
		}); err != nil {
			return set, err
		}
	}

	log.Info().
		Str("func", "ChangeClassifier.Classify").
		Bool("full_pass", fullPass).
		Int("added", set.Count(models.Added)).
		Int("modified", set.Count(models.Modified)).
		Int("deleted", set.Count(models.Deleted)).
		Int("unchanged", set.Unchanged).
		Msg("classification finished")

	return set, nil
}
