package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

type anchorRepository struct {
	*DB
	memberID string
	logger   *logger.Logger
	now      func() time.Time
}

// NewAnchorRepository returns a SQL backed [AnchorRepository] scoped to
// memberID.
func NewAnchorRepository(db *DB, memberID string, logger *logger.Logger) AnchorRepository {
	return &anchorRepository{
		DB:       db,
		memberID: memberID,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *anchorRepository) GetAnchor(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectAnchorQuery(a.builder, a.memberID, key)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, ErrBuildingSQLQuery, err)
	}

	var value string
	err = a.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "anchorRepository.GetAnchor").
			Str("member_id", a.memberID).
			Str("key", key).
			Msg("failed to query anchor")
		return "", false, a.classify(ErrExecutingQuery, err)
	}

	return value, true, nil
}

func (a *anchorRepository) SetAnchor(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	query, args, err := upsertAnchorQuery(a.builder, a.memberID, key, value, a.now())
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, ErrBuildingSQLQuery, err)
	}

	if _, err = a.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "anchorRepository.SetAnchor").
			Str("member_id", a.memberID).
			Str("key", key).
			Msg("failed to upsert anchor")
		return a.classify(ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "anchorRepository.SetAnchor").
		Str("key", key).
		Msg("anchor stored")

	return nil
}
