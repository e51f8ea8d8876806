package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type fingerprintRepository struct {
	*DB
	memberID string
	logger   *logger.Logger
}

// NewFingerprintRepository returns a SQL backed [FingerprintRepository]
// scoped to memberID.
func NewFingerprintRepository(db *DB, memberID string, logger *logger.Logger) FingerprintRepository {
	return &fingerprintRepository{
		DB:       db,
		memberID: memberID,
		logger:   logger,
	}
}

func (f *fingerprintRepository) LoadFingerprints(ctx context.Context, objectType models.ObjectType) ([]models.FingerprintRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectFingerprintsQuery(f.builder, f.memberID, objectType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, ErrBuildingSQLQuery, err)
	}

	rows, err := f.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "fingerprintRepository.LoadFingerprints").
			Str("member_id", f.memberID).
			Str("object_type", objectType.String()).
			Msg("failed to query fingerprints")
		return nil, f.classify(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.FingerprintRecord, 0)
	for rows.Next() {
		var id, fingerprint string
		if scanErr := rows.Scan(&id, &fingerprint); scanErr != nil {
			log.Err(scanErr).
				Str("func", "fingerprintRepository.LoadFingerprints").
				Str("object_type", objectType.String()).
				Msg("failed to scan fingerprint row")
			return nil, f.classify(ErrScanningRows, scanErr)
		}

		if id == "" || fingerprint == "" {
			log.Error().
				Str("func", "fingerprintRepository.LoadFingerprints").
				Str("object_type", objectType.String()).
				Str("item_id", id).
				Msg("stored fingerprint record has an empty field")
			return nil, fmt.Errorf("%w: empty record in %s namespace", ErrCorrupt, objectType)
		}

		records = append(records, models.FingerprintRecord{
			ID:          models.ItemID(id),
			Fingerprint: models.Fingerprint(fingerprint),
		})
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "fingerprintRepository.LoadFingerprints").
			Str("object_type", objectType.String()).
			Msg("error occurred during rows iteration")
		return nil, f.classify(ErrScanningRows, rowsErr)
	}

	log.Debug().
		Str("func", "fingerprintRepository.LoadFingerprints").
		Str("object_type", objectType.String()).
		Int("count", len(records)).
		Msg("loaded fingerprints")

	return records, nil
}

// ReplaceFingerprints deletes the namespace and inserts records inside one
// transaction.
func (f *fingerprintRepository) ReplaceFingerprints(ctx context.Context, objectType models.ObjectType, records []models.FingerprintRecord) error {
	log := logger.FromContext(ctx)

	deleteQuery, deleteArgs, err := deleteFingerprintsQuery(f.builder, f.memberID, objectType)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, ErrBuildingSQLQuery, err)
	}
	insertQueries, insertArgs, err := insertFingerprintsQueries(f.builder, f.memberID, objectType, records)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, ErrBuildingSQLQuery, err)
	}

	tx, err := f.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "fingerprintRepository.ReplaceFingerprints").
			Str("object_type", objectType.String()).
			Msg("failed to begin transaction")
		return f.classify(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		log.Err(err).
			Str("func", "fingerprintRepository.ReplaceFingerprints").
			Str("object_type", objectType.String()).
			Msg("failed to clear fingerprint namespace")
		return f.classify(ErrExecutingStatement, err)
	}

	for idx, query := range insertQueries {
		if _, err = tx.ExecContext(ctx, query, insertArgs[idx]...); err != nil {
			log.Err(err).
				Str("func", "fingerprintRepository.ReplaceFingerprints").
				Str("object_type", objectType.String()).
				Int("batch", idx+1).
				Int("batches", len(insertQueries)).
				Msg("failed to insert fingerprints")
			return f.classify(ErrExecutingStatement, err)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "fingerprintRepository.ReplaceFingerprints").
			Str("object_type", objectType.String()).
			Msg("failed to commit transaction")
		return f.classify(ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "fingerprintRepository.ReplaceFingerprints").
		Str("member_id", f.memberID).
		Str("object_type", objectType.String()).
		Int("count", len(records)).
		Msg("replaced fingerprint namespace")

	return nil
}
