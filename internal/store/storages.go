package store

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// Storages groups the repositories of one member.
type Storages struct {
	FingerprintRepository FingerprintRepository
	AnchorRepository      AnchorRepository

	closer io.Closer
}

// NewStorages opens the backend selected by cfg.Driver for memberID. SQL
// backends are migrated before use.
func NewStorages(ctx context.Context, cfg config.Storage, memberID string, log *logger.Logger) (*Storages, error) {
	log.Info().Str("driver", cfg.Driver).Msg("creating new storages...")

	switch cfg.Driver {
	case config.DriverFile:
		fileStorage, err := NewFileStorage(cfg.Files, memberID, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", fileStorage.Dir()).Msg("file storage opened")
		return &Storages{
			FingerprintRepository: fileStorage,
			AnchorRepository:      fileStorage,
		}, nil

	case config.DriverSQLite, config.DriverPostgres:
		connect := NewConnectSQLite
		if cfg.Driver == config.DriverPostgres {
			connect = NewConnectPostgres
		}

		db, err := connect(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("%s connection error: %w", cfg.Driver, err)
		}

		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}

		return &Storages{
			FingerprintRepository: NewFingerprintRepository(db, memberID, log),
			AnchorRepository:      NewAnchorRepository(db, memberID, log),
			closer:                db,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown storage driver %q", ErrStorageUnavailable, cfg.Driver)
}

// Close releases the underlying connection, if any.
func (s *Storages) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
