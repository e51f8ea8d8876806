package service

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type logReporter struct {
	logger *logger.Logger
}

// NewLogReporter returns a ChangeReporter that writes every change to log.
func NewLogReporter(log *logger.Logger) ChangeReporter {
	return &logReporter{logger: log}
}

func (r *logReporter) ReportChange(_ context.Context, change models.ChangeRecord) error {
	r.logger.Info().
		Str("object_type", change.ObjectType.String()).
		Str("item_id", string(change.ID)).
		Str("kind", change.Kind.String()).
		Str("fingerprint", string(change.Fingerprint)).
		Bool("full_pass", change.FullPass).
		Bool("deferred", change.Deferred).
		Int("payload_size", len(change.Payload)).
		Msg("change detected")
	return nil
}
