package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

// SyncWorker runs one session at start and then drives a sync job on an
// interval until its context is cancelled.
type SyncWorker struct {
	syncService service.SyncService
	job         service.SyncJob
	interval    time.Duration
	logger      *logger.Logger
}

// NewSyncWorker returns a SyncWorker.
func NewSyncWorker(syncService service.SyncService, job service.SyncJob, interval time.Duration, log *logger.Logger) *SyncWorker {
	return &SyncWorker{syncService: syncService, job: job, interval: interval, logger: log}
}

// Run implements Worker. A failed first session is logged and does not stop
// the worker.
func (w *SyncWorker) Run(ctx context.Context) error {
	report, err := w.syncService.RunSession(ctx)
	if err != nil {
		w.logger.Err(err).
			Str("func", "SyncWorker.Run").
			Str("session_id", report.SessionID).
			Msg("initial sync session failed")
	}

	w.job.Start(ctx, w.interval)
	<-ctx.Done()
	w.job.Stop()

	w.logger.Info().Str("func", "SyncWorker.Run").Msg("sync worker stopped")
	return nil
}
