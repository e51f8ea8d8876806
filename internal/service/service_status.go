package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// StatusTracker wraps a SyncService, rejects overlapping sessions and keeps
// the summary served by [StatusTracker.Status].
type StatusTracker struct {
	next   SyncService
	logger *logger.Logger

	mu     sync.RWMutex
	status models.SyncStatus
}

// NewStatusTracker wraps next.
func NewStatusTracker(next SyncService, log *logger.Logger) *StatusTracker {
	return &StatusTracker{next: next, logger: log}
}

// RunSession implements SyncService. It fails with ErrSessionInProgress
// while another session started through the tracker is running.
func (t *StatusTracker) RunSession(ctx context.Context) (models.SessionReport, error) {
	t.mu.Lock()
	if t.status.Running {
		t.mu.Unlock()
		t.logger.Warn().Str("func", "StatusTracker.RunSession").Msg("session already running")
		return models.SessionReport{}, ErrSessionInProgress
	}
	t.status.Running = true
	t.mu.Unlock()

	report, err := t.next.RunSession(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Running = false
	t.status.Sessions++
	t.status.LastReport = &report
	t.status.LastError = ""
	if err != nil {
		t.status.Failures++
		t.status.LastError = err.Error()
	} else {
		t.status.LastSuccessAt = report.FinishedAt
	}

	return report, err
}

// Status implements StatusService.
func (t *StatusTracker) Status() models.SyncStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	status := t.status
	if status.LastReport != nil {
		report := *status.LastReport
		status.LastReport = &report
	}
	return status
}
