package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// Workers runs a fixed set of workers side by side.
type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

// NewWorkers groups workers.
func NewWorkers(log *logger.Logger, workers ...Worker) *Workers {
	return &Workers{workers: workers, logger: log}
}

// Run starts every worker and blocks until all of them returned. The first
// worker failure cancels the others and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, worker := range w.workers {
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil {
				w.logger.Err(err).Str("func", "Workers.Run").Int("worker", i).Msg("worker failed")
				return fmt.Errorf("worker %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}
