// Package workers provides abstractions for managing and running
// long-lived background workers of the daemon.
// It defines the Worker interface and a Workers aggregate that runs every
// worker until the context is cancelled.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled or the worker fails. A worker returns
// nil when it stops because of ctx.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}
