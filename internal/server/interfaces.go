package server

import "context"

// Server defines the lifecycle contract of transport servers managed by
// this package.
type Server interface {
	// Run serves requests until ctx is cancelled, then shuts down.
	Run(ctx context.Context) error
}
