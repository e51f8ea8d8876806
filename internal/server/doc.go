// Package server runs the daemon's control API.
//
// The server is a worker: it listens until its context is cancelled and then
// shuts down gracefully, letting in-flight requests finish.
package server
