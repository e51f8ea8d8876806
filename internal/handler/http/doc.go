// Package http implements the control API of the sync daemon.
//
// It exposes the daemon's build info, the status of past sync sessions and a
// trigger for an immediate session. Request tracing, access logging,
// response compression and response signing are handled by middleware in
// this package.
package http
