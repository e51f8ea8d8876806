package adapter

import "errors"

// Transport errors returned by the device bridge. Non-2xx responses are
// mapped by status code so callers can match them with errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("bridge unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrUnavailable         = errors.New("bridge unavailable")

	// ErrInvalidResponse is returned for a 2xx response the adapter cannot
	// decode.
	ErrInvalidResponse = errors.New("invalid bridge response")

	// ErrInvalidAddress is returned by NewHTTPDeviceBridge for an empty or
	// malformed bridge address.
	ErrInvalidAddress = errors.New("invalid bridge address")
)
