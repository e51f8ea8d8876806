package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

var errorStatusMap = map[error]int{
	service.ErrSessionInProgress:  http.StatusConflict,
	service.ErrTimeout:            http.StatusGatewayTimeout,
	service.ErrConnectFailed:      http.StatusBadGateway,
	service.ErrStorageUnavailable: http.StatusServiceUnavailable,
	service.ErrCorrupt:            http.StatusInternalServerError,
	context.DeadlineExceeded:      http.StatusGatewayTimeout,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
