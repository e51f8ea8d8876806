package handler

import (
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/handler/http"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// Handlers groups the transport handlers of the daemon.
type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the control API handler when cfg.Server has an
// address. Responses are signed with cfg.Adapter.HashKey.
func NewHandlers(services *service.Services, cfg *config.SyncConfig, info models.AppBuildInfo, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, http.Options{
			BuildInfo:      info,
			HashKey:        cfg.Adapter.HashKey,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, logger),
	}, nil
}
