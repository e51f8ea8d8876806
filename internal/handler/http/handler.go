package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// Handler serves the control API.
type Handler struct {
	syncService   service.SyncService
	statusService service.StatusService
	buildInfo     models.AppBuildInfo

	// hasher signs response bodies; nil disables signing.
	hasher         *utils.Hasher
	requestTimeout time.Duration
	traceIDs       service.IDGenerator

	logger *logger.Logger
}

// Options tunes a Handler.
type Options struct {
	BuildInfo models.AppBuildInfo
	// HashKey enables the HashSHA256 header on responses.
	HashKey string
	// RequestTimeout bounds a manually triggered session. Zero disables the
	// bound.
	RequestTimeout time.Duration
}

// NewHandler returns a Handler over services.
func NewHandler(services *service.Services, opts Options, log *logger.Logger) *Handler {
	log.Info().Msg("http handler created")

	h := &Handler{
		syncService:    services.SyncService,
		statusService:  services.StatusService,
		buildInfo:      opts.BuildInfo,
		requestTimeout: opts.RequestTimeout,
		traceIDs:       utils.NewUUIDGenerator(),
		logger:         log,
	}
	if opts.HashKey != "" {
		h.hasher = utils.NewHasher(opts.HashKey)
	}
	return h
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
