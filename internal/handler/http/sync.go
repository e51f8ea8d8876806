package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

// triggerSync runs one session and answers with its report. The session is
// bound to the request: a client that disconnects aborts it.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	report, err := h.syncService.RunSession(ctx)
	if errors.Is(err, service.ErrSessionInProgress) {
		log.Warn().Str("func", "*Handler.triggerSync").Msg("session already running")
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusConflict)
		return
	}

	resp := syncResponse{Report: newReportResponse(report)}
	if err != nil {
		log.Err(err).Str("func", "*Handler.triggerSync").Str("session_id", report.SessionID).Msg("triggered session failed")
		resp.Error = err.Error()
		writeJSON(w, resp, statusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}
