package http

import (
	"net/http"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newStatusResponse(h.statusService.Status()), http.StatusOK)
}
