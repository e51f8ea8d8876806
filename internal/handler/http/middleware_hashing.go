package http

import (
	"bytes"
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/utils"
)

// withHashing buffers the response and sets the HashSHA256 header to the
// HMAC of the uncompressed body, so clients sharing the bridge key can check
// its integrity. Without a key the middleware is a no-op.
func (h *Handler) withHashing(next http.Handler) http.Handler {
	if h.hasher == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bw := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(bw, r)

		body := bw.body.Bytes()
		w.Header().Set(utils.HashHeader, h.hasher.SumHex(body))
		w.WriteHeader(bw.status)
		if _, err := w.Write(body); err != nil {
			h.logger.Err(err).Str("func", "*Handler.withHashing").Msg("failed to write response body")
		}
	})
}

type bufferedResponseWriter struct {
	http.ResponseWriter

	status int
	body   bytes.Buffer
}

func (w *bufferedResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}
