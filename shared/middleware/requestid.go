package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/openreview/openreview-web/shared/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, or creates one, into the logger context.
// The API client forwards it upstream.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
