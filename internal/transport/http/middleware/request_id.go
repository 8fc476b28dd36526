package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"printerp/internal/requestctx"
)

const (
	RequestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 128
)

// RequestID keeps a caller-supplied X-Request-ID when it is short and made of
// token characters, and otherwise mints a UUID. The id is echoed back and
// stored in the context for handlers and domain logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), reqID)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDBytes {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
