package middleware

import (
	"net/http"

	"printerp/internal/transport/http/api"
)

// BodyLimit caps request bodies on mutating methods. A declared
// Content-Length over the cap is refused with 413 up front; otherwise reads
// past the cap fail with *http.MaxBytesError, which handlers also report as 413.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > maxBytes {
					api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", GetRequestID(r.Context()))
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
