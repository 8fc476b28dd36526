package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type RequestRecorder interface {
	Record(method, route string, status int, duration time.Duration)
}

// Metrics labels requests by chi route pattern so path parameters do not
// explode series cardinality.
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			recorder.Record(r.Method, route, rec.status, time.Since(start))
		})
	}
}
