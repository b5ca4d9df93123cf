package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// TraceMiddleware ensures each request has a trace identifier propagated via context and
// headers. Incoming ids that are empty, oversized or contain unsafe characters are replaced.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if !traceIDPattern.MatchString(traceID) {
			traceID = uuid.NewString()
			r.Header.Set("X-Trace-ID", traceID)
		}
		ctx := context.WithValue(r.Context(), traceContextKey, traceID)
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
