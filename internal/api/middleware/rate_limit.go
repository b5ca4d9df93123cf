package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayo6706/txledger/internal/api/problem"
	"github.com/go-chi/httprate"
)

// RateLimiter limits requests per authenticated user, falling back to the client IP.
func RateLimiter(rps int) func(http.Handler) http.Handler {
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if userID := UserIDFromContext(r.Context()); userID != "" {
				return userID, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			problem.Write(
				w,
				r,
				http.StatusTooManyRequests,
				problem.Type("rate-limit-exceeded"),
				http.StatusText(http.StatusTooManyRequests),
				fmt.Sprintf("Rate limit of %d req/s exceeded", rps),
			)
		}),
	)
}
