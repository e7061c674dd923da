package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/openreview/openreview-web/shared/logger"
	"github.com/openreview/openreview-web/shared/middleware/ratelimiter"
	"github.com/openreview/openreview-web/shared/utils"
)

// ErrNoIdentity means the request carries nothing to limit on, so it passes through.
// An empty form is rejected by the handler, not by the limiter.
var ErrNoIdentity = errors.New("no rate limit identity")

func RateLimit(rl ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if errors.Is(err, ErrNoIdentity) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				utils.WriteErrorAndStatusCode(w, r, err)
				return
			}

			allowed, err := rl.Allow(r.Context(), identity)
			if err != nil {
				// fail open, the API enforces its own limits
				logger.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the real client IP from RemoteAddr
// Does NOT trust X-Real-IP or X-Forwarded-For headers, put chi's RealIP in front when behind a proxy
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Fallback: if RemoteAddr doesn't have port, use it directly
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}

// GetFieldFromForm extracts a form value for rate limiting purposes.
// Used by the no-JS form submissions
func GetFieldFromForm(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		// ParseForm caches, the handler can still read the body
		if err := r.ParseForm(); err != nil {
			return "", errors.New("failed to parse form")
		}

		value := strings.TrimSpace(r.FormValue(field))
		if value == "" {
			return "", fmt.Errorf("%s field is empty: %w", field, ErrNoIdentity)
		}

		return value, nil
	}
}

// GetEmailFromForm keys on the lower-cased email in field, so "Jane@MIT.edu" and
// "jane@mit.edu" share a bucket.
func GetEmailFromForm(field string) func(r *http.Request) (string, error) {
	get := GetFieldFromForm(field)
	return func(r *http.Request) (string, error) {
		email, err := get(r)
		return strings.ToLower(email), err
	}
}
