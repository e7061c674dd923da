package middleware

import (
	"context"
	"net/http"

	"github.com/openreview/openreview-web/shared/csrf"
	"github.com/openreview/openreview-web/shared/logger"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	// CSRFHeader carries the token on JSON calls from the page script
	CSRFHeader = "X-CSRF-Token"
)

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf_token"

// CSRFConfig holds CSRF middleware configuration
type CSRFConfig struct {
	SecureCookies bool // Use Secure flag on cookies (requires HTTPS)
}

// GenerateCSRFToken middleware generates and sets CSRF token cookie
func GenerateCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(csrfCookieName)
			var token string

			if err != nil || cookie.Value == "" {
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Ctx(r.Context()).Error().Err(err).Msg("failed to generate CSRF token")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   config.SecureCookies,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   86400, // 24 hours
				})
			} else {
				token = cookie.Value
			}

			// Store token in context for template rendering
			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateCSRFToken checks unsafe methods: the form field for page posts,
// the X-CSRF-Token header for JSON calls.
func ValidateCSRFToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut &&
				r.Method != http.MethodPatch && r.Method != http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}
			log := logger.Ctx(r.Context())

			cookie, err := r.Cookie(csrfCookieName)
			if err != nil {
				log.Warn().Str("path", r.URL.Path).Msg("CSRF token cookie missing")
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			submitted := r.Header.Get(CSRFHeader)
			if submitted == "" {
				if err := r.ParseForm(); err != nil {
					log.Warn().Err(err).Msg("failed to parse form")
					http.Error(w, "Invalid form data", http.StatusBadRequest)
					return
				}
				submitted = r.PostFormValue(csrfFormField)
			}

			if !csrf.ValidateToken(cookie.Value, submitted) {
				log.Warn().Str("path", r.URL.Path).Msg("CSRF token validation failed")
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFTokenFromContext retrieves CSRF token from request context
func GetCSRFTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenContextKey).(string)
	return token
}
