package middleware

import (
	"net/http"

	mw "github.com/openreview/openreview-web/shared/middleware"
)

// RedirectIfSignedIn sends visitors who already hold a valid access token to target.
// Needs OptionalAuth in front of it.
func RedirectIfSignedIn(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mw.GetUserIDFromContext(r) != "" {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
