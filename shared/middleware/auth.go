package middleware

import (
	"context"
	"net/http"
	"strings"

	jwt_internal "github.com/openreview/openreview-web/shared/jwt"
	"github.com/openreview/openreview-web/shared/logger"
)

// Key to store the signed-in user id in the request context
type key int

const UserIDKey key = 0

// Auth reads the OpenReview access token. This server never issues tokens, it only
// needs to know whether the visitor is already signed in.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// OptionalAuth returns middleware that populates the user id if the token is valid, but doesn't require auth
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := a.extractUserID(r); id != "" {
				ctx := context.WithValue(r.Context(), UserIDKey, id)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractUserID(r *http.Request) string {
	// cookie first (browsers), then Authorization header
	var tokenString string
	if c, err := r.Cookie(jwt_internal.AccessTokenCookie); err == nil {
		tokenString = c.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return ""
	}

	id, err := a.jwtService.UserID(tokenString)
	if err != nil {
		logger.Ctx(r.Context()).Debug().Err(err).Msg("ignoring access token")
		return ""
	}
	return id
}

// GetUserIDFromContext returns the signed-in user's profile id, or "".
func GetUserIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}
