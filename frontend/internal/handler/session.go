package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/frontend/internal/turnstile"
)

const sessionCookie = "signup_session"

// session returns the visitor's signup orchestrator, starting one when the cookie is
// missing or expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*signup.Orchestrator, string) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	o, current := h.Sessions.Get(id)
	if current != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    current,
			Path:     "/",
			MaxAge:   int(h.sessionTTL().Seconds()),
			HttpOnly: true,
			Secure:   h.Public.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	// a cold cache is loaded on the first page view
	o.SetInstitutionDomains(h.Institutions.Ensure(r.Context()))
	return o, current
}

func (h *Handler) endSession(w http.ResponseWriter, id string) {
	h.Sessions.Delete(id)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) sessionTTL() time.Duration {
	if h.Public.SessionTTL > 0 {
		return h.Public.SessionTTL
	}
	return 30 * time.Minute
}

func credentialsFromForm(r *http.Request) signup.Credentials {
	return signup.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
		Token:    turnstile.FromRequest(r),
	}
}
