// Package turnstile wires the Cloudflare Turnstile widget into server-rendered forms.
package turnstile

import (
	"net/http"
	"strings"
)

const (
	ScriptURL = "https://challenges.cloudflare.com/turnstile/v0/api.js"
	// FormField is the hidden input the widget fills with its token.
	FormField = "cf-turnstile-response"
)

// Widget is the template-facing configuration of the widget.
type Widget struct {
	SiteKey string
}

func (w Widget) Enabled() bool {
	return w.SiteKey != ""
}

// Token is an opaque verification token owned by exactly one form or modal.
// The zero value is an absent token.
type Token struct {
	value string
}

func (t *Token) Set(value string) {
	t.value = strings.TrimSpace(value)
}

func (t *Token) Value() string {
	return t.value
}

func (t *Token) Present() bool {
	return t.value != ""
}

// Invalidate forgets the token. Called whenever the widget is hidden or its form reset;
// a Turnstile token is single use.
func (t *Token) Invalidate() {
	t.value = ""
}

// FromRequest reads the widget's token from a submitted form.
func FromRequest(r *http.Request) string {
	return strings.TrimSpace(r.FormValue(FormField))
}
