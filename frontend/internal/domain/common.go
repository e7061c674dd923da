package frontend_domain

import "github.com/openreview/openreview-web/frontend/internal/turnstile"

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error            string
	Success          string
	UserID           string // signed-in profile, if any
	Validation       ValidationData
	CSRFToken        string // CSRF token for form submissions
	Turnstile        turnstile.Widget
	EmailPlaceholder string // Pre-filled email (from cookie or query, never from the API)
}

// ValidationData holds the validation constants the templates echo into input attributes.
type ValidationData struct {
	PasswordMinLen      int
	PasswordMaxLen      int
	ProfileSearchMinLen int
	FeedbackMessageMax  int
}
