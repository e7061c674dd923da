package middleware

import (
	"encoding/base64"
	"net/http"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
	// FeedbackInstitutionCookie hands an email from the institution warning to the contact page.
	FeedbackInstitutionCookie = "feedbackInstitution"
)

// Flash stores short-lived cookies that survive exactly one redirect.
type Flash struct {
	secureCookies bool
}

func NewFlash(secureCookies bool) *Flash {
	return &Flash{secureCookies: secureCookies}
}

func (f *Flash) SetError(w http.ResponseWriter, msg string) {
	f.set(w, flashCookieError, msg)
}

func (f *Flash) SetSuccess(w http.ResponseWriter, msg string) {
	f.set(w, flashCookieSuccess, msg)
}

// PopError reads and clears the error flash.
func (f *Flash) PopError(w http.ResponseWriter, r *http.Request) string {
	return f.pop(w, r, flashCookieError)
}

// PopSuccess reads and clears the success flash.
func (f *Flash) PopSuccess(w http.ResponseWriter, r *http.Request) string {
	return f.pop(w, r, flashCookieSuccess)
}

func (f *Flash) SetFeedbackEmail(w http.ResponseWriter, email string) {
	f.set(w, FeedbackInstitutionCookie, email)
}

// PopFeedbackEmail reads the email handed over by the institution warning and clears it.
func (f *Flash) PopFeedbackEmail(w http.ResponseWriter, r *http.Request) string {
	return f.pop(w, r, FeedbackInstitutionCookie)
}

func (f *Flash) set(w http.ResponseWriter, name, value string) {
	// base64 encoded for safe storage of special characters
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   300, // 5 minutes (enough time for redirect)
		HttpOnly: true,
		Secure:   f.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *Flash) pop(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
