package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersWithCSP(t *testing.T) {
	csp := PageCSP("https://api.openreview.net")
	handler := SecurityHeadersWithCSP(true, csp)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/signup", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))

	got := rr.Header().Get("Content-Security-Policy")
	assert.Contains(t, got, "script-src 'self' https://challenges.cloudflare.com")
	assert.Contains(t, got, "frame-src https://challenges.cloudflare.com")
	assert.Contains(t, got, "connect-src 'self' https://api.openreview.net")
}

func TestSecurityHeadersPlainHTTP(t *testing.T) {
	handler := SecurityHeadersWithCSP(false, "")(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
}
