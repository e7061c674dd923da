package turnstile

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	var tok Token
	assert.False(t, tok.Present())

	tok.Set("  abc  ")
	assert.True(t, tok.Present())
	assert.Equal(t, "abc", tok.Value())

	tok.Invalidate()
	assert.False(t, tok.Present())
	assert.Empty(t, tok.Value())
}

func TestFromRequest(t *testing.T) {
	form := url.Values{FormField: {"tok-1"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, "tok-1", FromRequest(req))
}
