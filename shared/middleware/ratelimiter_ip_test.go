package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "192.168.1.100:54321", "192.168.1.100"},
		{"ipv6 with port", "[2001:db8::1]:8080", "2001:db8::1"},
		{"localhost", "127.0.0.1:12345", "127.0.0.1"},
		{"no port", "192.168.1.1", "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", nil)
			req.RemoteAddr = tt.remoteAddr

			ip, err := GetIP(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ip)
		})
	}
}

func TestGetIP_IgnoresSpoofedHeaders(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	req.RemoteAddr = "203.0.113.50:12345"
	req.Header.Set("X-Real-IP", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.3")

	ip, err := GetIP(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.50", ip)
}

func TestGetIP_InvalidIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	req.RemoteAddr = "not-an-ip:1234"

	_, err := GetIP(req)
	assert.EqualError(t, err, "invalid IP address: not-an-ip")
}
