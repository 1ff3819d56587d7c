package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveClientIdentity(t *testing.T, headers map[string]string) string {
	t.Helper()
	app := fiber.New()
	var identity string
	app.Get("/", func(c *fiber.Ctx) error {
		identity = ClientIdentity(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return identity
}

func TestClientIdentity(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "cloudflare header wins",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.9"},
			want:    "198.51.100.7",
		},
		{
			name:    "forwarded-for when no cloudflare",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:    "203.0.113.9",
		},
		{
			name:    "ipv4 preferred over ipv6",
			headers: map[string]string{"X-Forwarded-For": "2001:db8::1, 203.0.113.9"},
			want:    "203.0.113.9",
		},
		{
			name:    "ipv6 only",
			headers: map[string]string{"CF-Connecting-IP": "2001:db8::1"},
			want:    "2001:db8::1",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := resolveClientIdentity(t, tc.headers)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	got := resolveClientIdentity(t, nil)
	// httptest requests carry the default example remote address.
	assert.NotEmpty(t, got)
}
