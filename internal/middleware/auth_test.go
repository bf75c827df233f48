package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"agora/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret, JWTIssuer: "agora-test", JWTTTLHours: 1})

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(uint64(UserID(c)), 10))
	})

	valid, err := IssueToken(42)
	require.NoError(t, err)

	expired := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("another-secret"), jwt.RegisteredClaims{Subject: "42"})
	noSubject := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Issuer: "agora-test"})
	badSubject := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "abc"})
	hs512 := signed(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.RegisteredClaims{Subject: "42"})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Valid Token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Missing Header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong Scheme", header: "Basic " + valid, expectedStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "Wrong Key", header: "Bearer " + wrongKey, expectedStatus: http.StatusUnauthorized},
		{name: "Missing Subject", header: "Bearer " + noSubject, expectedStatus: http.StatusUnauthorized},
		{name: "Non Numeric Subject", header: "Bearer " + badSubject, expectedStatus: http.StatusUnauthorized},
		{name: "Unexpected Algorithm", header: "Bearer " + hs512, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret, JWTIssuer: "agora-test"})

	app := fiber.New()
	app.Get("/maybe", OptionalAuth, func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(uint64(UserID(c)), 10))
	})

	token, err := IssueToken(7)
	require.NoError(t, err)

	cases := map[string]string{
		"":                     "0",
		"Bearer " + token:      "7",
		"Bearer not-a-token":   "0",
		"Token something-else": "0",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, string(body), "header %q", header)
	}
}

func TestIssueToken_Claims(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret, JWTIssuer: "agora-test"})

	raw, err := IssueToken(9)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "9", claims.Subject)
	assert.Equal(t, "agora-test", claims.Issuer)
	// A zero TTL falls back to one day.
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	id, err := parseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)
}

func TestWebSocketAuthRequired_QueryToken(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/ws", WebSocketAuthRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	token, err := IssueToken(3)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
