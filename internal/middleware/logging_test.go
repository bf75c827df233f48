package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := Logger
	Logger = slog.New(&ctxHandler{slog.NewJSONHandler(&buf, nil)})
	t.Cleanup(func() { Logger = previous })
	return &buf
}

func TestCtxHandler_AddsRequestScope(t *testing.T) {
	buf := captureLogs(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUserID(ctx, 42)
	Logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.EqualValues(t, 42, record["user_id"])
	assert.NotContains(t, record, "trace_id")
}

func TestStructuredLogger_Levels(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/goals/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "0" {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/goals/3", "/goals/0"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	dec := json.NewDecoder(buf)
	var ok, bad map[string]any
	require.NoError(t, dec.Decode(&ok))
	require.NoError(t, dec.Decode(&bad))

	assert.Equal(t, "INFO", ok["level"])
	assert.Equal(t, "/goals/:id", ok["route"])
	assert.NotEmpty(t, ok["request_id"])
	assert.Equal(t, "WARN", bad["level"])
	assert.EqualValues(t, 400, bad["status"])
}
