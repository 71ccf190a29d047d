package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")

	ctx := ContextWithRequestID(context.Background(), "req-42")
	InfoContext(ctx, "hello", "slug", "kulturverein")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "kulturverein", line["slug"])
}

func TestTraceLevels(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")

	EnterMethod("OrganizationService.Create")
	assert.Empty(t, buf.String(), "debug tracing is hidden at info level")

	ExitMethodWithError("OrganizationService.Create", errors.New("boom"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "← exit failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
}
