package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	var buf bytes.Buffer
	globalLogger = zerolog.New(&buf)
	return &buf
}

func TestErrorLog_AttachesError(t *testing.T) {
	buf := captureGlobal(t)

	ErrorLog(context.Background(), errors.New("boom"), "upstream failed after %d attempts", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "upstream failed after 3 attempts", entry["message"])
}

func TestWithLogger_AddsFields(t *testing.T) {
	buf := captureGlobal(t)

	ctx := WithLogger(context.Background(), map[string]interface{}{"request_id": "abc"})
	InfoLog(ctx, "hello %s", "world")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "hello world", entry["message"])
}
