package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestTextLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.With("batch", 3).Info("processed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "processed")
	assert.Contains(t, out, "batch=3")
}

func TestForFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	ForFormat(&buf, "json", "info").Info("planned", "stages", 2)

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"stages":2`)
}

func TestContextRoundTrip(t *testing.T) {
	log := Discard()
	ctx := WithContext(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
