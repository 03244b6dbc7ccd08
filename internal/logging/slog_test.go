package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_WritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelDebug)

	log.Debug(context.Background(), "posting secret", "expires", "1hr")

	out := buf.String()
	require.Contains(t, out, "posting secret")
	require.Contains(t, out, "expires=1hr")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelInfo).With("endpoint", "https://sb.example.com")

	log.Info(context.Background(), "configured")

	require.Contains(t, buf.String(), "endpoint=https://sb.example.com")
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelWarn)

	log.Debug(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestDiscard_DropsEverything(t *testing.T) {
	log := Discard()
	// Must not panic and With must keep discarding.
	log.With("k", "v").Error(context.Background(), "nothing")
}
