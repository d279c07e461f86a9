package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarticCat/tinymist/internal/adapters/logger"
)

func newTestHandler(t *testing.T) (*logger.PrettyHandler, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	return logger.NewPrettyHandler(buf, nil), buf
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_LevelThreshold(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestPrettyHandler_IconPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{name: "info has no icon", level: slog.LevelInfo, want: "message\n"},
		{name: "warn icon", level: slog.LevelWarn, want: "! message\n"},
		{name: "error icon", level: slog.LevelError, want: "✗ message\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, buf := newTestHandler(t)
			r := slog.NewRecord(time.Now(), tt.level, "message", 0)
			require.NoError(t, h.Handle(context.Background(), r))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	h, buf := newTestHandler(t)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "compiled", 0)
	r.AddAttrs(slog.String("doc", "main.typ"), slog.Int("symbols", 4))
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Equal(t, "compiled doc=main.typ symbols=4\n", buf.String())
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	h, buf := newTestHandler(t)

	wrapped := h.WithAttrs([]slog.Attr{slog.String("task", "format")}).
		WithGroup("sched")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "done", 0)
	r.AddAttrs(slog.Int("retries", 1))
	require.NoError(t, wrapped.Handle(context.Background(), r))

	assert.Equal(t, "done sched.task=format sched.retries=1\n", buf.String())
}
