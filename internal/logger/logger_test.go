package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("annotation created", "shape", "spans")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "annotation created", entry["msg"])
	assert.Equal(t, "spans", entry["shape"])
}

func TestGormAdapter_Trace(t *testing.T) {
	var buf bytes.Buffer
	a := NewGormAdapter(New(config.LogConfig{Level: "debug"}, &buf), 10*time.Millisecond)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	a.Trace(ctx, time.Now(), fc, nil)
	assert.Contains(t, buf.String(), "sql query")

	buf.Reset()
	a.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	a.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "query error")

	buf.Reset()
	a.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "query error", "record not found is not a query error")
}
