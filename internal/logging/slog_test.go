package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlog(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestSlog(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestSlog(t)

	log.With("route", "/users", "user", "a@x.com").Info(context.Background(), "render", "rows", 2)

	out := buf.String()
	for _, want := range []string{"msg=render", "route=/users", "user=a@x.com", "rows=2"} {
		assert.Contains(t, out, want)
	}
}

func TestNewSlogJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewSlogJSON(&buf, "WARN")
	require.NoError(t, err)

	ctx := context.Background()
	log.Info(ctx, "hidden")
	log.With("component", "stub").Warn(ctx, "shown", "id", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "stub", rec["component"])
	assert.Equal(t, float64(2), rec["id"])
}

func TestNewSlogJSON_BadLevel(t *testing.T) {
	_, err := NewSlogJSON(&bytes.Buffer{}, "loud")
	require.Error(t, err)
}
