package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {

	l, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestSetupConsole(t *testing.T) {

	var buf bytes.Buffer
	log, done := Setup(&buf, slog.LevelInfo, "")
	defer done()

	log.Debug("hidden")
	log.Info("shown", "rows", 3)

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown")
	require.Contains(t, buf.String(), "rows=3")
}

func TestMultiHandler(t *testing.T) {

	var a, b bytes.Buffer
	m := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	require.True(t, m.Enabled(context.Background(), slog.LevelDebug))

	log := slog.New(m).With("run", "x")
	log.Info("one")
	log.Warn("two")

	require.Contains(t, a.String(), "msg=one")
	require.Contains(t, a.String(), "msg=two")
	require.NotContains(t, b.String(), "msg=one")
	require.Contains(t, b.String(), "run=x")
}
