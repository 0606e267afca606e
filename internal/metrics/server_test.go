package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"osusume/internal/config"
	"osusume/internal/metrics"
)

func newServer(t *testing.T, addr string) *metrics.HTTPServer {
	t.Helper()

	s := &metrics.HTTPServer{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{MetricsAddr: addr},
	}
	require.NoError(t, s.Init(t.Context()))
	return s
}

func TestRunDisabledWithoutAddr(t *testing.T) {
	t.Parallel()

	s := newServer(t, "")
	require.NoError(t, s.Run(t.Context()))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s := newServer(t, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop on context cancellation")
	}
}
