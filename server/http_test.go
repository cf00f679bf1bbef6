package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tsukikage7/tracefwd/logger"
)

func TestNewHTTP_NilHandler(t *testing.T) {
	assert.Panics(t, func() { NewHTTP(nil) })
}

func TestHTTP_StartRequiresAddr(t *testing.T) {
	srv := NewHTTP(http.NewServeMux())
	assert.ErrorIs(t, srv.Start(context.Background()), ErrAddrEmpty)
}

func TestHTTP_ServeAndStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	srv := NewHTTP(mux,
		WithName("metrics"),
		WithAddr("127.0.0.1:0"),
		WithLogger(logger.NewFromZap(zap.NewNop())),
	)
	assert.Equal(t, "metrics", srv.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server not ready")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	assert.ErrorIs(t, srv.Start(ctx), ErrServerRunning)

	cancel()
	require.NoError(t, <-done)
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestHTTP_StopBeforeStart(t *testing.T) {
	srv := NewHTTP(http.NewServeMux(), WithAddr(":0"))
	assert.NoError(t, srv.Stop(context.Background()))
	assert.Equal(t, ":0", srv.Addr())
}
