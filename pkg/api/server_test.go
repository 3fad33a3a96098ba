package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremem/coremem/pkg/logger"
)

func TestNewHTTPServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 8080

	server := NewHTTPServer(cfg, logger.Discard(), createTestHandlers(t).handlers)

	require.NotNil(t, server.server)
	assert.Equal(t, "localhost:8080", server.server.Addr)
	assert.Equal(t, cfg.Server.HTTP.MaxHeaderBytes, server.server.MaxHeaderBytes)
	assert.Equal(t, cfg.Server.HTTP.WriteTimeout, server.server.WriteTimeout)
	assert.NotNil(t, server.Handler())
}

func TestHTTPServer_ServeAndShutdown(t *testing.T) {
	stack := createTestHandlers(t)
	server := NewHTTPServer(testConfig(), logger.Discard(), stack.handlers)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var stats []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Empty(t, stats)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
}

func TestHTTPServer_StartFailsOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

	err = NewHTTPServer(cfg, logger.Discard(), &Handlers{}).Start()
	assert.ErrorContains(t, err, "listen on")
}
