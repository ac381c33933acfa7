package profiler

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *Server {
	t.Helper()

	server := New(0)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
	return server
}

func TestServer_ListensOnLoopback(t *testing.T) {
	server := startServer(t)

	host, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.NotEqual(t, "0", port, "port 0 resolves to a real port")
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := startServer(t)
	client := &http.Client{Timeout: 10 * time.Second}

	paths := []string{
		"/debug/pprof/",
		"/debug/pprof/cmdline",
		"/debug/pprof/profile?seconds=1",
		"/debug/pprof/symbol",
		"/debug/pprof/trace?seconds=1",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get("http://" + server.Addr() + path)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_ShutdownStopsServing(t *testing.T) {
	server := New(0)
	require.NoError(t, server.Start(context.Background()))
	addr := server.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestServer_AddrBeforeStart(t *testing.T) {
	server := New(0)
	assert.Empty(t, server.Addr())
	assert.NoError(t, server.Shutdown(context.Background()), "shutdown without start is a no-op")
}

func TestServer_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port
	assert.Error(t, New(port).Start(context.Background()))
}
