package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProbeReportsOnlineFor2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	probe := NewHTTPProbe(server.URL, time.Second)
	require.True(t, probe.Online(context.Background()))
}

func TestProbeReportsOfflineForServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	probe := NewHTTPProbe(server.URL, time.Second)
	require.False(t, probe.Online(context.Background()))
}

func TestProbeReportsOfflineWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close()

	probe := NewHTTPProbe(server.URL, time.Second)
	require.False(t, probe.Online(context.Background()))
}
