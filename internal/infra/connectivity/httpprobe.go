package connectivity

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HTTPProbe checks reachability of the remote backend's health endpoint.
// Any transport error or non-2xx response counts as offline.
type HTTPProbe struct {
	url        string
	httpClient *http.Client
}

// NewHTTPProbe builds a probe against the given health URL.
func NewHTTPProbe(url string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProbe{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Online implements connectivity.Probe.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
