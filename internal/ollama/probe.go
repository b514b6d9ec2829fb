package ollama

import (
	"context"
	"net/http"
	"strings"
)

// Probe reports whether an inference daemon answers at baseURL. Any HTTP
// response counts as available regardless of status or body; every transport
// failure (refused, timeout, DNS, TLS) counts as unavailable. It never panics
// and never returns an error.
func Probe(ctx context.Context, baseURL string, hc *http.Client) bool {
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+pathTags, nil)
	if err != nil {
		return false
	}
	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
