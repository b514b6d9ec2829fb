package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the API root of a local Ollama daemon.
const DefaultBaseURL = "http://localhost:11434/api"

const (
	pathTags     = "/tags"
	pathGenerate = "/generate"
	pathPull     = "/pull"

	defaultConnectTimeout = 5 * time.Second
	defaultProbeTimeout   = 5 * time.Second
	maxErrorBodyBytes     = 4096
)

// Config configures a Daemon and, through New, a Client session.
// Zero values select defaults.
type Config struct {
	BaseURL string
	Model   string
	// System is an optional system prompt; empty means none is sent.
	System string
	// ConnectTimeout bounds TCP dialing only. Generation itself has no
	// timeout beyond the caller's context.
	ConnectTimeout time.Duration
	// ProbeTimeout bounds the availability probe.
	ProbeTimeout time.Duration
	// HTTPClient overrides the transport entirely (tests, custom TLS).
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Daemon is the shared transport to one inference daemon. It carries no
// per-model state and is safe for concurrent use.
type Daemon struct {
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
	log          zerolog.Logger
}

// NewDaemon builds the transport for cfg.BaseURL without contacting it.
func NewDaemon(cfg Config) *Daemon {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		// Timeout=0: long generations are bounded by the caller's context only.
		hc = &http.Client{Transport: tr, Timeout: 0}
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Daemon{
		baseURL:      base,
		httpClient:   hc,
		probeTimeout: probeTimeout,
		log:          log.With().Str("component", "ollama").Logger(),
	}
}

// BaseURL returns the normalised API root.
func (d *Daemon) BaseURL() string { return d.baseURL }

// HTTPClient returns the underlying client so sessions can share its
// connection pool.
func (d *Daemon) HTTPClient() *http.Client { return d.httpClient }

// Available runs the availability probe with the configured probe timeout.
func (d *Daemon) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.probeTimeout)
	defer cancel()
	ok := Probe(ctx, d.baseURL, d.httpClient)
	d.log.Debug().Str("endpoint", d.baseURL+pathTags).Bool("available", ok).Msg("probe")
	return ok
}

// send performs one exchange and returns the response only for 2xx statuses;
// the caller owns resp.Body. body may be nil for GET.
func (d *Daemon) send(ctx context.Context, op, model, method, path string, body any) (*http.Response, error) {
	endpoint := d.baseURL + path
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindInternal, Op: op, Model: model, Endpoint: endpoint, Err: err}
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Op: op, Model: model, Endpoint: endpoint, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, application/x-ndjson")

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		e := classifyTransport(ctx, op, model, endpoint, err)
		observe(op, start, e)
		d.log.Debug().Str("op", op).Str("endpoint", endpoint).Err(e).Msg("request failed")
		return nil, e
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()
		e := &Error{
			Kind:     KindHTTPStatus,
			Op:       op,
			Model:    model,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  errorBodyMessage(b),
		}
		observe(op, start, e)
		d.log.Debug().Str("op", op).Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("non-2xx response")
		return nil, e
	}
	observe(op, start, nil)
	return resp, nil
}

// classifyTransport maps a failed http.Client.Do into the taxonomy.
func classifyTransport(ctx context.Context, op, model, endpoint string, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Kind: KindInternal, Op: op, Model: model, Endpoint: endpoint, Err: ctx.Err()}
	}
	if isConnectFailure(err) {
		return &Error{Kind: KindUnreachable, Op: op, Model: model, Endpoint: endpoint, Err: err}
	}
	return &Error{Kind: KindInternal, Op: op, Model: model, Endpoint: endpoint, Err: err}
}

func isConnectFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// errorBodyMessage prefers the daemon's {"error": "..."} field over raw bytes.
func errorBodyMessage(b []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(b))
}
