package ollama

import (
	"context"
	"fmt"
	"strings"
)

// Client is a generation session bound to one model and an optional system
// prompt. It is immutable after New.
type Client struct {
	daemon *Daemon
	model  string
	system *string
}

// New probes the daemon and returns a session for cfg.Model. When the daemon
// cannot be reached it fails with KindUnreachable before any generation
// request is built, and the error message tells the operator how to fix it.
func New(ctx context.Context, cfg Config) (*Client, error) {
	d := NewDaemon(cfg)
	model := strings.TrimSpace(cfg.Model)
	if !d.Available(ctx) {
		return nil, &Error{
			Kind:     KindUnreachable,
			Op:       "connect",
			Model:    model,
			Endpoint: d.baseURL,
			Message:  remediation(d.baseURL, model),
		}
	}
	c := &Client{daemon: d, model: model}
	if cfg.System != "" {
		s := cfg.System
		c.system = &s
	}
	d.log.Debug().Str("model", model).Str("endpoint", d.baseURL).Msg("session ready")
	return c, nil
}

func remediation(baseURL, model string) string {
	pull := "ollama pull <model>"
	if model != "" {
		pull = "ollama pull " + model
	}
	return fmt.Sprintf("is Ollama running? Install it from https://ollama.com/download, "+
		"start it with `ollama serve` (expected at %s), then fetch the model with `%s`", baseURL, pull)
}

// Model returns the session's model identifier.
func (c *Client) Model() string { return c.model }

// System returns the session's system prompt and whether one is set.
func (c *Client) System() (string, bool) {
	if c.system == nil {
		return "", false
	}
	return *c.system, true
}

// Daemon exposes the shared transport for auxiliary operations.
func (c *Client) Daemon() *Daemon { return c.daemon }

// ListModels lists models installed in the daemon.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	return c.daemon.ListModels(ctx)
}
