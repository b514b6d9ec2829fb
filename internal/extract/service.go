// Package extract ties the prompt set, the model registry and the daemon
// client together into a single extraction run.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medspresso/internal/ollama"
	"medspresso/internal/prompts"
	"medspresso/internal/registry"
	"medspresso/pkg/types"
)

// Format selects how a finished run is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json" (case-insensitive). Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q (want text or json)", s)
}

// Request describes one extraction. Empty Model and PromptType fall back to
// the service defaults.
type Request struct {
	Text       string
	Model      string
	PromptType string
	System     string
	Format     Format
	Streaming  bool
}

// Result is the outcome of a run. On a mid-stream failure Text holds what was
// received before the error.
type Result struct {
	RunID      string
	Model      string
	PromptType string
	Text       string
	Chunks     int
	Format     Format
}

// Payload returns the API shape of r.
func (r Result) Payload() types.ExtractResult {
	return types.ExtractResult{RunID: r.RunID, Model: r.Model, PromptType: r.PromptType, Result: r.Text}
}

// Render formats r according to r.Format.
func (r Result) Render() ([]byte, error) {
	if r.Format != FormatJSON {
		return []byte(r.Text), nil
	}
	return json.MarshalIndent(r.Payload(), "", "  ")
}

// Connector opens a generation session. ollama.New in production.
type Connector func(ctx context.Context, cfg ollama.Config) (*ollama.Client, error)

// Options configure a Service.
type Options struct {
	// Daemon is the base client configuration; Model is the default model.
	Daemon  ollama.Config
	Models  *registry.Registry
	Prompts *prompts.Set
	Logger  *zerolog.Logger
	Connect Connector
}

// Service runs extractions. It is safe for concurrent use.
type Service struct {
	base    ollama.Config
	daemon  *ollama.Daemon
	models  *registry.Registry
	prompts *prompts.Set
	connect Connector
	log     zerolog.Logger
}

// New builds a Service. Nil registries are treated as empty.
func New(opts Options) *Service {
	s := &Service{
		base:    opts.Daemon,
		models:  opts.Models,
		prompts: opts.Prompts,
		connect: opts.Connect,
		log:     zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
		s.base.Logger = opts.Logger
	}
	if s.models == nil {
		s.models = registry.New()
	}
	if s.prompts == nil {
		s.prompts = &prompts.Set{}
	}
	if s.connect == nil {
		s.connect = ollama.New
	}
	s.daemon = ollama.NewDaemon(s.base)
	s.base.HTTPClient = s.daemon.HTTPClient()
	return s
}

// DefaultModel is the model used when a request names none.
func (s *Service) DefaultModel() string { return s.base.Model }

// Models returns the model registry.
func (s *Service) Models() *registry.Registry { return s.models }

// ListModels returns the registry entries in file order.
func (s *Service) ListModels() []types.Model { return s.models.List() }

// DaemonModels lists the models installed in the daemon.
func (s *Service) DaemonModels(ctx context.Context) ([]string, error) {
	return s.daemon.ListModels(ctx)
}

// PromptTypes lists the configured extraction types.
func (s *Service) PromptTypes() []string { return s.prompts.Types() }

// Daemon returns the transport used for listing and pulling models.
func (s *Service) Daemon() *ollama.Daemon { return s.daemon }

// Ready reports whether the daemon answers.
func (s *Service) Ready(ctx context.Context) bool { return s.daemon.Available(ctx) }

// resolve picks the model and renders the final prompt. It never touches the
// network, so configuration errors surface before any request.
func (s *Service) resolve(req Request) (model, promptType, prompt string, err error) {
	model = strings.TrimSpace(req.Model)
	if model == "" {
		model = s.base.Model
	}
	if model == "" {
		return "", "", "", ollama.ConfigurationMissing("model", "(unspecified)")
	}
	// An empty registry means the models file was absent; any model is allowed.
	if len(s.models.Names()) > 0 {
		if _, err := s.models.Lookup(model); err != nil {
			return "", "", "", err
		}
	}
	promptType = strings.TrimSpace(req.PromptType)
	if promptType == "" {
		promptType = prompts.DefaultType
	}
	body, err := s.prompts.Render(promptType, req.Text)
	if err != nil {
		return "", "", "", err
	}
	return model, promptType, s.models.Apply(model, body), nil
}

// Run executes one extraction. Chunks are written to sink as they arrive
// (a nil sink discards them); a non-streaming run writes the whole text once.
func (s *Service) Run(ctx context.Context, req Request, sink io.Writer) (Result, error) {
	model, promptType, prompt, err := s.resolve(req)
	if err != nil {
		return Result{}, err
	}
	if sink == nil {
		sink = io.Discard
	}
	res := Result{
		RunID:      uuid.NewString(),
		Model:      model,
		PromptType: promptType,
		Format:     req.Format,
	}
	if res.Format == "" {
		res.Format = FormatText
	}
	log := s.log.With().Str("run_id", res.RunID).Str("model", model).Str("prompt_type", promptType).Logger()
	start := time.Now()
	log.Info().Bool("stream", req.Streaming).Msg("extraction started")

	cfg := s.base
	cfg.Model = model
	if req.System != "" {
		cfg.System = req.System
	}
	client, err := s.connect(ctx, cfg)
	if err != nil {
		return res, err
	}
	out, err := client.Generate(ctx, prompt, req.Streaming)
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		return res, err
	}

	if !out.Streaming() {
		res.Text, _ = out.Text()
		res.Chunks = 1
		if _, err := io.WriteString(sink, res.Text); err != nil {
			return res, fmt.Errorf("write result: %w", err)
		}
	} else {
		st := out.Stream()
		defer st.Close()
		var b strings.Builder
		for st.Next() {
			c := st.Chunk()
			b.WriteString(c)
			res.Chunks++
			if _, err := io.WriteString(sink, c); err != nil {
				res.Text = b.String()
				return res, fmt.Errorf("write chunk: %w", err)
			}
		}
		res.Text = b.String()
		if err := st.Err(); err != nil {
			log.Error().Err(err).Int("chunks", res.Chunks).Msg("stream failed")
			return res, err
		}
		if n := st.Malformed(); n > 0 {
			log.Warn().Int("malformed", n).Msg("skipped malformed stream lines")
		}
	}
	log.Info().Int("chunks", res.Chunks).Dur("took", time.Since(start)).Msg("extraction finished")
	return res, nil
}
