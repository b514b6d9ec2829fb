package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"medspresso/internal/config"
	"medspresso/internal/extract"
	"medspresso/internal/ollama"
	"medspresso/internal/prompts"
	"medspresso/internal/registry"
	"medspresso/internal/ui"
)

// app carries per-invocation state shared by all commands.
type app struct {
	configPath string
	flags      config.Config
	getenv     func(string) string

	cfg     config.Config
	log     zerolog.Logger
	console *ui.Console
}

func newApp(stdout, stderr io.Writer, getenv func(string) string) *app {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &app{
		getenv:  getenv,
		console: &ui.Console{Out: stdout, Err: stderr},
		log:     zerolog.Nop(),
	}
}

// init resolves configuration (flag > env > file > defaults) and builds the
// logger. It runs before every command.
func (a *app) init() error {
	cfg, err := config.Resolve(a.configPath, config.FromEnv(a.getenv), a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(a.console.Err, cfg.LogLevel)
	a.log.Debug().Str("base_url", cfg.BaseURL).Str("models_file", cfg.ModelsFile).Str("prompts_file", cfg.PromptsFile).Msg("config resolved")
	return nil
}

func (a *app) daemonConfig() ollama.Config {
	return ollama.Config{
		BaseURL: a.cfg.BaseURL,
		Model:   a.cfg.DefaultModel,
		System:  a.cfg.System,
		Logger:  &a.log,
	}
}

// registry loads the models file. A missing file yields an empty registry and
// a warning; any other failure is returned.
func (a *app) registry() (*registry.Registry, error) {
	reg, err := registry.Load(a.cfg.ModelsFile)
	if errors.Is(err, fs.ErrNotExist) {
		a.console.Warning("model config file not found at %s", a.cfg.ModelsFile)
		return registry.New(), nil
	}
	return reg, err
}

// service wires the extraction service. With strict unset a prompts file
// that cannot be read only produces a warning.
func (a *app) service(strict bool) (*extract.Service, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	set, err := prompts.Load(a.cfg.PromptsFile)
	if err != nil {
		if strict {
			return nil, err
		}
		a.console.Warning("prompts file unavailable: %v", err)
		set = nil
	}
	return extract.New(extract.Options{
		Daemon:  a.daemonConfig(),
		Models:  reg,
		Prompts: set,
		Logger:  &a.log,
	}), nil
}

// context bounds ctx with the configured timeout, if any.
func (a *app) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := a.cfg.Timeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

const shutdownTimeout = 5 * time.Second
