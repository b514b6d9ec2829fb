package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"medspresso/internal/common/fsutil"
)

// Defaults applied by Resolve when a field is still unset.
const (
	DefaultBaseURL     = "http://localhost:11434/api"
	DefaultModel       = "deepseek-r1:1.5b"
	DefaultModelsFile  = "configs/models.yaml"
	DefaultPromptsFile = "prompts/extraction_prompts.yaml"
	DefaultAddr        = ":8080"
	DefaultLogLevel    = "info"
)

// Config holds runtime parameters for the CLI and the HTTP server.
// Zero values mean "unspecified".
type Config struct {
	BaseURL        string   `json:"base_url" yaml:"base_url" toml:"base_url"`
	DefaultModel   string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	System         string   `json:"system" yaml:"system" toml:"system"`
	ModelsFile     string   `json:"models_file" yaml:"models_file" toml:"models_file"`
	PromptsFile    string   `json:"prompts_file" yaml:"prompts_file" toml:"prompts_file"`
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv reads MEDSPRESSO_* variables. OLLAMA_HOST is accepted for the
// base URL, with /api appended when it carries no path.
func FromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Config{
		BaseURL:      getenv("MEDSPRESSO_BASE_URL"),
		DefaultModel: getenv("MEDSPRESSO_MODEL"),
		System:       getenv("MEDSPRESSO_SYSTEM"),
		ModelsFile:   getenv("MEDSPRESSO_MODELS_FILE"),
		PromptsFile:  getenv("MEDSPRESSO_PROMPTS_FILE"),
		Addr:         getenv("MEDSPRESSO_ADDR"),
		LogLevel:     getenv("MEDSPRESSO_LOG_LEVEL"),
		CORSOrigins:  SplitCSV(getenv("MEDSPRESSO_CORS_ORIGINS")),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = ollamaHostURL(getenv("OLLAMA_HOST"))
	}
	if v := getenv("MEDSPRESSO_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	return cfg
}

func ollamaHostURL(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimRight(host, "/")
	if i := strings.Index(host, "://"); !strings.Contains(host[i+3:], "/") {
		host += "/api"
	}
	return host
}

// Merge returns base with every non-zero field of over applied on top.
func Merge(base, over Config) Config {
	out := base
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setStr(&out.BaseURL, over.BaseURL)
	setStr(&out.DefaultModel, over.DefaultModel)
	setStr(&out.System, over.System)
	setStr(&out.ModelsFile, over.ModelsFile)
	setStr(&out.PromptsFile, over.PromptsFile)
	setStr(&out.Addr, over.Addr)
	setStr(&out.LogLevel, over.LogLevel)
	if over.TimeoutSeconds != 0 {
		out.TimeoutSeconds = over.TimeoutSeconds
	}
	if len(over.CORSOrigins) > 0 {
		out.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	return out
}

// Resolve layers file < env < flags and fills defaults. An empty path skips
// the file layer.
func Resolve(path string, env, flags Config) (Config, error) {
	var fileCfg Config
	if path != "" {
		c, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		fileCfg = c
	}
	cfg := Merge(Merge(fileCfg, env), flags)
	return WithDefaults(cfg), nil
}

// WithDefaults fills unset fields with package defaults.
func WithDefaults(cfg Config) Config {
	return Merge(Config{
		BaseURL:      DefaultBaseURL,
		DefaultModel: DefaultModel,
		ModelsFile:   DefaultModelsFile,
		PromptsFile:  DefaultPromptsFile,
		Addr:         DefaultAddr,
		LogLevel:     DefaultLogLevel,
	}, cfg)
}

// Timeout converts TimeoutSeconds; zero or negative means no timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
