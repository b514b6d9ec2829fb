package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"medspresso/internal/common/fsutil"
	"medspresso/internal/ollama"
	"medspresso/pkg/types"
)

// DefaultTemplate passes the prompt through unchanged.
const DefaultTemplate = "{prompt}"

// Registry is the set of supported models, in file order.
type Registry struct {
	models []types.Model
	index  map[string]int
}

// New builds a registry from models; later duplicates replace earlier ones.
func New(models ...types.Model) *Registry {
	r := &Registry{index: make(map[string]int, len(models))}
	for _, m := range models {
		if i, ok := r.index[m.Name]; ok {
			r.models[i] = m
			continue
		}
		r.index[m.Name] = len(r.models)
		r.models = append(r.models, m)
	}
	return r
}

// Load reads a models file of the form
//
//	models:
//	  deepseek-r1:1.5b:
//	    description: ...
//	    tags: [reasoning]
//	    template: "{prompt}"
//
// The map key is the model name. Entry order is preserved. A leading '~' in
// path is expanded.
func Load(path string) (*Registry, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a models document.
func Parse(b []byte) (*Registry, error) {
	var doc struct {
		Models yaml.Node `yaml:"models"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}
	n := doc.Models
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return New(), nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse models file: line %d: models must be a mapping", n.Line)
	}
	models := make([]types.Model, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var m types.Model
		if err := val.Decode(&m); err != nil {
			return nil, fmt.Errorf("parse model %q: %w", key.Value, err)
		}
		m.Name = key.Value
		models = append(models, m)
	}
	return New(models...), nil
}

// Names returns model names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.models))
	for i, m := range r.models {
		out[i] = m.Name
	}
	return out
}

// List returns a copy of all models.
func (r *Registry) List() []types.Model {
	out := make([]types.Model, len(r.models))
	copy(out, r.models)
	return out
}

// Lookup returns the model named name or a configuration-missing error.
func (r *Registry) Lookup(name string) (types.Model, error) {
	if i, ok := r.index[name]; ok {
		return r.models[i], nil
	}
	return types.Model{}, ollama.ConfigurationMissing("model", name)
}

// Template returns the model's template, DefaultTemplate when unset or unknown.
func (r *Registry) Template(name string) string {
	if m, err := r.Lookup(name); err == nil && strings.TrimSpace(m.Template) != "" {
		return m.Template
	}
	return DefaultTemplate
}

// Apply wraps prompt with the model's template. Templates without a
// {prompt} placeholder are ignored.
func (r *Registry) Apply(name, prompt string) string {
	tmpl := r.Template(name)
	if !strings.Contains(tmpl, "{prompt}") {
		return prompt
	}
	return strings.Replace(tmpl, "{prompt}", prompt, 1)
}
