// Package prompts resolves extraction types to prompt templates.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"medspresso/internal/common/fsutil"
	"medspresso/internal/ollama"
)

// DefaultType is used when no extraction type is requested.
const DefaultType = "medications"

// Set maps extraction type names to templates, in file order.
type Set struct {
	names     []string
	templates map[string]string
}

// Load reads a YAML mapping of type name to template string.
func Load(path string) (*Set, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a prompts document.
func Parse(b []byte) (*Set, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}
	s := &Set{templates: map[string]string{}}
	if len(root.Content) == 0 {
		return s, nil
	}
	n := root.Content[0]
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse prompts file: line %d: expected a mapping of type to template", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var tmpl string
		if err := val.Decode(&tmpl); err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", key.Value, err)
		}
		if _, dup := s.templates[key.Value]; !dup {
			s.names = append(s.names, key.Value)
		}
		s.templates[key.Value] = tmpl
	}
	return s, nil
}

// Types returns the extraction type names in file order.
func (s *Set) Types() []string { return append([]string(nil), s.names...) }

// Resolve returns the template for name.
func (s *Set) Resolve(name string) (string, error) {
	t, ok := s.templates[name]
	if !ok {
		return "", ollama.ConfigurationMissing("prompt type", name)
	}
	return t, nil
}

// Render resolves name and substitutes text into its {text} placeholder.
func (s *Set) Render(name, text string) (string, error) {
	t, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	return Substitute(t, text), nil
}

// AvailableTypes lists the types in path, or just DefaultType when the file
// cannot be loaded.
func AvailableTypes(path string) ([]string, error) {
	s, err := Load(path)
	if err != nil {
		return []string{DefaultType}, err
	}
	return s.Types(), nil
}

// Substitute replaces every {text} in tmpl with text. Doubled braces "{{"
// and "}}" produce literal braces; other placeholders are left untouched.
func Substitute(tmpl, text string) string {
	var b strings.Builder
	b.Grow(len(tmpl) + len(text))
	for i := 0; i < len(tmpl); {
		switch {
		case strings.HasPrefix(tmpl[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case strings.HasPrefix(tmpl[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case strings.HasPrefix(tmpl[i:], "{text}"):
			b.WriteString(text)
			i += len("{text}")
		default:
			b.WriteByte(tmpl[i])
			i++
		}
	}
	return b.String()
}
