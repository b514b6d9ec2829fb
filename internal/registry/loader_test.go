package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"medspresso/internal/ollama"
	"medspresso/pkg/types"
)

const modelsYAML = `models:
  deepseek-r1:1.5b:
    description: DeepSeek R1 distilled
    tags: [reasoning, small]
  llama3.2:3b:
    description: Llama 3.2
    template: "<|user|>{prompt}<|assistant|>"
  phi3:mini: {}
`

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_PreservesOrder(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "models.yaml", modelsYAML)
	r, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"deepseek-r1:1.5b", "llama3.2:3b", "phi3:mini"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names=%v want %v", got, want)
	}
	m, err := r.Lookup("deepseek-r1:1.5b")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m.Description != "DeepSeek R1 distilled" || !reflect.DeepEqual(m.Tags, []string{"reasoning", "small"}) {
		t.Fatalf("unexpected model: %+v", m)
	}
}

func TestLookup_Missing(t *testing.T) {
	r := New()
	if _, err := r.Lookup("nope"); !ollama.IsConfigurationMissing(err) {
		t.Fatalf("expected configuration missing, got %v", err)
	}
}

func TestTemplateAndApply(t *testing.T) {
	r, err := Parse([]byte(modelsYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := r.Template("deepseek-r1:1.5b"); got != DefaultTemplate {
		t.Fatalf("default template=%q", got)
	}
	if got := r.Apply("llama3.2:3b", "hi"); got != "<|user|>hi<|assistant|>" {
		t.Fatalf("apply=%q", got)
	}
	if got := r.Apply("unknown", "hi"); got != "hi" {
		t.Fatalf("apply unknown=%q", got)
	}
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	r, err := Parse([]byte("models:\n"))
	if err != nil || len(r.Names()) != 0 {
		t.Fatalf("expected empty registry, got %v err=%v", r.Names(), err)
	}
	if _, err := Parse([]byte("models: [a, b]\n")); err == nil {
		t.Fatalf("expected error for list-valued models")
	}
	if _, err := Parse([]byte("models:\n  a: {\n")); err == nil {
		t.Fatalf("expected YAML error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/models-12345.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNew_LaterDuplicateWins(t *testing.T) {
	r := New(types.Model{Name: "a", Description: "one"}, types.Model{Name: "b"}, types.Model{Name: "a", Description: "two"})
	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("names=%v", got)
	}
	if m, _ := r.Lookup("a"); m.Description != "two" {
		t.Fatalf("expected later duplicate to win, got %+v", m)
	}
}
