package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"medspresso/internal/extract"
	"medspresso/internal/httpapi"
	"medspresso/internal/ollama"
	"medspresso/internal/prompts"
	"medspresso/internal/registry"
	"medspresso/pkg/types"
)

const modelsYAML = `models:
  deepseek-r1:1.5b:
    description: DeepSeek R1 distilled
    tags: [reasoning]
  llama3:8b:
    template: "<s>{prompt}</s>"
`

const promptsYAML = `medications: "Medications in: {text}"
vitals: "Vitals in: {text}"
`

// fakeDaemon speaks the daemon protocol. generate writes the raw body for
// each /api/generate call.
type fakeDaemon struct {
	srv       *httptest.Server
	generates atomic.Int64

	mu        sync.Mutex
	status    int
	body      string
	lastReq   types.GenerateRequest
	installed []string
}

func newFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()
	f := &fakeDaemon{status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		resp := types.TagsResponse{Models: []types.ModelTag{}}
		for _, n := range f.installed {
			resp.Models = append(resp.Models, types.ModelTag{Name: n})
		}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		f.generates.Add(1)
		var req types.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastReq = req
		status, body := f.status, f.body
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDaemon) respond(status int, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = strings.Join(lines, "\n") + "\n"
}

func (f *fakeDaemon) last() types.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

// newServer wires the real extraction stack against f behind the HTTP API.
func newServer(t *testing.T, f *fakeDaemon) *httptest.Server {
	t.Helper()
	reg, err := registry.Parse([]byte(modelsYAML))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	set, err := prompts.Parse([]byte(promptsYAML))
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	svc := extract.New(extract.Options{
		Daemon:  ollama.Config{BaseURL: f.srv.URL + "/api", Model: "deepseek-r1:1.5b"},
		Models:  reg,
		Prompts: set,
	})
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// decodeNDJSON splits body into chunk lines and the terminal result line.
func decodeNDJSON(t *testing.T, body []byte) ([]string, types.ExtractResult) {
	t.Helper()
	var (
		chunks []string
		final  types.ExtractResult
	)
	for _, l := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal([]byte(l), &probe); err != nil {
			t.Fatalf("bad ndjson line %q: %v", l, err)
		}
		if _, ok := probe["done"]; ok {
			if err := json.Unmarshal([]byte(l), &final); err != nil {
				t.Fatalf("final line %q: %v", l, err)
			}
			continue
		}
		var c types.ExtractChunk
		_ = json.Unmarshal([]byte(l), &c)
		chunks = append(chunks, c.Chunk)
	}
	return chunks, final
}

func chunkLine(s string) string {
	b, _ := json.Marshal(map[string]any{"response": s, "done": false})
	return string(b)
}
