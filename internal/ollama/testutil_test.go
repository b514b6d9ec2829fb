package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medspresso/pkg/types"
)

// stubDaemon is an httptest server speaking the daemon protocol. Handlers
// for /generate and /pull are swappable per test; every request except the
// probe's GET /tags is counted.
type stubDaemon struct {
	srv      *httptest.Server
	requests atomic.Int64
	tagsHits atomic.Int64

	mu       sync.Mutex
	models   []string
	generate http.HandlerFunc
	pull     http.HandlerFunc
	lastReq  types.GenerateRequest
	rawBody  map[string]any
}

func newStubDaemon(t *testing.T) *stubDaemon {
	t.Helper()
	s := &stubDaemon{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		s.tagsHits.Add(1)
		s.mu.Lock()
		models := append([]string(nil), s.models...)
		s.mu.Unlock()
		resp := types.TagsResponse{Models: []types.ModelTag{}}
		for _, m := range models {
			resp.Models = append(resp.Models, types.ModelTag{Name: m})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		b, _ := json.Marshal(raw)
		var req types.GenerateRequest
		_ = json.Unmarshal(b, &req)
		s.mu.Lock()
		s.lastReq = req
		s.rawBody = raw
		h := s.generate
		s.mu.Unlock()
		if h == nil {
			http.Error(w, "no handler", http.StatusNotImplemented)
			return
		}
		// handlers can inspect the already-decoded request via s.last()
		h(w, r)
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.mu.Lock()
		h := s.pull
		s.mu.Unlock()
		if h == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		h(w, r)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubDaemon) baseURL() string { return s.srv.URL + "/api" }

func (s *stubDaemon) setGenerate(h http.HandlerFunc) {
	s.mu.Lock()
	s.generate = h
	s.mu.Unlock()
}

func (s *stubDaemon) setPull(h http.HandlerFunc) {
	s.mu.Lock()
	s.pull = h
	s.mu.Unlock()
}

func (s *stubDaemon) setModels(names ...string) {
	s.mu.Lock()
	s.models = names
	s.mu.Unlock()
}

func (s *stubDaemon) last() (types.GenerateRequest, map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq, s.rawBody
}

// writeLines writes each line plus '\n' and flushes after each one.
func writeLines(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	f, _ := w.(http.Flusher)
	for _, l := range lines {
		_, _ = w.Write([]byte(l + "\n"))
		if f != nil {
			f.Flush()
		}
	}
}

func responseLine(s string) string {
	b, _ := json.Marshal(map[string]any{"response": s, "done": false})
	return string(b)
}

func newTestClient(t *testing.T, s *stubDaemon, model, system string) *Client {
	t.Helper()
	c, err := New(testCtx(t), Config{BaseURL: s.baseURL(), Model: model, System: system})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

// closedURL returns the API root of a server that is no longer listening.
func closedURL(t *testing.T) (string, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	u := srv.URL + "/api"
	srv.Close()
	return u, &hits
}
