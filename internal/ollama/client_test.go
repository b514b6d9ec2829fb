package ollama

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestNew_UnreachableFailsBeforeAnyRequest(t *testing.T) {
	u, hits := closedURL(t)
	c, err := New(testCtx(t), Config{BaseURL: u, Model: "llama3:8b"})
	if err == nil || c != nil {
		t.Fatalf("expected construction failure, got client=%v err=%v", c, err)
	}
	if !IsUnreachable(err) {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request, got %d", hits.Load())
	}
	msg := err.Error()
	for _, want := range []string{"ollama serve", "ollama pull llama3:8b", u} {
		if !strings.Contains(msg, want) {
			t.Fatalf("remediation text missing %q: %s", want, msg)
		}
	}
}

func TestNew_ProbeOnlyTouchesTags(t *testing.T) {
	s := newStubDaemon(t)
	c := newTestClient(t, s, "m", "")
	if c.Model() != "m" {
		t.Fatalf("model=%q", c.Model())
	}
	if _, ok := c.System(); ok {
		t.Fatalf("expected no system prompt")
	}
	if s.requests.Load() != 0 {
		t.Fatalf("construction sent %d non-probe requests", s.requests.Load())
	}
	if s.tagsHits.Load() != 1 {
		t.Fatalf("tags hits=%d", s.tagsHits.Load())
	}
}

func TestComplete_ReturnsResponseField(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"m","response":"metformin 500mg","done":true}`))
	})
	c := newTestClient(t, s, "m", "")
	got, err := c.Complete(testCtx(t), "extract: metformin 500mg BID")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "metformin 500mg" {
		t.Fatalf("got %q", got)
	}
	req, raw := s.last()
	if req.Model != "m" || req.Prompt != "extract: metformin 500mg BID" || req.Stream {
		t.Fatalf("unexpected request: %+v", req)
	}
	if v, ok := raw["system"]; !ok || v != nil {
		t.Fatalf("expected explicit null system, got %v (present=%v)", v, ok)
	}
	if v, ok := raw["stream"]; !ok || v != false {
		t.Fatalf("expected stream=false on the wire, got %v", v)
	}
}

func TestComplete_SendsSystemPrompt(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})
	c := newTestClient(t, s, "m", "You are a clinical coder.")
	if _, err := c.Complete(testCtx(t), "p"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	req, _ := s.last()
	if req.System == nil || *req.System != "You are a clinical coder." {
		t.Fatalf("system not forwarded: %+v", req.System)
	}
}

func TestComplete_ServerReportedError(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model runner crashed"})
	})
	c := newTestClient(t, s, "m", "")
	got, err := c.Complete(testCtx(t), "p")
	if !IsServerReported(err) {
		t.Fatalf("expected server-reported error, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected no text, got %q", got)
	}
	if !strings.Contains(err.Error(), "model runner crashed") {
		t.Fatalf("message lost: %v", err)
	}
}

func TestComplete_HTTPStatus(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'm' not found, try pulling it first"}`))
	})
	c := newTestClient(t, s, "m", "")
	_, err := c.Complete(testCtx(t), "p")
	if !IsHTTPStatus(err) || HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "try pulling it first") {
		t.Fatalf("expected daemon message in error: %v", err)
	}
}

func TestComplete_MissingResponseField(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	})
	c := newTestClient(t, s, "m", "")
	if _, err := c.Complete(testCtx(t), "p"); KindOf(err) != KindInternal || err == nil {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestComplete_EmptyPromptIsSent(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	})
	c := newTestClient(t, s, "m", "")
	got, err := c.Complete(testCtx(t), "")
	if err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if s.requests.Load() != 1 {
		t.Fatalf("expected request to be sent, count=%d", s.requests.Load())
	}
}

func TestGenerate_DaemonStoppedAfterConstruction(t *testing.T) {
	s := newStubDaemon(t)
	c := newTestClient(t, s, "m", "")
	s.srv.Close()
	_, err := c.Generate(testCtx(t), "p", false)
	if !IsUnreachable(err) {
		t.Fatalf("expected unreachable, got %v", err)
	}
	var e *Error
	if !asError(err, &e) || e.Model != "m" || !strings.HasSuffix(e.Endpoint, "/api/generate") {
		t.Fatalf("expected model and endpoint context, got %+v", e)
	}
}

func TestGenerate_NonStreamingResult(t *testing.T) {
	s := newStubDaemon(t)
	s.setGenerate(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"whole"}`))
	})
	c := newTestClient(t, s, "m", "")
	res, err := c.Generate(testCtx(t), "p", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Streaming() || res.Stream() != nil {
		t.Fatalf("expected non-streaming result")
	}
	if txt, err := res.Text(); err != nil || txt != "whole" {
		t.Fatalf("text=%q err=%v", txt, err)
	}
}
