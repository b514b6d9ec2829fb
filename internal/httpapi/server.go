package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medspresso/internal/extract"
	"medspresso/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	DaemonModels(ctx context.Context) ([]string, error)
	Run(ctx context.Context, req extract.Request, sink io.Writer) (extract.Result, error)
	Ready(ctx context.Context) bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		models := svc.ListModels()
		if models == nil {
			models = []types.Model{}
		}
		writeJSON(w, types.ModelsResponse{Models: models})
	})

	r.Get("/daemon/models", func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.DaemonModels(r.Context())
		if err != nil {
			status := writeError(w, err)
			l := requestLogger(r)
			l.Warn().Int("status", status).Err(err).Msg("daemon models")
			return
		}
		writeJSON(w, types.DaemonModelsResponse{Models: names})
	})

	r.Post("/extract", func(w http.ResponseWriter, r *http.Request) {
		handleExtract(svc, w, r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready(r.Context()) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("daemon unavailable"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

func handleExtract(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body types.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return
	}
	req := extract.Request{
		Text:       body.Text,
		Model:      body.Model,
		PromptType: body.PromptType,
		System:     body.System,
		Format:     extract.FormatJSON,
		Streaming:  body.Stream == nil || *body.Stream,
	}

	log := requestLogger(r)
	start := time.Now()
	log.Info().Str("model", req.Model).Str("prompt_type", req.PromptType).Bool("stream", req.Streaming).Msg("extract start")

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if extractTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, extractTimeout)
		defer tcancel()
	}

	var (
		res    extract.Result
		err    error
		status = http.StatusOK
	)
	if req.Streaming {
		nw := newNDJSONWriter(w, &lineLogger{log: log})
		res, err = svc.Run(ctx, req, nw)
		status = nw.finish(res, err)
	} else {
		res, err = svc.Run(ctx, req, nil)
		if err != nil {
			status = statusFor(err)
		}
		if r.Context().Err() == nil {
			if err != nil {
				writeError(w, err)
			} else {
				writeJSON(w, res.Payload())
			}
		}
	}
	observeExtraction(res.PromptType, err)

	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Int("status", status).Str("run_id", res.RunID).Int("chunks", res.Chunks).Dur("dur", time.Since(start)).Msg("extract end")
}

// ndjsonWriter turns raw chunks into {"chunk":...} lines. Headers are sent
// with the first chunk, so failures before any output still get a proper
// status code.
type ndjsonWriter struct {
	w       http.ResponseWriter
	debug   io.Writer
	flush   func()
	started bool
	failed  bool
}

func newNDJSONWriter(w http.ResponseWriter, debug io.Writer) *ndjsonWriter {
	nw := &ndjsonWriter{w: w, debug: debug}
	if f, ok := w.(http.Flusher); ok {
		nw.flush = f.Flush
	}
	return nw
}

func (nw *ndjsonWriter) start() {
	if nw.started {
		return
	}
	nw.started = true
	nw.w.Header().Set("Content-Type", "application/x-ndjson")
	nw.w.WriteHeader(http.StatusOK)
}

func (nw *ndjsonWriter) line(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	nw.start()
	if _, err := nw.w.Write(b); err != nil {
		nw.failed = true
		return err
	}
	_, _ = nw.debug.Write(b)
	if nw.flush != nil {
		nw.flush()
	}
	return nil
}

func (nw *ndjsonWriter) Write(p []byte) (int, error) {
	if err := nw.line(types.ExtractChunk{Chunk: string(p)}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// finish writes the terminal line, or an error response if nothing was sent
// yet, and returns the effective status.
func (nw *ndjsonWriter) finish(res extract.Result, err error) int {
	if nw.failed {
		return http.StatusOK
	}
	if err != nil && !nw.started {
		return writeError(nw.w, err)
	}
	final := res.Payload()
	final.Done = true
	if err != nil {
		final.Error = err.Error()
	}
	_ = nw.line(final)
	return http.StatusOK
}
