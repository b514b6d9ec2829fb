package httpapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the HTTP layer's logger; silent until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// requestLogger returns zlog tagged with the request id and, when the caller
// asked for it via ?log= or X-Log-Level, a lowered level for this request only.
func requestLogger(r *http.Request) zerolog.Logger {
	l := zlog.With().Str("path", r.URL.Path).Logger()
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	if lvl, ok := requestLogLevel(r); ok {
		l = l.Level(lvl)
	}
	return l
}

func requestLogLevel(r *http.Request) (zerolog.Level, bool) {
	v := r.URL.Query().Get("log")
	if v == "" {
		v = r.Header.Get("X-Log-Level")
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return zerolog.NoLevel, false
	case "1":
		return zerolog.DebugLevel, true
	case "off":
		return zerolog.Disabled, true
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(v))
	if err != nil {
		return zerolog.InfoLevel, true
	}
	return lvl, true
}

// lineLogger logs each complete NDJSON line written through it at debug.
type lineLogger struct {
	log zerolog.Logger
	buf []byte
}

func (lw *lineLogger) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if idx > 0 {
			lw.log.Debug().Str("line", string(lw.buf[:idx])).Msg("extract>")
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}
