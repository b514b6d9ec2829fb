package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"medspresso/pkg/types"
)

// maxLogLineBytes caps how much of a malformed line is logged.
const maxLogLineBytes = 256

// Stream is a finite, non-restartable sequence of generated text chunks read
// line by line from an NDJSON response body. Use it like bufio.Scanner:
//
//	for s.Next() {
//		fmt.Print(s.Chunk())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Next blocks until the daemon delivers the next line or closes the body.
// Undecodable lines are skipped; an error record ends the stream with
// KindServerReported.
type Stream struct {
	ctx      context.Context
	body     io.ReadCloser
	r        *bufio.Reader
	model    string
	endpoint string
	log      zerolog.Logger

	chunk     string
	err       error
	done      bool
	closed    atomic.Bool
	chunks    int
	malformed int
}

// Next advances to the next chunk and reports whether there is one.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for {
		line, readErr := s.r.ReadBytes('\n')
		if text := trimLine(line); text != "" {
			var rec types.GenerateResponse
			err := json.Unmarshal([]byte(text), &rec)
			switch {
			case err == nil && rec.Error != nil:
				s.finish(&Error{Kind: KindServerReported, Op: opGenerate, Model: s.model, Endpoint: s.endpoint, Message: *rec.Error})
				return false
			case err == nil && rec.Response != nil:
				s.chunk = *rec.Response
				s.chunks++
				streamChunksTotal.Inc()
				return true
			default:
				s.skip(text, err)
			}
		}
		if readErr != nil {
			s.finish(s.readError(readErr))
			return false
		}
	}
}

// Chunk returns the chunk produced by the last successful Next.
func (s *Stream) Chunk() string { return s.chunk }

// Err returns the error that ended the stream, or nil after a clean end.
func (s *Stream) Err() error { return s.err }

// Malformed returns how many lines were skipped so far.
func (s *Stream) Malformed() int { return s.malformed }

// Close releases the connection. A later or concurrent Next ends the stream
// without error. Close is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.body.Close()
}

// Collect drains the remaining chunks and returns their concatenation. On
// failure the text received before the error is returned with it.
func (s *Stream) Collect() (string, error) {
	var b strings.Builder
	for s.Next() {
		b.WriteString(s.chunk)
	}
	return b.String(), s.err
}

func (s *Stream) readError(err error) error {
	if errors.Is(err, io.EOF) || s.closed.Load() {
		return nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.Canceled) {
			return nil
		}
		return &Error{Kind: KindInternal, Op: opGenerate, Model: s.model, Endpoint: s.endpoint, Err: ctxErr}
	}
	return &Error{Kind: KindInternal, Op: opGenerate, Model: s.model, Endpoint: s.endpoint, Message: "read stream", Err: err}
}

func (s *Stream) skip(line string, cause error) {
	s.malformed++
	malformedLinesTotal.Inc()
	if len(line) > maxLogLineBytes {
		line = line[:maxLogLineBytes]
	}
	if cause == nil {
		cause = errors.New("neither response nor error field present")
	}
	e := &Error{Kind: KindMalformedLine, Op: opGenerate, Model: s.model, Endpoint: s.endpoint, Err: cause}
	s.log.Warn().Str("line", line).Int("malformed", s.malformed).Err(e).Msg("skipping malformed stream line")
}

func (s *Stream) finish(err error) {
	s.done = true
	s.chunk = ""
	s.err = err
	_ = s.Close()
	ev := s.log.Debug().Str("op", opGenerate).Str("model", s.model).Int("chunks", s.chunks).Int("malformed", s.malformed)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("stream finished")
}
