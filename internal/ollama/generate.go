package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"medspresso/pkg/types"
)

const opGenerate = "generate"

// Result is either one complete text or a lazily consumed Stream.
type Result struct {
	text   string
	stream *Stream
}

// Streaming reports whether the result is backed by a Stream.
func (r *Result) Streaming() bool { return r.stream != nil }

// Stream returns the chunk iterator, or nil for a non-streaming result.
func (r *Result) Stream() *Stream { return r.stream }

// Text returns the full generated text. For a streaming result it drains the
// remaining chunks; on a mid-stream failure it returns what was received
// together with the error.
func (r *Result) Text() (string, error) {
	if r.stream == nil {
		return r.text, nil
	}
	return r.stream.Collect()
}

// Generate sends prompt to the daemon. With streaming=false it waits for the
// whole response; with streaming=true the returned Result wraps a Stream that
// yields chunks as the daemon emits them. An empty prompt is not rejected.
func (c *Client) Generate(ctx context.Context, prompt string, streaming bool) (*Result, error) {
	if streaming {
		s, err := c.Stream(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return &Result{stream: s}, nil
	}
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Result{text: text}, nil
}

func (c *Client) request(prompt string, stream bool) types.GenerateRequest {
	return types.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: c.system,
		Stream: stream,
	}
}

// Complete performs a non-streaming generation and returns the response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.daemon.send(ctx, opGenerate, c.model, http.MethodPost, pathGenerate, c.request(prompt, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	endpoint := c.daemon.baseURL + pathGenerate

	var out types.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &Error{Kind: KindInternal, Op: opGenerate, Model: c.model, Endpoint: endpoint, Message: "decode response", Err: err}
	}
	if out.Error != nil {
		return "", &Error{Kind: KindServerReported, Op: opGenerate, Model: c.model, Endpoint: endpoint, Message: *out.Error}
	}
	if out.Response == nil {
		return "", &Error{Kind: KindInternal, Op: opGenerate, Model: c.model, Endpoint: endpoint, Message: "response field missing"}
	}
	return *out.Response, nil
}

// Stream starts a streaming generation. Status errors are reported here,
// before any chunk; decoding happens lazily in Stream.Next.
func (c *Client) Stream(ctx context.Context, prompt string) (*Stream, error) {
	resp, err := c.daemon.send(ctx, opGenerate, c.model, http.MethodPost, pathGenerate, c.request(prompt, true))
	if err != nil {
		return nil, err
	}
	return &Stream{
		ctx:      ctx,
		body:     resp.Body,
		r:        bufio.NewReader(resp.Body),
		model:    c.model,
		endpoint: c.daemon.baseURL + pathGenerate,
		log:      c.daemon.log,
	}, nil
}

// trimLine strips surrounding whitespace (including the trailing \r\n).
func trimLine(b []byte) string { return strings.TrimSpace(string(b)) }
