package types

// GenerateRequest is the body of POST /generate on the inference daemon.
type GenerateRequest struct {
	// Model identifier known to the daemon, e.g. "deepseek-r1:1.5b".
	Model string `json:"model"`
	// Fully rendered prompt text.
	Prompt string `json:"prompt"`
	// Optional system prompt. Serialised as null when unset.
	System *string `json:"system"`
	// Stream selects NDJSON streaming. Always sent.
	Stream bool `json:"stream"`
}

// GenerateResponse is either the single non-streaming payload or one NDJSON
// record of a streaming response. Exactly one of Response or Error is
// expected; pointer fields distinguish "absent" from "empty".
type GenerateResponse struct {
	Model    string  `json:"model,omitempty"`
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
	Done     bool    `json:"done,omitempty"`
}

// ModelTag is one entry of GET /tags.
type ModelTag struct {
	Name       string `json:"name"`
	Model      string `json:"model,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

// TagsResponse wraps the list of locally installed daemon models.
type TagsResponse struct {
	Models []ModelTag `json:"models"`
}

// PullRequest is the body of POST /pull.
type PullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// PullProgress is one streamed progress line of a pull.
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}
