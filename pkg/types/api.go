package types

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	// Clinical free text to extract from.
	// example: Patient started on metformin 500mg BID.
	Text string `json:"text" example:"Patient started on metformin 500mg BID."`
	// Optional model name. If empty, the server default is used.
	// example: deepseek-r1:1.5b
	Model string `json:"model,omitempty" example:"deepseek-r1:1.5b"`
	// Optional extraction type. If empty, "medications" is used.
	// example: medications
	PromptType string `json:"prompt_type,omitempty" example:"medications"`
	// Optional system prompt forwarded to the daemon.
	System string `json:"system,omitempty"`
	// Stream chunks as NDJSON when true (default). Pointer so an omitted field defaults to streaming.
	// example: true
	Stream *bool `json:"stream,omitempty" example:"true"`
}

// ExtractChunk is one NDJSON line emitted while streaming an extraction.
type ExtractChunk struct {
	Chunk string `json:"chunk"`
}

// ExtractResult is the final payload of an extraction: the last NDJSON line
// when streaming, or the whole body otherwise.
type ExtractResult struct {
	// Unique id of this extraction run.
	// example: 5f1b7c1e-3f51-4a0e-9a59-1b8d0f6f9b7a
	RunID string `json:"run_id" example:"5f1b7c1e-3f51-4a0e-9a59-1b8d0f6f9b7a"`
	// Model that served the run.
	Model string `json:"model"`
	// Extraction type used.
	PromptType string `json:"prompt_type"`
	// Generated text.
	Result string `json:"result"`
	// Set on the terminal NDJSON line.
	Done bool `json:"done,omitempty"`
	// Set when a streaming run failed after chunks were written.
	Error string `json:"error,omitempty"`
}

// ModelsResponse wraps the list of registry models returned by GET /models.
type ModelsResponse struct {
	// List of configured models.
	Models []Model `json:"models"`
}

// DaemonModelsResponse is returned by GET /daemon/models.
type DaemonModelsResponse struct {
	// Names of models installed in the daemon, in daemon order.
	Models []string `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompt type "vitals" not found
	Error string `json:"error" example:"prompt type \"vitals\" not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
