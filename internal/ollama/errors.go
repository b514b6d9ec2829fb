package ollama

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an Error. The set is closed.
type Kind int

const (
	// KindInternal wraps any failure that is not one of the kinds below.
	KindInternal Kind = iota
	// KindUnreachable means the daemon is not listening at the base address.
	KindUnreachable
	// KindHTTPStatus means the daemon answered with a non-2xx status.
	KindHTTPStatus
	// KindMalformedLine means one streamed record could not be decoded.
	// It is handled inside the stream and never returned from Next/Err.
	KindMalformedLine
	// KindServerReported means the daemon returned an error payload.
	KindServerReported
	// KindConfigurationMissing means a prompt type or model is not configured.
	KindConfigurationMissing
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedLine:
		return "malformed_line"
	case KindServerReported:
		return "server_reported"
	case KindConfigurationMissing:
		return "configuration_missing"
	default:
		return "internal"
	}
}

// Error is the single error type surfaced by this package.
type Error struct {
	Kind     Kind
	Op       string // e.g. "generate", "list_models", "pull"
	Model    string
	Endpoint string
	Status   int    // KindHTTPStatus only
	Message  string // server message, remediation text or body excerpt
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch e.Kind {
	case KindUnreachable:
		fmt.Fprintf(&b, "inference daemon unreachable at %s", e.Endpoint)
	case KindHTTPStatus:
		fmt.Fprintf(&b, "daemon returned HTTP %d", e.Status)
		if e.Endpoint != "" {
			fmt.Fprintf(&b, " from %s", e.Endpoint)
		}
	case KindServerReported:
		b.WriteString("daemon reported error")
	case KindMalformedLine:
		b.WriteString("malformed stream line")
	case KindConfigurationMissing:
		b.WriteString("configuration missing")
	default:
		if e.Endpoint != "" {
			fmt.Fprintf(&b, "request to %s failed", e.Endpoint)
		} else {
			b.WriteString("failed")
		}
	}
	if e.Model != "" {
		fmt.Fprintf(&b, " (model %s)", e.Model)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil && e.Kind != KindUnreachable {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the error to an HTTP status for API layers that surface it.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindConfigurationMissing:
		return http.StatusNotFound
	case KindUnreachable:
		return http.StatusServiceUnavailable
	case KindHTTPStatus, KindServerReported:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ConfigurationMissing builds a KindConfigurationMissing error for an unknown
// entry (what is e.g. "prompt type" or "model").
func ConfigurationMissing(what, name string) error {
	return &Error{Kind: KindConfigurationMissing, Message: fmt.Sprintf("%s %q not found", what, name)}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsUnreachable reports whether err means the daemon could not be reached.
func IsUnreachable(err error) bool { return err != nil && KindOf(err) == KindUnreachable }

// IsHTTPStatus reports whether err is a non-2xx daemon response.
func IsHTTPStatus(err error) bool { return err != nil && KindOf(err) == KindHTTPStatus }

// IsServerReported reports whether err carries a daemon error payload.
func IsServerReported(err error) bool { return err != nil && KindOf(err) == KindServerReported }

// IsConfigurationMissing reports whether err is an unknown prompt type or model.
func IsConfigurationMissing(err error) bool {
	return err != nil && KindOf(err) == KindConfigurationMissing
}

// HTTPStatus returns the daemon status code carried by err, or 0.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindHTTPStatus {
		return e.Status
	}
	return 0
}
