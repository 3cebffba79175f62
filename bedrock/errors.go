package bedrock

import (
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	// InvalidInput is a client-correctable problem such as an empty message
	// or a model ID that isn't in the catalog.
	InvalidInput ErrorKind = iota + 1
	// UnsupportedProvider means the catalog names a provider with no adapter.
	UnsupportedProvider
	// AttachmentReadError means an uploaded file couldn't be read.
	AttachmentReadError
	// UpstreamError covers failed calls, malformed bodies and bodies that
	// carry an error field.
	UpstreamError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case UnsupportedProvider:
		return "unsupported provider"
	case AttachmentReadError:
		return "attachment read error"
	case UpstreamError:
		return "upstream error"
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// StatusCode is the HTTP status used to report the error to a caller.
func (k ErrorKind) StatusCode() int {
	if k == InvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error carries a user-facing Message alongside the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
