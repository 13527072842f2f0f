package errors

import (
	"fmt"
)

// Error is the uniform error type for failures that did not come from the server.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Op names the operation that failed (e.g. "store.get", "http.do").
	Op string `json:"op,omitempty"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Details contains additional context.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix += " " + e.Op
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithOp sets the failing operation and returns the receiver.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// --- Constructors ---

// StorageAccess reports a failed read or write against the auth storage.
func StorageAccess(op string, cause error) *Error {
	return &Error{
		Kind: KindStorageAccess, Op: op, Cause: cause,
		Message: "auth storage access failed",
	}
}

// Serialization reports JSON that could not be encoded or decoded.
func Serialization(op string, cause error) *Error {
	return &Error{
		Kind: KindSerialization, Op: op, Cause: cause,
		Message: "malformed JSON",
	}
}

// Transport reports a failure to reach or talk to the server.
func Transport(op string, cause error) *Error {
	return &Error{
		Kind: KindTransport, Op: op, Cause: cause,
		Message: "request could not be completed",
	}
}

// Timeout is a transport error caused by an expired deadline.
func Timeout(op string, cause error) *Error {
	e := Transport(op, cause)
	e.Message = "request timed out"
	return e.WithDetail("timeout", true)
}

// URLConstruction reports a base URL or path that could not be joined into a valid URL.
func URLConstruction(raw string, cause error) *Error {
	e := &Error{
		Kind: KindURLConstruction, Op: "url.build", Cause: cause,
		Message: fmt.Sprintf("invalid request URL %q", raw),
	}
	return e.WithDetail("url", raw)
}

// Opaque wraps a foreign error so it can cross the library boundary.
// Errors that already belong to the taxonomy are returned unchanged.
func Opaque(cause error) error {
	if cause == nil {
		return nil
	}
	if KindOf(cause) != "" {
		return cause
	}
	return &Error{Kind: KindOpaque, Message: "unexpected error", Cause: cause}
}

// Wrap attaches a kind and operation to cause. A nil cause yields nil.
func Wrap(kind Kind, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: "operation failed", Cause: cause}
}
