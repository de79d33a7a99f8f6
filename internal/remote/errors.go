package remote

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the API rejects the session (401/419).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired is returned before a request is issued when the
	// bearer token is already past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")
)

// ValidationError carries the server's field-level validation messages for a
// 422-class response. The request reached the server and was understood, but
// its content was rejected; it is retryable after the user corrects input.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// FieldSummary joins all field messages into a single human-readable string,
// used when the UI has no field to anchor a message to.
func (e *ValidationError) FieldSummary() string {
	if len(e.Fields) == 0 {
		return e.Error()
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		parts = append(parts, strings.Join(e.Fields[f], ", "))
	}
	return strings.Join(parts, "; ")
}

// TransportError wraps a failure to reach the server at all (DNS, refused
// connection, timeout). No response was received, so no state changed
// server-side that the client knows of.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAuthError reports whether err means the session is no longer valid and
// the user must re-authenticate.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}

// IsNetworkError reports whether err never produced a server response.
func IsNetworkError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
