package scan

import (
	"errors"
	"fmt"
)

// Error codes persisted with failed scans and surfaced to manual callers.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMissingURL         = "MISSING_URL"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeTokenRefreshFailed = "TOKEN_REFRESH_FAILED"
)

var (
	// ErrNotFound means no application exists for (id, user).
	ErrNotFound = errors.New("application not found")
	// ErrMissingURL means the application has no target URL to scan.
	ErrMissingURL = errors.New("application has no url")
)

// FailureError wraps a fetch or token-refresh failure with its code. The
// failure state has already been persisted by the time callers see it.
type FailureError struct {
	Code string
	Err  error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// ErrorCode maps a scan error to its persistable code.
func ErrorCode(err error) string {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrMissingURL):
		return CodeMissingURL
	}
	return CodeFetchFailed
}
