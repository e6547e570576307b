package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Errors for the ingestion pipeline. Per-job conditions abort a job
// invocation; SOURCE_DATA_ERROR is per-record and is counted, not raised.
var (
	ErrSourceUnavailable = New("SOURCE_UNAVAILABLE", http.StatusBadGateway, "upstream source fetch failed")
	ErrSourceData        = New("SOURCE_DATA_ERROR", http.StatusUnprocessableEntity, "source record malformed")
	ErrNavigationTimeout = New("NAVIGATION_TIMEOUT", http.StatusGatewayTimeout, "browser navigation step timed out")
	ErrExtractionService = New("EXTRACTION_SERVICE_ERROR", http.StatusBadGateway, "extraction service call failed")
	ErrExtractionParse   = New("EXTRACTION_PARSE_ERROR", http.StatusBadGateway, "extraction response is not valid JSON")
	ErrRinkNotFound      = New("RINK_NOT_FOUND", http.StatusNotFound, "rink not found")
	ErrJobNotFound       = New("JOB_NOT_FOUND", http.StatusNotFound, "job not found")
	ErrJobAlreadyRunning = New("JOB_ALREADY_RUNNING", http.StatusConflict, "job is already in flight")
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss         = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Is reports whether err carries the given error code.
func Is(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
