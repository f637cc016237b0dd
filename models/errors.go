package models

import "fmt"

// Error codes carried by ExtractError. Fatal codes abort the run after
// session teardown and debug-artifact capture; pagination faults degrade
// to "stop walking, keep what was captured".
const (
	ErrCodeSession       = "SESSION_FAILED"
	ErrCodeAuth          = "AUTH_FAILED"
	ErrCodeFrameNotFound = "FRAME_NOT_FOUND"
	ErrCodeTableNotFound = "TABLE_NOT_FOUND"
	ErrCodePagination    = "PAGINATION_FAULT"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNoRecords     = "NO_RECORDS"
)

// ExtractError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(code, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Err: err}
}

// Fatal reports whether the error class must abort the run.
func (e *ExtractError) Fatal() bool {
	return e.Code != ErrCodePagination
}
