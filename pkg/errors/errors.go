// Package errors defines the failure taxonomy of a mining run. Fatal
// conditions are returned as *AppError values wrapping one of the sentinels
// below; data-quality problems are recorded as Warning values and never
// returned as errors.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvariantViolation = errors.New("invariant violation")
	ErrConfiguration      = errors.New("configuration error")
	ErrDataQuality        = errors.New("data quality warning")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// Exit codes returned by the miner CLI for each failure class.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitInvariant     = 3
	ExitInput         = 4
)

// AppError carries the failure reason plus enough context (stage, document)
// to diagnose an aborted run.
type AppError struct {
	Err        error
	Stage      string
	DocumentID string
	Message    string
}

func (e *AppError) Error() string {
	prefix := e.Err.Error()
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s [stage=%s]", prefix, e.Stage)
	}
	if e.DocumentID != "" {
		prefix = fmt.Sprintf("%s [document=%s]", prefix, e.DocumentID)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, stage string, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Stage:   stage,
		Message: message,
	}
}

func Newf(sentinel error, stage string, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
}

// ForDocument is Newf with the offending document attached.
func ForDocument(sentinel error, stage, documentID string, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Stage:      stage,
		DocumentID: documentID,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Warning is a non-fatal data-quality observation recorded during a run.
type Warning struct {
	DocumentID string `json:"document_id"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: document %s field %s: %s", ErrDataQuality, w.DocumentID, w.Field, w.Message)
}

// ExitCode maps err to the process exit code of the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrInvariantViolation):
		return ExitInvariant
	case errors.Is(err, ErrInvalidInput):
		return ExitInput
	default:
		return ExitFailure
	}
}

// Stage returns the stage recorded on the first AppError in err's chain.
func Stage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}
