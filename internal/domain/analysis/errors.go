package analysis

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a run record that does not exist.
var ErrNotFound = errors.New("analysis not found")

// Kind classifies pipeline failures for HTTP mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindFetch      Kind = "fetch"
	KindAnalysis   Kind = "analysis"
)

// Error wraps a collaborator failure with its pipeline stage.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewFetchError marks a clone failure (client-correctable).
func NewFetchError(err error) error {
	return &Error{Kind: KindFetch, Err: err}
}

// NewAnalysisError marks a graph builder failure (server-side).
func NewAnalysisError(err error) error {
	return &Error{Kind: KindAnalysis, Err: err}
}

// KindOf returns the stage of err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
