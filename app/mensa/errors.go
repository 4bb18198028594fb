package mensa

import (
	"fmt"
)

// FormatError reports upstream markup, a date, a price or a generated feed that
// does not have the expected shape.
type FormatError struct {
	Stage string
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s format error", e.Stage)
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(stage, input string, err error) *FormatError {
	return &FormatError{Stage: stage, Input: input, Err: err}
}

// ConnectionError reports a failed fetch of the menu page.
type ConnectionError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
