package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownStep is returned when a step name is not part of the form.
	ErrUnknownStep = errors.New("session: unknown step")
	// ErrUnknownField is returned when a field is not part of a mounted step.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrNoCapturer is returned by Capture when no capture collaborator is
	// configured.
	ErrNoCapturer = errors.New("session: no capturer configured")
	// ErrNotMediaField is returned by Capture for non media fields.
	ErrNotMediaField = errors.New("session: field does not take media")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session: closed")
)

// IncompleteError lists the steps that block submission.
type IncompleteError struct {
	Steps []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("session: form incomplete, invalid steps: %s", strings.Join(e.Steps, ", "))
}
