package nixos

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned when the user aborts the wizard. It is an
	// outcome, not a failure: nothing is written.
	ErrCancelled = errors.New("installation cancelled by user")

	ErrFirstPhase = errors.New("already at the first phase")
	ErrLastPhase  = errors.New("already at the last phase")
)

// ValidationError is a rejected field or phase. It is always recoverable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ProbeError wraps a failed or timed out hardware/network probe.
type ProbeError struct {
	Probe string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s unavailable: %v", e.Probe, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// SerializationError is a failure to write the artifact or the snapshot.
type SerializationError struct {
	Op   string
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Reason returns the user facing reason of a validation error, or the
// error text for anything else.
func Reason(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}

type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// ExitCode maps an outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeCompleted:
		return 0
	case OutcomeCancelled:
		return 2
	default:
		return 1
	}
}

// OutcomeOf classifies the error a run finished with.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCompleted
	case errors.Is(err, ErrCancelled):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
