package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyReply is returned when the model answers with no usable content.
	ErrEmptyReply = errors.New("llm: empty reply")

	// ErrMalformedReply is returned when a structured reply cannot be parsed.
	ErrMalformedReply = errors.New("llm: malformed reply")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("llm: circuit open")
)

// CallError wraps a failed provider call.
type CallError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("llm %s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsBadReply reports whether the model answered but the answer was unusable.
func IsBadReply(err error) bool {
	return errors.Is(err, ErrEmptyReply) || errors.Is(err, ErrMalformedReply)
}

// IsUnavailable reports whether err means the model could not be reached or
// refused service, as opposed to replying with unusable content.
func IsUnavailable(err error) bool {
	var callErr *CallError
	return errors.Is(err, ErrCircuitOpen) || errors.As(err, &callErr)
}
