// Package fault defines the error taxonomy shared across the tutoring
// pipeline. Provider and store adapters classify failures at the boundary;
// downstream code only ever inspects the kind, never the error text.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for handling policy decisions.
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindInvalidArgument marks caller errors rejected before any I/O
	// (malformed chunking parameters, empty query text).
	KindInvalidArgument

	// KindUnavailable marks an unreachable or timed-out retrieval store.
	// Callers degrade to "no context" instead of failing the request.
	KindUnavailable

	// KindRateLimited marks provider quota exhaustion (HTTP 429 /
	// RESOURCE_EXHAUSTED). Retryable by policy, never silently in handlers.
	KindRateLimited

	// KindGenerationFailed marks any other provider-side failure.
	// Never retried automatically.
	KindGenerationFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	case KindGenerationFailed:
		return "generation_failed"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a human-readable message.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
