package chat

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrTransport covers connection failures, timeouts and non-2xx statuses.
	ErrTransport = errors.New("chat backend unreachable")
	// ErrMalformed is returned when the backend body is not a JSON object.
	ErrMalformed = errors.New("chat backend returned a malformed payload")
)

// FailureKind categorizes a failed exchange for presentation.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureMalformed FailureKind = "malformed"
)

// Failure is a classified exchange error with a user-facing message.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ClassifyFailure maps an exchange error to a Failure. Errors that match
// neither sentinel are reported as transport failures.
func ClassifyFailure(err error) Failure {
	if errors.Is(err, ErrMalformed) {
		return Failure{
			Kind:    FailureMalformed,
			Message: "The assistant sent a reply I couldn't read. Please try again.",
		}
	}

	raw := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded), containsAny(raw, "timeout", "deadline exceeded"):
		return Failure{
			Kind:    FailureTransport,
			Message: "The assistant took too long to answer. Please try again.",
		}
	case errors.Is(err, context.Canceled):
		return Failure{
			Kind:    FailureTransport,
			Message: "The request was cancelled.",
		}
	case containsAny(raw, "status 429", "too many requests"):
		return Failure{
			Kind:    FailureTransport,
			Message: "The assistant is busy right now. Please wait a moment and try again.",
		}
	case containsAny(raw, "status 5"):
		return Failure{
			Kind:    FailureTransport,
			Message: "The assistant is temporarily unavailable. Please try again later.",
		}
	case containsAny(raw, "status 4"):
		return Failure{
			Kind:    FailureTransport,
			Message: "The assistant rejected the message.",
		}
	default:
		return Failure{
			Kind:    FailureTransport,
			Message: "Couldn't reach the assistant. Check your connection and try again.",
		}
	}
}

func containsAny(s string, patterns ...string) bool {
	lower := strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
