package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    FailureKind
		message string
	}{
		{
			name:    "malformed",
			err:     fmt.Errorf("decoding: %w", ErrMalformed),
			kind:    FailureMalformed,
			message: "The assistant sent a reply I couldn't read. Please try again.",
		},
		{
			name:    "deadline",
			err:     fmt.Errorf("%w: %w", ErrTransport, context.DeadlineExceeded),
			kind:    FailureTransport,
			message: "The assistant took too long to answer. Please try again.",
		},
		{
			name:    "cancelled",
			err:     fmt.Errorf("%w: %w", ErrTransport, context.Canceled),
			kind:    FailureTransport,
			message: "The request was cancelled.",
		},
		{
			name:    "rate limited",
			err:     fmt.Errorf("%w: status 429: slow down", ErrTransport),
			kind:    FailureTransport,
			message: "The assistant is busy right now. Please wait a moment and try again.",
		},
		{
			name:    "server error",
			err:     fmt.Errorf("%w: status 503: down", ErrTransport),
			kind:    FailureTransport,
			message: "The assistant is temporarily unavailable. Please try again later.",
		},
		{
			name:    "client error",
			err:     fmt.Errorf("%w: status 422: bad body", ErrTransport),
			kind:    FailureTransport,
			message: "The assistant rejected the message.",
		},
		{
			name:    "connection refused",
			err:     fmt.Errorf("%w: dial tcp 127.0.0.1:8000: connect: connection refused", ErrTransport),
			kind:    FailureTransport,
			message: "Couldn't reach the assistant. Check your connection and try again.",
		},
		{
			name:    "unknown",
			err:     errors.New("something else"),
			kind:    FailureTransport,
			message: "Couldn't reach the assistant. Check your connection and try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFailure(tt.err)
			if got.Kind != tt.kind {
				t.Errorf("kind: expected %q, got %q", tt.kind, got.Kind)
			}
			if got.Message != tt.message {
				t.Errorf("message: expected %q, got %q", tt.message, got.Message)
			}
		})
	}
}

func TestFailedMessage(t *testing.T) {
	msg := FailedMessage(Failure{Kind: FailureTransport, Message: "offline"})
	if msg.Role != RoleAgent || msg.Kind != KindFailed || msg.Failure != FailureTransport {
		t.Errorf("unexpected failed message: %+v", msg)
	}
	if !msg.Failed() {
		t.Error("expected Failed() to be true")
	}
	if UserMessage("hi").Failed() {
		t.Error("user message must not be failed")
	}
}
