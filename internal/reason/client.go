// Package reason defines the boundary to the external reasoning service
// and provides the Gemini-backed implementation. From the orchestrator's
// perspective a client is a pure function from prompt text to reply text;
// calls are blocking, bounded by a timeout, and never retried.
package reason

import "context"

// Client is the reasoning service contract. Implementations must be safe
// for sequential reuse across turns; failures should wrap
// core.ReasoningServiceError so callers can surface them as turn-level
// errors.
type Client interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface. Used by tests to
// script deterministic replies.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Infer implements Client.
func (f ClientFunc) Infer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
