// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model invokes a locally hosted text-generation model and
// captures its reply. A timed-out or failed call yields an absent
// response; deciding what that means for the run is the caller's job.
package model

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout marks a generation call that exceeded its deadline. A
// timeout is an expected outcome for large chunks on small hardware,
// not a fault.
var ErrTimeout = errors.New("model generation timed out")

// Backend generates text for a prompt using the named model. An empty
// reply with a nil error is valid; the caller treats it as absent.
type Backend interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Invoker retries a single model a fixed number of times with a fixed
// delay. It knows nothing about fallback models; composing primary and
// fallback is the pipeline's responsibility, which keeps the invoker
// single-purpose and testable against a fake backend.
type Invoker struct {
	Backend Backend

	// Attempts is the total number of tries per Invoke call (minimum 1).
	Attempts int

	// Delay is the pause between attempts.
	Delay time.Duration
}

// Invoke runs the model until it yields non-empty text or attempts are
// exhausted. The boolean is false when every attempt produced nothing;
// errors are absorbed because per-chunk failure is a normal outcome.
func (inv Invoker) Invoke(ctx context.Context, model, prompt string) (string, bool) {
	attempts := inv.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && inv.Delay > 0 {
			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(inv.Delay):
			}
		}

		if ctx.Err() != nil {
			return "", false
		}

		text, err := inv.Backend.Generate(ctx, model, prompt)
		if err == nil && text != "" {
			return text, true
		}
	}
	return "", false
}
