package health

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/rileyhilliard/gridctl/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPollInterval is the wait loop's pause between polls.
const DefaultPollInterval = 5 * time.Second

var errNotSafe = errors.New("not all endpoints are safe")

// WaitOutcome is the result of WaitUntilSafe.
type WaitOutcome struct {
	ReachedSafe bool
	Elapsed     time.Duration
	Polls       int
	Last        Snapshot
}

// ExitCode maps the outcome to the process exit code scripts rely on.
func (o WaitOutcome) ExitCode() int {
	if o.ReachedSafe {
		return 0
	}
	return 1
}

// WaitOption configures WaitUntilSafe.
type WaitOption func(*waitConfig)

type waitConfig struct {
	progress func(Snapshot)
}

// WithProgress calls fn after every poll.
func WithProgress(fn func(Snapshot)) WaitOption {
	return func(c *waitConfig) { c.progress = fn }
}

// WaitUntilSafe polls until a snapshot reports AllSafe or deadline elapses.
// It can only be cut short by its own deadline. A never-safe cluster returns
// within [deadline, deadline+pollInterval).
func WaitUntilSafe(s Snapshotter, pollInterval, deadline time.Duration, opts ...WaitOption) WaitOutcome {
	cfg := waitConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()
	ctx, end := tracing.StartSpan(ctx, "health.wait",
		attribute.Int64("deadline_ms", deadline.Milliseconds()),
		attribute.Int64("interval_ms", pollInterval.Milliseconds()),
	)
	defer end()

	var out WaitOutcome
	poll := func() error {
		// With a non-positive deadline, ctx is already done; the single poll
		// still runs with a fresh budget so a healthy cluster can pass.
		pollCtx := ctx
		if deadline <= 0 {
			pollCtx = context.Background()
		}
		out.Last = s.Snapshot(pollCtx)
		out.Polls++
		if cfg.progress != nil {
			cfg.progress(out.Last)
		}
		if out.Last.AllSafe {
			return nil
		}
		return errNotSafe
	}

	var err error
	if deadline <= 0 {
		err = poll()
	} else {
		// Attempts outlast the deadline, so the context is what ends the loop.
		attempts := uint(deadline/pollInterval) + 2
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(attempts),
			retry.DelayType(func(uint, error, retry.DelayContext) time.Duration {
				return pollInterval
			}),
		)
		err = r.Do(poll)
	}

	out.ReachedSafe = err == nil && out.Last.AllSafe
	out.Elapsed = time.Since(start)
	tracing.Annotate(ctx,
		attribute.Bool("reached_safe", out.ReachedSafe),
		attribute.Int("polls", out.Polls),
	)
	return out
}
