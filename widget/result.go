package widget

import (
	"context"
	"errors"
	"log/slog"
)

// ErrSuperseded is the failure of a lookup whose answer arrived after a newer
// request of the same kind had started
var ErrSuperseded = errors.New("superseded by a newer request")

// Result is the outcome of one upstream operation
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps an error
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// OK reports whether the operation succeeded
func (r Result[T]) OK() bool { return r.err == nil }

// Err returns the failure, nil on success
func (r Result[T]) Err() error { return r.err }

// Value returns the value, the zero value on failure
func (r Result[T]) Value() T { return r.value }

// Get returns both parts
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// discard is the widget's error policy: failures are logged and dropped so
// the previously rendered state stays on screen. It reports whether r holds
// a value the caller may apply.
func discard[T any](ctx context.Context, logger *slog.Logger, operation string, r Result[T]) bool {
	if r.OK() {
		return true
	}
	if errors.Is(r.err, ErrSuperseded) {
		logger.DebugContext(ctx, "Dropping stale result", slog.String("operation", operation))
		return false
	}
	logger.WarnContext(ctx, "Upstream call failed, keeping previous state",
		slog.String("operation", operation),
		slog.Any("error", r.err),
	)
	return false
}
