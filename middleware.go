package toolbridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, recovery,
// timeout). Registries apply middlewares at Build time so the wrapped set
// stays immutable.
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Tool) Tool {
		return &loggingTool{toolBase: toolBase{next: next}, logger: logger}
	}
}

// WithRecovery returns a middleware that recovers panics and returns SystemError.
func WithRecovery() Middleware {
	return func(next Tool) Tool {
		return &recoveryTool{toolBase{next: next}}
	}
}

// WithTimeoutMiddleware returns a middleware that enforces a per-tool timeout.
// Named with "Middleware" suffix to avoid collision with the ToolOption
// WithTimeout. When both a registry default timeout and this middleware
// apply, the effective timeout is the minimum of the two.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Tool) Tool {
		return &timeoutTool{toolBase: toolBase{next: next}, timeout: d}
	}
}

// toolBase forwards the descriptive methods to the wrapped tool.
type toolBase struct {
	next Tool
}

func (b *toolBase) Name() string               { return b.next.Name() }
func (b *toolBase) Description() string        { return b.next.Description() }
func (b *toolBase) Parameters() map[string]any { return b.next.Parameters() }

// Timeout exposes the wrapped tool's per-tool timeout, if any, so wrapping
// does not hide ToolMetadata from the registry.
func (b *toolBase) Timeout() time.Duration {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Timeout()
	}
	return 0
}

type loggingTool struct {
	toolBase
	logger *slog.Logger
}

func (t *loggingTool) Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error) {
	start := time.Now()
	t.logger.Debug("tool call start", "tool", t.next.Name())
	out, err := t.next.Call(ctx, argsJSON)
	if err != nil {
		t.logger.Warn("tool call failed", "tool", t.next.Name(), "duration", time.Since(start), "error", err)
		return nil, err
	}
	t.logger.Debug("tool call done", "tool", t.next.Name(), "duration", time.Since(start), "bytes", len(out))
	return out, nil
}

type recoveryTool struct {
	toolBase
}

func (t *recoveryTool) Call(ctx context.Context, argsJSON json.RawMessage) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = &SystemError{Err: &panicError{p: p}}
		}
	}()
	return t.next.Call(ctx, argsJSON)
}

type timeoutTool struct {
	toolBase
	timeout time.Duration
}

func (t *timeoutTool) Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.next.Call(ctx, argsJSON)
}

var (
	_ Tool         = (*loggingTool)(nil)
	_ Tool         = (*recoveryTool)(nil)
	_ Tool         = (*timeoutTool)(nil)
	_ ToolMetadata = (*loggingTool)(nil)
)
