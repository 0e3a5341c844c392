package toolbridge

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// toolOptions hold optional per-tool settings.
type toolOptions struct {
	timeout         time.Duration
	httpClient      *http.Client
	maxResponseSize int64
	logger          *slog.Logger
}

// ToolOption configures a tool built by NewTool, NewDynamicTool, or NewHTTPTool.
type ToolOption func(*toolOptions)

// WithTimeout sets a per-tool timeout, overriding the registry default for
// this tool.
func WithTimeout(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.timeout = d
	}
}

// WithHTTPClient sets the HTTP client used by a spec-derived tool. By default
// a shared client with the package default timeout is used.
func WithHTTPClient(c *http.Client) ToolOption {
	return func(o *toolOptions) {
		o.httpClient = c
	}
}

// WithMaxResponseSize caps the number of response body bytes a spec-derived
// tool reads. Pass 0 or negative to keep the default.
func WithMaxResponseSize(n int64) ToolOption {
	return func(o *toolOptions) {
		o.maxResponseSize = n
	}
}

// WithToolLogger sets the logger a spec-derived tool uses for soft events
// (e.g. a JSON decode fallback to raw text).
func WithToolLogger(logger *slog.Logger) ToolOption {
	return func(o *toolOptions) {
		o.logger = logger
	}
}

// Option configures a Registry at Build time.
type Option func(*registryOptions)

type registryOptions struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	logger         *slog.Logger
	middlewares    []Middleware
	localTools     []Tool
	toolOpts       []ToolOption
	onBefore       func(context.Context, ToolCall)
	onAfter        func(context.Context, ToolCall, ToolResult, time.Duration)
}

// WithDefaultTimeout sets the default per-dispatch timeout for tools.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent dispatches (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) Option {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery in Dispatch (returns a masked
// system error result).
func WithRecoverPanics(enable bool) Option {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithLogger sets the registry logger, used for merge-conflict reports and
// passed through to spec-derived tools.
func WithLogger(logger *slog.Logger) Option {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithMiddlewares wraps every tool (local and remote) with the given
// middlewares at Build time, outermost first. The registry stays immutable
// after Build, so middlewares cannot be added later.
func WithMiddlewares(mw ...Middleware) Option {
	return func(o *registryOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithLocalTools adds ready-made tools (e.g. from NewTool or a toolkit) to
// the local set, after the spec-derived ones. Local names must be unique; a
// duplicate is a *ConfigError at Build time, not a MergeConflict.
func WithLocalTools(tools ...Tool) Option {
	return func(o *registryOptions) {
		o.localTools = append(o.localTools, tools...)
	}
}

// WithToolOptions passes options to every spec-derived tool the Build
// constructs (HTTP client, response cap, per-tool timeout).
func WithToolOptions(opts ...ToolOption) Option {
	return func(o *registryOptions) {
		o.toolOpts = append(o.toolOpts, opts...)
	}
}

// WithOnBeforeDispatch sets a hook called before each dispatched call.
func WithOnBeforeDispatch(fn func(context.Context, ToolCall)) Option {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterDispatch sets a hook called after each dispatched call with the
// final result and duration.
func WithOnAfterDispatch(fn func(context.Context, ToolCall, ToolResult, time.Duration)) Option {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
