package toolbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Registry is the merged, name-keyed collection of all available tools for a
// process lifetime. It is built once by Build and read-only afterwards:
// concurrent dispatches share it without locking because no dispatch mutates
// an entry. Rebuilding produces a fresh, independent Registry.
type Registry struct {
	tools     map[string]Tool
	names     []string // sorted
	conflicts []MergeConflict
	sem       chan struct{}
	opts      registryOptions
	done      chan struct{}
	running   sync.WaitGroup
	mu        sync.Mutex // guards done transitions vs. running accounting
}

// Build constructs one callable tool per local spec (validation → templating
// → invocation wired in sequence), appends any extra local tools, then
// queries the remote provider and merges its tool set. Merge rule: local
// tools first, then remote; on a name collision the remote entry is dropped
// and the collision is recorded as a MergeConflict and logged, never silently
// shadowed. provider may be nil.
//
// Build is re-runnable; each call produces a fresh Registry with no shared
// mutable state.
func Build(ctx context.Context, specs []ToolSpec, provider Provider, opts ...Option) (*Registry, error) {
	o := registryOptions{
		timeout:        DefaultHTTPTimeout,
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	toolOpts := append([]ToolOption{WithToolLogger(o.logger)}, o.toolOpts...)

	local := make([]Tool, 0, len(specs)+len(o.localTools))
	for _, spec := range specs {
		t, err := NewHTTPTool(spec, toolOpts...)
		if err != nil {
			return nil, err
		}
		local = append(local, t)
	}
	local = append(local, o.localTools...)

	r := &Registry{
		tools: make(map[string]Tool, len(local)),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.maxConcurrency > 0 {
		r.sem = make(chan struct{}, o.maxConcurrency)
	}

	for _, t := range local {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, &ConfigError{Tool: name, Field: "name", Reason: "duplicate local tool name"}
		}
		r.tools[name] = wrapMiddlewares(t, o.middlewares)
	}

	if provider != nil {
		remote, err := provider.Tools(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover remote tools: %w", err)
		}
		for _, t := range remote {
			name := t.Name()
			if _, exists := r.tools[name]; exists {
				conflict := MergeConflict{Name: name, Kept: OriginLocal, Dropped: OriginRemote}
				r.conflicts = append(r.conflicts, conflict)
				o.logger.Warn("dropping conflicting remote tool", "tool", name)
				continue
			}
			r.tools[name] = wrapMiddlewares(t, o.middlewares)
		}
	}

	r.names = make([]string, 0, len(r.tools))
	for name := range r.tools {
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r, nil
}

// wrapMiddlewares applies middlewares to a tool, outermost first.
func wrapMiddlewares(t Tool, mws []Middleware) Tool {
	for i := len(mws) - 1; i >= 0; i-- {
		t = mws[i](t)
	}
	return t
}

// Get returns the tool with the given name, or (nil, false) if not found.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns all registered tools (e.g. for exporting to LLM providers),
// sorted by name for deterministic order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Conflicts returns the merge conflicts recorded during Build. Callers should
// inspect these before wiring the registry to an agent: an ambiguous tool
// namespace means nondeterministic which-tool-wins behavior downstream.
func (r *Registry) Conflicts() []MergeConflict {
	return slices.Clone(r.conflicts)
}

// Dispatch maps one agent-issued tool call to a registry entry, invokes it,
// and wraps the outcome under the call's correlation ID. Expected failure
// classes (unknown tool, invalid arguments, unresolved placeholder, upstream
// HTTP failure) come back as error results, never as panics or Go errors, so
// a conversational loop can always continue.
func (r *Registry) Dispatch(ctx context.Context, call ToolCall) ToolResult {
	result := ToolResult{CallID: call.ID, ToolName: call.Name}

	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return errorResult(result, ErrShutdown)
	default:
	}
	tool, ok := r.tools[call.Name]
	if !ok {
		r.mu.Unlock()
		return errorResult(result, fmt.Errorf("%w: %q", ErrToolNotFound, call.Name))
	}
	r.running.Add(1)
	r.mu.Unlock()
	defer r.running.Done()

	if err := r.acquireSemaphore(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return errorResult(result, err)
	}
	defer r.releaseSemaphore()

	timeout := r.opts.timeout
	if tm, ok := tool.(ToolMetadata); ok && tm.Timeout() > 0 {
		timeout = tm.Timeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}
	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, call, result, time.Since(start))
		}
	}()

	out, err := r.callTool(ctx, tool, call)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		result = errorResult(result, err)
		return result
	}
	result.Content = string(out)
	return result
}

// callTool invokes the tool, optionally converting a panic into a SystemError
// so one bad tool cannot take down the dispatch loop.
func (r *Registry) callTool(ctx context.Context, tool Tool, call ToolCall) (out []byte, err error) {
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				out = nil
				err = &SystemError{Err: &panicError{p: p}}
			}
		}()
	}
	return tool.Call(ctx, call.Args)
}

// DispatchAll runs all calls concurrently and returns results in call order.
// Each invocation reads only its own resolved request and writes only its own
// result slot; failures never affect sibling calls.
func (r *Registry) DispatchAll(ctx context.Context, calls []ToolCall) []ToolResult {
	if len(calls) == 0 {
		return nil
	}
	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			results[i] = r.Dispatch(ctx, call)
		})
	}
	wg.Wait()
	return results
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

// Shutdown closes the registry for new dispatches and waits for in-flight
// ones or ctx to cancel.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// errorResult fills a result with the agent-facing text for err.
func errorResult(base ToolResult, err error) ToolResult {
	base.IsError = true
	base.Content = errorText(err)
	return base
}
