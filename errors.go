package toolbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolbridge. Use errors.Is to check.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrTimeout      = errors.New("tool execution timeout")
	ErrValidation   = errors.New("validation failed")
	ErrShutdown     = errors.New("registry is shutting down")
)

// ConfigError reports a malformed or incomplete tool specification. It is
// fatal at load time: ParseSpecs and Build abort rather than carrying a
// half-loaded tool set. Tool and Field identify the offending entry.
type ConfigError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Tool == "":
		return fmt.Sprintf("invalid tool spec: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("invalid tool spec %q: %s", e.Tool, e.Reason)
	default:
		return fmt.Sprintf("invalid tool spec %q: field %q: %s", e.Tool, e.Field, e.Reason)
	}
}

// ValidationError reports a missing or mistyped argument at call time.
// The invocation does not proceed. Argument names the offending field so the
// LLM can self-correct.
type ValidationError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Argument == "" {
		return fmt.Sprintf("invalid arguments for %q: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("invalid arguments for %q: argument %q: %s", e.Tool, e.Argument, e.Reason)
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// TemplateError reports a {placeholder} with no matching argument. A request
// with a literal placeholder (or a silently blanked one) would reach the
// upstream API malformed, so resolution fails the invocation instead.
type TemplateError struct {
	Tool        string
	Placeholder string
	Location    string // "url", `header "X"`, or "body"
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("tool %q: no argument for placeholder {%s} in %s", e.Tool, e.Placeholder, e.Location)
}

// HTTPError reports an upstream failure: a transport error, a timeout, or a
// non-2xx status. It crosses the tool boundary as readable text, never as a
// raw transport fault.
type HTTPError struct {
	Tool       string
	URL        string
	StatusCode int // 0 when the request never completed
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool %q: request to %s failed: %v", e.Tool, e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("tool %q: upstream returned %d for %s: %s", e.Tool, e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("tool %q: upstream returned %d for %s", e.Tool, e.StatusCode, e.URL)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// RemoteError reports a tool-level failure signaled by a remote MCP server
// (result flagged is_error). The message is remote-authored and safe to show
// to the LLM.
type RemoteError struct {
	Tool    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote tool %q failed", e.Tool)
	}
	return fmt.Sprintf("remote tool %q failed: %s", e.Tool, e.Message)
}

// SystemError represents an internal failure (panic, marshaling bug, etc.).
// The LLM should not see the underlying error message or stack.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal system error during tool execution"
}

func (e *SystemError) Unwrap() error { return e.Err }

// IsClientError reports whether err is one of the call-time failures that are
// safe (and useful) to show to the LLM for self-correction: validation,
// template resolution, upstream HTTP failures, and remote tool errors.
func IsClientError(err error) bool {
	var ve *ValidationError
	var te *TemplateError
	var he *HTTPError
	var re *RemoteError
	return errors.As(err, &ve) || errors.As(err, &te) || errors.As(err, &he) || errors.As(err, &re)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// errorText renders an error for the agent-facing result. System errors are
// masked; everything else is shown verbatim.
func errorText(err error) string {
	if IsSystemError(err) {
		return (&SystemError{}).Error()
	}
	return err.Error()
}

// wrapJSONParseError returns a ValidationError for JSON unmarshal failures so
// parse errors read the same across local and dynamic tools.
func wrapJSONParseError(tool string, err error) error {
	return &ValidationError{Tool: tool, Reason: "json parse error: " + err.Error()}
}

// wrapHandlerError passes through client-visible errors; everything else
// becomes a SystemError.
func wrapHandlerError(err error) error {
	if err == nil {
		return nil
	}
	if IsClientError(err) {
		return err
	}
	return &SystemError{Err: err}
}

// panicError wraps a recovered panic value for SystemError; used by Registry
// and the WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
