package toolbridge

import (
	"context"
	"encoding/json"
	"time"
)

// Tool is the contract for an LLM-callable instrument. Spec-derived HTTP
// tools, native Go tools, and remotely discovered MCP tools all implement it;
// the Registry is provider-agnostic.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns a valid JSON Schema as map (compatible with LLM tool definitions).
	Parameters() map[string]any
	// Call runs the tool with the given JSON arguments and returns the raw
	// result payload. Expected failures come back as typed errors
	// (ValidationError, TemplateError, HTTPError), never as panics.
	Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error)
}

// ToolMetadata is implemented by tools created with NewTool and NewDynamicTool
// and provides optional per-tool settings. Registry uses Timeout() to override
// the default dispatch timeout when set.
type ToolMetadata interface {
	Timeout() time.Duration
}

// Provider supplies tools discovered from an external source (e.g. an MCP
// server). Build treats it as an opaque source of ready-made Tool values.
type Provider interface {
	Tools(ctx context.Context) ([]Tool, error)
}

// ToolCall is a single invocation request (as produced by the LLM).
// ID is the correlation identifier the caller threads back into the
// conversation; Dispatch echoes it unchanged on the ToolResult.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolResult is the dispatch outcome for one ToolCall. Content holds either
// the tool's payload or, when IsError is set, a readable error text the agent
// can reason about.
type ToolResult struct {
	CallID   string
	ToolName string
	Content  string
	IsError  bool
}

// MergeConflict records a tool name collision discovered while merging
// locally specified tools with remotely discovered ones. The first-inserted
// entry is kept; the colliding one is dropped.
type MergeConflict struct {
	Name    string
	Kept    string // origin of the surviving tool, e.g. "local"
	Dropped string // origin of the rejected tool, e.g. "remote"
}

// String renders the conflict for logs and reports.
func (c MergeConflict) String() string {
	return "tool name conflict: " + c.Name + " (kept " + c.Kept + ", dropped " + c.Dropped + ")"
}

// Tool origins used in MergeConflict records.
const (
	OriginLocal  = "local"
	OriginRemote = "remote"
)
