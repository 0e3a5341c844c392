// Package toolbridge turns declarative specifications of HTTP APIs into
// validated, callable tools for LLM agents, and merges them with tools
// discovered from an MCP server into one name-addressable registry.
//
// # Overview
//
// A ToolSpec describes an HTTP endpoint: URL/header/body templates with
// {param} placeholders, a method, and a typed parameter list. Build derives a
// JSON Schema from the parameters, wires argument validation → template
// resolution → HTTP invocation into a Tool, pulls the remote tool set from a
// Provider, and merges both under a name-uniqueness contract. Collisions are
// reported as MergeConflict values, never silently shadowed.
//
// Pipeline: spec JSON → ParseSpecs → Build (local tools + remote discovery) →
// Registry → Dispatch (lookup, validate, invoke, wrap) → ToolResult.
//
// # Key concepts
//
//   - One interface, two origins: locally built HTTP tools and remotely
//     discovered MCP tools are both plain Tool values; the Registry does not
//     care where a tool came from.
//   - Errors as values: a dispatched call never panics or leaks a transport
//     fault. Validation, templating, and HTTP failures all come back as
//     readable error results the agent can reason about.
//   - Immutable registry: Build returns a fresh, read-only Registry; hot
//     reload swaps in a new one atomically (see Reloader).
//
// Native Go tools can be added next to spec-derived ones via NewTool (typed,
// reflection-based schema) or NewDynamicTool (raw JSON Schema).
//
// # Example
//
//	specs, err := toolbridge.ParseSpecs([]byte(`{
//	    "name": "get_item",
//	    "description": "Fetch an item by id",
//	    "endpoint_template": "https://api.example.com/items/{item_id}",
//	    "method": "GET",
//	    "parameters": [{"name": "item_id", "type": "string", "required": true}]
//	}`))
//	if err != nil { ... }
//	reg, err := toolbridge.Build(ctx, specs, nil)
//	if err != nil { ... }
//	result := reg.Dispatch(ctx, toolbridge.ToolCall{ID: "1", Name: "get_item", Args: []byte(`{"item_id":"42"}`)})
package toolbridge
