package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolbridge"
	"github.com/skosovsky/toolbridge/testutil"
)

// listTools calls tools/list over raw JSON-RPC and returns the tools.
func listTools(t *testing.T, s *Server) []mcpgo.Tool {
	t.Helper()
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(context.Background(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var toolsResult mcpgo.ListToolsResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolsResult))
	return toolsResult.Tools
}

// callTool calls tools/call over raw JSON-RPC and returns the result.
func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcpgo.CallToolResult {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	require.NoError(t, err)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(params) + `}`)
	result := s.HandleMessage(context.Background(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var toolResult mcpgo.CallToolResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolResult))
	return &toolResult
}

func resultText(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func echoTool(name string) toolbridge.Tool {
	return &testutil.MockTool{
		NameVal:   name,
		DescVal:   "echoes its arguments",
		ParamsVal: map[string]any{"type": "object", "properties": map[string]any{"x": map[string]any{"type": "integer"}}},
		CallFn: func(_ context.Context, args json.RawMessage) ([]byte, error) {
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			return args, nil
		},
	}
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()
	reg := testutil.NewTestRegistry(echoTool("echo"))
	srv := NewServer("test", "0.0.1", reg)

	tools := listTools(t, srv)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "echoes its arguments", tools[0].Description)

	schema, err := json.Marshal(tools[0].InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"x"`, "the registry schema is exposed verbatim")
}

func TestServer_CallTool(t *testing.T) {
	t.Parallel()
	reg := testutil.NewTestRegistry(echoTool("echo"))
	srv := NewServer("test", "0.0.1", reg)

	res := callTool(t, srv, "echo", map[string]any{"x": 7})
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"x": 7}`, resultText(t, res))
}

func TestServer_CallTool_ErrorResult(t *testing.T) {
	t.Parallel()
	failing := &testutil.MockTool{
		NameVal: "failing",
		CallFn: func(_ context.Context, _ json.RawMessage) ([]byte, error) {
			return nil, &toolbridge.ValidationError{Tool: "failing", Argument: "q", Reason: "missing required argument"}
		},
	}
	reg := testutil.NewTestRegistry(failing)
	srv := NewServer("test", "0.0.1", reg)

	res := callTool(t, srv, "failing", nil)
	assert.True(t, res.IsError, "tool failures are is_error results, not protocol errors")
	assert.Contains(t, resultText(t, res), "q")
}

func TestServer_SyncTools(t *testing.T) {
	t.Parallel()
	reg1 := testutil.NewTestRegistry(echoTool("old_tool"))
	srv := NewServer("test", "0.0.1", reg1)
	require.Len(t, listTools(t, srv), 1)

	reg2 := testutil.NewTestRegistry(echoTool("new_tool"))
	srv.SyncTools(reg1, reg2)

	tools := listTools(t, srv)
	require.Len(t, tools, 1)
	assert.Equal(t, "new_tool", tools[0].Name)

	res := callTool(t, srv, "new_tool", map[string]any{"x": 1})
	assert.False(t, res.IsError)
}

func TestServer_SyncTools_ConcurrentWithCalls(t *testing.T) {
	t.Parallel()
	prev := testutil.NewTestRegistry(echoTool("echo"))
	srv := NewServer("test", "0.0.1", prev)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"x":1}}}`)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		for {
			select {
			case <-done:
				return
			default:
				srv.HandleMessage(context.Background(), msg)
			}
		}
	})

	for range 50 {
		next := testutil.NewTestRegistry(echoTool("echo"))
		srv.SyncTools(prev, next)
		prev = next
	}
	close(done)
	wg.Wait()

	res := callTool(t, srv, "echo", map[string]any{"x": 1})
	assert.False(t, res.IsError)
}
