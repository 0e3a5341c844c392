package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolbridge"
)

// fakeCaller records CallTool requests and returns canned results.
type fakeCaller struct {
	lastReq mcp.CallToolRequest
	result  *mcp.CallToolResult
	err     error
}

func (f *fakeCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func remoteToolDef(name string, schema string) mcp.Tool {
	return mcp.Tool{
		Name:           name,
		Description:    "remote " + name,
		RawInputSchema: json.RawMessage(schema),
	}
}

func TestAdaptTool_SchemaPassthrough(t *testing.T) {
	t.Parallel()
	def := remoteToolDef("lookup", `{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"required": ["id"]
	}`)
	tool, err := adaptTool(&fakeCaller{}, def)
	require.NoError(t, err)

	assert.Equal(t, "lookup", tool.Name())
	assert.Equal(t, "remote lookup", tool.Description())
	params := tool.Parameters()
	assert.Equal(t, "object", params["type"])
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "id")
}

func TestAdaptTool_BadSchema(t *testing.T) {
	t.Parallel()
	_, err := adaptTool(&fakeCaller{}, remoteToolDef("broken", `{"type": [`))
	require.Error(t, err)
}

func TestRemoteTool_Call(t *testing.T) {
	t.Parallel()
	def := remoteToolDef("lookup", `{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"required": ["id"]
	}`)
	caller := &fakeCaller{result: &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(`{"found": true}`)},
	}}
	tool, err := adaptTool(caller, def)
	require.NoError(t, err)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"id": "42"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"found": true}`, string(out))
	assert.Equal(t, "lookup", caller.lastReq.Params.Name)
}

func TestRemoteTool_LocalValidationBeforeNetwork(t *testing.T) {
	t.Parallel()
	def := remoteToolDef("lookup", `{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"required": ["id"]
	}`)
	caller := &fakeCaller{err: errors.New("must not be reached")}
	tool, err := adaptTool(caller, def)
	require.NoError(t, err)

	_, err = tool.Call(context.Background(), json.RawMessage(`{}`))
	var ve *toolbridge.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lookup", ve.Tool)

	_, err = tool.Call(context.Background(), json.RawMessage(`[1, 2]`))
	require.ErrorAs(t, err, &ve, "non-object arguments are rejected locally")
}

func TestRemoteTool_IsErrorResult(t *testing.T) {
	t.Parallel()
	def := remoteToolDef("lookup", `{"type": "object"}`)
	caller := &fakeCaller{result: &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent("no such record")},
		IsError: true,
	}}
	tool, err := adaptTool(caller, def)
	require.NoError(t, err)

	_, err = tool.Call(context.Background(), json.RawMessage(`{}`))
	var re *toolbridge.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "no such record")
	assert.True(t, toolbridge.IsClientError(err))
}

func TestRemoteTool_TransportFailureIsSystemError(t *testing.T) {
	t.Parallel()
	def := remoteToolDef("lookup", `{"type": "object"}`)
	caller := &fakeCaller{err: errors.New("connection reset")}
	tool, err := adaptTool(caller, def)
	require.NoError(t, err)

	_, err = tool.Call(context.Background(), json.RawMessage(`{}`))
	assert.True(t, toolbridge.IsSystemError(err))
}

func TestContentText(t *testing.T) {
	t.Parallel()
	text := contentText([]mcp.Content{
		mcp.NewTextContent("first"),
		mcp.NewTextContent("second"),
	})
	assert.Equal(t, "first\nsecond", text)
	assert.Empty(t, contentText(nil))
}
