package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/toolbridge"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMockTool(t *testing.T) {
	m := &MockTool{
		NameVal:   "test_tool",
		DescVal:   "For tests",
		ParamsVal: map[string]any{"type": "object"},
		CallFn: func(_ context.Context, _ json.RawMessage) ([]byte, error) {
			return []byte(`{"done":true}`), nil
		},
	}
	assert.Equal(t, "test_tool", m.Name())
	assert.Equal(t, "For tests", m.Description())
	assert.Equal(t, map[string]any{"type": "object"}, m.Parameters())
	out, err := m.Call(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	var v struct {
		Done bool `json:"done"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	assert.True(t, v.Done)
}

func TestMockTool_Defaults(t *testing.T) {
	m := &MockTool{}
	assert.Equal(t, "mock", m.Name())
	assert.Equal(t, map[string]any{}, m.Parameters())
	out, err := m.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestMockProvider(t *testing.T) {
	p := &MockProvider{ToolsVal: []toolbridge.Tool{&MockTool{NameVal: "m"}}}
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, 1, p.Calls)

	p.Err = errors.New("unreachable")
	_, err = p.Tools(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, p.Calls)
}

func TestNewTestRegistry(t *testing.T) {
	m := &MockTool{NameVal: "m", CallFn: func(_ context.Context, _ json.RawMessage) ([]byte, error) {
		return []byte(`{}`), nil
	}}
	reg := NewTestRegistry(m)
	require.NotNil(t, reg)
	assert.Equal(t, []string{"m"}, reg.Names())
	res := reg.Dispatch(context.Background(), toolbridge.ToolCall{ID: "1", Name: "m", Args: []byte(`{}`)})
	require.False(t, res.IsError)
}
