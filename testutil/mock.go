// Package testutil provides test helpers for toolbridge (MockTool,
// MockProvider, NewTestRegistry).
package testutil

import (
	"context"
	"encoding/json"

	"github.com/skosovsky/toolbridge"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]any
	CallFn    func(ctx context.Context, argsJSON json.RawMessage) ([]byte, error)
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (or empty map).
func (m *MockTool) Parameters() map[string]any {
	if m.ParamsVal != nil {
		return m.ParamsVal
	}
	return map[string]any{}
}

// Call runs CallFn if set, otherwise returns an empty JSON object.
func (m *MockTool) Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error) {
	if m.CallFn != nil {
		return m.CallFn(ctx, argsJSON)
	}
	return []byte(`{}`), nil
}

// Ensure MockTool implements Tool.
var _ toolbridge.Tool = (*MockTool)(nil)

// MockProvider is a configurable Provider implementation for tests.
type MockProvider struct {
	ToolsVal []toolbridge.Tool
	Err      error
	Calls    int
}

// Tools returns ToolsVal or Err, counting invocations.
func (p *MockProvider) Tools(ctx context.Context) ([]toolbridge.Tool, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.ToolsVal, nil
}

// Ensure MockProvider implements Provider.
var _ toolbridge.Provider = (*MockProvider)(nil)
