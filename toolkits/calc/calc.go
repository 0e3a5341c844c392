// Package calc provides small arithmetic tools, mainly useful for smoke
// testing agent loops and MCP transports without any upstream dependency.
package calc

import (
	"context"

	"github.com/skosovsky/toolbridge"
)

// BinaryArgs are the arguments shared by the arithmetic tools.
type BinaryArgs struct {
	A float64 `json:"a" description:"First operand"`
	B float64 `json:"b" description:"Second operand"`
}

// Result wraps the numeric outcome.
type Result struct {
	Result float64 `json:"result"`
}

// NewAdd returns a tool that adds two numbers.
func NewAdd(opts ...toolbridge.ToolOption) (toolbridge.Tool, error) {
	return toolbridge.NewTool("add", "Add two numbers and return the sum.",
		func(ctx context.Context, args BinaryArgs) (Result, error) {
			return Result{Result: args.A + args.B}, nil
		}, opts...)
}

// NewMultiply returns a tool that multiplies two numbers.
func NewMultiply(opts ...toolbridge.ToolOption) (toolbridge.Tool, error) {
	return toolbridge.NewTool("multiply", "Multiply two numbers and return the product.",
		func(ctx context.Context, args BinaryArgs) (Result, error) {
			return Result{Result: args.A * args.B}, nil
		}, opts...)
}

// Tools returns the full arithmetic tool set.
func Tools(opts ...toolbridge.ToolOption) ([]toolbridge.Tool, error) {
	add, err := NewAdd(opts...)
	if err != nil {
		return nil, err
	}
	mul, err := NewMultiply(opts...)
	if err != nil {
		return nil, err
	}
	return []toolbridge.Tool{add, mul}, nil
}
