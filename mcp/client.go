// Package mcp bridges toolbridge registries with Model Context Protocol
// peers: a Provider that discovers tools from a remote MCP server, and a
// server that exposes a registry's tools over MCP transports.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skosovsky/toolbridge"
)

// DefaultDiscoveryTimeout bounds the initialize plus list-tools exchange.
const DefaultDiscoveryTimeout = 30 * time.Second

// caller is the slice of the MCP client used at dispatch time.
type caller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Client discovers tools from a remote MCP server over streamable HTTP and
// adapts them to the toolbridge.Tool interface. It implements
// toolbridge.Provider.
type Client struct {
	endpoint string
	name     string
	version  string
	logger   *slog.Logger

	mc *mcpclient.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientInfo sets the name and version reported during the MCP handshake.
func WithClientInfo(name, version string) ClientOption {
	return func(c *Client) {
		c.name = name
		c.version = version
	}
}

// WithClientLogger sets the logger used for discovery and call events.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Provider backed by the MCP server at endpoint. The
// connection is established lazily on the first Tools call.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		name:     "toolbridge",
		version:  "0.1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Tools connects to the remote server, performs the MCP handshake, and
// returns one adapted Tool per remote tool. Errors here abort the registry
// build; a half-discovered remote tool set is worse than none.
func (c *Client) Tools(ctx context.Context) ([]toolbridge.Tool, error) {
	if c.mc == nil {
		mc, err := mcpclient.NewStreamableHttpClient(c.endpoint)
		if err != nil {
			return nil, fmt.Errorf("connect mcp server %s: %w", c.endpoint, err)
		}
		if err := mc.Start(ctx); err != nil {
			return nil, fmt.Errorf("start mcp transport %s: %w", c.endpoint, err)
		}
		initReq := mcp.InitializeRequest{}
		initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
		initReq.Params.ClientInfo = mcp.Implementation{Name: c.name, Version: c.version}
		if _, err := mc.Initialize(ctx, initReq); err != nil {
			mc.Close()
			return nil, fmt.Errorf("initialize mcp session %s: %w", c.endpoint, err)
		}
		c.mc = mc
	}

	listed, err := c.mc.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list mcp tools %s: %w", c.endpoint, err)
	}

	tools := make([]toolbridge.Tool, 0, len(listed.Tools))
	for _, rt := range listed.Tools {
		adapted, err := adaptTool(c.mc, rt)
		if err != nil {
			c.logger.Warn("skipping remote tool with unusable schema",
				"tool", rt.Name, "error", err)
			continue
		}
		tools = append(tools, adapted)
	}
	c.logger.Info("discovered remote tools", "endpoint", c.endpoint, "count", len(tools))
	return tools, nil
}

// Close tears down the MCP session.
func (c *Client) Close() error {
	if c.mc == nil {
		return nil
	}
	err := c.mc.Close()
	c.mc = nil
	return err
}

// remoteTool adapts one discovered MCP tool to the Tool interface. Arguments
// are validated locally against the advertised schema before the network
// round trip, so malformed calls fail fast with the same error shape as local
// tools.
type remoteTool struct {
	caller      caller
	name        string
	description string
	schemaMap   map[string]any
	validate    func(any) error
}

// adaptTool builds a remoteTool from a discovered tool definition.
func adaptTool(call caller, rt mcp.Tool) (toolbridge.Tool, error) {
	raw := rt.RawInputSchema
	if raw == nil {
		b, err := json.Marshal(rt.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema: %w", err)
		}
		raw = b
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(raw, &schemaMap); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}
	validate, err := toolbridge.CompileSchema(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("compile input schema: %w", err)
	}
	return &remoteTool{
		caller:      call,
		name:        rt.Name,
		description: rt.Description,
		schemaMap:   schemaMap,
		validate:    validate,
	}, nil
}

func (t *remoteTool) Name() string        { return t.name }
func (t *remoteTool) Description() string { return t.description }

func (t *remoteTool) Parameters() map[string]any { return t.schemaMap }

func (t *remoteTool) Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error) {
	args, err := decodeArgs(t.name, argsJSON)
	if err != nil {
		return nil, err
	}
	if err := t.validate(args); err != nil {
		return nil, &toolbridge.ValidationError{Tool: t.name, Reason: err.Error()}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = args
	res, err := t.caller.CallTool(ctx, req)
	if err != nil {
		return nil, &toolbridge.SystemError{Err: fmt.Errorf("call remote tool %q: %w", t.name, err)}
	}

	text := contentText(res.Content)
	if res.IsError {
		return nil, &toolbridge.RemoteError{Tool: t.name, Message: text}
	}
	return []byte(text), nil
}

// decodeArgs unmarshals the call arguments, treating empty input as an empty
// object.
func decodeArgs(tool string, argsJSON json.RawMessage) (map[string]any, error) {
	if len(argsJSON) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		return nil, &toolbridge.ValidationError{
			Tool:   tool,
			Reason: fmt.Sprintf("arguments are not a JSON object: %v", err),
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// contentText joins the text parts of an MCP result. Non-text content is
// represented by its JSON encoding so nothing is silently dropped.
func contentText(content []mcp.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
			continue
		}
		if b, err := json.Marshal(item); err == nil {
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, "\n")
}
