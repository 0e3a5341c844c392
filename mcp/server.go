package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/skosovsky/toolbridge"
)

// Server exposes a toolbridge Registry over the Model Context Protocol. Every
// registry tool becomes an MCP tool with its exact parameter schema; calls
// route through Registry.Dispatch so remote clients get the same validation,
// timeout, and error semantics as a local agent loop.
type Server struct {
	mcpSrv *mcpserver.MCPServer
	logger *slog.Logger
	reg    atomic.Pointer[toolbridge.Registry]
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for tool registration and serve events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer builds an MCP server named name at version exposing every tool in
// reg.
func NewServer(name, version string, reg *toolbridge.Registry, opts ...ServerOption) *Server {
	s := &Server{
		mcpSrv: mcpserver.NewMCPServer(
			name,
			version,
			mcpserver.WithToolCapabilities(true),
		),
	}
	s.reg.Store(reg)
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	for _, t := range reg.Tools() {
		s.addTool(t)
	}
	s.logger.Info("mcp server initialized", "name", name, "tools", len(reg.Names()))
	return s
}

// addTool registers one registry tool with the underlying MCP server. The
// parameter schema is passed through raw so remote clients see exactly what a
// local LLM provider would.
func (s *Server) addTool(t toolbridge.Tool) {
	raw, err := json.Marshal(t.Parameters())
	if err != nil {
		s.logger.Error("skipping tool with unmarshalable schema", "tool", t.Name(), "error", err)
		return
	}
	def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw)
	s.mcpSrv.AddTool(def, s.handler(t.Name()))
}

// handler dispatches an MCP call through the registry. Tool failures come
// back as is_error results, not protocol errors, so the MCP session survives
// bad calls the same way an agent loop does.
func (s *Server) handler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		result := s.reg.Load().Dispatch(ctx, toolbridge.ToolCall{
			ID:   uuid.NewString(),
			Name: name,
			Args: args,
		})
		if result.IsError {
			return errorResult(result.Content), nil
		}
		return textResult(result.Content), nil
	}
}

// SyncTools reconciles the exposed tool set after a registry swap: tools no
// longer present are deregistered, new or changed ones are (re)registered.
// The registry pointer is published atomically, so in-flight handlers keep
// dispatching against a complete registry. Call it from a Reloader OnSwap
// hook.
func (s *Server) SyncTools(old, next *toolbridge.Registry) {
	s.reg.Store(next)
	if old != nil {
		var removed []string
		nextNames := make(map[string]bool)
		for _, n := range next.Names() {
			nextNames[n] = true
		}
		for _, n := range old.Names() {
			if !nextNames[n] {
				removed = append(removed, n)
			}
		}
		if len(removed) > 0 {
			s.mcpSrv.DeleteTools(removed...)
		}
	}
	for _, t := range next.Tools() {
		s.addTool(t)
	}
	s.logger.Info("mcp tool set synced", "tools", len(next.Names()))
}

// ServeStdio serves the MCP session over stdin/stdout, for desktop agent
// hosts. Blocks until the stream closes.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpSrv)
}

// ServeStreamableHTTP serves MCP over streamable HTTP on addr. Stateless mode
// keeps the endpoint usable behind load balancers.
func (s *Server) ServeStreamableHTTP(addr string) error {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpSrv,
		mcpserver.WithStateLess(true),
	)
	s.logger.Info("serving mcp over http", "addr", addr)
	return streamable.Start(addr)
}

// HandleMessage processes one raw JSON-RPC message, mainly for tests and
// embedding in custom transports.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpSrv.HandleMessage(ctx, message)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(message)},
		IsError: true,
	}
}
