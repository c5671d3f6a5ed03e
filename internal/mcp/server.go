// Package mcp exposes the tool registry over the Model Context Protocol.
//
// The server registers every tool the registry knows with its declared
// schemas, so MCP clients see the same contracts the dispatcher enforces.
// Tool failures are returned as in-band error results (IsError), never as
// protocol errors: an unavailable provider is a tool outcome the agent
// should see and react to, not a broken connection.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

// Server bridges the MCP protocol to the dispatcher.
type Server struct {
	mcpServer  *mcp.Server
	dispatcher *tools.Dispatcher
	logger     log.Logger
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// NewServer creates an MCP server over a frozen registry and its dispatcher.
func NewServer(cfg Config, registry *tools.Registry, dispatcher *tools.Dispatcher, logger log.Logger) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if registry == nil || !registry.Ready() {
		return nil, fmt.Errorf("registry must be frozen before serving")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		dispatcher: dispatcher,
		logger:     logger,
	}

	for _, info := range registry.List() {
		s.registerTool(info)
	}
	return s, nil
}

// Run serves MCP on the given transport until ctx is canceled. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// registerTool wires one registry entry to an MCP tool. Arguments pass
// through as a raw map; the dispatcher owns validation, so the SDK's typed
// binding layer is bypassed deliberately.
func (s *Server) registerTool(info tools.Info) {
	tool := &mcp.Tool{
		Name:         info.Name,
		Description:  info.Description,
		InputSchema:  info.InputSchema,
		OutputSchema: info.OutputSchema,
	}

	s.mcpServer.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return errorResult(&tools.Error{
				Tool:    info.Name,
				Kind:    tools.KindValidation,
				Message: err.Error(),
			}), nil
		}

		res := s.dispatcher.Dispatch(ctx, info.Name, input)
		if !res.OK() {
			return errorResult(res.Err), nil
		}

		body, err := json.Marshal(res.Output)
		if err != nil {
			return nil, fmt.Errorf("encoding tool output: %w", err)
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(body)}},
			StructuredContent: res.Output,
		}, nil
	})
}

// decodeArguments unpacks the raw argument bytes into the dispatcher's input
// shape. Absent arguments mean an empty object so tools whose inputs are all
// defaulted can be called bare.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %v", err)
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// errorResult renders a structured tool error as an in-band MCP result.
// The payload is the same wire shape the HTTP API returns.
func errorResult(e *tools.Error) *mcp.CallToolResult {
	body, err := json.Marshal(map[string]any{"error": e})
	if err != nil {
		body = []byte(fmt.Sprintf(`{"error":{"kind":%q,"message":"internal error"}}`, e.Kind.String()))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: true,
	}
}
