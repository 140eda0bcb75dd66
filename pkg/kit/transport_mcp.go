package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDecoder turns the arguments of a tool call into an endpoint request.
type MCPDecoder func(mcp.CallToolRequest) (any, error)

// BindMCP returns a decoder that binds the tool arguments into a new T.
func BindMCP[T any]() MCPDecoder {
	return func(req mcp.CallToolRequest) (any, error) {
		r := new(T)
		if err := req.BindArguments(r); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// RegisterMCPTool exposes an Endpoint as an MCP tool. Every call runs with
// transport "mcp" and a fresh request id in its context. Endpoint errors are
// reported as tool errors, not protocol errors.
func RegisterMCPTool(srv *server.MCPServer, tool mcp.Tool, endpoint Endpoint, decode MCPDecoder) {
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		request, err := decode(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		ctx = WithRequestID(WithTransport(ctx, TransportMCP), NewRequestID())

		resp, err := endpoint(ctx, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if resp == nil {
			return mcp.NewToolResultText("ok"), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}
