package api

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/agrocota/pkg/kit"
)

// RegisterMCPTools registers the agrocota MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, s *Service) {
	registerIngestGrid(srv, s)
	registerDetectColumns(srv, s)
	registerClassifyCategory(srv, s)
	registerGetQuotation(srv, s)
	registerListQuotations(srv, s)
}

func registerIngestGrid(srv *server.MCPServer, s *Service) {
	tool := mcp.NewTool("ingest_grid",
		mcp.WithDescription("Extract priced, categorized items from a spreadsheet grid (header row plus data rows) and summarize them."),
		mcp.WithArray("headers", mcp.Required(),
			mcp.Description("Header row, one label per column; numbers are read as text"),
			mcp.Items(map[string]any{"type": []string{"string", "number", "null"}})),
		mcp.WithArray("rows", mcp.Required(),
			mcp.Description("Data rows; each row is an array of strings, numbers or nulls"),
			mcp.Items(map[string]any{"type": "array"})),
	)

	kit.RegisterMCPTool(srv, tool, s.ingestGrid, kit.BindMCP[ingestGridReq]())
}

func registerDetectColumns(srv *server.MCPServer, s *Service) {
	tool := mcp.NewTool("detect_columns",
		mcp.WithDescription("Map spreadsheet headers (Portuguese or English) to product, supplier, category, price per hectare, dose and unit columns."),
		mcp.WithArray("headers", mcp.Required(),
			mcp.Description("Header row, one label per column; numbers are read as text"),
			mcp.Items(map[string]any{"type": []string{"string", "number", "null"}})),
	)

	kit.RegisterMCPTool(srv, tool, s.detectColumns, kit.BindMCP[columnsReq]())
}

func registerClassifyCategory(srv *server.MCPServer, s *Service) {
	tool := mcp.NewTool("classify_category",
		mcp.WithDescription("Normalize a raw category label to a canonical agricultural category, falling back to product-name hints."),
		mcp.WithString("category", mcp.Description("Raw category cell, may be empty")),
		mcp.WithString("product", mcp.Description("Product name used when the category is empty")),
	)

	kit.RegisterMCPTool(srv, tool, s.classify, func(req mcp.CallToolRequest) (any, error) {
		return &classifyReq{
			Category: req.GetString("category", ""),
			Product:  req.GetString("product", ""),
		}, nil
	})
}

func registerGetQuotation(srv *server.MCPServer, s *Service) {
	tool := mcp.NewTool("get_quotation",
		mcp.WithDescription("Fetch a stored quotation with its items, summary and per-category price comparison."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Quotation id")),
	)

	kit.RegisterMCPTool(srv, tool, s.getQuotation, func(req mcp.CallToolRequest) (any, error) {
		id := req.GetString("id", "")
		if id == "" {
			return nil, errors.New("id is required")
		}
		return &quotationIDReq{ID: id}, nil
	})
}

func registerListQuotations(srv *server.MCPServer, s *Service) {
	tool := mcp.NewTool("list_quotations",
		mcp.WithDescription("List stored quotations, newest first."),
	)

	kit.RegisterMCPTool(srv, tool, s.listQuotations, func(mcp.CallToolRequest) (any, error) {
		return nil, nil
	})
}
