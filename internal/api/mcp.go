package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/llamasql/llamasql/internal/agent"
	"github.com/llamasql/llamasql/internal/payload"
	"github.com/llamasql/llamasql/internal/schema"
	"github.com/llamasql/llamasql/internal/store"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     *store.Store
	Responder Responder // optional; if nil, the ask tool returns an error
}

// NewMCPServer creates an MCP server exposing the query tools and the
// schema resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"llamasql",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("llamasql — query the hospital database with SQL or plain English."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool(schema.ToolName,
			mcp.WithDescription(schema.ToolDescription()),
			mcp.WithString("sql", mcp.Description("A valid SQLite query. Always double-quote identifiers."), mcp.Required()),
		),
		mcpGetFromDB(deps),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask a question about the hospital database in plain English. The question is translated to SQL and executed."),
			mcp.WithString("question", mcp.Description("The question to answer"), mcp.Required()),
		),
		mcpAsk(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"schema://tables",
			"Database Schema",
			mcp.WithResourceDescription("CREATE TABLE statements for all queryable tables"),
			mcp.WithMIMEType("text/plain"),
		),
		mcpResourceSchema(),
	)

	return s
}

func mcpGetFromDB(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil || strings.TrimSpace(sqlText) == "" {
			return mcpText(payload.Failure("", "Missing SQL").Encode()), nil
		}

		raw := deps.Store.Execute(ctx, sqlText)
		return mcpText(payload.Normalize(sqlText, raw).Encode()), nil
	}
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}
		if deps.Responder == nil {
			return mcpError("no language model configured; use get_from_db with explicit SQL"), nil
		}

		history := []agent.Message{{Role: "human", Content: question}}
		content, err := deps.Responder.Respond(ctx, history)
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcpText(content), nil
	}
}

func mcpResourceSchema() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     schema.DDL(),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
