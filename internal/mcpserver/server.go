// Package mcpserver exposes the diagram library to LLM clients over the
// Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/archview/internal/viewer"
)

const formatURI = "archview://diagram-format"

// Server wraps the MCP server with archview tools.
type Server struct {
	mcp *server.MCPServer
	svc *viewer.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *viewer.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"archview",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_diagrams",
		mcp.WithDescription("List stored architecture diagrams with node and edge counts."),
		mcp.WithString("sort", mcp.Description("Sort order: path, title, updated or size")),
	), s.listDiagrams)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Find components by id, label or maintainer across every diagram."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
		mcp.WithString("type", mcp.Description("Restrict to one node type (service, database, external, frontend, gateway, worker)")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("export_diagram",
		mcp.WithDescription("Render a stored diagram in the archview text format."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Diagram path relative to the library (e.g. shop.arch)")),
	), s.exportDiagram)

	s.mcp.AddTool(mcp.NewTool("import_diagram",
		mcp.WithDescription("Parse diagram text and report what was understood. "+
			"With a path, the text is also stored as a new .arch diagram. "+
			"Read the format first via get_diagram_format or the "+formatURI+" resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Diagram text")),
		mcp.WithString("path", mcp.Description("Optional .arch path to store the diagram at")),
	), s.importDiagram)

	s.mcp.AddTool(mcp.NewTool("describe_node",
		mcp.WithDescription("Show a component's metadata and its incoming and outgoing relationships."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Diagram path")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
	), s.describeNode)

	s.mcp.AddTool(mcp.NewTool("get_diagram_format",
		mcp.WithDescription("Returns the archview diagram text format."),
	), s.getDiagramFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Diagram Text Format",
			mcp.WithResourceDescription("Line-based text format for architecture diagrams."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDiagrams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, _, err := s.svc.ListDiagrams(ctx, 500, 0, req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no diagrams"), nil
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s\t%s\t%d nodes\t%d edges", r.Path, r.Title, r.NodeCount, r.EdgeCount)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchNodes(ctx, query, req.GetString("type", ""), 50)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) exportDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.ExportDiagram(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) importDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Import(ctx, req.GetString("path", ""), text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) describeNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, _, _, err := s.svc.LoadModel(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := viewer.DescribeNode(m, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) getDiagramFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DiagramFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DiagramFormat,
		},
	}, nil
}
