package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/export"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/openai"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/organizer"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Organizer Pipeline
	Store     HistoryStore
}

// NewMCPServer creates an MCP server with the organizer tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"chatorg",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("chatorg — organizes AI chat transcripts into titled, tagged, summarized records."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("organize_chat",
			mcp.WithDescription("Organize a single chat transcript into a structured record with title, summary, tags, bullets and action items."),
			mcp.WithString("transcript", mcp.Description("The full chat transcript text"), mcp.Required()),
		),
		mcpOrganizeChat(deps),
	)

	s.AddTool(
		mcp.NewTool("organize_batch",
			mcp.WithDescription("Split a blob containing multiple chat transcripts and organize each one. Failed transcripts become degraded rows, not errors."),
			mcp.WithString("content", mcp.Description("Text containing one or more transcripts"), mcp.Required()),
			mcp.WithString("delimiter", mcp.Description("Transcript separator (defaults to a ----- line)")),
		),
		mcpOrganizeBatch(deps),
	)

	s.AddTool(
		mcp.NewTool("export_history",
			mcp.WithDescription("Export all organized records from this session as CSV."),
		),
		mcpExportHistory(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"history://recent",
			"Recent Records",
			mcp.WithResourceDescription("Last 10 organized chat records"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpOrganizeChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcript, err := req.RequireString("transcript")
		if err != nil {
			return mcpError("transcript is required"), nil
		}

		rec, err := deps.Organizer.ProcessOne(ctx, transcript)
		if errors.Is(err, organizer.ErrEmptyTranscript) {
			return mcpError("transcript must not be empty"), nil
		}
		if errors.Is(err, openai.ErrMissingAPIKey) {
			return mcpError(err.Error()), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to organize: %v", err)), nil
		}

		if err := deps.Store.Append(rec); err != nil {
			return mcpError(fmt.Sprintf("organized but failed to record history: %v", err)), nil
		}

		b, err := json.Marshal(rec)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal record: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpOrganizeBatch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		delimiter := req.GetString("delimiter", "")

		records, err := deps.Organizer.ProcessBatch(ctx, content, delimiter, nil)
		if errors.Is(err, organizer.ErrNoTranscripts) {
			return mcpError("no transcripts found in input"), nil
		}
		if errors.Is(err, openai.ErrMissingAPIKey) {
			return mcpError(err.Error()), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to organize batch: %v", err)), nil
		}

		if err := deps.Store.Extend(records); err != nil {
			return mcpError(fmt.Sprintf("organized but failed to record history: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{
			"count":   len(records),
			"records": records,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal records: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpExportHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := deps.Store.Snapshot()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read history: %v", err)), nil
		}

		csv, err := export.Bytes(records)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to render csv: %v", err)), nil
		}
		return mcpText(string(csv)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		count, err := deps.Store.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count history: %w", err)
		}
		offset := 0
		if count > 10 {
			offset = count - 10
		}
		records, err := deps.Store.List(10, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}

		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal records: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
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
