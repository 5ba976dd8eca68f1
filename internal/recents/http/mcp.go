package http

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (s *Service) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"recents",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcpServer.AddTool(mcp.NewTool("recent_conversations",
		mcp.WithDescription("List recent conversations (direct messages and channel topics), newest first, each with a plain-text preview of its latest message."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of conversations to return. 0 returns all."),
		),
	), s.handleMCPRecentConversations)

	s.mcpServer.AddTool(mcp.NewTool("backfill_status",
		mcp.WithDescription("Report historical fetch progress: per-channel cursors, exhaustion, and whether the oldest history has been reached."),
	), s.handleMCPBackfillStatus)

	s.mcpSSEServer = server.NewSSEServer(s.mcpServer,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)
	s.mcpStreamableServer = server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
	)
}

func (s *Service) handleMCPRecentConversations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)

	convs := s.index.Conversations()
	if limit > 0 && limit < len(convs) {
		convs = convs[:limit]
	}

	data, err := json.Marshal(convs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) handleMCPBackfillStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.engine.Status())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
