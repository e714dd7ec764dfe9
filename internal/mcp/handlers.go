package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/search"
)

// handleSemanticSearch performs federated search over the program data.
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	maxResults := request.GetInt("max_results", search.DefaultResults)
	schoolID := request.GetString("school_id", "")

	hits := s.engine.Search(ctx, query, maxResults, schoolID)
	if len(hits) == 0 {
		return mcp.NewToolResultText("No results found. The cache may be empty; run `svassist refresh` to rebuild it."), nil
	}

	return mcp.NewToolResultText(search.FormatHits(hits)), nil
}

// handleGetRelevantContext assembles a context block for prompt injection.
func (s *Server) handleGetRelevantContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	contextType := search.ContextType(request.GetString("context_type", string(search.ContextAll)))
	maxResults := request.GetInt("max_results", search.DefaultResults)

	text := s.engine.RetrieveContext(ctx, query, contextType, maxResults)
	if text == "" {
		return mcp.NewToolResultText("No relevant context found."), nil
	}
	return mcp.NewToolResultText(text), nil
}

// handleRefreshCache rebuilds the vector cache from the source tables.
func (s *Server) handleRefreshCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.refresher == nil {
		return mcp.NewToolResultError("cache refresh is not available in this session"), nil
	}

	if ok := s.refresher.Refresh(ctx); !ok {
		return mcp.NewToolResultText("Cache refresh completed with errors; some categories may be stale."), nil
	}
	return mcp.NewToolResultText("Cache refreshed successfully."), nil
}

// handleLogInteraction records one exchange in the chat logs.
func (s *Server) handleLogInteraction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	sessionID, err := s.chatLog.Log(chatlog.Entry{
		User: chatlog.UserInfo{
			UserID:   userID,
			Name:     request.GetString("username", ""),
			Role:     request.GetString("role", ""),
			SchoolID: request.GetString("school_id", ""),
		},
		Message:      message,
		Response:     request.GetString("response", ""),
		ToolsUsed:    request.GetStringSlice("tools_used", nil),
		ResponseTime: request.GetFloat("response_time", 0),
		SessionID:    request.GetString("session_id", ""),
		LLM: chatlog.LLMUsage{
			Prompt:           request.GetString("llm_prompt", ""),
			PromptTokens:     request.GetInt("prompt_tokens", 0),
			CompletionTokens: request.GetInt("completion_tokens", 0),
			TotalTokens:      request.GetInt("total_tokens", 0),
			Model:            request.GetString("model", ""),
			Temperature:      request.GetFloat("temperature", 0),
		},
	})
	if err != nil && !errors.Is(err, chatlog.ErrInconsistent) {
		return mcp.NewToolResultError(fmt.Sprintf("logging failed: %v", err)), nil
	}

	return mcp.NewToolResultText("Logged interaction " + sessionID), nil
}

// handleGetChatAnalytics aggregates the structured chat log.
func (s *Server) handleGetChatAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.chatLog.Analytics(s.tiers)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analytics failed: %v", err)), nil
	}

	buf, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding analytics: %v", err)), nil
	}
	return mcp.NewToolResultText(string(buf)), nil
}
