package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/merchanha/crossfit-routines/internal/features"
	"github.com/merchanha/crossfit-routines/internal/recommend"
	"github.com/merchanha/crossfit-routines/internal/scoring"
	"github.com/merchanha/crossfit-routines/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store       *storage.Store
	Recommender Recommender
	Models      recommend.ModelSource
}

// NewMCPServer creates an MCP server with the recommendation tools and the
// model status resource registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"recsvc",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("recsvc — workout routine recommendation engine over a user's workout history."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_recommendations",
			mcp.WithDescription("Generate ranked routine recommendations for a user from their workout history."),
			mcp.WithString("user_id", mcp.Description("UUID of the user"), mcp.Required()),
		),
		mcpGetRecommendations(deps),
	)

	s.AddTool(
		mcp.NewTool("user_stats",
			mcp.WithDescription("Return the extracted feature vector and activity counts for a user."),
			mcp.WithString("user_id", mcp.Description("UUID of the user"), mcp.Required()),
		),
		mcpUserStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"model://status",
			"Model Status",
			mcp.WithResourceDescription("Trained state of the predictive model"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceModelStatus(deps),
	)

	return s
}

func mcpGetRecommendations(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}

		resp, err := deps.Recommender.Generate(ctx, userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to generate recommendations: %v", err)), nil
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal recommendations: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpUserStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}
		if _, err := uuid.Parse(userID); err != nil {
			return mcpError(fmt.Sprintf("invalid user id: %q", userID)), nil
		}

		history, err := deps.Store.FetchWorkoutHistory(ctx, userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to fetch workout history: %v", err)), nil
		}
		routines, err := deps.Store.FetchRoutines(ctx, userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to fetch routines: %v", err)), nil
		}

		stats := map[string]any{
			"user_id":       userID,
			"workout_count": len(history),
			"routine_count": len(routines),
			"features":      features.Extract(history, routines),
		}

		b, err := json.Marshal(stats)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpResourceModelStatus(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		status := map[string]any{
			"trained": scoring.UseModel(deps.Models.Current()),
		}

		b, err := json.Marshal(status)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal model status: %w", err)
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
