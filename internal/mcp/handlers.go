package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/krishisaarathi/internal/dispatch"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
)

func (s *Server) handleClassifyIntent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	hasImage := request.GetBool("has_image", false)

	var got intent.Intent
	if request.GetBool("rules_only", false) || s.classifier == nil {
		got = intent.ClassifyByRules(query, hasImage)
	} else {
		got = s.classifier.Classify(ctx, query, hasImage)
	}
	return mcp.NewToolResultText(got.String()), nil
}

func (s *Server) handleAskAdvisor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("uid")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: uid"), nil
	}

	answer, err := s.dispatcher.Handle(ctx, dispatch.Query{
		UID:       uid,
		QueryText: request.GetString("query", ""),
		ImageURL:  request.GetString("image_url", ""),
	})
	if err != nil {
		return toolError(uid, err), nil
	}
	return jsonResult(answer)
}

func (s *Server) handleGetRecommendations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("uid")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: uid"), nil
	}

	recs, err := s.dispatcher.Recommendations(ctx, uid)
	if err != nil {
		return toolError(uid, err), nil
	}
	return jsonResult(recs)
}

func (s *Server) handleGetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("uid")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: uid"), nil
	}

	p, err := s.profiles.Require(ctx, uid)
	if err != nil {
		return toolError(uid, err), nil
	}
	return jsonResult(map[string]any{
		"profile": p,
		"context": s.profiles.Render(p),
	})
}

// toolError turns a pipeline error into a tool-level error result.
func toolError(uid string, err error) *mcp.CallToolResult {
	if errors.Is(err, profile.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No profile for %q. Register the farmer with POST /users first.", uid))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
