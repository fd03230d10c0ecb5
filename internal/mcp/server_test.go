package mcp

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/dispatch"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/llm/llmtest"
	"github.com/ziadkadry99/krishisaarathi/internal/market"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/weather"
)

func clock() time.Time { return time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC) }

func setup(t *testing.T, reply string) (*Server, *llmtest.Provider) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	profiles := profile.NewService(profile.NewStore(database), "Karnataka", profile.CacheOptions{}, nil)
	provider := llmtest.New(reply)
	oracle := provider.Oracle()
	classifier := intent.NewClassifier(oracle, nil)
	set := agents.New(agents.Deps{
		Profiles: profiles,
		Oracle:   oracle,
		Weather:  weather.NewSynthetic(clock),
		Market:   market.NewSynthetic(rand.New(rand.NewPCG(5, 6)), clock),
	})
	d := dispatch.New(dispatch.Deps{Profiles: profiles, Classifier: classifier, Agents: set}, dispatch.Options{})

	_, err = profiles.Save(context.Background(), &profile.Profile{
		UserID: "u1", FullName: "Kaveri", District: "Tumkur", LandSize: 1, LandUnit: profile.Hectares,
		CropsGrown: []string{"ragi"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return NewServer(classifier, d, profiles), provider
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", r.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{classifyIntentTool, "classify_intent"},
		{askAdvisorTool, "ask_advisor"},
		{getRecommendationsTool, "get_recommendations"},
		{getProfileTool, "get_profile"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := setup(t, "")
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleClassifyIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("rules decide", func(t *testing.T) {
		srv, provider := setup(t, "scheme")
		r, err := srv.handleClassifyIntent(ctx, call(map[string]any{"query": "best time to water my field"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := text(t, r); got != "irrigation" {
			t.Errorf("intent = %q", got)
		}
		if provider.CallCount() != 0 {
			t.Error("rules should answer without the oracle")
		}
	})

	t.Run("oracle fallback", func(t *testing.T) {
		srv, provider := setup(t, "Scheme")
		r, _ := srv.handleClassifyIntent(ctx, call(map[string]any{"query": "what should I do"}))
		if got := text(t, r); got != "scheme" {
			t.Errorf("intent = %q", got)
		}
		if provider.CallCount() != 1 {
			t.Errorf("oracle calls = %d, want 1", provider.CallCount())
		}
	})

	t.Run("rules only", func(t *testing.T) {
		srv, provider := setup(t, "scheme")
		r, _ := srv.handleClassifyIntent(ctx, call(map[string]any{"query": "what should I do", "rules_only": true}))
		if got := text(t, r); got != "general" {
			t.Errorf("intent = %q", got)
		}
		if provider.CallCount() != 0 {
			t.Error("rules_only must not call the oracle")
		}
	})

	t.Run("missing query", func(t *testing.T) {
		srv, _ := setup(t, "")
		r, _ := srv.handleClassifyIntent(ctx, call(map[string]any{}))
		if !r.IsError {
			t.Error("expected error for missing query")
		}
	})
}

func TestHandleAskAdvisor(t *testing.T) {
	srv, _ := setup(t, "Spray neem oil in the evening.")
	ctx := context.Background()

	r, err := srv.handleAskAdvisor(ctx, call(map[string]any{"uid": "u1", "query": "pests on my ragi leaf"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", text(t, r))
	}
	var answer dispatch.Answer
	if err := json.Unmarshal([]byte(text(t, r)), &answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Intent != intent.Disease || answer.Text != "Spray neem oil in the evening." {
		t.Errorf("unexpected answer: %+v", answer)
	}

	r, _ = srv.handleAskAdvisor(ctx, call(map[string]any{"uid": "ghost", "query": "hello"}))
	if !r.IsError || !strings.Contains(text(t, r), "No profile") {
		t.Errorf("expected a missing-profile error, got %+v", r)
	}
}

func TestHandleGetRecommendations(t *testing.T) {
	srv, _ := setup(t, "All good.")

	r, err := srv.handleGetRecommendations(context.Background(), call(map[string]any{"uid": "u1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var recs dispatch.Recommendations
	if err := json.Unmarshal([]byte(text(t, r)), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !recs.Success || recs.Recommendations == nil || len(recs.Recommendations.SchemeTips) == 0 {
		t.Errorf("unexpected recommendations: %+v", recs)
	}
}

func TestHandleGetProfile(t *testing.T) {
	srv, _ := setup(t, "")
	ctx := context.Background()

	r, _ := srv.handleGetProfile(ctx, call(map[string]any{"uid": "u1"}))
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", text(t, r))
	}
	body := text(t, r)
	if !strings.Contains(body, "Kaveri") || !strings.Contains(body, "FARMER PROFILE CONTEXT") {
		t.Errorf("unexpected body: %s", body)
	}

	r, _ = srv.handleGetProfile(ctx, call(map[string]any{}))
	if !r.IsError {
		t.Error("expected error for missing uid")
	}
}
