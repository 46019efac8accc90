package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/entropy"
	"github.com/ajitpratap0/chops/internal/generator"
	"github.com/ajitpratap0/chops/internal/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubClient struct{ text string }

func (s stubClient) Complete(_ context.Context, _ string) (string, error) {
	return s.text, nil
}

func newTestMCPServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	logger := newTestLogger()
	engine := chaos.New([]entropy.Source{entropy.NewPseudo(1)}, logger)
	store := memory.New(memory.DefaultConfig(), logger)
	client := stubClient{text: "Midnight Compost Exchange\n\nNeighbors trade compost through lockers that only open after midnight, gamifying soil health."}
	summoner := generator.NewSummoner(engine, store, client, logger)
	return NewServer(summoner, store, logger), store
}

func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

// textContent extracts the first TextContent string from a CallToolResult.
func textContent(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content item")
	tc, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestHandleSummon(t *testing.T) {
	srv, store := newTestMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "chaos-engineer",
		"domain":  "gardening",
		"level":   float64(7),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, textContent(t, result))

	var payload struct {
		Idea struct {
			ID     string `json:"id"`
			Domain string `json:"domain"`
		} `json:"idea"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &payload))
	assert.NotEmpty(t, payload.Idea.ID)
	assert.Equal(t, "gardening", payload.Idea.Domain)
	assert.Equal(t, 1, store.Stats().ShortTermCount)
}

func TestHandleSummon_Errors(t *testing.T) {
	srv, _ := newTestMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "ghost",
		"domain":  "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "unknown persona is a tool error, not a transport error")

	result, err = srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "zen-master",
		"domain":  "x",
		"level":   float64(99),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "zen-master",
		"domain":  "  ",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "blank domain rejected")
}

func TestHandleSummon_NilSummoner(t *testing.T) {
	store := memory.New(memory.DefaultConfig(), newTestLogger())
	srv := NewServer(nil, store, newTestLogger())

	result, err := srv.HandleSummon(context.Background(), makeReq("summon", map[string]any{
		"persona": "zen-master",
		"domain":  "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRecall(t *testing.T) {
	srv, _ := newTestMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleRecall(ctx, makeReq("recall", map[string]any{"tag": "compost"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var missing struct {
		Found bool `json:"found"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &missing))
	assert.False(t, missing.Found)

	_, err = srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "mind-reader",
		"domain":  "compost",
	}))
	require.NoError(t, err)

	result, err = srv.HandleRecall(ctx, makeReq("recall", map[string]any{"tag": "compost"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var found struct {
		Found     bool   `json:"found"`
		Context   string `json:"context"`
		IdeaCount int    `json:"idea_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &found))
	assert.True(t, found.Found)
	assert.Equal(t, 1, found.IdeaCount)
	assert.Contains(t, found.Context, "Midnight Compost Exchange")
}

func TestHandleRecall_MissingTag(t *testing.T) {
	srv, _ := newTestMCPServer(t)
	result, err := srv.HandleRecall(context.Background(), makeReq("recall", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRecommend(t *testing.T) {
	srv, _ := newTestMCPServer(t)
	ctx := context.Background()

	_, err := srv.HandleSummon(ctx, makeReq("summon", map[string]any{
		"persona": "time-traveler",
		"domain":  "museums",
	}))
	require.NoError(t, err)

	result, err := srv.HandleRecommend(ctx, makeReq("recommend", map[string]any{"domain": "museums"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		Domain   string `json:"domain"`
		Rankings []struct {
			Persona string `json:"persona"`
		} `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &payload))
	assert.Equal(t, "museums", payload.Domain)
	require.NotEmpty(t, payload.Rankings)
	assert.Equal(t, "time-traveler", payload.Rankings[0].Persona)
}

func TestHandleFeedback(t *testing.T) {
	srv, store := newTestMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleFeedback(ctx, makeReq("feedback", map[string]any{
		"persona": "empathetic-ai",
		"rating":  0.9,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	snap := store.Snapshot()
	require.NotNil(t, snap.LongTerm.PersonaEffectiveness["empathetic-ai"])

	result, err = srv.HandleFeedback(ctx, makeReq("feedback", map[string]any{
		"persona": "empathetic-ai",
		"rating":  1.5,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "rating out of range")
}

func TestHandleStats(t *testing.T) {
	srv, _ := newTestMCPServer(t)

	result, err := srv.HandleStats(context.Background(), makeReq("stats", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var stats struct {
		ShortTermCount int `json:"short_term_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &stats))
	assert.Zero(t, stats.ShortTermCount)
}
