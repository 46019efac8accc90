// Package mcp implements the Model Context Protocol server for chops.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/generator"
	"github.com/ajitpratap0/chops/internal/memory"
	"github.com/ajitpratap0/chops/internal/metrics"
	"github.com/ajitpratap0/chops/internal/models"
	"github.com/ajitpratap0/chops/pkg/tokenizer"
)

const (
	// defaultChaosLevel is used when the summon tool omits a level.
	defaultChaosLevel = 5

	// defaultRecallBudget is the default token budget for recall responses.
	defaultRecallBudget = 2000
)

// Server wraps an MCPServer with chops dependencies.
type Server struct {
	mcp      *mcpserver.MCPServer
	summoner *generator.Summoner
	store    *memory.Store
	logger   *slog.Logger
}

// NewServer creates a new MCP server. If summoner or store are nil,
// the corresponding tool calls will return an error response instead of panicking.
func NewServer(summoner *generator.Summoner, store *memory.Store, logger *slog.Logger) *Server {
	s := &Server{
		summoner: summoner,
		store:    store,
		logger:   logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"chops",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSummonTool(), s.handleSummon)
	mcpSrv.AddTool(buildRecallTool(), s.handleRecall)
	mcpSrv.AddTool(buildRecommendTool(), s.handleRecommend)
	mcpSrv.AddTool(buildFeedbackTool(), s.handleFeedback)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSummon is the exported handler for the "summon" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleSummon(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSummon(ctx, req)
}

// HandleRecall is the exported handler for the "recall" tool.
func (s *Server) HandleRecall(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRecall(ctx, req)
}

// HandleRecommend is the exported handler for the "recommend" tool.
func (s *Server) HandleRecommend(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRecommend(ctx, req)
}

// HandleFeedback is the exported handler for the "feedback" tool.
func (s *Server) HandleFeedback(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleFeedback(ctx, req)
}

// HandleStats is the exported handler for the "stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildSummonTool() mcpgo.Tool {
	return mcpgo.NewTool("summon",
		mcpgo.WithDescription("Generate a creative idea using a chaos-calibrated persona. Records the result in adaptive memory."),
		mcpgo.WithString("persona",
			mcpgo.Required(),
			mcpgo.Description("Persona to summon: mad-scientist, zen-master, punk-hacker, empathetic-ai, chaos-engineer, time-traveler, or mind-reader"),
		),
		mcpgo.WithString("domain",
			mcpgo.Required(),
			mcpgo.Description("Problem domain for the idea, e.g. 'fintech' or 'education'"),
		),
		mcpgo.WithNumber("level",
			mcpgo.Description("Chaos level 1-11 (default: 5)"),
		),
	)
}

func buildRecallTool() mcpgo.Tool {
	return mcpgo.NewTool("recall",
		mcpgo.WithDescription("Retrieve the most recent remembered idea carrying a given tag."),
		mcpgo.WithString("tag",
			mcpgo.Required(),
			mcpgo.Description("Tag to look up in short-term memory"),
		),
		mcpgo.WithNumber("budget",
			mcpgo.Description("Token budget for returned idea text (default: 2000)"),
		),
	)
}

func buildRecommendTool() mcpgo.Tool {
	return mcpgo.NewTool("recommend",
		mcpgo.WithDescription("Rank personas by learned effectiveness for a domain."),
		mcpgo.WithString("domain",
			mcpgo.Required(),
			mcpgo.Description("Domain to rank personas for"),
		),
	)
}

func buildFeedbackTool() mcpgo.Tool {
	return mcpgo.NewTool("feedback",
		mcpgo.WithDescription("Record a user satisfaction rating for a persona, folded into long-term memory."),
		mcpgo.WithString("persona",
			mcpgo.Required(),
			mcpgo.Description("Persona the rating applies to"),
		),
		mcpgo.WithNumber("rating",
			mcpgo.Required(),
			mcpgo.Description("Satisfaction rating 0.0-1.0"),
		),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("stats",
		mcpgo.WithDescription("Get memory statistics: tier sizes, tracked personas and domains, cognitive load."),
	)
}

// --- tool handlers ---

// handleSummon generates an idea and records it in memory.
func (s *Server) handleSummon(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.summoner == nil {
		return mcpgo.NewToolResultError("summoner is unavailable"), nil
	}

	persona, err := models.ParsePersona(req.GetString("persona", ""))
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	domain := req.GetString("domain", "")
	if strings.TrimSpace(domain) == "" {
		return mcpgo.NewToolResultError("domain is required and must not be empty"), nil
	}

	level := req.GetInt("level", defaultChaosLevel)

	result, err := s.summoner.Summon(ctx, persona, domain, level)
	if err != nil {
		if errors.Is(err, chaos.ErrInvalidChaosLevel) {
			return mcpgo.NewToolResultError(err.Error()), nil
		}
		return mcpgo.NewToolResultErrorf("summon failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: summon generated idea", "id", result.Idea.ID, "persona", persona, "domain", domain)

	return toolResultJSON(result)
}

// handleRecall looks up the most recent idea by tag and formats it within budget.
func (s *Server) handleRecall(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.store == nil {
		return mcpgo.NewToolResultError("memory store is unavailable"), nil
	}

	tag := req.GetString("tag", "")
	if strings.TrimSpace(tag) == "" {
		return mcpgo.NewToolResultError("tag is required and must not be empty"), nil
	}

	budget := req.GetInt("budget", defaultRecallBudget)
	if budget <= 0 {
		budget = defaultRecallBudget
	}

	metrics.Inc(metrics.RecallTotal)
	idea, ok := s.store.Recall(tag)
	if !ok {
		return toolResultJSON(map[string]any{"found": false})
	}

	formatted, count := tokenizer.FormatIdeasWithBudget([]string{idea.Title + "\n" + idea.Description}, budget)

	result := map[string]any{
		"found":      true,
		"idea":       idea,
		"context":    formatted,
		"idea_count": count,
	}
	return toolResultJSON(result)
}

// handleRecommend ranks personas for a domain.
func (s *Server) handleRecommend(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.store == nil {
		return mcpgo.NewToolResultError("memory store is unavailable"), nil
	}

	domain := req.GetString("domain", "")
	if strings.TrimSpace(domain) == "" {
		return mcpgo.NewToolResultError("domain is required and must not be empty"), nil
	}

	metrics.Inc(metrics.RecommendTotal)
	rankings := s.store.Recommend(domain)

	result := map[string]any{
		"domain":   domain,
		"rankings": rankings,
	}
	return toolResultJSON(result)
}

// handleFeedback folds a satisfaction rating into long-term memory.
func (s *Server) handleFeedback(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.store == nil {
		return mcpgo.NewToolResultError("memory store is unavailable"), nil
	}

	persona, err := models.ParsePersona(req.GetString("persona", ""))
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	rating := req.GetFloat("rating", -1)
	if rating < 0 || rating > 1 {
		return mcpgo.NewToolResultError("rating must be between 0.0 and 1.0"), nil
	}

	s.store.RecordFeedback(persona, rating)
	s.logger.Info("mcp: feedback recorded", "persona", persona, "rating", rating)

	return toolResultJSON(map[string]any{"recorded": true})
}

// handleStats returns memory statistics.
func (s *Server) handleStats(ctx context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.store == nil {
		return mcpgo.NewToolResultError("memory store is unavailable"), nil
	}
	return toolResultJSON(s.store.Stats())
}
