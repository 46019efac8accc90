// Package generator orchestrates one summon: chaos state, prompt,
// completion, feature extraction, scoring, and memory recording.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/memory"
	"github.com/ajitpratap0/chops/internal/metrics"
	"github.com/ajitpratap0/chops/internal/models"
)

// Summoner drives the full idea-generation flow. It is safe for
// concurrent use: the chaos engine mutates trajectory and momentum
// state on every generate/evolve pair, so engine access is serialized
// behind engineMu.
type Summoner struct {
	engineMu sync.Mutex
	engine   *chaos.Engine

	store   *memory.Store
	client  CompletionClient
	weights chaos.ScoreWeights
	logger  *slog.Logger
}

// NewSummoner wires the engine, store and completion client together.
func NewSummoner(engine *chaos.Engine, store *memory.Store, client CompletionClient, logger *slog.Logger) *Summoner {
	return &Summoner{
		engine:  engine,
		store:   store,
		client:  client,
		weights: chaos.DefaultScoreWeights(),
		logger:  logger,
	}
}

// Result is one completed summon.
type Result struct {
	Idea  models.Idea `json:"idea"`
	State chaos.State `json:"chaos_state"`
}

// Summon generates, scores, and records one idea for (persona, domain,
// level). Invalid levels surface chaos.ErrInvalidChaosLevel; completion
// failures surface the client's error. Recorded ideas are immutable.
func (s *Summoner) Summon(ctx context.Context, persona models.Persona, domain string, level int) (Result, error) {
	if !persona.IsValid() {
		return Result{}, fmt.Errorf("unknown persona %q", persona)
	}

	s.engineMu.Lock()
	st, err := s.engine.Generate(level)
	s.engineMu.Unlock()
	if err != nil {
		return Result{}, err
	}

	prompt := BuildPrompt(persona, domain, st)
	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("generating idea text: %w", err)
	}

	feats := ExtractFeatures(text, domain)
	scores := chaos.Score(persona, s.store.DomainExpertise(domain), feats, st, s.store.PriorTagSets(), s.weights)

	idea := models.Idea{
		ID:               uuid.New().String(),
		Title:            TitleFrom(text),
		Description:      text,
		PersonaUsed:      persona,
		Domain:           domain,
		ChaosLevel:       float64(level-chaos.MinLevel) / float64(chaos.MaxLevel-chaos.MinLevel),
		CreativityScore:  scores.Creativity,
		FeasibilityScore: scores.Feasibility,
		NoveltyScore:     scores.Novelty,
		ExcitementFactor: scores.Excitement,
		Tags:             feats.Tags,
		Timestamp:        time.Now().UTC(),
	}
	idea = s.store.Record(idea)

	// Feed the composite back so chaos momentum tracks what works.
	s.engineMu.Lock()
	s.engine.Evolve(idea.CompositeScore())
	s.engineMu.Unlock()

	metrics.Inc(metrics.SummonTotal)
	s.logger.Info("summoned idea",
		"id", idea.ID,
		"persona", persona,
		"domain", domain,
		"level", level,
		"composite", idea.CompositeScore())

	return Result{Idea: idea, State: st}, nil
}
