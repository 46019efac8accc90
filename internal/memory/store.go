// Package memory implements the four-tier adaptive memory store:
// short-term recency, working context, long-term patterns and persona
// effectiveness, and episodic history.
package memory

import (
	"crypto/rand"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/ajitpratap0/chops/internal/metrics"
	"github.com/ajitpratap0/chops/internal/models"
)

const (
	// ewKeep and ewNew are the exponential-weighting coefficients used
	// by every running average in the store.
	ewKeep = 0.8
	ewNew  = 0.2

	// initialSuccessRate seeds pattern and domain success before the
	// first update applies.
	initialSuccessRate = 0.5

	// maxActiveContext bounds the working tier's recent-tag map.
	maxActiveContext = 20

	// loadDecayTau is the e-folding time constant for cognitive-load
	// decay over idle time.
	loadDecayTau = 10 * time.Minute

	// loadPerRecord is the load increment added on each record.
	loadPerRecord = 0.15

	// favoriteDomainUses is how many recorded ideas make a domain a
	// user favorite.
	favoriteDomainUses = 5
)

// Config holds the store's tier bounds and episodic thresholds.
type Config struct {
	ShortTermCapacity     int
	RetentionMinutes      int
	MaxEpisodes           int
	BreakthroughThreshold float64
	FailureThreshold      float64
}

// DefaultConfig returns the default tier bounds.
func DefaultConfig() Config {
	return Config{
		ShortTermCapacity:     50,
		RetentionMinutes:      60,
		MaxEpisodes:           100,
		BreakthroughThreshold: 0.85,
		FailureThreshold:      0.3,
	}
}

// Store owns all four memory tiers. Mutation is serialized through a
// single writer lock; readers may run concurrently with each other but
// never with a write. No external component holds references into tier
// internals — queries return copies.
type Store struct {
	mu sync.RWMutex

	shortTerm ShortTermTier
	working   WorkingTier
	longTerm  LongTermTier
	episodic  EpisodicTier

	cfg     Config
	logger  *slog.Logger
	clock   func() time.Time
	entropy ulid.MonotonicReader
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the store's time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// New creates an empty store with the given bounds.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		shortTerm: ShortTermTier{
			MaxCapacity:      cfg.ShortTermCapacity,
			RetentionMinutes: cfg.RetentionMinutes,
		},
		working: WorkingTier{
			ActiveContext:         make(map[string]string),
			ChaosMomentum:         0.5,
			CreativityTemperature: 0.7,
		},
		longTerm: LongTermTier{
			SuccessfulPatterns:   make(map[string]*PatternRecord),
			PersonaEffectiveness: make(map[models.Persona]*PersonaEffectiveness),
			DomainKnowledge:      make(map[string]*DomainKnowledge),
			UserPreferences: UserPreferences{
				ChaosTolerance: 0.7,
				OutputStyle:    make(map[string]string),
			},
		},
		episodic: EpisodicTier{
			MaxEpisodes: cfg.MaxEpisodes,
		},
		cfg:     cfg,
		logger:  logger,
		clock:   time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record inserts an idea into all four tiers. Scores outside [0,1] are
// clamped before any tier sees them; everything else about the idea is
// stored as given. The idea's ID is assigned when empty.
func (s *Store) Record(idea models.Idea) models.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if idea.ID == "" {
		idea.ID = uuid.New().String()
	}
	if idea.Timestamp.IsZero() {
		idea.Timestamp = now
	}
	idea.ChaosLevel = clampScore(idea.ChaosLevel)
	idea.CreativityScore = clampScore(idea.CreativityScore)
	idea.FeasibilityScore = clampScore(idea.FeasibilityScore)
	idea.NoveltyScore = clampScore(idea.NoveltyScore)
	idea.ExcitementFactor = clampScore(idea.ExcitementFactor)

	s.recordShortTerm(idea, now)
	s.recordWorking(idea, now)
	s.recordLongTerm(idea, now)
	s.recordEpisodic(idea, now)

	metrics.Inc(metrics.RecordTotal)
	s.logger.Debug("recorded idea",
		"id", idea.ID,
		"persona", idea.PersonaUsed,
		"domain", idea.Domain,
		"composite", idea.CompositeScore())
	return idea
}

func (s *Store) recordShortTerm(idea models.Idea, now time.Time) {
	s.evictExpiredLocked(now)
	s.shortTerm.RecentIdeas = append(s.shortTerm.RecentIdeas, idea)
	if excess := len(s.shortTerm.RecentIdeas) - s.shortTerm.MaxCapacity; excess > 0 {
		s.shortTerm.RecentIdeas = s.shortTerm.RecentIdeas[excess:]
	}
}

// evictExpiredLocked drops short-term ideas past the retention window.
func (s *Store) evictExpiredLocked(now time.Time) {
	cutoff := now.Add(-time.Duration(s.shortTerm.RetentionMinutes) * time.Minute)
	kept := s.shortTerm.RecentIdeas[:0]
	for _, idea := range s.shortTerm.RecentIdeas {
		if idea.Timestamp.After(cutoff) {
			kept = append(kept, idea)
		}
	}
	s.shortTerm.RecentIdeas = kept
}

func (s *Store) recordWorking(idea models.Idea, now time.Time) {
	w := &s.working
	w.CurrentPersonaState = idea.PersonaUsed
	w.ChaosMomentum = ewKeep*w.ChaosMomentum + ewNew*idea.ChaosLevel
	w.CreativityTemperature = ewKeep*w.CreativityTemperature + ewNew*idea.CreativityScore

	// Load decays over idle time and rises with each record.
	if !w.lastRecordedAt.IsZero() {
		idle := now.Sub(w.lastRecordedAt)
		w.CognitiveLoad *= math.Exp(-float64(idle) / float64(loadDecayTau))
	}
	w.CognitiveLoad = clampScore(w.CognitiveLoad + loadPerRecord)
	w.lastRecordedAt = now

	for _, tag := range idea.Tags {
		w.ActiveContext["recent_tag_"+tag] = idea.Title
	}
	// Bound the context map; evicted keys are arbitrary but never the
	// ones set by this record.
	if len(w.ActiveContext) > maxActiveContext {
		fresh := make(map[string]struct{}, len(idea.Tags))
		for _, tag := range idea.Tags {
			fresh["recent_tag_"+tag] = struct{}{}
		}
		for key := range w.ActiveContext {
			if len(w.ActiveContext) <= maxActiveContext {
				break
			}
			if _, keep := fresh[key]; keep {
				continue
			}
			delete(w.ActiveContext, key)
		}
	}
}

func (s *Store) recordLongTerm(idea models.Idea, now time.Time) {
	composite := idea.CompositeScore()

	for _, tag := range idea.Tags {
		rec, ok := s.longTerm.SuccessfulPatterns[tag]
		if !ok {
			rec = &PatternRecord{Pattern: tag, SuccessRate: initialSuccessRate}
			s.longTerm.SuccessfulPatterns[tag] = rec
		}
		rec.SuccessRate = ewKeep*rec.SuccessRate + ewNew*composite
		rec.UsageCount++
		rec.LastUsed = now
		for _, other := range idea.Tags {
			if other != tag && !contains(rec.ContextTags, other) {
				rec.ContextTags = append(rec.ContextTags, other)
			}
		}
	}

	eff, ok := s.longTerm.PersonaEffectiveness[idea.PersonaUsed]
	if !ok {
		eff = &PersonaEffectiveness{
			AverageCreativityScore:  idea.CreativityScore,
			AverageFeasibilityScore: idea.FeasibilityScore,
		}
		s.longTerm.PersonaEffectiveness[idea.PersonaUsed] = eff
	} else {
		eff.AverageCreativityScore = ewKeep*eff.AverageCreativityScore + ewNew*idea.CreativityScore
		eff.AverageFeasibilityScore = ewKeep*eff.AverageFeasibilityScore + ewNew*idea.FeasibilityScore
	}
	eff.UsageFrequency++
	if idea.Domain != "" && !contains(eff.DomainsUsedIn, idea.Domain) {
		eff.DomainsUsedIn = append(eff.DomainsUsedIn, idea.Domain)
	}

	if idea.Domain != "" {
		dk, ok := s.longTerm.DomainKnowledge[idea.Domain]
		if !ok {
			dk = &DomainKnowledge{
				DomainName:     idea.Domain,
				PersonaSuccess: make(map[models.Persona]float64),
			}
			s.longTerm.DomainKnowledge[idea.Domain] = dk
		}
		prev, seen := dk.PersonaSuccess[idea.PersonaUsed]
		if !seen {
			prev = initialSuccessRate
		}
		dk.PersonaSuccess[idea.PersonaUsed] = ewKeep*prev + ewNew*composite
		dk.ExpertiseLevel = ewKeep*dk.ExpertiseLevel + ewNew*composite
		dk.UsageCount++
		dk.LastUpdated = now

		if dk.UsageCount >= favoriteDomainUses && !contains(s.longTerm.UserPreferences.FavoriteDomains, idea.Domain) {
			s.longTerm.UserPreferences.FavoriteDomains = append(s.longTerm.UserPreferences.FavoriteDomains, idea.Domain)
		}
	}
}

func (s *Store) recordEpisodic(idea models.Idea, now time.Time) {
	composite := idea.CompositeScore()

	s.episodic.SessionHistory = append(s.episodic.SessionHistory, Episode{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		IdeaID:    idea.ID,
		Persona:   idea.PersonaUsed,
		Domain:    idea.Domain,
		Composite: composite,
		Timestamp: now,
	})
	if excess := len(s.episodic.SessionHistory) - s.episodic.MaxEpisodes; excess > 0 {
		s.episodic.SessionHistory = s.episodic.SessionHistory[excess:]
	}

	if composite >= s.cfg.BreakthroughThreshold {
		s.episodic.BreakthroughMoments = append(s.episodic.BreakthroughMoments, idea)
	}
	if composite <= s.cfg.FailureThreshold {
		s.episodic.FailureLearnings = append(s.episodic.FailureLearnings, idea)
	}
}

// Recall returns the most recent short-term idea carrying the tag, or
// false when none survives the retention window.
func (s *Store) Recall(tag string) (models.Idea, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.clock().Add(-time.Duration(s.shortTerm.RetentionMinutes) * time.Minute)
	for i := len(s.shortTerm.RecentIdeas) - 1; i >= 0; i-- {
		idea := s.shortTerm.RecentIdeas[i]
		if !idea.Timestamp.After(cutoff) {
			continue
		}
		if idea.HasTag(tag) {
			return copyIdea(idea), true
		}
	}
	return models.Idea{}, false
}

// Recommend ranks personas for a domain by effectiveness·(1 + that
// persona's domain success rate). Ties prefer the less-explored persona
// (lower usage frequency), then the lexically smaller name.
func (s *Store) Recommend(domain string) []models.PersonaRank {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var domainSuccess map[models.Persona]float64
	if dk, ok := s.longTerm.DomainKnowledge[domain]; ok {
		domainSuccess = dk.PersonaSuccess
	}

	ranks := make([]models.PersonaRank, 0, len(s.longTerm.PersonaEffectiveness))
	for persona, eff := range s.longTerm.PersonaEffectiveness {
		effectiveness := (eff.AverageCreativityScore + eff.AverageFeasibilityScore) / 2.0
		ds := domainSuccess[persona]
		ranks = append(ranks, models.PersonaRank{
			Persona:        persona,
			Score:          effectiveness * (1.0 + ds),
			Effectiveness:  effectiveness,
			DomainSuccess:  ds,
			UsageFrequency: eff.UsageFrequency,
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.UsageFrequency != b.UsageFrequency {
			return a.UsageFrequency < b.UsageFrequency
		}
		return a.Persona < b.Persona
	})
	return ranks
}

// RecordFeedback applies an externally supplied satisfaction rating for
// a persona, clamped to [0,1]. Ratings of 0.8 and above mark the
// persona as preferred.
func (s *Store) RecordFeedback(persona models.Persona, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rating = clampScore(rating)
	eff, ok := s.longTerm.PersonaEffectiveness[persona]
	if !ok {
		eff = &PersonaEffectiveness{}
		s.longTerm.PersonaEffectiveness[persona] = eff
	}
	if eff.UserSatisfactionRating == 0 {
		eff.UserSatisfactionRating = rating
	} else {
		eff.UserSatisfactionRating = ewKeep*eff.UserSatisfactionRating + ewNew*rating
	}

	if rating >= 0.8 && !containsPersona(s.longTerm.UserPreferences.PreferredPersonas, persona) {
		s.longTerm.UserPreferences.PreferredPersonas = append(s.longTerm.UserPreferences.PreferredPersonas, persona)
	}
}

// PriorTagSets returns the tag neighborhoods of all known patterns
// (pattern plus its co-occurring tags), used by novelty scoring.
func (s *Store) PriorTagSets() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := make([][]string, 0, len(s.longTerm.SuccessfulPatterns))
	for _, rec := range s.longTerm.SuccessfulPatterns {
		set := make([]string, 0, 1+len(rec.ContextTags))
		set = append(set, rec.Pattern)
		set = append(set, rec.ContextTags...)
		sets = append(sets, set)
	}
	return sets
}

// DomainExpertise returns the accumulated expertise level for a domain,
// 0 for unknown domains.
func (s *Store) DomainExpertise(domain string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dk, ok := s.longTerm.DomainKnowledge[domain]; ok {
		return dk.ExpertiseLevel
	}
	return 0
}

// Working returns a copy of the working tier.
func (s *Store) Working() WorkingTier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := s.working
	w.ActiveContext = copyStringMap(s.working.ActiveContext)
	return w
}

// Stats summarizes the store for status surfaces.
type Stats struct {
	ShortTermCount    int     `json:"short_term_count"`
	ActiveContextSize int     `json:"active_context_size"`
	PatternCount      int     `json:"pattern_count"`
	PersonaCount      int     `json:"persona_count"`
	DomainCount       int     `json:"domain_count"`
	EpisodeCount      int     `json:"episode_count"`
	BreakthroughCount int     `json:"breakthrough_count"`
	FailureCount      int     `json:"failure_count"`
	ChaosMomentum     float64 `json:"chaos_momentum"`
	CognitiveLoad     float64 `json:"cognitive_load"`
}

// Stats returns current tier sizes and working-memory signals.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		ShortTermCount:    len(s.shortTerm.RecentIdeas),
		ActiveContextSize: len(s.working.ActiveContext),
		PatternCount:      len(s.longTerm.SuccessfulPatterns),
		PersonaCount:      len(s.longTerm.PersonaEffectiveness),
		DomainCount:       len(s.longTerm.DomainKnowledge),
		EpisodeCount:      len(s.episodic.SessionHistory),
		BreakthroughCount: len(s.episodic.BreakthroughMoments),
		FailureCount:      len(s.episodic.FailureLearnings),
		ChaosMomentum:     s.working.ChaosMomentum,
		CognitiveLoad:     s.working.CognitiveLoad,
	}
}

// Purge resets every tier to its empty state, keeping configured bounds.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shortTerm.RecentIdeas = nil
	s.working = WorkingTier{
		ActiveContext:         make(map[string]string),
		ChaosMomentum:         0.5,
		CreativityTemperature: 0.7,
	}
	s.longTerm = LongTermTier{
		SuccessfulPatterns:   make(map[string]*PatternRecord),
		PersonaEffectiveness: make(map[models.Persona]*PersonaEffectiveness),
		DomainKnowledge:      make(map[string]*DomainKnowledge),
		UserPreferences: UserPreferences{
			ChaosTolerance: 0.7,
			OutputStyle:    make(map[string]string),
		},
	}
	s.episodic = EpisodicTier{MaxEpisodes: s.cfg.MaxEpisodes}
	s.logger.Info("memory purged")
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

func containsPersona(list []models.Persona, p models.Persona) bool {
	for _, e := range list {
		if e == p {
			return true
		}
	}
	return false
}

func copyIdea(idea models.Idea) models.Idea {
	out := idea
	out.Tags = append([]string(nil), idea.Tags...)
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
