package memory

import (
	"time"

	"github.com/ajitpratap0/chops/internal/models"
)

// ShortTermTier is a bounded, ordered window of recent ideas. Ideas
// older than the retention window or beyond capacity are evicted and
// never returned.
type ShortTermTier struct {
	RecentIdeas      []models.Idea `json:"recent_ideas"`
	MaxCapacity      int           `json:"max_capacity"`
	RetentionMinutes int           `json:"retention_minutes"`
}

// WorkingTier tracks the live generation context: exponentially
// weighted momentum and temperature plus a load signal that rises with
// recording frequency and decays over idle time.
type WorkingTier struct {
	ActiveContext         map[string]string `json:"active_context"`
	CurrentPersonaState   models.Persona    `json:"current_persona_state"`
	ChaosMomentum         float64           `json:"chaos_momentum"`
	CreativityTemperature float64           `json:"creativity_temperature"`
	CognitiveLoad         float64           `json:"cognitive_load"`

	// lastRecordedAt feeds the load decay; in-memory only.
	lastRecordedAt time.Time
}

// PatternRecord tracks one recurring tag and its historical association
// with high composite scores.
type PatternRecord struct {
	Pattern     string    `json:"pattern"`
	SuccessRate float64   `json:"success_rate"`
	UsageCount  uint64    `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
	ContextTags []string  `json:"context_tags"`
}

// PersonaEffectiveness tracks how well a persona has performed across
// recorded ideas. Satisfaction stays 0 until external feedback arrives.
type PersonaEffectiveness struct {
	AverageCreativityScore  float64  `json:"average_creativity_score"`
	AverageFeasibilityScore float64  `json:"average_feasibility_score"`
	UserSatisfactionRating  float64  `json:"user_satisfaction_rating"`
	UsageFrequency          uint64   `json:"usage_frequency"`
	DomainsUsedIn           []string `json:"domains_used_in"`
}

// DomainKnowledge accumulates per-domain experience, including the
// per-persona success rates Recommend ranks against.
type DomainKnowledge struct {
	DomainName     string                     `json:"domain_name"`
	ExpertiseLevel float64                    `json:"expertise_level"`
	PersonaSuccess map[models.Persona]float64 `json:"persona_success"`
	UsageCount     uint64                     `json:"usage_count"`
	LastUpdated    time.Time                  `json:"last_updated"`
}

// UserPreferences holds externally observable preference state.
type UserPreferences struct {
	PreferredPersonas []models.Persona  `json:"preferred_personas"`
	ChaosTolerance    float64           `json:"chaos_tolerance"`
	FavoriteDomains   []string          `json:"favorite_domains"`
	OutputStyle       map[string]string `json:"output_style"`
}

// LongTermTier aggregates patterns, persona effectiveness, domain
// knowledge and user preferences.
type LongTermTier struct {
	SuccessfulPatterns   map[string]*PatternRecord                `json:"successful_patterns"`
	PersonaEffectiveness map[models.Persona]*PersonaEffectiveness `json:"persona_effectiveness"`
	DomainKnowledge      map[string]*DomainKnowledge              `json:"domain_knowledge"`
	UserPreferences      UserPreferences                          `json:"user_preferences"`
}

// Episode is one session-history entry.
type Episode struct {
	ID        string         `json:"id"`
	IdeaID    string         `json:"idea_id"`
	Persona   models.Persona `json:"persona"`
	Domain    string         `json:"domain"`
	Composite float64        `json:"composite"`
	Timestamp time.Time      `json:"timestamp"`
}

// EpisodicTier records the session timeline plus unusually high and low
// scoring ideas. Session history is FIFO-bounded by MaxEpisodes.
type EpisodicTier struct {
	SessionHistory      []Episode     `json:"session_history"`
	BreakthroughMoments []models.Idea `json:"breakthrough_moments"`
	FailureLearnings    []models.Idea `json:"failure_learnings"`
	MaxEpisodes         int           `json:"max_episodes"`
}
