package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ajitpratap0/chops/internal/metrics"
	"github.com/ajitpratap0/chops/internal/models"
	"github.com/ajitpratap0/chops/internal/persistence"
)

// ErrCorruptSnapshot is returned by Restore and Load when a snapshot
// violates store invariants. Corrupt snapshots are rejected wholesale;
// there is no partial recovery.
var ErrCorruptSnapshot = errors.New("corrupt memory snapshot")

// Snapshot is the serializable image of all four tiers. The section and
// field names are the persisted contract; existing memory files depend
// on them.
type Snapshot struct {
	ShortTerm ShortTermTier `json:"short_term"`
	Working   WorkingTier   `json:"working"`
	LongTerm  LongTermTier  `json:"long_term"`
	Episodic  EpisodicTier  `json:"episodic"`
}

// Snapshot returns a deep copy of the store's state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return cloneSnapshot(Snapshot{
		ShortTerm: s.shortTerm,
		Working:   s.working,
		LongTerm:  s.longTerm,
		Episodic:  s.episodic,
	})
}

// cloneSnapshot deep-copies every tier so that the result shares no
// maps, slices, or record pointers with its source.
func cloneSnapshot(src Snapshot) Snapshot {
	snap := Snapshot{
		ShortTerm: ShortTermTier{
			RecentIdeas:      make([]models.Idea, 0, len(src.ShortTerm.RecentIdeas)),
			MaxCapacity:      src.ShortTerm.MaxCapacity,
			RetentionMinutes: src.ShortTerm.RetentionMinutes,
		},
		Working: WorkingTier{
			ActiveContext:         copyStringMap(src.Working.ActiveContext),
			CurrentPersonaState:   src.Working.CurrentPersonaState,
			ChaosMomentum:         src.Working.ChaosMomentum,
			CreativityTemperature: src.Working.CreativityTemperature,
			CognitiveLoad:         src.Working.CognitiveLoad,
		},
		LongTerm: LongTermTier{
			SuccessfulPatterns:   make(map[string]*PatternRecord, len(src.LongTerm.SuccessfulPatterns)),
			PersonaEffectiveness: make(map[models.Persona]*PersonaEffectiveness, len(src.LongTerm.PersonaEffectiveness)),
			DomainKnowledge:      make(map[string]*DomainKnowledge, len(src.LongTerm.DomainKnowledge)),
			UserPreferences:      copyPreferences(src.LongTerm.UserPreferences),
		},
		Episodic: EpisodicTier{
			SessionHistory:      append([]Episode(nil), src.Episodic.SessionHistory...),
			BreakthroughMoments: copyIdeas(src.Episodic.BreakthroughMoments),
			FailureLearnings:    copyIdeas(src.Episodic.FailureLearnings),
			MaxEpisodes:         src.Episodic.MaxEpisodes,
		},
	}
	for _, idea := range src.ShortTerm.RecentIdeas {
		snap.ShortTerm.RecentIdeas = append(snap.ShortTerm.RecentIdeas, copyIdea(idea))
	}
	for tag, rec := range src.LongTerm.SuccessfulPatterns {
		c := *rec
		c.ContextTags = append([]string(nil), rec.ContextTags...)
		snap.LongTerm.SuccessfulPatterns[tag] = &c
	}
	for persona, eff := range src.LongTerm.PersonaEffectiveness {
		c := *eff
		c.DomainsUsedIn = append([]string(nil), eff.DomainsUsedIn...)
		snap.LongTerm.PersonaEffectiveness[persona] = &c
	}
	for domain, dk := range src.LongTerm.DomainKnowledge {
		c := *dk
		c.PersonaSuccess = make(map[models.Persona]float64, len(dk.PersonaSuccess))
		for p, v := range dk.PersonaSuccess {
			c.PersonaSuccess[p] = v
		}
		snap.LongTerm.DomainKnowledge[domain] = &c
	}
	return snap
}

// Restore replaces the store's state wholesale. Invariant violations
// return ErrCorruptSnapshot and leave the store untouched. The snapshot
// is deep-copied on install, so the caller's copy stays independent.
func (s *Store) Restore(snap Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	snap = cloneSnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shortTerm = snap.ShortTerm
	s.working = snap.Working
	s.longTerm = snap.LongTerm
	s.episodic = snap.Episodic
	metrics.Inc(metrics.RestoreTotal)
	s.logger.Info("memory restored from snapshot",
		"short_term", len(s.shortTerm.RecentIdeas),
		"patterns", len(s.longTerm.SuccessfulPatterns),
		"episodes", len(s.episodic.SessionHistory))
	return nil
}

// Save serializes a snapshot and writes it to the persistence slot. The
// in-memory store is never mutated by Save, so a failed write leaves it
// intact by construction.
func (s *Store) Save(ctx context.Context, storage persistence.Storage) error {
	snap := s.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := storage.Write(ctx, data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	metrics.Inc(metrics.SnapshotTotal)
	s.logger.Info("memory saved", "bytes", len(data))
	return nil
}

// Load reads the persistence slot and restores from it. A missing slot
// leaves the store empty without error; undecodable or invalid data
// returns ErrCorruptSnapshot and keeps the prior in-memory state.
func (s *Store) Load(ctx context.Context, storage persistence.Storage) error {
	data, err := storage.Read(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrEmptySlot) {
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decoding: %w", ErrCorruptSnapshot, err)
	}
	return s.Restore(snap)
}

// validateSnapshot checks the invariants every tier must satisfy:
// score ranges, capacity bounds, and size limits.
func validateSnapshot(snap Snapshot) error {
	if snap.ShortTerm.MaxCapacity <= 0 {
		return fmt.Errorf("short_term.max_capacity must be positive, got %d", snap.ShortTerm.MaxCapacity)
	}
	if snap.ShortTerm.RetentionMinutes <= 0 {
		return fmt.Errorf("short_term.retention_minutes must be positive, got %d", snap.ShortTerm.RetentionMinutes)
	}
	if len(snap.ShortTerm.RecentIdeas) > snap.ShortTerm.MaxCapacity {
		return fmt.Errorf("short_term holds %d ideas, capacity is %d", len(snap.ShortTerm.RecentIdeas), snap.ShortTerm.MaxCapacity)
	}
	for _, idea := range snap.ShortTerm.RecentIdeas {
		if err := validateIdea(idea); err != nil {
			return err
		}
	}

	for _, field := range []struct {
		name string
		v    float64
	}{
		{"working.chaos_momentum", snap.Working.ChaosMomentum},
		{"working.creativity_temperature", snap.Working.CreativityTemperature},
		{"working.cognitive_load", snap.Working.CognitiveLoad},
	} {
		if !inUnitRange(field.v) {
			return fmt.Errorf("%s out of range: %v", field.name, field.v)
		}
	}

	for tag, rec := range snap.LongTerm.SuccessfulPatterns {
		if rec == nil {
			return fmt.Errorf("pattern %q is null", tag)
		}
		if !inUnitRange(rec.SuccessRate) {
			return fmt.Errorf("pattern %q success_rate out of range: %v", tag, rec.SuccessRate)
		}
	}
	for persona, eff := range snap.LongTerm.PersonaEffectiveness {
		if eff == nil {
			return fmt.Errorf("persona_effectiveness %q is null", persona)
		}
		if !inUnitRange(eff.AverageCreativityScore) || !inUnitRange(eff.AverageFeasibilityScore) || !inUnitRange(eff.UserSatisfactionRating) {
			return fmt.Errorf("persona_effectiveness %q has scores out of range", persona)
		}
	}
	for domain, dk := range snap.LongTerm.DomainKnowledge {
		if dk == nil {
			return fmt.Errorf("domain_knowledge %q is null", domain)
		}
		if !inUnitRange(dk.ExpertiseLevel) {
			return fmt.Errorf("domain_knowledge %q expertise_level out of range: %v", domain, dk.ExpertiseLevel)
		}
		for p, v := range dk.PersonaSuccess {
			if !inUnitRange(v) {
				return fmt.Errorf("domain_knowledge %q persona_success[%s] out of range: %v", domain, p, v)
			}
		}
	}

	if snap.Episodic.MaxEpisodes <= 0 {
		return fmt.Errorf("episodic.max_episodes must be positive, got %d", snap.Episodic.MaxEpisodes)
	}
	if len(snap.Episodic.SessionHistory) > snap.Episodic.MaxEpisodes {
		return fmt.Errorf("episodic holds %d episodes, bound is %d", len(snap.Episodic.SessionHistory), snap.Episodic.MaxEpisodes)
	}
	return nil
}

func validateIdea(idea models.Idea) error {
	for _, field := range []struct {
		name string
		v    float64
	}{
		{"chaos_level", idea.ChaosLevel},
		{"creativity_score", idea.CreativityScore},
		{"feasibility_score", idea.FeasibilityScore},
		{"novelty_score", idea.NoveltyScore},
		{"excitement_factor", idea.ExcitementFactor},
	} {
		if !inUnitRange(field.v) {
			return fmt.Errorf("idea %s: %s out of range: %v", idea.ID, field.name, field.v)
		}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func copyIdeas(ideas []models.Idea) []models.Idea {
	out := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, copyIdea(idea))
	}
	return out
}

func copyPreferences(p UserPreferences) UserPreferences {
	out := p
	out.PreferredPersonas = append([]models.Persona(nil), p.PreferredPersonas...)
	out.FavoriteDomains = append([]string(nil), p.FavoriteDomains...)
	out.OutputStyle = copyStringMap(p.OutputStyle)
	return out
}
