// Package models defines the core data structures shared across chops:
// generated ideas, personas, and recommendation results.
package models

import (
	"time"
)

// Idea is one generated idea with its calibrated scores. Ideas are
// immutable once recorded; the memory store owns the only copies.
type Idea struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PersonaUsed      Persona   `json:"persona_used"`
	Domain           string    `json:"domain"`
	ChaosLevel       float64   `json:"chaos_level"` // normalized to [0,1]
	CreativityScore  float64   `json:"creativity_score"`
	FeasibilityScore float64   `json:"feasibility_score"`
	NoveltyScore     float64   `json:"novelty_score"`
	ExcitementFactor float64   `json:"excitement_factor"`
	Tags             []string  `json:"tags"`
	Timestamp        time.Time `json:"timestamp"`
}

// CompositeScore is the mean of the four idea scores.
func (i Idea) CompositeScore() float64 {
	return (i.CreativityScore + i.FeasibilityScore + i.NoveltyScore + i.ExcitementFactor) / 4.0
}

// HasTag reports whether the idea carries the given tag.
func (i Idea) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PersonaRank is one entry in a persona recommendation, ordered best first.
type PersonaRank struct {
	Persona        Persona `json:"persona"`
	Score          float64 `json:"score"`
	Effectiveness  float64 `json:"effectiveness"`
	DomainSuccess  float64 `json:"domain_success"`
	UsageFrequency uint64  `json:"usage_frequency"`
}
