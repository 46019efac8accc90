package chaos

import (
	"math"

	"github.com/ajitpratap0/chops/internal/models"
)

// Features are the text-derived inputs to scoring, produced by the
// feature-extraction collaborator.
type Features struct {
	Length      int      `json:"length"`
	TextEntropy float64  `json:"text_entropy"` // normalized character entropy in [0,1]
	Tags        []string `json:"tags"`
}

// ScoreWeights controls the creativity/coherence mix in the excitement
// factor and the novelty/text split in creativity.
type ScoreWeights struct {
	CreativityNovelty    float64 `json:"creativity_novelty" mapstructure:"creativity_novelty"`
	CreativityText       float64 `json:"creativity_text" mapstructure:"creativity_text"`
	ExcitementCreativity float64 `json:"excitement_creativity" mapstructure:"excitement_creativity"`
	ExcitementCoherence  float64 `json:"excitement_coherence" mapstructure:"excitement_coherence"`
}

// DefaultScoreWeights returns the calibrated default weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		CreativityNovelty:    0.6,
		CreativityText:       0.4,
		ExcitementCreativity: 0.7,
		ExcitementCoherence:  0.3,
	}
}

// Scores are the four calibrated idea scores, all finite and in [0,1].
type Scores struct {
	Creativity  float64 `json:"creativity"`
	Feasibility float64 `json:"feasibility"`
	Novelty     float64 `json:"novelty"`
	Excitement  float64 `json:"excitement"`
}

// Score maps text features plus the originating chaos state into the
// four idea scores. priorTagSets are the tag sets of prior ideas from
// long-term memory; novelty is the Jaccard distance to the most
// similar one. NaN or infinite feature inputs are clamped to the
// nearest bound rather than propagated.
func Score(persona models.Persona, domainExpertise float64, feats Features, st State, priorTagSets [][]string, w ScoreWeights) Scores {
	base := BaseFeasibility(persona, domainExpertise)
	feasibility := sanitize(base - 0.5*st.DistortionField)
	creativity := sanitize(w.CreativityNovelty*st.NoveltyBias + w.CreativityText*sanitize(feats.TextEntropy))
	novelty := NoveltyScore(feats.Tags, priorTagSets)
	excitement := sanitize(w.ExcitementCreativity*creativity + w.ExcitementCoherence*st.CoherenceBound)

	return Scores{
		Creativity:  creativity,
		Feasibility: feasibility,
		Novelty:     novelty,
		Excitement:  excitement,
	}
}

// BaseFeasibility is the persona's baseline feasibility, lifted by
// accumulated domain expertise before the distortion penalty applies.
func BaseFeasibility(persona models.Persona, domainExpertise float64) float64 {
	return sanitize(persona.BaseFeasibility() + 0.1*sanitize(domainExpertise))
}

// NoveltyScore is the Jaccard distance between the idea's tag set and
// the most similar prior tag set: 1 means fully novel, 0 identical.
// With no priors every idea is fully novel.
func NoveltyScore(tags []string, priorTagSets [][]string) float64 {
	if len(priorTagSets) == 0 {
		return 1.0
	}
	minDistance := 1.0
	for _, prior := range priorTagSets {
		d := jaccardDistance(tags, prior)
		if d < minDistance {
			minDistance = d
		}
	}
	return minDistance
}

func jaccardDistance(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	intersection := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return 1.0 - float64(intersection)/float64(union)
}

// sanitize clamps to [0,1], mapping NaN and -Inf to 0 and +Inf to 1.
// This is the only silent correction in the core.
func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
