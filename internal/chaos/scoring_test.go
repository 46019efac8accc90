package chaos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/chops/internal/models"
)

func TestScore_Formulas(t *testing.T) {
	st := State{
		DistortionField: 0.5,
		NoveltyBias:     math.Pow(0.5, 1.5),
		CoherenceBound:  0.75,
	}
	feats := Features{Length: 100, TextEntropy: 0.8, Tags: []string{"quantum", "banking"}}
	w := DefaultScoreWeights()

	scores := Score(models.PersonaMadScientist, 0, feats, st, nil, w)

	// mad-scientist base feasibility 0.45, no expertise lift, half-distortion penalty.
	assert.InDelta(t, 0.45-0.5*0.5, scores.Feasibility, 1e-9)

	wantCreativity := 0.6*st.NoveltyBias + 0.4*0.8
	assert.InDelta(t, wantCreativity, scores.Creativity, 1e-9)

	assert.Equal(t, 1.0, scores.Novelty, "no priors means fully novel")

	wantExcitement := 0.7*wantCreativity + 0.3*0.75
	assert.InDelta(t, wantExcitement, scores.Excitement, 1e-9)
}

func TestScore_ExpertiseLiftsFeasibility(t *testing.T) {
	st := State{DistortionField: 0.2}
	feats := Features{TextEntropy: 0.5}
	w := DefaultScoreWeights()

	low := Score(models.PersonaZenMaster, 0, feats, st, nil, w)
	high := Score(models.PersonaZenMaster, 1.0, feats, st, nil, w)
	assert.InDelta(t, 0.1, high.Feasibility-low.Feasibility, 1e-9)
}

func TestScore_SanitizesBadInputs(t *testing.T) {
	st := State{DistortionField: 0.3, NoveltyBias: 0.2, CoherenceBound: 0.9}
	w := DefaultScoreWeights()

	scores := Score(models.PersonaPunkHacker, math.NaN(), Features{TextEntropy: math.NaN()}, st, nil, w)
	for _, v := range []float64{scores.Creativity, scores.Feasibility, scores.Novelty, scores.Excitement} {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	scores = Score(models.PersonaPunkHacker, math.Inf(1), Features{TextEntropy: math.Inf(1)}, st, nil, w)
	assert.LessOrEqual(t, scores.Feasibility, 1.0)
	assert.LessOrEqual(t, scores.Creativity, 1.0)
}

func TestNoveltyScore(t *testing.T) {
	assert.Equal(t, 1.0, NoveltyScore([]string{"a"}, nil), "no priors")

	// Identical tag set is not novel at all.
	assert.Equal(t, 0.0, NoveltyScore([]string{"a", "b"}, [][]string{{"a", "b"}}))

	// Disjoint sets are fully novel.
	assert.Equal(t, 1.0, NoveltyScore([]string{"a", "b"}, [][]string{{"c", "d"}}))

	// Overlap of one in a union of three.
	got := NoveltyScore([]string{"a", "b"}, [][]string{{"b", "c"}})
	assert.InDelta(t, 1.0-1.0/3.0, got, 1e-9)

	// The most similar prior wins.
	got = NoveltyScore([]string{"a", "b"}, [][]string{{"c", "d"}, {"a", "b"}})
	assert.Equal(t, 0.0, got)

	// Duplicate tags do not inflate the union.
	got = NoveltyScore([]string{"a", "a", "b"}, [][]string{{"a", "b", "b"}})
	assert.Equal(t, 0.0, got)
}

func TestBaseFeasibility_Clamped(t *testing.T) {
	// zen-master base 0.80 plus full expertise lift stays within range.
	got := BaseFeasibility(models.PersonaZenMaster, 1.0)
	assert.InDelta(t, 0.90, got, 1e-9)

	got = BaseFeasibility(models.PersonaZenMaster, math.Inf(1))
	assert.InDelta(t, 0.90, got, 1e-9, "infinite expertise clamps to the unit lift")
}
