// Package chaos turns a requested chaos level into calibrated numeric
// parameters by blending entropy sources, and owns the scoring
// functions that share that calibration.
package chaos

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ajitpratap0/chops/internal/entropy"
)

// ErrInvalidChaosLevel is returned by Generate for levels outside 1-11.
var ErrInvalidChaosLevel = errors.New("chaos level must be between 1 and 11")

const (
	// MinLevel and MaxLevel bound the user-facing chaos level.
	MinLevel = 1
	MaxLevel = 11

	// maxImpossibleElements is the impossible-element count at MaxLevel.
	maxImpossibleElements = 4
)

// State holds the calibrated chaos parameters for one request. It is a
// value type, created fresh per Generate call and never mutated.
type State struct {
	DistortionField float64 `json:"distortion_field"`
	NoveltyBias     float64 `json:"novelty_bias"`
	CoherenceBound  float64 `json:"coherence_bound"`
	ImpossibleCount uint32  `json:"impossible_count"`
}

// Engine blends entropy sources into chaos states. An engine instance
// is not safe for concurrent use: its sources carry trajectory state
// advanced only by sequential calls. Use one engine per concurrent
// caller.
type Engine struct {
	sources []entropy.Source
	logger  *slog.Logger

	// momentum tracks the normalized level of the last generation,
	// nudged by Evolve feedback.
	momentum float64
}

// New creates an engine over the given sources. With no sources it
// falls back to a single pseudo-random source so Generate stays total.
func New(sources []entropy.Source, logger *slog.Logger) *Engine {
	if len(sources) == 0 {
		sources = []entropy.Source{entropy.NewPseudo(0)}
	}
	return &Engine{
		sources:  sources,
		logger:   logger,
		momentum: 0.5,
	}
}

// Generate validates the level, draws one sample from each source, and
// derives the chaos state. For a fixed level and seeded deterministic
// sources the result is reproducible; adding a true-random source
// makes it non-reproducible.
func (e *Engine) Generate(level int) (State, error) {
	if level < MinLevel || level > MaxLevel {
		return State{}, fmt.Errorf("%w: got %d", ErrInvalidChaosLevel, level)
	}

	t := float64(level-MinLevel) / float64(MaxLevel-MinLevel)

	var weighted, total float64
	for _, src := range e.sources {
		w := blendWeight(src.Kind(), t)
		weighted += w * src.Next()
		total += w
	}
	distortion := clamp01(weighted / total)

	st := State{
		DistortionField: distortion,
		NoveltyBias:     math.Pow(distortion, 1.5),
		CoherenceBound:  1.0 - 0.5*t,
		ImpossibleCount: uint32(math.Round(t * maxImpossibleElements)),
	}

	e.momentum = t
	e.logger.Debug("generated chaos state",
		"level", level,
		"distortion_field", st.DistortionField,
		"coherence_bound", st.CoherenceBound,
		"impossible_count", st.ImpossibleCount)
	return st, nil
}

// blendWeight favors order at low chaos and deterministic-chaotic
// unpredictability at high chaos: chaotic map weights rise with t,
// pseudo-random falls, everything else stays neutral.
func blendWeight(k entropy.Kind, t float64) float64 {
	switch k {
	case entropy.KindLorenz, entropy.KindHenon:
		return 0.5 + t
	case entropy.KindPseudo:
		return 1.5 - t
	default:
		return 1.0
	}
}

// Evolve nudges the engine's momentum based on how effective the last
// generation turned out. High effectiveness amplifies chaos slightly;
// low effectiveness dials it back.
func (e *Engine) Evolve(effectiveness float64) {
	old := e.momentum
	switch {
	case effectiveness > 0.8:
		e.momentum = math.Min(e.momentum*1.05, 1.0)
	case effectiveness < 0.3:
		e.momentum = math.Max(e.momentum*0.9, 0.1)
	}
	if e.momentum != old {
		e.logger.Info("evolved chaos momentum", "effectiveness", effectiveness, "from", old, "to", e.momentum)
	}
}

// SuggestedLevel converts the evolved momentum back into a user-facing
// chaos level.
func (e *Engine) SuggestedLevel() int {
	level := int(math.Round(e.momentum*float64(MaxLevel-MinLevel))) + MinLevel
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func clamp01(v float64) float64 {
	// NaN from upstream arithmetic clamps to the lower bound.
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
