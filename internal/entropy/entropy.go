// Package entropy provides the numeric signal sources the chaos engine
// blends: a seedable pseudo-random generator, an OS-backed true-random
// generator, and deterministic chaotic systems (Lorenz, Hénon,
// Mandelbrot fractal dimension).
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	mrand "math/rand/v2"

	"github.com/ajitpratap0/chops/internal/metrics"
)

// Kind classifies an entropy source.
type Kind string

const (
	KindPseudo  Kind = "pseudo"
	KindTrue    Kind = "true"
	KindLorenz  Kind = "lorenz"
	KindHenon   Kind = "henon"
	KindFractal Kind = "fractal"
)

// ValidKinds is the set of all recognized source kinds.
var ValidKinds = []Kind{KindPseudo, KindTrue, KindLorenz, KindHenon, KindFractal}

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Source produces scalar samples in [0,1). Sources are not safe for
// concurrent use; each engine instance owns its sources exclusively.
type Source interface {
	Kind() Kind
	Next() float64
}

// fold maps v into [0,1), clamping below and excluding the upper bound.
func fold(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

// Pseudo is a seedable uniform generator.
type Pseudo struct {
	rng *mrand.Rand
}

// NewPseudo creates a pseudo-random source from a seed. The same seed
// yields the same sample sequence.
func NewPseudo(seed uint64) *Pseudo {
	return &Pseudo{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *Pseudo) Kind() Kind { return KindPseudo }

func (p *Pseudo) Next() float64 { return p.rng.Float64() }

// True reads from an OS randomness reader. When the reader fails it
// degrades to a pseudo-random fallback and logs the failure; sampling
// never returns an error.
type True struct {
	reader   io.Reader
	fallback *Pseudo
	logger   *slog.Logger
	degraded bool
}

// NewTrue creates a true-random source backed by crypto/rand.
func NewTrue(logger *slog.Logger) *True {
	return NewTrueFrom(rand.Reader, logger)
}

// NewTrueFrom creates a true-random source backed by the given reader.
func NewTrueFrom(r io.Reader, logger *slog.Logger) *True {
	return &True{
		reader:   r,
		fallback: NewPseudo(mrand.Uint64()),
		logger:   logger,
	}
}

func (t *True) Kind() Kind { return KindTrue }

func (t *True) Next() float64 {
	var buf [8]byte
	if _, err := io.ReadFull(t.reader, buf[:]); err != nil {
		if !t.degraded {
			t.logger.Warn("true-random source unavailable, falling back to pseudo-random", "error", err)
			t.degraded = true
		}
		metrics.Inc(metrics.EntropyFallbacks)
		return t.fallback.Next()
	}
	// 53 high bits give a uniform float64 in [0,1).
	v := binary.LittleEndian.Uint64(buf[:])
	return float64(v>>11) / (1 << 53)
}

// Degraded reports whether the source has fallen back to pseudo-random.
func (t *True) Degraded() bool { return t.degraded }

// Sequence draws n consecutive samples from a source.
func Sequence(s Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}

// Quality summarizes statistical quality of a sample sequence.
type Quality struct {
	Uniformity   float64 `json:"uniformity"`
	Independence float64 `json:"independence"`
	Overall      float64 `json:"overall"`
}

// Analyze runs uniformity and serial-independence tests on a sequence.
func Analyze(seq []float64) Quality {
	u := testUniformity(seq)
	ind := testIndependence(seq)
	return Quality{
		Uniformity:   u,
		Independence: ind,
		Overall:      (u + ind) / 2.0,
	}
}

// testUniformity runs a 10-bin chi-square test. The critical value is
// for 9 degrees of freedom at 95% confidence.
func testUniformity(seq []float64) float64 {
	if len(seq) == 0 {
		return 0
	}
	const bins = 10
	var hist [bins]int
	for _, v := range seq {
		b := int(v * bins)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		hist[b]++
	}
	expected := float64(len(seq)) / bins
	chiSquare := 0.0
	for _, count := range hist {
		diff := float64(count) - expected
		chiSquare += diff * diff / expected
	}
	const critical = 16.92
	return math.Max(0, 1-math.Min(1, chiSquare/critical))
}

// testIndependence measures lag-1 serial correlation; closer to zero
// correlation scores higher.
func testIndependence(seq []float64) float64 {
	if len(seq) < 2 {
		return 0
	}
	var sumXY, sumX, sumY, sumX2, sumY2 float64
	n := float64(len(seq) - 1)
	for i := 0; i < len(seq)-1; i++ {
		x, y := seq[i], seq[i+1]
		sumXY += x * y
		sumX += x
		sumY += y
		sumX2 += x * x
		sumY2 += y * y
	}
	denom := math.Sqrt(n*sumX2-sumX*sumX) * math.Sqrt(n*sumY2-sumY*sumY)
	if denom == 0 {
		return 0
	}
	corr := (n*sumXY - sumX*sumY) / denom
	return 1 - math.Abs(corr)
}
