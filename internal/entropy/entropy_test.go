package entropy

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSources_RangeInvariant(t *testing.T) {
	sources := []Source{
		NewPseudo(42),
		NewTrue(newTestLogger()),
		NewLorenz(42),
		NewHenon(42),
		NewFractal(42),
	}

	for _, src := range sources {
		for i := 0; i < 500; i++ {
			v := src.Next()
			assert.GreaterOrEqual(t, v, 0.0, "source %s sample %d below range", src.Kind(), i)
			assert.Less(t, v, 1.0, "source %s sample %d at or above 1", src.Kind(), i)
		}
	}
}

func TestPseudo_Reproducible(t *testing.T) {
	a := Sequence(NewPseudo(7), 100)
	b := Sequence(NewPseudo(7), 100)
	assert.Equal(t, a, b, "same seed must yield the same sequence")

	c := Sequence(NewPseudo(8), 100)
	assert.NotEqual(t, a, c, "different seeds should diverge")
}

func TestLorenz_Reproducible(t *testing.T) {
	a := Sequence(NewLorenz(3), 50)
	b := Sequence(NewLorenz(3), 50)
	assert.Equal(t, a, b)
}

func TestHenon_Reproducible(t *testing.T) {
	a := Sequence(NewHenon(3), 50)
	b := Sequence(NewHenon(3), 50)
	assert.Equal(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy pool exhausted")
}

func TestTrue_FallbackOnReaderFailure(t *testing.T) {
	src := NewTrueFrom(failingReader{}, newTestLogger())
	require.False(t, src.Degraded(), "fresh source must not be degraded")

	for i := 0; i < 100; i++ {
		v := src.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.True(t, src.Degraded(), "failed reads must mark the source degraded")
}

func TestTrue_HealthyReaderStaysClean(t *testing.T) {
	src := NewTrue(newTestLogger())
	for i := 0; i < 10; i++ {
		src.Next()
	}
	assert.False(t, src.Degraded())
}

func TestTrue_EOFMidReadFallsBack(t *testing.T) {
	// Three bytes is not enough for one sample.
	src := NewTrueFrom(strings.NewReader("abc"), newTestLogger())
	v := src.Next()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
	assert.True(t, src.Degraded())
}

func TestSequence_Length(t *testing.T) {
	seq := Sequence(NewPseudo(1), 17)
	assert.Len(t, seq, 17)
}

func TestAnalyze_ConstantSequenceScoresZero(t *testing.T) {
	seq := make([]float64, 100)
	for i := range seq {
		seq[i] = 0.5
	}
	q := Analyze(seq)
	assert.Zero(t, q.Uniformity, "all samples in one bin must fail the chi-square test")
	assert.Zero(t, q.Independence, "zero variance gives no independence signal")
	assert.Zero(t, q.Overall)
}

func TestAnalyze_BoundsAndEmpty(t *testing.T) {
	q := Analyze(nil)
	assert.Zero(t, q.Overall)

	q = Analyze(Sequence(NewPseudo(42), 2000))
	assert.GreaterOrEqual(t, q.Uniformity, 0.0)
	assert.LessOrEqual(t, q.Uniformity, 1.0)
	assert.Greater(t, q.Independence, 0.5, "a decent generator has near-zero lag-1 correlation")
	assert.LessOrEqual(t, q.Independence, 1.0)
}

func TestAnalyze_AlternatingSequenceFlagsCorrelation(t *testing.T) {
	seq := make([]float64, 200)
	for i := range seq {
		if i%2 == 0 {
			seq[i] = 0.1
		} else {
			seq[i] = 0.9
		}
	}
	q := Analyze(seq)
	assert.Less(t, q.Independence, 0.1, "perfect alternation is maximally anti-correlated")
}

func TestKind_IsValid(t *testing.T) {
	for _, k := range ValidKinds {
		assert.True(t, k.IsValid())
	}
	assert.False(t, Kind("quantum").IsValid())
}
