package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersona(t *testing.T) {
	for _, p := range ValidPersonas {
		got, err := ParsePersona(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePersona("ghost")
	assert.Error(t, err)
	_, err = ParsePersona("")
	assert.Error(t, err)
}

func TestPersonaProfiles(t *testing.T) {
	assert.Equal(t, 0.95, PersonaMadScientist.CreativityBias())
	assert.Equal(t, 0.45, PersonaMadScientist.BaseFeasibility())
	assert.Equal(t, 0.80, PersonaZenMaster.BaseFeasibility())
	assert.Equal(t, 0.40, PersonaZenMaster.ExcitementLevel())

	for _, p := range ValidPersonas {
		assert.GreaterOrEqual(t, p.CreativityBias(), 0.0)
		assert.LessOrEqual(t, p.CreativityBias(), 1.0)
		assert.GreaterOrEqual(t, p.BaseFeasibility(), 0.0)
		assert.LessOrEqual(t, p.BaseFeasibility(), 1.0)
	}

	// Unknown personas fall back to neutral defaults.
	ghost := Persona("ghost")
	assert.Equal(t, 0.7, ghost.CreativityBias())
	assert.Equal(t, 0.6, ghost.BaseFeasibility())
	assert.Equal(t, 0.5, ghost.ExcitementLevel())
}

func TestIdea_CompositeScore(t *testing.T) {
	idea := Idea{
		CreativityScore:  0.8,
		FeasibilityScore: 0.6,
		NoveltyScore:     0.4,
		ExcitementFactor: 0.2,
	}
	assert.InDelta(t, 0.5, idea.CompositeScore(), 1e-9)
}

func TestIdea_HasTag(t *testing.T) {
	idea := Idea{Tags: []string{"solar", "grid"}}
	assert.True(t, idea.HasTag("solar"))
	assert.False(t, idea.HasTag("wind"))
}
