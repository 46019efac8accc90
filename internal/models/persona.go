package models

import "fmt"

// Persona identifies one of the built-in idea-generation personas.
type Persona string

const (
	PersonaMadScientist  Persona = "mad-scientist"
	PersonaZenMaster     Persona = "zen-master"
	PersonaPunkHacker    Persona = "punk-hacker"
	PersonaEmpatheticAI  Persona = "empathetic-ai"
	PersonaChaosEngineer Persona = "chaos-engineer"
	PersonaTimeTraveler  Persona = "time-traveler"
	PersonaMindReader    Persona = "mind-reader"
)

// ValidPersonas is the set of all recognized personas.
var ValidPersonas = []Persona{
	PersonaMadScientist,
	PersonaZenMaster,
	PersonaPunkHacker,
	PersonaEmpatheticAI,
	PersonaChaosEngineer,
	PersonaTimeTraveler,
	PersonaMindReader,
}

// IsValid returns true if the persona is recognized.
func (p Persona) IsValid() bool {
	for _, v := range ValidPersonas {
		if p == v {
			return true
		}
	}
	return false
}

// ParsePersona converts a user-facing string into a Persona.
func ParsePersona(s string) (Persona, error) {
	p := Persona(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown persona %q", s)
	}
	return p, nil
}

// personaProfile holds the fixed calibration constants for one persona.
type personaProfile struct {
	creativityBias  float64
	baseFeasibility float64
	excitement      float64
}

// profiles is keyed by persona. Constants come from the persona engine's
// character sheets; feasibility is the complement of risk appetite.
var profiles = map[Persona]personaProfile{
	PersonaMadScientist:  {creativityBias: 0.95, baseFeasibility: 0.45, excitement: 0.90},
	PersonaZenMaster:     {creativityBias: 0.70, baseFeasibility: 0.80, excitement: 0.40},
	PersonaPunkHacker:    {creativityBias: 0.85, baseFeasibility: 0.55, excitement: 0.80},
	PersonaEmpatheticAI:  {creativityBias: 0.70, baseFeasibility: 0.75, excitement: 0.60},
	PersonaChaosEngineer: {creativityBias: 0.90, baseFeasibility: 0.50, excitement: 0.85},
	PersonaTimeTraveler:  {creativityBias: 0.80, baseFeasibility: 0.60, excitement: 0.70},
	PersonaMindReader:    {creativityBias: 0.75, baseFeasibility: 0.65, excitement: 0.65},
}

// CreativityBias returns the persona's intrinsic creativity multiplier.
func (p Persona) CreativityBias() float64 {
	if prof, ok := profiles[p]; ok {
		return prof.creativityBias
	}
	return 0.7
}

// BaseFeasibility returns the persona's baseline feasibility before the
// distortion field penalty is applied. Domains the persona has no track
// record in use this value unmodified.
func (p Persona) BaseFeasibility() float64 {
	if prof, ok := profiles[p]; ok {
		return prof.baseFeasibility
	}
	return 0.6
}

// ExcitementLevel returns the persona's baseline excitement.
func (p Persona) ExcitementLevel() float64 {
	if prof, ok := profiles[p]; ok {
		return prof.excitement
	}
	return 0.5
}
