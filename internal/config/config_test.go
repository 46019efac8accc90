package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Chaos: ChaosConfig{
			DefaultLevel: 5,
			Sources:      []string{"pseudo", "lorenz"},
		},
		Memory: MemoryConfig{
			Backend:               "file",
			Path:                  "/tmp/chops/memory.json",
			ShortTermCapacity:     50,
			RetentionMinutes:      60,
			MaxEpisodes:           100,
			BreakthroughThreshold: 0.85,
			FailureThreshold:      0.3,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Chaos.DefaultLevel = 12
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Chaos.Sources = nil
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Memory.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Memory.ShortTermCapacity = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Memory.FailureThreshold = 0.9
	assert.Error(t, cfg.Validate(), "failure threshold must stay below breakthrough")
}

func TestMaskAPIKey(t *testing.T) {
	masked := ClaudeConfig{APIKey: "sk-ant-api03-abcdefgh", Model: "m"}.String()
	assert.NotContains(t, masked, "api03-abcd")
	assert.True(t, strings.Contains(masked, "sk-a") && strings.Contains(masked, "efgh"))

	short := ClaudeConfig{APIKey: "tiny"}.String()
	assert.Contains(t, short, "***")
	assert.NotContains(t, short, "tiny")
}
