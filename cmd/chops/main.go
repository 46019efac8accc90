package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/config"
	"github.com/ajitpratap0/chops/internal/entropy"
	"github.com/ajitpratap0/chops/internal/generator"
	"github.com/ajitpratap0/chops/internal/memory"
	"github.com/ajitpratap0/chops/internal/persistence"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "chops",
		Short: "chops — chaos-calibrated persona idea generator with adaptive memory",
		Long:  "chops blends deterministic chaotic systems into a tunable distortion field, summons persona-voiced ideas through Claude, and learns which personas work where through a four-tier adaptive memory.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		summonCmd(),
		chaosCmd(),
		recallCmd(),
		recommendCmd(),
		feedbackCmd(),
		memoryCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newEngine builds the chaos engine from the configured entropy sources.
func newEngine(logger *slog.Logger) (*chaos.Engine, error) {
	sources := make([]entropy.Source, 0, len(cfg.Chaos.Sources))
	for _, name := range cfg.Chaos.Sources {
		src, err := newSource(name, cfg.Chaos.Seed, logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return chaos.New(sources, logger), nil
}

func newSource(name string, seed uint64, logger *slog.Logger) (entropy.Source, error) {
	switch entropy.Kind(name) {
	case entropy.KindPseudo:
		return entropy.NewPseudo(seed), nil
	case entropy.KindTrue:
		return entropy.NewTrue(logger), nil
	case entropy.KindLorenz:
		return entropy.NewLorenz(seed), nil
	case entropy.KindHenon:
		return entropy.NewHenon(seed), nil
	case entropy.KindFractal:
		return entropy.NewFractal(seed), nil
	default:
		return nil, fmt.Errorf("unknown entropy source %q: must be one of pseudo, true, lorenz, henon, fractal", name)
	}
}

// newStore builds the memory store and loads any persisted snapshot.
func newStore(ctx context.Context, logger *slog.Logger) (*memory.Store, persistence.Storage, error) {
	store := memory.New(memory.Config{
		ShortTermCapacity:     cfg.Memory.ShortTermCapacity,
		RetentionMinutes:      cfg.Memory.RetentionMinutes,
		MaxEpisodes:           cfg.Memory.MaxEpisodes,
		BreakthroughThreshold: cfg.Memory.BreakthroughThreshold,
		FailureThreshold:      cfg.Memory.FailureThreshold,
	}, logger)

	storage, err := newStorage()
	if err != nil {
		return nil, nil, err
	}

	if err := store.Load(ctx, storage); err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("loading memory: %w", err)
	}
	return store, storage, nil
}

func newStorage() (persistence.Storage, error) {
	switch cfg.Memory.Backend {
	case "sqlite":
		return persistence.NewSQLiteStorage(cfg.Memory.Path)
	default:
		return persistence.NewFileStorage(cfg.Memory.Path)
	}
}

// newSummoner wires engine, store, and the Claude client together.
func newSummoner(engine *chaos.Engine, store *memory.Store, logger *slog.Logger) (*generator.Summoner, error) {
	if cfg.Claude.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	client := generator.NewClaudeClient(cfg.Claude.APIKey, cfg.Claude.Model, logger)
	return generator.NewSummoner(engine, store, client, logger), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
