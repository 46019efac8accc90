package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func memoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and manage the four-tier adaptive memory",
	}
	cmd.AddCommand(memoryStatsCmd(), memorySaveCmd(), memoryLoadCmd(), memoryPurgeCmd())
	return cmd
}

func memoryStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory statistics across all tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("memory stats: %w", err)
			}
			defer func() { _ = storage.Close() }()

			stats := store.Stats()

			if asJSON {
				out, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return fmt.Errorf("memory stats: marshaling output: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("short-term ideas:  %d\n", stats.ShortTermCount)
			fmt.Printf("active context:    %d tags\n", stats.ActiveContextSize)
			fmt.Printf("patterns:          %d\n", stats.PatternCount)
			fmt.Printf("personas tracked:  %d\n", stats.PersonaCount)
			fmt.Printf("domains tracked:   %d\n", stats.DomainCount)
			fmt.Printf("episodes:          %d\n", stats.EpisodeCount)
			fmt.Printf("breakthroughs:     %d\n", stats.BreakthroughCount)
			fmt.Printf("failure learnings: %d\n", stats.FailureCount)
			fmt.Printf("chaos momentum:    %.3f\n", stats.ChaosMomentum)
			fmt.Printf("cognitive load:    %.3f\n", stats.CognitiveLoad)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func memorySaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist the current memory snapshot to the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("memory save: %w", err)
			}
			defer func() { _ = storage.Close() }()

			if err := store.Save(ctx, storage); err != nil {
				return fmt.Errorf("memory save: %w", err)
			}

			fmt.Printf("memory saved to %s (%s backend)\n", cfg.Memory.Path, cfg.Memory.Backend)
			return nil
		},
	}
	return cmd
}

func memoryLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load and validate the persisted memory snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			// newStore already loads; reaching here means the snapshot
			// decoded and passed validation.
			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("memory load: %w", err)
			}
			defer func() { _ = storage.Close() }()

			stats := store.Stats()
			fmt.Printf("loaded %d short-term ideas, %d patterns, %d episodes from %s\n",
				stats.ShortTermCount, stats.PatternCount, stats.EpisodeCount, cfg.Memory.Path)
			return nil
		},
	}
	return cmd
}

func memoryPurgeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Reset all memory tiers to their initial state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("memory purge: pass --yes to confirm wiping all memory tiers")
			}

			logger := newLogger()
			ctx := cmd.Context()

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("memory purge: %w", err)
			}
			defer func() { _ = storage.Close() }()

			store.Purge()

			if err := store.Save(ctx, storage); err != nil {
				return fmt.Errorf("memory purge: saving empty memory: %w", err)
			}

			fmt.Println("memory purged")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the purge")
	return cmd
}
