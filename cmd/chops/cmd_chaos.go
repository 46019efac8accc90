package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/entropy"
)

func chaosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chaos",
		Short: "Inspect the chaos engine and its entropy sources",
	}
	cmd.AddCommand(chaosStateCmd(), chaosAnalyzeCmd())
	return cmd
}

func chaosStateCmd() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Derive the chaos state for a level without generating an idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			if level == 0 {
				level = cfg.Chaos.DefaultLevel
			}

			engine, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("chaos state: %w", err)
			}

			st, err := engine.Generate(level)
			if err != nil {
				return fmt.Errorf("chaos state: %w", err)
			}

			out, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return fmt.Errorf("chaos state: marshaling output: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "chaos level 1-11 (default from config)")
	return cmd
}

func chaosAnalyzeCmd() *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "analyze [source]",
		Short: "Run statistical quality tests against an entropy source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			src, err := newSource(args[0], cfg.Chaos.Seed, logger)
			if err != nil {
				return fmt.Errorf("chaos analyze: %w", err)
			}

			seq := entropy.Sequence(src, samples)
			quality := entropy.Analyze(seq)

			fmt.Printf("source: %s (%d samples)\n", src.Kind(), samples)
			fmt.Printf("uniformity:   %.3f\n", quality.Uniformity)
			fmt.Printf("independence: %.3f\n", quality.Independence)
			fmt.Printf("overall:      %.3f\n", quality.Overall)
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 1000, "number of samples to draw")
	return cmd
}
