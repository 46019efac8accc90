package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/models"
)

func summonCmd() *cobra.Command {
	var (
		level  int
		domain string
		asJSON bool
		noSave bool
	)

	cmd := &cobra.Command{
		Use:   "summon [persona]",
		Short: "Summon a persona to generate a chaos-calibrated idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			persona, err := models.ParsePersona(args[0])
			if err != nil {
				return err
			}
			if domain == "" {
				return fmt.Errorf("summon: --domain is required")
			}
			if level == 0 {
				level = cfg.Chaos.DefaultLevel
			}

			engine, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("summon: %w", err)
			}

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("summon: %w", err)
			}
			defer func() { _ = storage.Close() }()

			summoner, err := newSummoner(engine, store, logger)
			if err != nil {
				return fmt.Errorf("summon: %w", err)
			}

			result, err := summoner.Summon(ctx, persona, domain, level)
			if err != nil {
				return fmt.Errorf("summon: %w", err)
			}

			if !noSave {
				if saveErr := store.Save(ctx, storage); saveErr != nil {
					return fmt.Errorf("summon: saving memory: %w", saveErr)
				}
			}

			if asJSON {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("summon: marshaling output: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			idea := result.Idea
			fmt.Printf("%s  [%s @ level %d]\n\n", idea.Title, idea.PersonaUsed, level)
			fmt.Println(idea.Description)
			fmt.Printf("\ncreativity=%.2f feasibility=%.2f novelty=%.2f excitement=%.2f composite=%.2f\n",
				idea.CreativityScore, idea.FeasibilityScore, idea.NoveltyScore,
				idea.ExcitementFactor, idea.CompositeScore())
			if len(idea.Tags) > 0 {
				fmt.Printf("tags: %v\n", idea.Tags)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "chaos level 1-11 (default from config)")
	cmd.Flags().StringVar(&domain, "domain", "", "problem domain for the idea")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting memory after the summon")
	return cmd
}
