package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/metrics"
)

func recommendCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend [domain]",
		Short: "Rank personas by learned effectiveness for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			domain := args[0]

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			defer func() { _ = storage.Close() }()

			metrics.Inc(metrics.RecommendTotal)
			rankings := store.Recommend(domain)

			if asJSON {
				out, err := json.MarshalIndent(rankings, "", "  ")
				if err != nil {
					return fmt.Errorf("recommend: marshaling output: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			if len(rankings) == 0 {
				fmt.Printf("no persona history yet for domain %q — summon a few ideas first\n", domain)
				return nil
			}

			fmt.Printf("Persona rankings for %q:\n\n", domain)
			for i, r := range rankings {
				fmt.Printf("%2d. %-15s score=%.3f effectiveness=%.3f domain_success=%.3f uses=%d\n",
					i+1, r.Persona, r.Score, r.Effectiveness, r.DomainSuccess, r.UsageFrequency)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
