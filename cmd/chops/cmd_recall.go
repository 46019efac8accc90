package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/metrics"
)

func recallCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recall [tag]",
		Short: "Recall the most recent remembered idea carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			tag := args[0]

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("recall: %w", err)
			}
			defer func() { _ = storage.Close() }()

			metrics.Inc(metrics.RecallTotal)
			idea, ok := store.Recall(tag)
			if !ok {
				fmt.Printf("no remembered idea carries tag %q\n", tag)
				return nil
			}

			if asJSON {
				out, err := json.MarshalIndent(idea, "", "  ")
				if err != nil {
					return fmt.Errorf("recall: marshaling output: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("%s  [%s / %s]\n", idea.Title, idea.PersonaUsed, idea.Domain)
			fmt.Println(truncate(idea.Description, 200))
			fmt.Printf("composite: %.2f  tags: %v\n", idea.CompositeScore(), idea.Tags)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
