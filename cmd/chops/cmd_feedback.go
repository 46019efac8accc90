package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chops/internal/models"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [persona] [rating]",
		Short: "Record a satisfaction rating (0.0-1.0) for a persona",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			persona, err := models.ParsePersona(args[0])
			if err != nil {
				return err
			}

			rating, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("feedback: parsing rating %q: %w", args[1], err)
			}
			if rating < 0 || rating > 1 {
				return fmt.Errorf("feedback: rating must be between 0.0 and 1.0, got %v", rating)
			}

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("feedback: %w", err)
			}
			defer func() { _ = storage.Close() }()

			store.RecordFeedback(persona, rating)

			if err := store.Save(ctx, storage); err != nil {
				return fmt.Errorf("feedback: saving memory: %w", err)
			}

			fmt.Printf("recorded rating %.2f for %s\n", rating, persona)
			return nil
		},
	}
	return cmd
}
