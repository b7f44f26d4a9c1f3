package cli

import (
	"github.com/spf13/cobra"
)

func newPuzzleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Puzzle operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available puzzles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PuzzleList
			if err := client.Get("/api/v1/puzzles", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}
