package cli

import (
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management",
	}

	cmd.AddCommand(newSessionGuestCmd())

	return cmd
}

func newSessionGuestCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "guest <display-name>",
		Short: "Issue a guest session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AuthResult
			body := map[string]string{"display_name": args[0]}

			if err := client.Post("/api/v1/sessions/guest", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if !noSave {
				if err := cfg.SaveToken(result.Token); err != nil {
					return err
				}
				out.PrintMessage("Token saved to " + cfg.TokenFile)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist the token to the token file")

	return cmd
}
