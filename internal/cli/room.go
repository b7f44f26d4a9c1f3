package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room lifecycle operations",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomCloseCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var (
		mode     string
		capacity int
		passcode string
	)

	cmd := &cobra.Command{
		Use:   "create <puzzle-id>",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"mode":      mode,
				"puzzle_id": args[0],
			}
			if capacity > 0 {
				body["capacity"] = capacity
			}
			if passcode != "" {
				body["passcode"] = passcode
			}

			var result RoomResult
			if err := client.Post("/api/v1/rooms", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "collaborative", "Game mode: collaborative, race, relay")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "Maximum number of players (default 8)")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Passcode for a private room")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomResult
			if err := client.Get("/api/v1/rooms/"+strings.ToUpper(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <code>",
		Short: "Close a room (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/rooms/" + strings.ToUpper(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Room closed")
			return nil
		},
	}
}
