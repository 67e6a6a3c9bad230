package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Turn commands within a world",
	}

	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameMapCmd())
	cmd.AddCommand(newGameMovesCmd())
	cmd.AddCommand(newGameRollCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameEndTurnCmd())
	cmd.AddCommand(newGameAutoplayCmd())

	return cmd
}

func worldPath(worldID, suffix string) string {
	return fmt.Sprintf("/api/v1/worlds/%s/%s", worldID, suffix)
}

func newGameJoinCmd() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "join <world-id>",
		Short: "Join a world, or rejoin your session in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if locale == "" {
				locale = cfg.Locale
			}
			if locale != "" {
				req["locale"] = locale
			}

			var result JoinResult
			if err := client.Post(worldPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Language for game messages (default: --lang)")

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <world-id>",
		Short: "Show your position and turn state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerState
			if err := client.Get(worldPath(args[0], "player"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameMapCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "map <world-id>",
		Short: "Draw the map around you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := worldPath(args[0], "map")
			if size > 0 {
				path = fmt.Sprintf("%s?size=%d", path, size)
			}

			var result MapWindow
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Window size, odd (default: server default)")

	return cmd
}

func newGameMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moves <world-id>",
		Short: "List the directions you can step in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LegalMoves
			if err := client.Get(worldPath(args[0], "moves"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameRollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <world-id>",
		Short: "Roll the dice to start a turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RollResult
			if err := client.Post(worldPath(args[0], "roll"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <world-id> <up|down|left|right>",
		Short: "Take one step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MoveResult
			if err := client.Post(worldPath(args[0], "move"), map[string]string{"direction": args[1]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameEndTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-turn <world-id>",
		Short: "End your turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerState
			if err := client.Post(worldPath(args[0], "end-turn"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameAutoplayCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "autoplay <world-id>",
		Short: "Let the server play your turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if strategy != "" {
				req["strategy"] = strategy
			}

			var result TurnReport
			if err := client.Post(worldPath(args[0], "autoplay"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Autoplay strategy: explorer, random (default: explorer)")

	return cmd
}
