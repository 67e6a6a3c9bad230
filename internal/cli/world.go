package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "World management commands",
	}

	cmd.AddCommand(newWorldListCmd())
	cmd.AddCommand(newWorldCreateCmd())
	cmd.AddCommand(newWorldGetCmd())
	cmd.AddCommand(newWorldDeleteCmd())

	return cmd
}

func newWorldListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WorldList

			if err := client.Get("/api/v1/worlds", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWorldCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result World

			if err := client.Post("/api/v1/worlds", map[string]string{"name": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWorldGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <world-id>",
		Short: "Get world details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result World

			if err := client.Get(fmt.Sprintf("/api/v1/worlds/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWorldDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <world-id>",
		Short: "Delete a world you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/worlds/%s", args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("World deleted")
			return nil
		},
	}
}
