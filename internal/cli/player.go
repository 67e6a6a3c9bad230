package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerGuestCmd())
	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerResumeCmd())
	cmd.AddCommand(newPlayerLogoutCmd())
	cmd.AddCommand(newPlayerMeCmd())

	return cmd
}

// authenticate posts to an auth endpoint and saves the returned token
func authenticate(path string, req any) error {
	var result AuthResult
	if err := client.Post(path, req, &result); err != nil {
		return err
	}

	if err := cfg.SaveToken(result.SessionToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}

func newPlayerGuestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Create a guest player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if name != "" {
				req["username"] = name
			}
			return authenticate("/api/v1/players/guest", req)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (default: generated)")

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var name, login, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if login == "" || pass == "" {
				return fmt.Errorf("--login and --pass are required")
			}

			return authenticate("/api/v1/players/register", map[string]string{
				"login":    login,
				"password": pass,
				"username": name,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (default: the login)")
	cmd.Flags().StringVar(&login, "login", "", "Login (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var login, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if login == "" || pass == "" {
				return fmt.Errorf("--login and --pass are required")
			}

			return authenticate("/api/v1/players/login", map[string]string{
				"login":    login,
				"password": pass,
			})
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "Login (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <player-id>",
		Short: "Resume a guest identity used within the last week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/players/resume", map[string]string{"player_id": args[0]})
		},
	}
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/players/logout", nil, nil); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			NewOutput(cfg.Output).PrintMessage("Logged out")
			return nil
		},
	}
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			if err := client.Get("/api/v1/players/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
