package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushq/labops/cmd/cli/client"
	"github.com/campushq/labops/cmd/cli/config"
)

// Init registers the login and logout commands on the root command.
func Init(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

func loginCmd() *cobra.Command {
	var username, password string
	var register bool
	var campusID int

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the labops API",
		Long:  "Authenticate with the labops API and store a JWT token for subsequent commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			if register {
				payload := map[string]interface{}{
					"username":  username,
					"password":  password,
					"campus_id": campusID,
				}
				if err := client.Do("POST", "/api/v1/auth/register", payload, false, nil); err != nil {
					return fmt.Errorf("register: %w", err)
				}
			}

			var out struct {
				Token string `json:"token"`
			}
			payload := map[string]string{"username": username, "password": password}
			if err := client.Do("POST", "/api/v1/auth/login", payload, false, &out); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().BoolVar(&register, "register", false, "register the account before logging in")
	cmd.Flags().IntVar(&campusID, "campus", 0, "campus id when registering")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
