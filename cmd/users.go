package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("COURSEGEN_USER_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("a password is required: pass --password or set COURSEGEN_USER_PASSWORD")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// No token is handed out here, so any secret will do.
		if cfg.Auth.JWTSecret == "" {
			cfg.Auth.JWTSecret = uuid.NewString()
		}
		docs, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer docs.Close()

		svc, err := newAuthService(cfg, docs)
		if err != nil {
			return err
		}
		u, _, err := svc.Register(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	usersAddCmd.Flags().String("password", "", "Password (6-100 characters)")
	usersCmd.AddCommand(usersAddCmd)
}
