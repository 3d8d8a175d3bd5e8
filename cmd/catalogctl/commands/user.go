// cmd/catalogctl/commands/user.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User administration",
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], auth.RoleAdmin)
	},
}

var userDemoteCmd = &cobra.Command{
	Use:   "demote <email>",
	Short: "Revoke the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], auth.RoleUser)
	},
}

// userHashPasswordCmd prints a bcrypt hash, handy for fixtures and manual inserts
var userHashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		passwords := auth.NewPasswordManager(cfg.Security.BcryptCost)

		hash, err := passwords.HashPassword(args[0])
		if err != nil {
			return err
		}
		if err := passwords.VerifyPassword(args[0], hash); err != nil {
			return fmt.Errorf("hash verification failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func setRole(cmd *cobra.Command, email, role string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.Users.SetRole(cmd.Context(), email, role)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), u)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
	return nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userPromoteCmd, userDemoteCmd, userHashPasswordCmd)
}
