// cmd/catalogctl/commands/migrate.go
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database"
)

var (
	// Migrate flags
	seed          bool
	adminEmail    string
	adminPassword string
)

// migrateCmd brings the schema and indexes up to date
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables, sequences and indexes",
	Long: `Create or update the storage schema for the configured driver.

Examples:
  catalogctl migrate                                # Apply schema
  catalogctl migrate --seed                         # Apply schema and seed root categories
  catalogctl migrate --seed --admin-email a@b.com   # Seed with a specific admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Stores.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", a.Stores.Driver)

		if !seed {
			return nil
		}
		email, password := a.Config.Seed.AdminEmail, a.Config.Seed.AdminPassword
		if adminEmail != "" {
			email = adminEmail
		}
		if adminPassword != "" {
			password = adminPassword
		}
		if err := a.Stores.Seed(email, password); err != nil {
			if errors.Is(err, database.ErrSeedUnsupported) {
				return fmt.Errorf("driver %s does not support seeding", a.Stores.Driver)
			}
			return fmt.Errorf("seeding failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seed data applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&seed, "seed", false, "Seed root categories and an admin user")
	migrateCmd.Flags().StringVar(&adminEmail, "admin-email", "", "Admin email (defaults to SEED_ADMIN_EMAIL)")
	migrateCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Admin password (defaults to SEED_ADMIN_PASSWORD)")
}
