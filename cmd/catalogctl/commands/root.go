// cmd/catalogctl/commands/root.go
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

var (
	// Global flags
	driver     string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operational tooling for the e-commerce core",
	Long: `catalogctl runs maintenance tasks against the configured store.

It reads the same environment (and .env file) as the API server, so it
operates on exactly the data the server sees.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Override DB_DRIVER (postgres, mongo, memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if driver != "" {
		cfg.Database.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	cfg.Logging.Level = "warn"
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, logger.New(cfg.Logging), nil
}

// openApp wires the application without starting the HTTP server
func openApp() (*app.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
