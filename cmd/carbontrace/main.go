// carbontrace is the command line interface to the emission audit pipeline:
// run audits over CSV files, generate synthetic datasets, and serve the
// HTTP API.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/carbontrace/carbontrace/internal/config"
	"github.com/carbontrace/carbontrace/internal/logging"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "carbontrace",
		Short: "Carbon emission audit pipeline",
		Long: `carbontrace cleans factory production data, accumulates per-factory
emissions against sector caps, and reports WARN/BREACH alerts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; environment variables win otherwise.
			_ = godotenv.Overload()

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
