// Command datavista runs the Data Vista API and its maintenance tasks.
//
//	datavista serve              # HTTP on APP_PORT, gRPC health on GRPC_PORT
//	datavista migrate            # apply pending SQL migrations / ensure Mongo indexes
//	datavista migrate:rollback
//	datavista migrate:status
//	datavista seed               # administrator + sample catalog
//	datavista route:list
//	datavista user:create-admin --email ops@example.com --password ...
//	datavista queue:work         # process queued jobs (QUEUE_DRIVER=redis)
//	datavista queue:failed
//	datavista queue:retry <id>
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitthalk15/DataDash/config"
	"github.com/vitthalk15/DataDash/internal/app"
)

var configFiles []string

var rootCmd = &cobra.Command{
	Use:           "datavista",
	Short:         "Data Vista order management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil,
		"config files to merge (default config/app.json and .env)")

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(queueRetryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, then installs the
// logger. The returned func flushes the log sink.
func loadConfig(ctx context.Context) (*config.Config, func(), error) {
	cfg, err := config.Load(configFiles...)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	flush := app.SetupLogging(ctx, cfg)
	return cfg, func() { _ = flush(context.Background()) }, nil
}
