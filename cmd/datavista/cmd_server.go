package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitthalk15/DataDash/database/migrations"
	"github.com/vitthalk15/DataDash/internal/app"
	"github.com/vitthalk15/DataDash/internal/server"
	grpcserver "github.com/vitthalk15/DataDash/pkg/grpc"
	"github.com/vitthalk15/DataDash/pkg/logger"
)

var (
	serveMigrate     bool
	serveEnsureAdmin bool
)

// datavista serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the gRPC health server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, flush, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		defer flush()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
			defer cancel()
			if err := a.Close(closeCtx); err != nil {
				logger.Error("serve: close", "error", err)
			}
		}()

		if serveMigrate && a.DB != nil {
			if _, err := migrations.Runner(a.DB, os.Stdout).Run(); err != nil {
				return err
			}
		}
		if serveEnsureAdmin {
			if err := a.EnsureAdmin(ctx); err != nil {
				return err
			}
		}

		h, err := a.Handler()
		if err != nil {
			return err
		}
		a.Start(ctx)

		logger.Info("serve: starting", "app", cfg.App.Name, "env", cfg.App.Env, "store", cfg.Store.Driver)
		srv := server.New(h, grpcserver.New(a.Store, 10*time.Second))
		return srv.ListenAndServe(ctx, cfg.Addr(), ":"+cfg.GRPC.Port)
	},
}

// datavista route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, flush, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		defer flush()

		// Routes do not depend on the backends, so list them offline.
		cfg.Store.Driver = "memory"
		cfg.Queue.Driver = "memory"
		cfg.Cache.Driver = "memory"
		cfg.Kafka.Brokers = ""

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		r, err := a.Router()
		if err != nil {
			return err
		}
		routes := r.Routes()
		if len(routes) == 0 {
			fmt.Println("No routes registered.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending SQL migrations before serving")
	serveCmd.Flags().BoolVar(&serveEnsureAdmin, "ensure-admin", false, "create the ADMIN_EMAIL account when missing")
}
