package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitthalk15/DataDash/internal/app"
	"github.com/vitthalk15/DataDash/pkg/logger"
)

var queueWorkersFlag int

func bootApp(ctx context.Context) (*app.App, func(), error) {
	cfg, flush, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		flush()
		return nil, nil, err
	}
	return a, func() {
		_ = a.Close(context.Background())
		flush()
	}, nil
}

// datavista queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, done, err := bootApp(ctx)
		if err != nil {
			return err
		}
		defer done()

		if a.Config.Queue.Driver == "memory" {
			logger.Warn("queue:work: QUEUE_DRIVER=memory only sees jobs dispatched by this process")
		}
		workers := queueWorkersFlag
		if workers < 1 {
			workers = a.Config.Queue.Workers
		}
		if workers < 1 {
			workers = 1
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		a.Queue.Work(ctx, workers)
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// datavista queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, done, err := bootApp(ctx)
		if err != nil {
			return err
		}
		defer done()

		failed, err := a.Queue.Failed().List(ctx)
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			fmt.Println("No failed jobs.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tATTEMPTS\tFAILED AT\tERROR")
		for _, j := range failed {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", j.ID, j.Type, j.Attempts, j.FailedAt.Format("2006-01-02 15:04:05"), j.Error)
		}
		return w.Flush()
	},
}

// datavista queue:retry <id>
var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry <id>",
	Short: "Push a failed job back onto the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, done, err := bootApp(ctx)
		if err != nil {
			return err
		}
		defer done()

		if err := a.Queue.Retry(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Job %s queued again.\n", args[0])
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "concurrent workers (default QUEUE_WORKERS)")
}
