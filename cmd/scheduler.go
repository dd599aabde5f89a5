package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/moola-sync/internal"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the periodic sync scheduler",
	Long:  `Runs incremental syncs on the configured cron schedule until interrupted`,
	Run: func(cmd *cobra.Command, args []string) {
		startScheduler()
	},
}

func startScheduler() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	schedule := deps.Config.Sync.Schedule
	if schedule == "" {
		schedule = internal.DefaultSyncSchedule
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		ctx := context.Background()
		stats, err := deps.SyncService.Run(ctx)
		if err != nil {
			// scheduled runs never propagate errors, the run log and the
			// next tick take care of it
			deps.Logger.Error("moola sync: scheduled run failed", "error", err)
			return
		}
		deps.Logger.Info("moola sync: scheduled run done", "summary", stats.Summary())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid sync schedule %q: %v\n", schedule, err)
		os.Exit(1)
	}

	deps.Logger.Info("starting sync scheduler", "schedule", schedule)
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	deps.Logger.Info("received signal, stopping scheduler", "signal", sig)
	<-c.Stop().Done()

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close error", "error", err)
	}
}
