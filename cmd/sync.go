package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	syncService "github.com/frahmantamala/moola-sync/internal/sync"
)

var (
	syncFromDate      string
	syncAdvanceCursor bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync",
	Long:  `Runs one sync pass and exits. With --from-date it backfills from that date instead of the incremental window.`,
	Run: func(cmd *cobra.Command, args []string) {
		runOneShotSync()
	},
}

func runOneShotSync() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	ctx := context.Background()

	if syncFromDate != "" {
		from, err := time.Parse("2006-01-02", syncFromDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --from-date %q, expected YYYY-MM-DD\n", syncFromDate)
			os.Exit(1)
		}

		stats, err := deps.SyncService.RunFrom(ctx, from, syncAdvanceCursor)
		reportRun(stats, err)
		return
	}

	stats, err := deps.SyncService.Run(ctx)
	reportRun(stats, err)
}

func reportRun(stats *syncService.Stats, err error) {
	if err != nil && stats == nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(stats.Summary())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync finished with a fetch error: %v\n", err)
		os.Exit(1)
	}
}
