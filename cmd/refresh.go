package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sportzvillage/svassist/internal/indexer"
	"github.com/sportzvillage/svassist/internal/progress"
)

var (
	refreshWatch    bool
	refreshDocs     bool
	refreshDebounce time.Duration
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the semantic cache from the text tables",
	Long: `Drops and re-indexes the timetables, lessons and props collections
from the pipe-delimited table files. With --docs the official
documentation is re-indexed too. With --watch the command keeps
running and refreshes automatically whenever a table file changes.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshWatch, "watch", false, "keep running and refresh on table file changes")
	refreshCmd.Flags().BoolVar(&refreshDocs, "docs", false, "also re-index the official documentation")
	refreshCmd.Flags().DurationVar(&refreshDebounce, "debounce", 2*time.Second, "delay between a table change and the refresh it triggers")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	steps := []string{"Table collections"}
	if refreshDocs {
		steps = append(steps, "Documentation")
	}
	reporter := progress.New()
	reporter.Begin(steps)

	ok := s.refresher.Refresh(ctx)
	reporter.Step("Table collections rebuilt")

	if refreshDocs {
		if err := s.docs.IndexAll(ctx); err != nil {
			reporter.Done()
			return fmt.Errorf("indexing documentation: %w", err)
		}
		reporter.Step("Documentation indexed")
	}
	reporter.Done()

	if !ok {
		fmt.Fprintln(os.Stderr, "Refresh completed with errors; some collections may be stale.")
	} else {
		fmt.Println("Cache refreshed.")
	}

	if !refreshWatch {
		return nil
	}

	watcher := indexer.NewWatcher(s.cfg.TablesDir, s.refresher, refreshDebounce, s.log)
	fmt.Printf("Watching %s for changes (Ctrl-C to stop)...\n", s.cfg.TablesDir)
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
