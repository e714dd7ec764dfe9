package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sportzvillage/svassist/internal/db"
	"github.com/sportzvillage/svassist/internal/indexer"
	"github.com/sportzvillage/svassist/internal/server"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the svassist HTTP API",
	Long: `Serves search, cache refresh, chat logging, activity tracking and
analytics over HTTP. With --watch the table directory is watched and
the cache refreshed automatically on changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "refresh the cache when table files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	port := servePort
	if port == 0 {
		port = s.cfg.Server.Port
	}

	activity, err := db.Open(filepath.Join(s.cfg.DataDir, "svassist.db"))
	if err != nil {
		return fmt.Errorf("opening activity store: %w", err)
	}
	defer activity.Close()

	srv := server.New(server.Config{
		Port:     port,
		AllowAll: s.cfg.Server.AllowAll,
	}, s.engine, s.refresher, s.chatLog, activity, s.tiers, s.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		watcher := indexer.NewWatcher(s.cfg.TablesDir, s.refresher, 0, s.log)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("table watcher stopped", "err", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown", "err", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
