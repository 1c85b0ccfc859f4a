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

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/killallgit/textcast/api"
	"github.com/killallgit/textcast/api/types"
	"github.com/killallgit/textcast/internal/services/cleanup"
	"github.com/killallgit/textcast/internal/services/feed"
	"github.com/killallgit/textcast/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the textcast server",
	Long: `Start the textcast HTTP server with the configured settings.

The server publishes the podcast feed and episode audio, and exposes an
admin API for creating, listing and deleting episodes.

Example:
  textcast serve
  textcast serve --port 9090
  textcast serve --host 127.0.0.1 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := *appConfig
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	if err := os.MkdirAll(cfg.Storage.AudioDir, 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.MetadataFile), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}

	unlock, err := acquireInstanceLock(cfg.Storage.MetadataFile)
	if err != nil {
		return err
	}
	defer unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, &cfg)
}

// acquireInstanceLock refuses to run a second server against the same
// metadata file.
func acquireInstanceLock(metadataFile string) (func(), error) {
	lockPath := metadataFile + ".instance"
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another textcast server is already using %s", metadataFile)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			log.Warn("failed to release instance lock", "path", lockPath, "error", err)
		}
	}, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	store := newStore(cfg, true)
	defer store.Wait()

	if report, err := store.VerifyIntegrity(ctx); err != nil {
		return err
	} else if !report.Valid {
		log.Warn("integrity issues at startup", "missing", len(report.MissingFiles), "orphaned", len(report.OrphanedFiles))
	}

	synth, ready := newSynthesizer(ctx, cfg)
	synthSvc, err := newSynthesisService(cfg, synth)
	if err != nil {
		return err
	}

	feedSvc, feedCache := newFeedService(cfg, store)
	defer feedCache.Stop()
	store.OnChange(feedSvc.Invalidate)

	if cfg.Feed.WatchMetadata {
		watcher, err := feed.NewWatcher(cfg.Storage.MetadataFile, 250*time.Millisecond, feedSvc.Invalidate)
		if err != nil {
			log.Warn("metadata watcher disabled", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	sweeper := cleanup.NewService(cfg.Storage.AudioDir, cfg.Storage.MetadataFile, cfg.Storage.TempMaxAge, cfg.Storage.CleanupInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := api.NewServer(cfg)
	server.SetDependencies(&types.Dependencies{
		Store:          store,
		Feed:           feedSvc,
		Synthesizer:    synthSvc,
		SynthesisReady: ready,
		Version:        Version,
	})
	if err := server.Initialize(); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info("textcast server started",
		"addr", server.Addr(),
		"feed", feedSvc.Metadata().FeedURL(),
		"synthesis", ready)

	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case err := <-serverErr:
		log.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server gracefully stopped")
	return nil
}
