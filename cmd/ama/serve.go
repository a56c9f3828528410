package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/hwetherall/innovera-ama/internal/answers"
	"github.com/hwetherall/innovera-ama/internal/askanything"
	"github.com/hwetherall/innovera-ama/internal/auth"
	"github.com/hwetherall/innovera-ama/internal/config"
	"github.com/hwetherall/innovera-ama/internal/conversations"
	"github.com/hwetherall/innovera-ama/internal/ingest"
	"github.com/hwetherall/innovera-ama/internal/logging"
	"github.com/hwetherall/innovera-ama/internal/server"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
	"github.com/hwetherall/innovera-ama/internal/tagging"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServer(cmd, cfg)
		},
	}
}

func runServer(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password must be set before serving")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key must be set before serving (or export OPENROUTER_API_KEY)")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// One server per data directory; a second instance exits early instead of
	// fighting over the sqlite file.
	lock := flock.New(cfg.LockFilePath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another instance is already running (lock %s)", cfg.LockFilePath())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gateway := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})

	generator := answers.NewGenerator(st, gateway, logger, time.Duration(cfg.LLM.AnswerTimeoutSeconds)*time.Second)
	ingestor := ingest.NewIngestor(st, generator, logger)
	creator := conversations.NewCreator(st, tagging.NewReconciler(st, logger), gateway, logger)
	answerer := askanything.NewAnswerer(st, gateway, logger)

	ttl := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	var sessions auth.SessionStore
	if cfg.Auth.SessionStore == "database" {
		sessions = auth.NewDBStore(st, ttl)
		go purgeAdminSessions(signalCtx, st, logger)
	} else {
		sessions = auth.NewMemoryStore(ttl)
	}

	srv := server.New(cfg, st, sessions, ingestor, creator, answerer, logger)
	if err := srv.Start(signalCtx); err != nil {
		return err
	}
	defer srv.Stop()

	if cfg.Paths.IngestDir != "" {
		watcher := ingest.NewWatcher(cfg.Paths.IngestDir, ingestor, logger)
		go func() {
			if err := watcher.Run(signalCtx); err != nil && signalCtx.Err() == nil {
				logger.Error("ingest watcher stopped", logging.Error(err))
			}
		}()
	}

	<-signalCtx.Done()
	logger.Info("shutting down")
	return nil
}

// purgeAdminSessions sweeps expired login tokens hourly. Lookups already evict
// expired rows; this keeps abandoned tokens from accumulating.
func purgeAdminSessions(ctx context.Context, st *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := st.PurgeExpiredAdminSessions(ctx)
			if err != nil {
				logger.Warn("purge admin sessions", logging.Error(err))
				continue
			}
			if purged > 0 {
				logger.Info("purged admin sessions", slog.Int64("purged", purged))
			}
		}
	}
}
