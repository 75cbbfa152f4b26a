package command

import (
	"Chest/internal/config"
	"Chest/internal/handlers"
	"Chest/internal/logger"
	"Chest/internal/middleware"
	"Chest/internal/repo"
	"Chest/internal/service"
	"Chest/internal/telemetry"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName     = "chest"
	shutdownTimeout = 10 * time.Second
	limiterCleanup  = time.Minute
)

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

// NewServices связывает репозитории и сервисы поверх одного пула соединений.
func NewServices(db *gorm.DB, cfg *config.Config, sugar *zap.SugaredLogger) handlers.Services {
	tx := repo.NewTxManager(db)
	partnerRepo := repo.NewPartnerRepository(db)
	profileRepo := repo.NewProfileRepository(db)
	eventRepo := repo.NewEventRepository(db)

	partners := service.NewPartnerService(partnerRepo, profileRepo, tx, sugar)
	profiles := service.NewProfileService(profileRepo, partners, tx, sugar)

	return handlers.Services{
		Partners: partners,
		Profiles: profiles,
		Events:   service.NewEventService(eventRepo, partnerRepo, profiles, tx, sugar),
		Shares:   service.NewShareService(repo.NewShareLinkRepository(db), eventRepo, tx, sugar),
		Accounts: service.NewAccountService(repo.NewAccountRepository(db), tx, sugar),
		Stats:    service.NewStatsService(repo.NewStatsRepository(db), cfg.StatsCacheTTL, sugar),
		Ping: func(ctx context.Context) error {
			return repo.Ping(ctx, db)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	sugar, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() { _ = sugar.Sync() }()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		sugar.Warnw("tracing disabled", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			sugar.Errorw("failed to flush traces", "error", err)
		}
	}()

	db, err := repo.InitDB(cfg.DatabaseDSN, sugar)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(db); err != nil {
			sugar.Errorw("failed to close database", "error", err)
		}
	}()

	h := handlers.NewHandler(NewServices(db, cfg, sugar), sugar, cfg)
	go h.Limiter.RunCleanup(ctx, limiterCleanup)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"Dialect", repo.DialectFromDSN(cfg.DatabaseDSN),
		"CORSOrigins", cfg.CORSOrigins,
		"ShareRateLimit", cfg.ShareRateLimit,
		"StatsCacheTTL", cfg.StatsCacheTTL,
		"Tracing", cfg.OTELEndpoint != "",
	)

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sugar.Infow("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
