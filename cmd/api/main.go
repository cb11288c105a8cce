package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"design-pro/internal/config"
	"design-pro/internal/database"
	"design-pro/internal/repository/postgres"
	"design-pro/internal/router"
	"design-pro/internal/service"
	"design-pro/internal/storage"
	"design-pro/pkg/logger"
)

func main() {
	// config + logger
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("prod")
		boot.Fatal().Err(err).Msg("invalid config")
	}
	l := logger.New(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// db
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			l.Fatal().Err(err).Msg("migrations failed")
		}
	}

	// attachments
	store, err := storage.NewMinioStore(cfg.Minio)
	if err != nil {
		l.Fatal().Err(err).Msg("object store config")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		l.Fatal().Err(err).Msg("object store unavailable")
	}

	deps := router.Deps{
		Users:      postgres.NewUserRepo(pool),
		Categories: postgres.NewCategoryRepo(pool),
		Requests:   postgres.NewRequestRepo(pool),
		Store:      store,
		DB:         pool,
	}

	admin, err := service.NewAuthService(deps.Users, cfg.SessionSecret, cfg.SessionTTL, l).
		EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
	if err != nil {
		l.Fatal().Err(err).Msg("admin bootstrap failed")
	}
	l.Info().Str("admin", admin.Username).Msg("admin account ready")

	// http
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(l, cfg, deps),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}
