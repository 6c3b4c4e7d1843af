package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mitjakurath/klar/internal/auth"
	"github.com/mitjakurath/klar/internal/config"
	"github.com/mitjakurath/klar/internal/handler"
	"github.com/mitjakurath/klar/internal/metrics"
	"github.com/mitjakurath/klar/internal/repository"
	"github.com/mitjakurath/klar/internal/service"
	"github.com/mitjakurath/klar/internal/token"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := repository.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	slog.Info("database ready")

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	providers := []auth.Provider{
		auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/api/auth/google/callback",
		}),
		auth.NewGitHub(auth.GitHubConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.BaseURL + "/api/auth/github/callback",
		}),
	}

	authSvc := service.NewAuthService(providers, userRepo, settingsRepo, tokens, cfg.RedirectURL)
	taskSvc := service.NewTaskService(taskRepo)
	sessionSvc := service.NewSessionService(sessionRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	loginLimiter := handler.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)
	defer loginLimiter.Stop()

	r := handler.NewRouter(handler.RouterConfig{
		Auth:              handler.NewAuthHandler(authSvc, collector),
		Tasks:             handler.NewTaskHandler(taskSvc),
		Sessions:          handler.NewSessionHandler(sessionSvc),
		Settings:          handler.NewSettingsHandler(settingsSvc),
		Tokens:            authSvc,
		Users:             userRepo,
		RequireActiveUser: cfg.RequireActiveUser,
		LoginLimiter:      loginLimiter,
		AllowedOrigin:     cfg.FrontendURL,
		Observe:           collector.Middleware(),
		Metrics:           metrics.Handler(registry),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
