// Command finman serves the personal finance API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finman/internal/auth"
	"finman/internal/backend"
	"finman/internal/cli"
	"finman/internal/config"
	apphttp "finman/internal/http"
	applog "finman/internal/log"
	"finman/internal/services"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateServer)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	b, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to release backend", applog.FieldError, err)
		}
	}()

	clock := services.Clock(cfg.Clock())
	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, clock)
	if err != nil {
		return err
	}

	categories := services.NewCategoryService(b.Store)
	seeded, err := categories.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	logger.Info("Default categories ready", applog.FieldOperation, applog.OpSeed, "inserted", seeded)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Now:                clock,
	}, apphttp.Services{
		Store:        b.Store,
		Users:        services.NewUserService(b.Store, auth.NewHasher(bcrypt.DefaultCost), tokens, clock),
		Categories:   categories,
		Transactions: services.NewTransactionService(b.Store, b.Publisher, clock),
		Goals:        services.NewGoalService(b.Store, clock),
		Reports:      services.NewReportService(b.Store),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finman server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", b.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
