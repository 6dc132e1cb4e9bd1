// Command finman-worker consumes ledger events and re-exports the monthly
// report each event touches.
package main

import (
	"context"
	"errors"
	"os"

	"finman/internal/amqp"
	"finman/internal/backend"
	"finman/internal/cli"
	"finman/internal/config"
	applog "finman/internal/log"
	"finman/internal/services"
	"finman/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting finman-worker", applog.FieldOperation, applog.OpStartup)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend))
	store, err := factory.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	exporter, err := factory.OpenExporter(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	reports := worker.NewReportWorker(services.NewReportService(store), exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeLedgerEvents(gctx, reports.HandleLedgerEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
