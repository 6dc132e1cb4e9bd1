package backend

import (
	"context"
	"fmt"

	"finman/internal/amqp"
	"finman/internal/config"
	applog "finman/internal/log"
	"finman/internal/services"
	"finman/internal/sheets"
	gsheet "finman/internal/sheets/google"
	sheetsmem "finman/internal/sheets/memory"
	"finman/internal/storage"
	"finman/internal/storage/memory"
)

// Factory creates backends based on configuration
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.Default(applog.ComponentBackend)
	}
	return &Factory{logger: logger}
}

// Open builds the store, the optional AMQP publisher and the report
// exporter. On failure everything opened so far is closed again.
func (f *Factory) Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	b := &Backend{}
	store, err := f.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.Store = store
	b.onClose(store.Close)

	if client := f.openPublisher(cfg); client != nil {
		b.Publisher = client
		b.onClose(client.Close)
	}

	exporter, err := f.OpenExporter(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Exporter = exporter

	return b, nil
}

// OpenStore opens the configured data backend.
func (f *Factory) OpenStore(ctx context.Context, cfg *config.Config) (services.Store, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		store, err := storage.OpenSQLite(ctx, cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return store, nil
	case config.BackendPostgres:
		store, err := storage.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized PostgreSQL backend")
		return store, nil
	case config.BackendMemory:
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

// openPublisher connects to the broker when AMQP_URL is set. A broker that
// cannot be reached disables events instead of failing startup.
func (f *Factory) openPublisher(cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		f.logger.Info("AMQP disabled - ledger events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", applog.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// OpenExporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory exporter otherwise.
func (f *Factory) OpenExporter(ctx context.Context, cfg *config.Config) (sheets.ReportExporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		f.logger.InfoContext(ctx, "Google Sheets disabled - reports are kept in memory")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return client, nil
}
