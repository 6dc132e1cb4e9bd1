// Command finmanctl runs maintenance tasks against the finman store:
// migrations, category seeding and report computation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finman/internal/cli"
	"finman/internal/config"
	applog "finman/internal/log"

	"github.com/spf13/cobra"
)

type app struct {
	cfg    *config.Config
	logger *applog.Logger

	backend  string
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "finmanctl",
		Short: "Maintenance commands for the finman ledger",
		Long: `finmanctl operates directly on the configured finman store.

Configuration is read from the environment (and a local .env file);
flags override the storage settings.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.backend, "backend", "", "data backend (sqlite, postgres, memory)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.seedCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.exportCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cmd.Flags().Changed("backend") {
		cfg.DataBackend = a.backend
	}
	if cmd.Flags().Changed("db") {
		cfg.SQLiteDBPath = a.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	a.logger = cli.SetupLogger(applog.ComponentApp, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cli.LoadEnvFile()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
