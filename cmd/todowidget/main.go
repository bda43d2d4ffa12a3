// todowidget is the backend of the desktop todo widget: it owns the
// PostgreSQL connection and serves the widget's commands over local HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
	"github.com/Kerhoff/TodoWidget/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todowidget",
		Short: "Daily and midterm todos backed by PostgreSQL",
		Long: `todowidget keeps daily todos and date-range goals in PostgreSQL and
exposes them to the desktop widget over a local HTTP API.

Connection settings are read from db-config.json in the data directory,
falling back to DB_* environment variables (or a .env file).`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-dir", "", "directory for app-YYYY-MM-DD.log files")
	root.PersistentFlags().String("data-dir", "", "directory holding db-config.json")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newDBCmd())
	return root
}

// app bundles what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	store   *config.ConnectionStore
	manager *database.Manager
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l := logger.New(cfg.LogLevel)
	store := config.NewConnectionStore(cfg.ConnectionFile(), l)
	return &app{
		cfg:     cfg,
		logger:  l,
		store:   store,
		manager: database.NewManager(store, l),
	}, nil
}

// rebind switches the app to a different logger, rebuilding what holds one.
func (a *app) rebind(l *logrus.Logger) {
	a.logger = l
	a.store = config.NewConnectionStore(a.cfg.ConnectionFile(), l)
	a.manager = database.NewManager(a.store, l)
}
