package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openparish/steptrack/internal/service"
	"github.com/openparish/steptrack/internal/store"
	"github.com/openparish/steptrack/internal/store/drivers/sqlite"
	"github.com/openparish/steptrack/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the store and services together for the CLI entry
// point. The services are the system; the CLI only translates argv into
// operation calls.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	accounts *service.AccountService
	sessions *service.SessionContext
	students *service.StudentService
	reports  *service.ReportService
}

// New initializes the application: logger, database, migrations, services
// and (when configured) the initial admin account.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "steptrack",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initServices()

	if cfg.BootstrapUsername != "" && cfg.BootstrapPassword != "" {
		created, err := app.accounts.Bootstrap(context.Background(), cfg.BootstrapUsername, cfg.BootstrapPassword)
		if err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			app.logger.Info("initial admin account provisioned", "username", cfg.BootstrapUsername)
		}
	}

	return app, nil
}

// Close releases the database.
func (app *Application) Close() error {
	return app.db.Close()
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.accounts = service.NewAccountService(app.db)
	app.sessions = service.NewSessionContext(app.accounts)
	app.students = &service.StudentService{Store: app.db}
	app.reports = &service.ReportService{Store: app.db}
}
