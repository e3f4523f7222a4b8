// Package cli wires application dependencies for the featgate commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/bnema/featgate/internal/application/port"
	"github.com/bnema/featgate/internal/application/usecase"
	"github.com/bnema/featgate/internal/config"
	"github.com/bnema/featgate/internal/infrastructure/dialog"
	"github.com/bnema/featgate/internal/infrastructure/manifest"
	"github.com/bnema/featgate/internal/infrastructure/persistence/jsonfile"
	"github.com/bnema/featgate/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/featgate/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config   *config.Config
	Catalog  port.FeatureCatalog
	Registry *usecase.FeatureAccessRegistry

	db  *sql.DB
	ctx context.Context
}

// NewApp creates a new CLI application with all dependencies.
// The presenter gates interactive confirmation; commands that must not
// prompt pass a scripted one.
func NewApp(presenter port.ConfirmationPresenter) (*App, error) {
	cfg := loadConfig()

	logLevel := cfg.Logging.Level
	if envLevel := os.Getenv("FEATGATE_LOG_LEVEL"); envLevel != "" {
		logLevel = envLevel
	}
	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(logLevel),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	})
	ctx := logging.WithContext(context.Background(), logger)

	manifestDirs, err := cfg.ManifestDirs()
	if err != nil {
		return nil, fmt.Errorf("resolve manifest dirs: %w", err)
	}
	catalog, err := manifest.LoadDirs(ctx, manifestDirs)
	if err != nil {
		return nil, fmt.Errorf("load feature manifests: %w", err)
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}

	app := &App{Config: cfg, Catalog: catalog, ctx: ctx}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.NewConnection(ctx, storePath)
		if err != nil {
			return nil, fmt.Errorf("open profile database: %w", err)
		}
		app.db = db
		app.Registry, err = usecase.NewFeatureAccessRegistry(ctx, sqlite.NewProfileStore(db), catalog, presenter)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	default:
		app.Registry, err = usecase.NewFeatureAccessRegistry(ctx, jsonfile.NewStore(storePath), catalog, presenter)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("backend", cfg.Storage.Backend).
		Str("store_path", storePath).
		Msg("feature access registry ready")
	return app, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.Registry != nil {
		a.Registry.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// DefaultPresenter returns the interactive terminal presenter.
func DefaultPresenter() port.ConfirmationPresenter {
	return dialog.Terminal{}
}

// loadConfig loads configuration from standard locations.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Fall back to defaults when the config file is unusable.
		return config.Default()
	}
	return cfg
}
