// Package common provides shared dependency construction for commands.
package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/foerderdata/fundwatch/internal/config"
	"github.com/foerderdata/fundwatch/internal/database"
	"github.com/foerderdata/fundwatch/internal/logger"
)

// CommandDeps bundles the dependencies every command needs.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads the configuration and creates the logger.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &CommandDeps{Config: cfg, Logger: log}, nil
}

// Storage bundles the persistent stores over one database connection.
type Storage struct {
	DB       *sqlx.DB
	Versions *database.VersionStore
	Runs     *database.RunRepository
}

// OpenStorage connects to PostgreSQL and ensures the schema exists.
func OpenStorage(ctx context.Context, deps *CommandDeps) (*Storage, error) {
	db, err := database.NewPostgresConnection(deps.Config.Database)
	if err != nil {
		return nil, err
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{
		DB:       db,
		Versions: database.NewVersionStore(db),
		Runs:     database.NewRunRepository(db),
	}, nil
}

// Close releases the database connection.
func (s *Storage) Close() error {
	return s.DB.Close()
}
