package cli

import (
	"database/sql"
	"fmt"

	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/database"
	"github.com/themizzi/sitecheck/internal/repository"
	"go.uber.org/zap"
)

// Store is an open, migrated run store
type Store struct {
	DB   *sql.DB
	Runs *repository.RunRepository
}

// OpenStore connects to the configured run store and applies the schema
func OpenStore(cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	logger.Debug("run store ready", zap.String("driver", cfg.Driver))
	return &Store{
		DB:   db,
		Runs: repository.NewRunRepository(db),
	}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.DB.Close()
}
