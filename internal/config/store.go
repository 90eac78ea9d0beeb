package config

import (
	"fmt"
)

// Run store drivers
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// StoreConfig selects where run records are persisted
type StoreConfig struct {
	Driver string
	DSN    string
}

// PostgresConfig holds configuration for PostgreSQL database connection
type PostgresConfig struct {
	User     string
	Password string
	Database string
	Host     string
}

// LoadStoreConfig loads the run store configuration from environment variables.
// The store defaults to a local sqlite file; postgres without an explicit DSN
// is assembled from the POSTGRES_* variables.
func LoadStoreConfig(getenv func(string) string) (StoreConfig, error) {
	config := StoreConfig{
		Driver: envOrDefault(getenv, "SITECHECK_STORE_DRIVER", StoreDriverSQLite),
		DSN:    getenv("SITECHECK_STORE_DSN"),
	}

	switch config.Driver {
	case StoreDriverSQLite:
		if config.DSN == "" {
			config.DSN = "sitecheck.db"
		}
	case StoreDriverPostgres:
		if config.DSN == "" {
			pgConfig, err := LoadPostgresConfig(getenv)
			if err != nil {
				return config, fmt.Errorf("failed to load postgres config: %w", err)
			}
			config.DSN = pgConfig.ConnectionString()
		}
	default:
		return config, fmt.Errorf("unsupported store driver %q", config.Driver)
	}

	return config, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(getenv func(string) string) (*PostgresConfig, error) {
	config := &PostgresConfig{
		User:     getenv("POSTGRES_USER"),
		Password: getenv("POSTGRES_PASSWORD"),
		Database: getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOSTNAME"),
	}

	// Validate required fields
	if config.User == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if config.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("POSTGRES_HOSTNAME is required")
	}

	return config, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Database)
}
