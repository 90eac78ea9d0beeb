package config

import "time"

// ServerConfig holds report server configuration
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	return ServerConfig{
		Port:            envOrDefault(getenv, "PORT", "8080"),
		ShutdownTimeout: 30 * time.Second,
	}
}
