// internal/config/env.go
package config

import (
	"os"
	"strconv"
)

// LoadFromEnv applies environment-variable overrides on top of the
// loaded configuration.
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("VITALGRAPH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if logLevel := os.Getenv("VITALGRAPH_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}

	if host := os.Getenv("VITALGRAPH_DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("VITALGRAPH_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if name := os.Getenv("VITALGRAPH_DB_NAME"); name != "" {
		cfg.Database.Database = name
	}
	if user := os.Getenv("VITALGRAPH_DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("VITALGRAPH_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if addr := os.Getenv("VITALGRAPH_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	if endpoint := os.Getenv("VITALGRAPH_INSIGHTS_ENDPOINT"); endpoint != "" {
		cfg.Insights.Endpoint = endpoint
	}
}

// GetEnvOrDefault returns an environment variable or a default value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
