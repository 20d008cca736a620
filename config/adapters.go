package config

import (
	"os"
	"path/filepath"

	"picks-dashboard/database"
	"picks-dashboard/logging"
	"picks-dashboard/services"
)

// ToPostgresConfig converts Config to database.PostgresConfig
func (c *Config) ToPostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		URL: c.Store.PostgresURL,
	}
}

// ToMongoConfig converts Config to database.MongoConfig
func (c *Config) ToMongoConfig() database.MongoConfig {
	return database.MongoConfig{
		Host:     c.Store.MongoHost,
		Port:     c.Store.MongoPort,
		Username: c.Store.MongoUsername,
		Password: c.Store.MongoPassword,
		Database: c.Store.MongoDatabase,
	}
}

// ToSupabaseConfig converts Config to database.SupabaseConfig
func (c *Config) ToSupabaseConfig() database.SupabaseConfig {
	return database.SupabaseConfig{
		URL:     c.Store.SupabaseURL,
		Key:     c.Store.SupabaseKey,
		Timeout: c.Store.Timeout,
	}
}

// ToOpenOptions converts Config to the options database.Open selects a backend with
func (c *Config) ToOpenOptions() database.OpenOptions {
	return database.OpenOptions{
		Backend:  c.Store.Backend,
		Postgres: c.ToPostgresConfig(),
		Mongo:    c.ToMongoConfig(),
		Supabase: c.ToSupabaseConfig(),
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	config := logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
	if c.ShouldLogToFile() {
		config.FilePath = filepath.Join(c.GetLogDir(), "picks-dashboard.log")
	}
	return config
}

// ToDashboardConfig converts Config to services.DashboardConfig
func (c *Config) ToDashboardConfig() services.DashboardConfig {
	return services.DashboardConfig{
		Location:         c.Location(),
		Overshoot:        c.Dashboard.WindowOvershoot,
		DefaultTrendDays: c.Dashboard.DefaultTrendDays,
		HighConfidence:   c.Dashboard.HighConfidence,
		FetchTimeout:     c.Store.Timeout,
	}
}

// ShouldLogToFile returns whether file logging is enabled
func (c *Config) ShouldLogToFile() bool {
	return c.Logging.EnableFile
}

// GetLogDir returns the log directory path
func (c *Config) GetLogDir() string {
	return c.Logging.LogDir
}
