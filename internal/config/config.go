package config

import "time"

// Supported database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres mongodb"`
	// URL is the connection string; unused by the memory driver.
	URL string `mapstructure:"url" validate:"required_unless=Driver memory"`
	// Name selects the MongoDB database.
	Name            string        `mapstructure:"name" validate:"required_if=Driver mongodb"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// EngineConfig contains settings of the assignment service.
type EngineConfig struct {
	// CascadeUserRename rewrites the cached owner name on a user's tasks when
	// the user is renamed.
	CascadeUserRename bool `mapstructure:"cascade_user_rename"`
	// OperationTimeout bounds one engine operation, all of its store calls included.
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"gt=0"`
}
