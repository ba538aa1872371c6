// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	DBMaxOpenConns      int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns      int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime   time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	Environement        string        `mapstructure:"GO_ENV"`
	Storage             string        `mapstructure:"STORAGE"`
	RedisAddress        string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int           `mapstructure:"REDIS_DB"`
	ReconciliationQueue string        `mapstructure:"RECONCILIATION_QUEUE"`
	SeedUsers           []string      `mapstructure:"SEED_USERS"`
}

var defaults = map[string]any{
	"DB_DRIVER":            "postgres",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": 5 * time.Minute,
	"SERVER_ADDRESS":       "0.0.0.0:8080",
	"GO_ENV":               "production",
	"STORAGE":              StoragePostgres,
	"REDIS_DB":             0,
	"RECONCILIATION_QUEUE": "ledger:reconciliation",
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
