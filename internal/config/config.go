// Package config reads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the settings of the service and its command line tools.
type Config struct {
	Port       int    `env:"PORT"        envDefault:"8080"`
	DBDriver   string `env:"DBDRIVER"    envDefault:"sqlite"`
	DBHost     string `env:"DBHOST"      envDefault:"localhost:3306"`
	DBUser     string `env:"DBUSER"`
	DBPwd      string `env:"DBPWD"`
	DBName     string `env:"DBNAME"      envDefault:"test"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"jobapp-helper.db"`
	GinLogging string `env:"GIN_LOGGING"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT"  envDefault:"text"`
	ServiceURL string `env:"SERVICE_URL" envDefault:"http://localhost:8080"`
}

// Load reads the given .env files (".env" when none are given) into the environment, then parses
// the environment. Missing .env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverMySQL {
		return Config{}, fmt.Errorf("unsupported DBDRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", c.DBUser, c.DBPwd, c.DBHost, c.DBName)
	}
	return c.SQLitePath
}
