// Package config assembles service configuration from environment
// variables with sane defaults, optionally overridden by a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the full draftd configuration.
type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	DB    DBConfig    `yaml:"db"`
	NATS  NATSConfig  `yaml:"nats"`
	Draft DraftConfig `yaml:"draft"`
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// NATSConfig holds the message bus settings.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// DraftConfig holds draft domain defaults.
type DraftConfig struct {
	DefaultPickTimerSec int `yaml:"default_pick_timer_sec"`
}

// FromEnv reads configuration from environment variables with defaults.
func FromEnv() Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		dbPort = 5432
	}
	timer, err := strconv.Atoi(getEnv("DRAFT_PICK_TIMER_SEC", "90"))
	if err != nil {
		timer = 90
	}

	return Config{
		HTTP: HTTPConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "draftroom"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Draft: DraftConfig{
			DefaultPickTimerSec: timer,
		},
	}
}

// Load returns the env config, overlaid with the YAML file at path when
// path is non-empty. Fields absent from the file keep their env values.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection URL.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
