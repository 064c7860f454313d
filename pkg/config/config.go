// Package config loads service configuration from defaults, an optional
// YAML file, and environment variables, in that precedence order.
package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Runner  RunnerConfig  `koanf:"runner"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"             validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// RunnerConfig bounds the workflow executor pool.
type RunnerConfig struct {
	Executors int `koanf:"executors" validate:"gte=1,lte=64"`
}

// LoggingConfig mirrors the logger setup flags.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON   bool   `koanf:"json"`
	Source bool   `koanf:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5055,
			ShutdownTimeout: 10 * time.Second,
		},
		Runner: RunnerConfig{
			Executors: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
