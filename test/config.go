package test

import (
	"github.com/kelseyhightower/envconfig"
)

// Config tunes the integration runs from the environment.
type Config struct {
	LogLevel string `envconfig:"INTEGRATION_LOG_LEVEL" default:"DEBUG"`
	// INTEGRATION_JOURNAL_LIMIT bounds how many journal entries the assertions read back
	JournalLimit int `envconfig:"INTEGRATION_JOURNAL_LIMIT" default:"10"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
