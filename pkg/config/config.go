package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

type Config struct {
	Environment       string `mapstructure:"ENVIRONMENT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	RulesFile         string `mapstructure:"RULES_FILE"`
	Indent            *int   `mapstructure:"INDENT"`          // nil keeps the grammar value
	SimplifySpaces    *bool  `mapstructure:"SIMPLIFY_SPACES"` // nil keeps the grammar value
	Theme             string `mapstructure:"THEME"`
	HTTPServerAddress string `mapstructure:"HTTP_SERVER_ADDRESS"`
	MaxTextBytes      int64  `mapstructure:"MAX_TEXT_BYTES"`
	Workers           int    `mapstructure:"WORKERS"`
}

var defaults = map[string]any{
	"ENVIRONMENT":         EnvironmentProduction,
	"LOG_LEVEL":           "info",
	"RULES_FILE":          "",
	"THEME":               "dark",
	"HTTP_SERVER_ADDRESS": "0.0.0.0:8080",
	"MAX_TEXT_BYTES":      1 << 20,
	"WORKERS":             4,
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// keys without default are only known to Unmarshal once bound
	for _, key := range []string{"INDENT", "SIMPLIFY_SPACES"} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
	return v
}

// LoadConfig reads app.env from path, then environment variables. A missing
// app.env is not an error: defaults and the environment are used.
func LoadConfig(path string) (config Config, err error) {
	v := newViper()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("cannot decode config: %w", err)
	}
	return config, config.Validate()
}

// LoadConfigFile reads the given env file, then environment variables.
func LoadConfigFile(filename string) (config Config, err error) {
	v := newViper()
	v.SetConfigFile(filename)
	v.SetConfigType("env")

	if err = v.ReadInConfig(); err != nil {
		return config, fmt.Errorf("cannot read config file '%s': %w", filename, err)
	}
	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("cannot decode config file '%s': %w", filename, err)
	}
	return config, config.Validate()
}

// Validate checks values viper can't check by itself.
func (config Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(strings.ToLower(config.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q: %w", config.LogLevel, err))
	}
	if config.MaxTextBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TEXT_BYTES must be positive, got %d", config.MaxTextBytes))
	}
	if config.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", config.Workers))
	}
	return errors.Join(errs...)
}

// Level returns the zerolog level matching LOG_LEVEL, info when invalid.
func (config Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// IsDevelopment reports if logs should be human readable.
func (config Config) IsDevelopment() bool {
	return config.Environment == EnvironmentDevelopment
}
