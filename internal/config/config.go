// Package config provides Viper-based configuration loading for the item
// converter.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Source formats understood by the converter.
const (
	FormatMMOItems   = "mmoitems"
	FormatItemsAdder = "itemsadder"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ConvertConfig holds conversion run settings.
type ConvertConfig struct {
	// Format is the source schema: "mmoitems" or "itemsadder".
	Format string `mapstructure:"format"`
	// Workers bounds parallel item translation. 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// ScriptFile is an optional Lua classifier script.
	ScriptFile string `mapstructure:"script_file"`
	// ScriptInstructionLimit caps opcodes per classify call. 0 uses the
	// scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// PathsConfig holds the input and output directories.
type PathsConfig struct {
	Source string `mapstructure:"source"`
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration. The mapping sections
// of the same document are read by mapping.FromViper.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Convert ConvertConfig `mapstructure:"convert"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateConvert(c.Convert); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateConvert(c ConvertConfig) error {
	var errs []string
	if c.Format != FormatMMOItems && c.Format != FormatItemsAdder {
		errs = append(errs, fmt.Sprintf("convert.format must be one of [%s, %s], got %q", FormatMMOItems, FormatItemsAdder, c.Format))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Sprintf("convert.workers must be >= 0, got %d", c.Workers))
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("convert.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Open prepares a Viper instance with defaults and CONVERT_ environment
// overrides, reading path when it is non-empty. The instance also carries
// the mapping sections.
//
// Postcondition: Returns a non-nil Viper or a non-nil error.
func Open(path string) (*viper.Viper, error) {
	v := viper.New()

	// Environment variable overrides with CONVERT_ prefix
	v.SetEnvPrefix("CONVERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v, err := Open(path)
	if err != nil {
		return Config{}, err
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("convert.format", FormatMMOItems)
	v.SetDefault("convert.workers", 0)
	v.SetDefault("convert.script_file", "")
	v.SetDefault("convert.script_instruction_limit", 0)

	v.SetDefault("paths.source", "")
	v.SetDefault("paths.output", "")
}
