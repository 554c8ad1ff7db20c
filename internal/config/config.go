// Package config loads duolog configuration in three layers: struct
// defaults, an optional YAML file, then DUOLOG_-prefixed environment
// variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "DUOLOG_CONFIG"

// DefaultConfigPaths lists where the config file is searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"duolog.yaml",
	"duolog.yml",
}

// Config holds every tunable of the logging core.
type Config struct {
	// Product names the two channels: "<Product>: User Logs" and
	// "<Product>: Debug Logs".
	Product string `koanf:"product"`

	// UserLevel and DiagLevel are the host-controlled minimum-severity
	// thresholds of the two channels.
	UserLevel string `koanf:"user_level"`
	DiagLevel string `koanf:"diag_level"`

	// TrustedRoot is the only directory replay files are read from.
	// Empty means {HOME}/.demo-builder resolved at replay time.
	TrustedRoot string `koanf:"trusted_root"`

	// DebugLogPath is the diagnostic channel's backing file. Empty means
	// an in-memory channel instead of a file.
	DebugLogPath string `koanf:"debug_log_path"`

	// ExportCapacity caps the export buffer entry count.
	ExportCapacity int `koanf:"export_capacity"`

	// TruncateLimit caps diagnostic error detail, in runes.
	TruncateLimit int `koanf:"truncate_limit"`

	// SlowCommand is the duration past which a logged command result
	// warns the user.
	SlowCommand time.Duration `koanf:"slow_command"`

	// Steps maps wizard step ids to display names.
	Steps map[string]string `koanf:"steps"`

	// Templates holds message templates by section and key.
	Templates map[string]map[string]string `koanf:"templates"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Product:        "Demo Builder",
		UserLevel:      "info",
		DiagLevel:      "info",
		ExportCapacity: 10000,
		TruncateLimit:  2500,
		SlowCommand:    3 * time.Second,
		Steps: map[string]string{
			"adobe-auth":       "Adobe Sign-In",
			"select-org":       "Organization",
			"select-project":   "Project",
			"select-workspace": "Workspace",
			"scaffold":         "Components",
		},
		Templates: map[string]map[string]string{
			"auth": {
				"started":   "Signing in to Adobe...",
				"succeeded": "Signed in as {user}",
				"failed":    "Sign-in failed: {reason}",
			},
			"scaffold": {
				"component_added": "Added {component} to {project}",
				"found":           "Found {count} {item}",
			},
		},
	}
}

// UserChannelName returns the fixed user channel name.
func (c Config) UserChannelName() string { return c.Product + ": User Logs" }

// DiagChannelName returns the fixed diagnostic channel name.
func (c Config) DiagChannelName() string { return c.Product + ": Debug Logs" }

// Load builds the configuration: defaults, then an optional YAML file,
// then environment variables.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// DUOLOG_TRUSTED_ROOT → trusted_root, etc. Top-level keys only;
	// step names and templates come from the file.
	envProvider := env.Provider("DUOLOG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DUOLOG_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the core cannot run with.
func (c Config) Validate() error {
	if c.Product == "" {
		return fmt.Errorf("product must not be empty")
	}
	if c.ExportCapacity <= 0 {
		return fmt.Errorf("export_capacity must be positive, got %d", c.ExportCapacity)
	}
	if c.TruncateLimit < 0 {
		return fmt.Errorf("truncate_limit must not be negative, got %d", c.TruncateLimit)
	}
	if c.SlowCommand < 0 {
		return fmt.Errorf("slow_command must not be negative, got %s", c.SlowCommand)
	}
	return nil
}

// findConfigFile returns the config file path: the env override when set,
// otherwise the first existing default path, otherwise "".
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
