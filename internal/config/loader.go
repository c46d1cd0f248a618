package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader loads an explicit config file instead of searching the root.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCVAULT_*)
// 2. Config file (.docvault/config.yml or .docvault/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DefaultOutputDir))
	}

	// Replace . with _ in env var names (e.g., DOCVAULT_MINING_WORKERS)
	v.SetEnvPrefix("DOCVAULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("mining.workers")
	v.BindEnv("mining.classes")
	v.BindEnv("mining.line_comments")
	v.BindEnv("mining.min_docstring_tokens")
	v.BindEnv("mining.max_docstring_tokens")
	v.BindEnv("output.dir")
	v.BindEnv("storage.database")
	v.BindEnv("cache.max_entries")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("mining.languages", defaults.Mining.Languages)
	v.SetDefault("mining.workers", defaults.Mining.Workers)
	v.SetDefault("mining.classes", defaults.Mining.Classes)
	v.SetDefault("mining.line_comments", defaults.Mining.LineComments)
	v.SetDefault("mining.min_docstring_tokens", defaults.Mining.MinDocstringTokens)
	v.SetDefault("mining.max_docstring_tokens", defaults.Mining.MaxDocstringTokens)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("storage.database", defaults.Storage.Database)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
