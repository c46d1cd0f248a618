package config

import (
	"path/filepath"
	"runtime"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// Config represents the complete docvault configuration.
// It can be loaded from .docvault/config.yml with environment variable overrides.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Mining  MiningConfig  `yaml:"mining" mapstructure:"mining"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which files to mine and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// MiningConfig controls what gets extracted.
type MiningConfig struct {
	Languages          []string `yaml:"languages" mapstructure:"languages"` // empty means all supported
	Workers            int      `yaml:"workers" mapstructure:"workers"`     // 0 means runtime.NumCPU()
	Classes            bool     `yaml:"classes" mapstructure:"classes"`
	LineComments       bool     `yaml:"line_comments" mapstructure:"line_comments"`
	MinDocstringTokens int      `yaml:"min_docstring_tokens" mapstructure:"min_docstring_tokens"`
	MaxDocstringTokens int      `yaml:"max_docstring_tokens" mapstructure:"max_docstring_tokens"`
}

// OutputConfig sets where JSONL files and the vault are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // relative to the mined root unless absolute
}

// StorageConfig configures the SQLite vault.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // relative to output.dir
}

// CacheConfig bounds the in-process memo caches.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.py",
				"**/*.java",
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.ts",
				"**/*.mts",
				"**/*.cts",
				"**/*.tsx",
				"**/*.rb",
				"**/*.go",
				"**/*.c",
				"**/*.h",
				"**/*.cpp",
				"**/*.cc",
				"**/*.cxx",
				"**/*.hpp",
				"**/*.hh",
				"**/*.hxx",
				"**/*.cs",
				"**/*.php",
				"**/*.rs",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				".venv/**",
				"*.min.js",
			},
		},
		Mining: MiningConfig{
			Languages:          []string{},
			Workers:            0,
			Classes:            true,
			LineComments:       false,
			MinDocstringTokens: 4,
			MaxDocstringTokens: 255,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Storage: StorageConfig{
			Database: "vault.db",
		},
		Cache: CacheConfig{
			MaxEntries: 10000,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// DefaultOutputDir is the output directory under the mined root.
const DefaultOutputDir = ".docvault"

// EnabledLanguages returns the languages to mine. An empty list enables all.
// Unknown names are skipped; Validate reports them.
func (c *Config) EnabledLanguages() []syntax.Language {
	if len(c.Mining.Languages) == 0 {
		return syntax.Supported()
	}
	var langs []syntax.Language
	seen := make(map[syntax.Language]bool)
	for _, name := range c.Mining.Languages {
		lang, err := syntax.ParseLanguage(name)
		if err != nil || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	return langs
}

// WorkerCount resolves the worker pool size.
func (c *Config) WorkerCount() int {
	if c.Mining.Workers > 0 {
		return c.Mining.Workers
	}
	return runtime.NumCPU()
}

// OutputPath resolves the output directory against rootDir.
func (c *Config) OutputPath(rootDir string) string {
	if filepath.IsAbs(c.Output.Dir) {
		return c.Output.Dir
	}
	return filepath.Join(rootDir, c.Output.Dir)
}

// DatabasePath resolves the vault file against the output directory.
func (c *Config) DatabasePath(rootDir string) string {
	if filepath.IsAbs(c.Storage.Database) {
		return c.Storage.Database
	}
	return filepath.Join(c.OutputPath(rootDir), c.Storage.Database)
}
