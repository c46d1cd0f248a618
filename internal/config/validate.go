package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

var (
	// ErrInvalidLanguage indicates an unsupported language name
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidTokenBand indicates an empty or negative docstring token band
	ErrInvalidTokenBand = errors.New("invalid docstring token band")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrInvalidCacheSize indicates a non-positive cache capacity
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateMining(&cfg.Mining); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output.dir is required", ErrEmptyOutputDir))
	}

	if strings.TrimSpace(cfg.Storage.Database) == "" {
		errs = append(errs, fmt.Errorf("%w: storage.database is required", ErrEmptyOutputDir))
	}

	if cfg.Cache.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_entries must be positive, got %d", ErrInvalidCacheSize, cfg.Cache.MaxEntries))
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateMining(cfg *MiningConfig) error {
	var errs []error

	for _, name := range cfg.Languages {
		if _, err := syntax.ParseLanguage(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLanguage, name))
		}
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if cfg.MinDocstringTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: min_docstring_tokens must be positive, got %d", ErrInvalidTokenBand, cfg.MinDocstringTokens))
	}

	if cfg.MaxDocstringTokens < cfg.MinDocstringTokens {
		errs = append(errs, fmt.Errorf("%w: max_docstring_tokens (%d) is below min_docstring_tokens (%d)", ErrInvalidTokenBand, cfg.MaxDocstringTokens, cfg.MinDocstringTokens))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
