package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/storage"
)

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// resolveRoot returns the absolute root from an optional directory argument,
// defaulting to the working directory.
func resolveRoot(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", root)
		}
		return root, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// loadConfig loads the configuration for rootDir, honouring --config.
func loadConfig(rootDir string) (*config.Config, error) {
	var loader config.Loader
	file := viper.GetString("config")
	if file != "" {
		loader = config.NewFileLoader(rootDir, file)
	} else {
		loader = config.NewLoader(rootDir)
		file = filepath.Join(rootDir, config.DefaultOutputDir, "config.yml")
	}
	if viper.GetBool("verbose") {
		log.Printf("Using config file: %s", file)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openVault opens the vault of rootDir. With mustExist set, a missing vault
// is reported instead of created.
func openVault(rootDir string, cfg *config.Config, mustExist bool) (*sql.DB, error) {
	path := cfg.DatabasePath(rootDir)
	if mustExist {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("no vault at %s; run 'docvault mine' first", path)
		}
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return db, nil
}
