package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/mcp"
	"github.com/mvp-joe/docvault/internal/miner"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol (MCP) server on stdio.

The server offers:
- extract_docstrings: mine a source snippet
- normalize_docstring: parse a docstring into its structured fields
- search_docstrings: full-text search over the vault
- class_hierarchy: ancestors or descendants of a mined class
- query_vault: JSON statistics queries over the vault tables

Search, hierarchy and query read the vault of the current directory and pick up
new mining runs without a restart.

Example:
  docvault serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	rootDir, err := resolveRoot(nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	// stdout carries the protocol; everything else goes to stderr.
	fmt.Fprintf(os.Stderr, "docvault MCP server %s\n", Version)
	fmt.Fprintf(os.Stderr, "Vault: %s\n\n", cfg.DatabasePath(rootDir))

	pipeline, err := miner.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	db, err := openVault(rootDir, cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	server := mcp.NewMCPServer(Version, pipeline, db)
	defer server.Close()

	return server.Serve(ctx)
}
