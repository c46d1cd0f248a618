package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/miner"
	"github.com/mvp-joe/docvault/internal/miner/extraction"
)

var inspectLinesFlag bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the records mined from one file as JSON",
	Long: `Inspect parses a single source file and prints the records it yields,
without touching the vault. Use it to check why an element was or was not
mined: the output includes skip counts by reason.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectLinesFlag, "lines", false, "Include comment/context line records")
	rootCmd.AddCommand(inspectCmd)
}

// inspectOutput is the JSON document printed by inspect.
type inspectOutput struct {
	Path      string                            `json:"path"`
	Functions []extraction.OutputRecord         `json:"functions"`
	Classes   []extraction.OutputRecord         `json:"classes"`
	Lines     []extraction.CommentContextRecord `json:"lines,omitempty"`
	Skips     map[string]int                    `json:"skips,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := loadConfig(wd)
	if err != nil {
		return err
	}
	return inspect(cmd.OutOrStdout(), args[0], cfg, inspectLinesFlag)
}

func inspect(out io.Writer, path string, cfg *config.Config, lines bool) error {
	if lines {
		cfg.Mining.LineComments = true
	}

	pipeline, err := miner.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	res, err := pipeline.ExtractFile(path)
	if err != nil {
		return err
	}

	doc := inspectOutput{
		Path:      filepath.ToSlash(path),
		Functions: res.Functions,
		Classes:   res.Classes,
		Lines:     res.Lines,
		Skips:     res.Skips,
	}
	if doc.Functions == nil {
		doc.Functions = []extraction.OutputRecord{}
	}
	if doc.Classes == nil {
		doc.Classes = []extraction.OutputRecord{}
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
