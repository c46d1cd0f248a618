package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/search"
	"github.com/mvp-joe/docvault/internal/storage"
)

var (
	searchLanguageFlag string
	searchKindFlag     string
	searchLimitFlag    int
	searchJSONFlag     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over mined docstrings",
	Long: `Search queries the vault of the current directory. The query uses bleve
query-string syntax over docstrings, identifiers, code and paths, e.g.

  docvault search "parse config"
  docvault search 'identifier:load*' --language python`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLanguageFlag, "language", "l", "", "Only return records of this language")
	searchCmd.Flags().StringVarP(&searchKindFlag, "kind", "k", "", "Only return records of this kind (function or class)")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 15, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "Print hits as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	opts := &search.Options{
		Language: searchLanguageFlag,
		Kind:     searchKindFlag,
		Limit:    searchLimitFlag,
	}
	return searchVault(ctx, cmd.OutOrStdout(), rootDir, cfg, strings.Join(args, " "), opts, searchJSONFlag)
}

func searchVault(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, query string, opts *search.Options, asJSON bool) error {
	db, err := openVault(rootDir, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := search.FromVault(ctx, storage.NewRecordReader(db))
	if err != nil {
		return err
	}
	defer index.Close()

	hits, err := index.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	for i, hit := range hits {
		fmt.Fprintf(out, "%2d. %s  [%s %s]  %s  (%.2f)\n", i+1, hit.Identifier, hit.Language, hit.Kind, hit.Path, hit.Score)
		if summary := firstLine(hit.Docstring); summary != "" {
			fmt.Fprintf(out, "    %s\n", summary)
		}
	}
	return nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
