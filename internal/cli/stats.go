package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/query"
)

var statsQueryFlag string

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the vault or run a JSON statistics query",
	Long: `Without flags, stats prints record counts per language and kind and file
counts per status. With --query it runs a JSON query against the vault, e.g.

  docvault stats --query '{"from":"files","fields":["file_path","error"],
    "where":{"field":"status","operator":"=","value":"parse_error"}}'

Tables: files, line_records, records, runs.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsQueryFlag, "query", "", "JSON query to run instead of the summary")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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
	return showStats(ctx, cmd.OutOrStdout(), rootDir, cfg, statsQueryFlag)
}

// summaryQueries are run in order when stats is given no query.
var summaryQueries = []struct {
	title string
	query query.Query
}{
	{
		title: "Records",
		query: query.Query{
			From:         "records",
			GroupBy:      []string{"language", "kind"},
			Aggregations: []query.Aggregation{{Function: query.FuncCount, Alias: "records"}},
			OrderBy:      []query.Order{{Field: "language"}, {Field: "kind"}},
			Limit:        query.MaxLimit,
		},
	},
	{
		title: "Files",
		query: query.Query{
			From:    "files",
			GroupBy: []string{"status"},
			Aggregations: []query.Aggregation{
				{Function: query.FuncCount, Alias: "files"},
				{Function: query.FuncSum, Field: "record_count", Alias: "records"},
			},
			OrderBy: []query.Order{{Field: "status"}},
		},
	},
	{
		title: "Latest runs",
		query: query.Query{
			From:    "runs",
			Fields:  []string{"started_at", "files_seen", "files_mined", "files_skipped", "parse_errors", "records"},
			OrderBy: []query.Order{{Field: "started_at", Direction: query.Desc}},
			Limit:   5,
		},
	},
}

func showStats(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, rawQuery string) error {
	db, err := openVault(rootDir, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := query.NewExecutor(db)

	if rawQuery != "" {
		q, err := query.Parse([]byte(rawQuery))
		if err != nil {
			return err
		}
		res, err := executor.Execute(ctx, q)
		if err != nil {
			return err
		}
		return printTable(out, res)
	}

	for i, s := range summaryQueries {
		res, err := executor.Execute(ctx, &s.query)
		if err != nil {
			return fmt.Errorf("failed to summarize %s: %w", strings.ToLower(s.title), err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", s.title)
		if err := printTable(out, res); err != nil {
			return err
		}
	}
	return nil
}

// printTable writes a result as aligned columns with a header row.
func printTable(out io.Writer, res *query.Result) error {
	if res.RowCount == 0 {
		fmt.Fprintln(out, "  (no rows)")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "-"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(tw, "  %s\n", strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
