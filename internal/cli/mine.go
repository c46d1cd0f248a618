package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/miner"
	"github.com/mvp-joe/docvault/internal/syntax"
	"github.com/mvp-joe/docvault/internal/watcher"
)

var (
	forceFlag   bool
	watchFlag   bool
	quietFlag   bool
	linesFlag   bool
	workersFlag int
)

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine [dir]",
	Short: "Mine docstrings from a source tree",
	Long: `Mine walks the directory (default: current directory), extracts documented
functions and classes from every supported source file and stores them in
the vault under .docvault/. Records are also exported as JSONL:

  functions.jsonl   documented functions and methods
  classes.jsonl     documented classes (mining.classes)
  lines.jsonl       comment/context pairs (--lines or mining.line_comments)

Unchanged files are skipped on later runs unless --force is given.
With --watch, the tree is watched after the first run and changed files are
mined again as they are saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMine,
}

func init() {
	mineCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Re-mine files even when unchanged")
	mineCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for changes and mine incrementally")
	mineCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")
	mineCmd.Flags().BoolVar(&linesFlag, "lines", false, "Also extract comment/context line records")
	mineCmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of parallel workers (default: mining.workers or CPU count)")
	rootCmd.AddCommand(mineCmd)
}

// mineOptions carries the mine flags.
type mineOptions struct {
	Force   bool
	Watch   bool
	Quiet   bool
	Lines   bool
	Workers int
}

func runMine(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	opts := mineOptions{
		Force:   forceFlag,
		Watch:   watchFlag,
		Quiet:   quietFlag,
		Lines:   linesFlag,
		Workers: workersFlag,
	}
	return mine(ctx, cmd.OutOrStdout(), rootDir, cfg, opts)
}

// mine runs one mining pass over rootDir and, in watch mode, keeps mining
// changed files until ctx is cancelled.
func mine(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config, opts mineOptions) error {
	if opts.Lines {
		cfg.Mining.LineComments = true
	}
	if opts.Workers > 0 {
		cfg.Mining.Workers = opts.Workers
	}

	db, err := openVault(rootDir, cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := miner.New(rootDir, cfg, db, miner.Options{
		Force:    opts.Force,
		Progress: NewCLIProgressReporter(out, opts.Quiet),
	})
	if err != nil {
		return fmt.Errorf("failed to create miner: %w", err)
	}
	defer m.Close()

	stats, err := m.Mine(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("mining cancelled")
		}
		return fmt.Errorf("mining failed: %w", err)
	}

	// OnComplete already printed the full summary
	if opts.Quiet {
		fmt.Fprintf(out, "Mining complete: %d records in %.2fs\n", stats.Records(), stats.Duration.Seconds())
	}

	if !opts.Watch {
		return nil
	}
	return watchTree(ctx, m, cfg, opts.Quiet)
}

// watchTree re-mines changed files until ctx is cancelled.
func watchTree(ctx context.Context, m *miner.Miner, cfg *config.Config, quiet bool) error {
	discovery := m.Discovery()

	fw, err := watcher.NewFileWatcher(
		[]string{m.RootDir()},
		syntax.Extensions(cfg.EnabledLanguages()...),
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
		watcher.WithFilter(discovery.MatchesPath),
		watcher.WithSkipDir(discovery.IgnoresPath),
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if !quiet {
		log.Printf("Watching %s for changes (Ctrl+C to stop)\n", m.RootDir())
	}

	coordinator := watcher.NewWatchCoordinator(fw, m, quiet)
	if err := coordinator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	if !quiet {
		log.Println("Stopped watching")
	}
	return nil
}
