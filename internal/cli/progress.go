package cli

import (
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/docvault/internal/miner"
)

// CLIProgressReporter reports mining progress with a progress bar.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Found %s source files\n", formatNumber(files))
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Mining files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileProcessed is called from worker goroutines; the bar serializes Add.
func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnWritingRecords() {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	log.Println("Writing records...")
}

func (c *CLIProgressReporter) OnComplete(stats *miner.Stats) {
	if c.quiet {
		return
	}
	printSummary(c.out, stats)
}

// printSummary writes the end-of-run report.
func printSummary(out io.Writer, stats *miner.Stats) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Mining complete: %s records in %.1fs\n",
		formatNumber(stats.Records()), stats.Duration.Seconds())
	fmt.Fprintf(out, "  Functions:    %s\n", formatNumber(stats.Functions))
	fmt.Fprintf(out, "  Classes:      %s\n", formatNumber(stats.Classes))
	if stats.Lines > 0 {
		fmt.Fprintf(out, "  Line records: %s\n", formatNumber(stats.Lines))
	}
	fmt.Fprintf(out, "  Files:        %s mined, %s unchanged, %s removed\n",
		formatNumber(stats.FilesMined), formatNumber(stats.FilesUnchanged), formatNumber(stats.FilesRemoved))
	if stats.ParseErrors+stats.ReadErrors > 0 {
		fmt.Fprintf(out, "  Errors:       %d parse, %d read\n", stats.ParseErrors, stats.ReadErrors)
	}
	if stats.CacheHits > 0 {
		fmt.Fprintf(out, "  Cache hits:   %s\n", formatNumber(stats.CacheHits))
	}

	if len(stats.Skips) > 0 {
		reasons := make([]string, 0, len(stats.Skips))
		for reason := range stats.Skips {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Fprintln(out, "  Skipped:")
		for _, reason := range reasons {
			fmt.Fprintf(out, "    %-22s %s\n", reason, formatNumber(stats.Skips[reason]))
		}
	}
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result []byte
	for i := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
