package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/graph"
	"github.com/mvp-joe/docvault/internal/storage"
)

var descendantsFlag bool

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [class]",
	Short: "Show the inheritance hierarchy of mined classes",
	Long: `Without arguments, hierarchy lists every mined class with superclasses
before their subclasses. With a class name (full identifier or simple name)
it prints the class's ancestors, or its descendants with --descendants.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHierarchy,
}

func init() {
	hierarchyCmd.Flags().BoolVarP(&descendantsFlag, "descendants", "d", false, "Show subclasses instead of superclasses")
	rootCmd.AddCommand(hierarchyCmd)
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveRoot(nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	class := ""
	if len(args) > 0 {
		class = args[0]
	}
	return showHierarchy(cmd.OutOrStdout(), rootDir, cfg, class, descendantsFlag)
}

func showHierarchy(out io.Writer, rootDir string, cfg *config.Config, class string, descendants bool) error {
	db, err := openVault(rootDir, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	h, err := graph.FromVault(storage.NewRecordReader(db))
	if err != nil {
		return err
	}

	if class == "" {
		classes, err := h.Sorted()
		if err != nil {
			return err
		}
		for _, c := range classes {
			if c.External {
				continue
			}
			line := fmt.Sprintf("%s (%s)", c.Identifier, c.Language)
			if len(c.Superclasses) > 0 {
				line += " : " + strings.Join(c.Superclasses, ", ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}

	var related []graph.Related
	if descendants {
		related, err = h.Descendants(class)
	} else {
		related, err = h.Ancestors(class)
	}
	if err != nil {
		return err
	}

	for _, id := range h.Resolve(class) {
		c, _ := h.Class(id)
		fmt.Fprintf(out, "%s (%s)\n", c.Identifier, c.Language)
	}
	arrow := "↑"
	if descendants {
		arrow = "↓"
	}
	for _, r := range related {
		suffix := ""
		if r.Class.External {
			suffix = " [external]"
		}
		fmt.Fprintf(out, "%s%s %s%s\n", strings.Repeat("  ", r.Depth), arrow, r.Class.Identifier, suffix)
	}
	return nil
}
