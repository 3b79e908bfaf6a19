package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pindown-dev/pindown/src/requirements"
)

var (
	listJSON  bool
	listNames bool
)

var listCmd = &cobra.Command{
	Use:   "list <file>...",
	Short: "List declarations in files",
	Long: `Parse declaration files and print what they declare.

Each declaration prints as name, constraint, and source line. Repository
references print their URL and revision. Parse problems go to stderr and
set a non-zero exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit JSON instead of a table")
	listCmd.Flags().BoolVar(&listNames, "names", false, "print normalized names only")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	hadProblems := false

	for _, path := range args {
		parsed, err := parsePath(path)
		if err != nil {
			return err
		}

		for _, p := range parsed.Problems {
			fmt.Fprintf(os.Stderr, "%s:%d: %s\n", p.File, p.Line, p.Reason)
			hadProblems = true
		}

		switch {
		case listNames:
			for _, name := range parsed.Names() {
				fmt.Println(name)
			}
		case listJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(parsed); err != nil {
				return err
			}
		default:
			printRequirements(parsed)
		}
	}

	if hadProblems {
		return fmt.Errorf("parse problems found")
	}
	return nil
}

func parsePath(path string) (*requirements.File, error) {
	if filepath.Base(path) == "Pipfile" {
		return requirements.ParsePipfile(path)
	}
	return requirements.ParseFile(path)
}

func printRequirements(f *requirements.File) {
	for _, req := range f.Requirements {
		switch {
		case req.VCS != nil:
			rev := req.VCS.Rev
			if rev == "" {
				rev = "(default branch)"
			}
			fmt.Printf("%-6d %-28s %s @ %s\n", req.Line, req.Name, req.VCS.URL, rev)
		case len(req.Specifiers) > 0:
			fmt.Printf("%-6d %-28s %s\n", req.Line, req.Name, req.Specifiers)
		default:
			fmt.Printf("%-6d %-28s (unconstrained)\n", req.Line, req.Name)
		}
	}

	for _, opt := range f.Options {
		fmt.Printf("%-6d %-28s %s\n", opt.Line, opt.Flag, opt.Value)
	}
}
