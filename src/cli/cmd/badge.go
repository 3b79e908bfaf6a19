package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pindown-dev/pindown/src/badge"
	"github.com/pindown-dev/pindown/src/lint"
	_ "github.com/pindown-dev/pindown/src/lint/modules"
)

var (
	badgeLabel  string
	badgeOutput string
)

var badgeCmd = &cobra.Command{
	Use:   "badge [path]",
	Short: "Generate a status badge from check results",
	Long: `Run a full scan and write a shields.io-style SVG badge summarizing the
result: green when clean, yellow with warnings, red with critical findings.`,
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVar(&badgeLabel, "label", "", "badge label (default: from config, then \"deps\")")
	badgeCmd.Flags().StringVar(&badgeOutput, "output", "", "output file path (default: from config)")

	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	engine, err := lint.NewEngine(cfg.Lint, rootDir, nil, nil, verbose, nil)
	if err != nil {
		return err
	}
	files, err := engine.CollectFiles()
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}

	findings, err := engine.Run(context.Background(), files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	var critical, warning int
	for _, f := range findings {
		switch f.Severity {
		case lint.SeverityCritical:
			critical++
		case lint.SeverityWarning:
			warning++
		}
	}

	eng, err := buildBadgeEngine()
	if err != nil {
		return err
	}

	label := badgeLabel
	if label == "" {
		label = cfg.Badge.Label
	}
	value := "up to date"
	switch {
	case critical > 0:
		value = fmt.Sprintf("%d critical", critical)
	case warning > 0:
		value = fmt.Sprintf("%d warnings", warning)
	}

	svg := eng.Generate(badge.Badge{
		Label: label,
		Value: value,
		Color: badge.StatusColor(critical, warning),
	})

	outPath := badgeOutput
	if outPath == "" {
		outPath = cfg.Badge.Output
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating badge directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}
	fmt.Printf("  badge → %s\n", outPath)

	if verbose {
		fmt.Fprintf(os.Stderr, "badge: %d findings across %d files\n", len(findings), len(files))
	}
	return nil
}

// buildBadgeEngine loads the configured font file, or falls back to the
// built-in metrics table.
func buildBadgeEngine() (*badge.Engine, error) {
	size := cfg.Badge.FontSize
	if size == 0 {
		size = 11
	}

	if cfg.Badge.FontFile != "" {
		metrics, err := badge.LoadFontFile(cfg.Badge.FontFile, size)
		if err != nil {
			return nil, fmt.Errorf("loading badge font: %w", err)
		}
		return badge.New(metrics), nil
	}
	return badge.New(badge.DefaultMetrics()), nil
}
