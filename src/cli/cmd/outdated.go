package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/lint/modules/freshness"
	"github.com/pindown-dev/pindown/src/output"
)

var (
	outdatedJSON  bool
	outdatedVulns bool
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated [path]",
	Short: "Report declarations behind the package index",
	Long: `Resolve every pinned declaration against the package index and report
versions that have fallen behind, yanked pins, and (with --vulns) known
vulnerabilities in the pinned versions.`,
	RunE: runOutdated,
}

func init() {
	outdatedCmd.Flags().BoolVar(&outdatedJSON, "json", false, "emit JSON instead of a report")
	outdatedCmd.Flags().BoolVar(&outdatedVulns, "vulns", false, "correlate pinned versions with the OSV database")

	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	engine, err := lint.NewEngine(cfg.Lint, rootDir, []string{"grammar"}, nil, verbose, nil)
	if err != nil {
		return err
	}
	files, err := engine.CollectFiles()
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no declaration files found under %s", rootDir)
	}

	opts := freshness.ResolveOptions{Vulns: outdatedVulns}
	if mc, ok := cfg.Lint.Modules["freshness"]; ok {
		opts.Options = mc.Options
	}

	start := time.Now()
	deps, err := freshness.ResolveDeps(context.Background(), opts, files)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if outdatedJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deps)
	}

	var outdated []output.OutdatedDep
	var cves []output.CVERow
	resolved := 0

	for _, d := range deps {
		if d.Current != "" && d.Latest != "" {
			resolved++
		}

		for _, v := range d.Vulnerabilities {
			cves = append(cves, output.CVERow{
				ID:       v.ID,
				Severity: v.Severity,
				Package:  d.Name,
				Pinned:   d.Current,
				FixedIn:  v.FixedIn,
				Summary:  v.Summary,
			})
		}

		if d.Latest == "" || d.Current == "" || d.Current == d.Latest {
			continue
		}

		delta := freshness.CompareVersions(d.Current, d.Latest)
		row := output.OutdatedDep{
			Name:    d.Name,
			Current: d.Current,
			Latest:  d.Latest,
			File:    d.File,
			Yanked:  d.Yanked,
		}
		if !delta.IsZero() {
			row.UpdateType = freshness.DominantUpdateType(delta)
		}
		for _, v := range d.Vulnerabilities {
			row.CVEs = append(row.CVEs, v.ID)
		}
		outdated = append(outdated, row)
	}

	color := output.UseColor()
	w := os.Stdout

	sec := output.NewSection(w, "Outdated", elapsed, color)
	sec.Row("%-16s%d", "declared", len(deps))
	sec.Row("%-16s%d", "resolved", resolved)
	sec.Separator()
	output.SectionOutdated(sec, outdated, color)
	output.SectionCVEs(sec, cves, color)
	sec.Close()

	return nil
}
