package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pindown-dev/pindown/src/lint"
	_ "github.com/pindown-dev/pindown/src/lint/modules"
	"github.com/pindown-dev/pindown/src/output"
)

var (
	checkLevel    string
	checkModules  []string
	checkNoModule []string
	checkNoCache  bool
	checkAll      bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate declaration files",
	Long: `Run cache-aware, delta-only checks over declaration files.

By default, only changed files are scanned (--level changed).
Use --level full or --all to scan everything.

Modules run in parallel and results are cached by content hash.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkLevel, "level", "", "scan level: changed or full (default: from config, then changed)")
	checkCmd.Flags().StringSliceVar(&checkModules, "module", nil, "run only these modules (comma-separated)")
	checkCmd.Flags().StringSliceVar(&checkNoModule, "no-module", nil, "skip these modules (comma-separated)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "disable cache (clear and rescan)")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "scan all files (shorthand for --level full)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkAll {
		checkLevel = "full"
	}
	// CLI flag > config > default "changed"
	if checkLevel == "" && cfg.Lint.Level != "" {
		checkLevel = string(cfg.Lint.Level)
	}
	if checkLevel == "" {
		checkLevel = "changed"
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	// Set up cache
	cacheDir := lint.ResolveCacheDir(rootDir, cfg.Lint.CacheDir)
	cache := &lint.Cache{
		Dir:     cacheDir,
		Enabled: !checkNoCache,
	}
	if checkNoCache {
		if err := cache.Clear(); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "cache: clear failed: %v\n", err)
		}
	}

	engine, err := lint.NewEngine(cfg.Lint, rootDir, checkModules, checkNoModule, verbose, cache)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "modules: %v\n", engine.ModuleNames())
	}

	// Collect all declaration files
	files, err := engine.CollectFiles()
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}

	// Delta filtering — only scan changed files unless --level full
	if checkLevel != "full" {
		delta := &lint.Delta{RootDir: rootDir, TargetBranch: cfg.Lint.TargetBranch, Verbose: verbose}
		changedSet, deltaErr := delta.ChangedFiles(context.Background())
		if deltaErr != nil && verbose {
			fmt.Fprintf(os.Stderr, "delta: %v, falling back to full scan\n", deltaErr)
		}
		if changedSet != nil {
			allFiles := files
			files = lint.FilterByDelta(files, changedSet)
			if verbose {
				fmt.Fprintf(os.Stderr, "delta: %d/%d files changed\n", len(files), len(allFiles))
			}
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "scanning %d files\n", len(files))
	}

	ctx := context.Background()
	ci := output.IsCI()
	color := output.UseColor()
	w := os.Stdout

	start := time.Now()
	findings, modStats, runErr := engine.RunWithStats(ctx, files)
	elapsed := time.Since(start)

	// Global sort for stable output
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Message < b.Message
	})

	// Tally
	var critical, warning, info int
	var totalFiles, totalCached int
	for _, f := range findings {
		switch f.Severity {
		case lint.SeverityCritical:
			critical++
		case lint.SeverityWarning:
			warning++
		case lint.SeverityInfo:
			info++
		}
	}
	for _, ms := range modStats {
		totalFiles += ms.Files
		totalCached += ms.Cached
	}

	// Write JUnit XML in CI for test reporting
	if ci {
		if jErr := output.WriteCheckJUnit(".pindown/reports", findings, files, engine.ModuleNames(), elapsed); jErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write junit report: %v\n", jErr)
		}
	}

	// ── Check section ──
	output.SectionStart(w, "pd_check", "Check")
	sec := output.NewSection(w, "Check", elapsed, color)
	output.CheckTable(w, modStats)
	sec.Separator()
	sec.Row("%-16s%5d   %5d   %d findings (%d critical)",
		"total", totalFiles, totalCached, len(findings), critical)
	sec.Close()
	output.SectionEnd(w, "pd_check")

	// ── Findings section (only when findings > 0) ──
	if len(findings) > 0 {
		output.SectionStart(w, "pd_findings", "Findings")
		fSec := output.NewSection(w, "Findings", 0, color)
		output.SectionFindings(fSec, findings, color)
		fSec.Separator()
		fSec.Row(output.FindingsSummaryLine(len(findings), critical, warning, info, len(files), color))
		fSec.Close()
		output.SectionEnd(w, "pd_findings")
	}

	// Cache stats
	if verbose && cache.Enabled {
		fmt.Fprintf(os.Stderr, "cache: %d hits, %d misses\n",
			engine.CacheHits.Load(), engine.CacheMisses.Load())
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	}

	if critical > 0 {
		return fmt.Errorf("check failed: %d critical findings", critical)
	}

	return nil
}
