package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/output"
	"github.com/pindown-dev/pindown/src/requirements"
	"github.com/pindown-dev/pindown/src/vcs"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify repository references resolve",
	Long: `Collect direct repository references from declaration files and check
each one against its remote: the repository must be reachable and any
declared revision must exist as a branch, tag, or commit.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

type verifyItem struct {
	ref  *requirements.VCSRef
	file string
	line int
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	var items []verifyItem
	for _, file := range files {
		parsed, err := parsePath(file.AbsPath)
		if err != nil {
			return err
		}
		for _, req := range parsed.Requirements {
			if req.VCS != nil {
				items = append(items, verifyItem{ref: req.VCS, file: file.Path, line: req.Line})
			}
		}
	}

	color := output.UseColor()
	w := os.Stdout

	if len(items) == 0 {
		sec := output.NewSection(w, "Verify", 0, color)
		sec.Row("%s", output.Dimmed("no repository references declared", color))
		sec.Close()
		return nil
	}

	timeout := time.Duration(cfg.Verify.TimeoutSecs) * time.Second
	lister := vcs.GitLister{}
	results := make([]vcs.Result, len(items))

	start := time.Now()
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.Verify.Concurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			vctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res := vcs.Verify(vctx, lister, item.ref)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	elapsed := time.Since(start)

	failed := 0
	sec := output.NewSection(w, "Verify", elapsed, color)

	for i, res := range results {
		item := items[i]
		label := fmt.Sprintf("%s:%d %s", item.file, item.line, item.ref.URL)

		switch {
		case !res.Reachable:
			output.RowStatus(sec, label, "unreachable", "failed", color)
			if verbose && res.Err != nil {
				sec.Row("%s", output.Dimmed("    "+res.Err.Error(), color))
			}
			failed++
		case !res.RevFound:
			output.RowStatus(sec, label, fmt.Sprintf("revision %q not found", item.ref.Rev), "failed", color)
			failed++
		case res.Matched != "" && verbose:
			output.RowStatus(sec, label, "resolved "+res.Matched, "success", color)
		default:
			output.RowStatus(sec, label, "", "success", color)
		}
	}

	sec.Separator()
	sec.Row("%d references, %d failed", len(items), failed)
	sec.Close()

	if failed > 0 {
		return fmt.Errorf("verify failed: %d of %d references unresolved", failed, len(items))
	}
	return nil
}
