package lint

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Delta detects changed files relative to a baseline, so routine runs only
// re-check declaration files that actually moved.
type Delta struct {
	RootDir      string
	TargetBranch string
	Verbose      bool
}

// ChangedFiles returns the set of paths changed relative to the baseline:
// working tree changes (staged + unstaged) plus committed changes not in
// the target branch. Returns nil (scan everything) when the root is not a
// git repository or no baseline exists.
func (d *Delta) ChangedFiles(ctx context.Context) (map[string]bool, error) {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		if d.Verbose {
			fmt.Fprintf(os.Stderr, "delta: not a git repo, scanning all files\n")
		}
		return nil, nil
	}

	worktreeChanges, err := d.worktreeChanges(repo)
	if err != nil {
		if d.Verbose {
			fmt.Fprintf(os.Stderr, "delta: worktree diff failed: %v, scanning all files\n", err)
		}
		return nil, nil
	}

	branchChanges, err := d.branchChanges(ctx, repo)
	if err != nil {
		if d.Verbose {
			fmt.Fprintf(os.Stderr, "delta: branch diff failed: %v, scanning all files\n", err)
		}
		return nil, nil
	}

	changed := make(map[string]bool)
	for p := range worktreeChanges {
		changed[p] = true
	}
	for p := range branchChanges {
		changed[p] = true
	}

	if len(changed) == 0 && d.Verbose {
		fmt.Fprintf(os.Stderr, "delta: no changes detected\n")
	}

	return changed, nil
}

// worktreeChanges returns files with uncommitted modifications (staged + unstaged).
func (d *Delta) worktreeChanges(repo *git.Repository) (map[string]bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}

	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool)
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		changed[path] = true
	}

	return changed, nil
}

// branchChanges returns files changed between HEAD and the target branch.
func (d *Delta) branchChanges(ctx context.Context, repo *git.Repository) (map[string]bool, error) {
	targetBranch := d.targetBranch()
	if targetBranch == "" {
		return nil, nil
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}

	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	targetRef, err := repo.Reference(plumbing.NewBranchReferenceName(targetBranch), true)
	if err != nil {
		targetRef, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", targetBranch), true)
		if err != nil {
			return nil, nil // target branch not found — skip
		}
	}

	targetCommit, err := repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting target commit: %w", err)
	}

	// If HEAD is the same as target (e.g., push to main), fall back to
	// diffing HEAD vs its parent so the latest commit's changes get checked.
	if headCommit.Hash == targetCommit.Hash {
		if headCommit.NumParents() == 0 {
			return nil, nil // initial commit — nothing to diff
		}
		parent, err := headCommit.Parent(0)
		if err != nil {
			return nil, nil
		}
		targetCommit = parent
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, err
	}
	targetTree, err := targetCommit.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, targetTree, headTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	changed := make(map[string]bool)
	for _, change := range changes {
		name := changeName(change)
		if name != "" {
			changed[name] = true
		}
	}

	return changed, nil
}

// targetBranch determines the branch to diff against.
func (d *Delta) targetBranch() string {
	// 1. Explicit env var takes priority
	if branch := os.Getenv("PINDOWN_TARGET_BRANCH"); branch != "" {
		return branch
	}

	// 2. Config-level override
	if d.TargetBranch != "" {
		return d.TargetBranch
	}

	// 3. Common CI env vars
	ciVars := []string{
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME", // GitLab CI
		"GITHUB_BASE_REF",                     // GitHub Actions
		"BITBUCKET_PR_DESTINATION_BRANCH",     // Bitbucket
		"CHANGE_TARGET",                       // Jenkins
	}
	for _, v := range ciVars {
		if branch := os.Getenv(v); branch != "" {
			return branch
		}
	}

	// 4. Detect from git remote HEAD
	if branch := d.detectDefaultBranch(); branch != "" {
		return branch
	}

	// 5. Fallback
	return "main"
}

// detectDefaultBranch reads the symbolic ref for origin/HEAD to determine
// the remote's default branch.
func (d *Delta) detectDefaultBranch() string {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		return ""
	}
	// Don't resolve (false) — we need the symbolic ref target, not the commit hash
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	target := ref.Target().String()
	prefix := "refs/remotes/origin/"
	if strings.HasPrefix(target, prefix) {
		return strings.TrimPrefix(target, prefix)
	}
	return ""
}

// changeName extracts the file path from a tree change.
func changeName(change *object.Change) string {
	action, err := change.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return change.To.Name
	case merkletrie.Delete:
		return change.From.Name
	}
	return ""
}
