// Package vcs verifies that direct repository references in declaration
// files point at reachable repositories and resolvable revisions.
package vcs

import (
	"context"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/pindown-dev/pindown/src/requirements"
)

// Result is the outcome of verifying one repository reference.
type Result struct {
	Ref       *requirements.VCSRef
	Reachable bool
	RevFound  bool   // meaningful only when the ref names a revision
	Err       error  // transport error, nil when Reachable
	Matched   string // full ref name or hash the revision resolved to
}

// Lister abstracts remote ref advertisement for testability.
type Lister interface {
	ListRefs(ctx context.Context, url string) (map[string]string, error)
}

// GitLister is the production Lister; it performs the equivalent of
// git ls-remote without touching the working directory.
type GitLister struct{}

// ListRefs returns the remote's advertised refs as name → hash.
func (GitLister) ListRefs(ctx context.Context, url string) (map[string]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("vcs: list %s: %w", url, err)
	}

	out := make(map[string]string, len(refs))
	for _, r := range refs {
		out[r.Name().String()] = r.Hash().String()
	}
	return out, nil
}

// Verify checks one repository reference against a remote listing.
// Only git references are verified; other systems report reachable
// without checking, since pindown has no transport for them.
func Verify(ctx context.Context, lister Lister, ref *requirements.VCSRef) Result {
	res := Result{Ref: ref}

	if ref.VCS != "git" {
		res.Reachable = true
		res.RevFound = ref.Rev == ""
		return res
	}

	refs, err := lister.ListRefs(ctx, ref.URL)
	if err != nil {
		res.Err = err
		return res
	}
	res.Reachable = true

	if ref.Rev == "" {
		res.RevFound = true
		return res
	}

	res.Matched = matchRev(refs, ref.Rev)
	res.RevFound = res.Matched != ""
	return res
}

// matchRev resolves a declared revision against advertised refs:
// branch name, tag name (including the peeled ^{} form), or a commit
// hash prefix.
func matchRev(refs map[string]string, rev string) string {
	candidates := []string{
		"refs/heads/" + rev,
		"refs/tags/" + rev,
		"refs/tags/" + rev + "^{}",
	}
	for _, name := range candidates {
		if _, ok := refs[name]; ok {
			return name
		}
	}

	if isHexPrefix(rev) {
		for name, hash := range refs {
			if strings.HasPrefix(hash, strings.ToLower(rev)) {
				return name
			}
		}
	}
	return ""
}

// isHexPrefix reports whether rev could be an abbreviated commit hash.
func isHexPrefix(rev string) bool {
	if len(rev) < 4 || len(rev) > 40 {
		return false
	}
	for _, c := range strings.ToLower(rev) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
