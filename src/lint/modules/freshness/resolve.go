package freshness

import (
	"context"
	"sort"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/registry"
)

// ResolveOptions configures standalone dependency resolution, used by
// report commands that want the raw dependency table rather than findings.
type ResolveOptions struct {
	Options map[string]any
	Vulns   bool
}

// ResolveDeps parses the given declaration files and resolves each
// dependency against the package index. The result is sorted by file
// then name for stable report output.
func ResolveDeps(ctx context.Context, opts ResolveOptions, files []lint.FileInfo) ([]Dependency, error) {
	m := newModule()
	if opts.Options != nil {
		if err := m.Configure(opts.Options); err != nil {
			return nil, err
		}
	}
	if m.index == nil {
		m.index = registry.NewClient("", m.cfg.Timeout, "")
	}

	var all []Dependency
	for _, file := range files {
		deps, err := m.resolveFile(ctx, file)
		if err != nil {
			return nil, err
		}
		all = append(all, deps...)
	}

	if opts.Vulns {
		m.correlateVulns(ctx, all)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		return all[i].Name < all[j].Name
	})
	return all, nil
}
