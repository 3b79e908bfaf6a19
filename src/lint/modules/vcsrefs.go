package modules

import (
	"context"
	"fmt"
	"time"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/vcs"
)

func init() {
	lint.Register("vcs-refs", func() lint.Module { return &vcsRefsModule{lister: vcs.GitLister{}} })
}

// vcsRefsModule verifies that repository references resolve: the remote
// is reachable and the declared revision exists. It talks to remotes on
// every uncached run, so it is off by default and enabled per repo.
type vcsRefsModule struct {
	lister vcs.Lister
}

func (m *vcsRefsModule) Name() string         { return "vcs-refs" }
func (m *vcsRefsModule) DefaultEnabled() bool { return false }

// CacheTTL keeps remote listings for an hour; branches move, tags mostly don't.
func (m *vcsRefsModule) CacheTTL() time.Duration { return time.Hour }

func (m *vcsRefsModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	parsed, err := parseDeclarationFile(file)
	if err != nil {
		return nil, err
	}

	var findings []lint.Finding
	for _, req := range parsed.Requirements {
		if req.VCS == nil {
			continue
		}

		res := vcs.Verify(ctx, m.lister, req.VCS)
		switch {
		case !res.Reachable:
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     req.Line,
				Module:   m.Name(),
				Severity: lint.SeverityCritical,
				Message:  fmt.Sprintf("%s is unreachable: %v", req.VCS.URL, res.Err),
			})
		case !res.RevFound:
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     req.Line,
				Module:   m.Name(),
				Severity: lint.SeverityCritical,
				Message:  fmt.Sprintf("revision %q not found in %s", req.VCS.Rev, req.VCS.URL),
			})
		}
	}
	return findings, nil
}
