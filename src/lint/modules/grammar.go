package modules

import (
	"context"
	"path/filepath"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/requirements"
)

func init() {
	lint.Register("grammar", func() lint.Module { return &grammarModule{} })
}

// grammarModule flags lines that do not parse as any known declaration
// form. A file with grammar errors cannot be trusted by downstream
// tooling, so every problem is critical.
type grammarModule struct{}

func (m *grammarModule) Name() string         { return "grammar" }
func (m *grammarModule) DefaultEnabled() bool { return true }

func (m *grammarModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	parsed, err := parseDeclarationFile(file)
	if err != nil {
		return nil, err
	}

	findings := make([]lint.Finding, 0, len(parsed.Problems))
	for _, p := range parsed.Problems {
		findings = append(findings, lint.Finding{
			File:     file.Path,
			Line:     p.Line,
			Module:   m.Name(),
			Severity: lint.SeverityCritical,
			Message:  p.Reason,
		})
	}
	return findings, nil
}

// parseDeclarationFile dispatches on base name. Shared by the grammar,
// pins, and vcs-refs modules.
func parseDeclarationFile(file lint.FileInfo) (*requirements.File, error) {
	if filepath.Base(file.Path) == "Pipfile" {
		return requirements.ParsePipfile(file.AbsPath)
	}
	return requirements.ParseFile(file.AbsPath)
}
