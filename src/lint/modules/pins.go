package modules

import (
	"context"
	"fmt"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/requirements"
)

func init() {
	lint.Register("pins", func() lint.Module { return &pinsModule{} })
}

// pinsModule enforces pin hygiene: every package declaration should be
// either pinned to an exact version or bounded by a satisfiable range,
// declared at most once, and repository references should name a revision.
type pinsModule struct {
	requirePins bool
}

func (m *pinsModule) Name() string         { return "pins" }
func (m *pinsModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
// require_pins escalates ranged declarations from info to warning, for
// lock-style files where every name must resolve to exactly one version.
func (m *pinsModule) Configure(opts map[string]any) error {
	if opts == nil {
		return nil
	}
	if v, ok := opts["require_pins"]; ok {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("pins: require_pins must be a bool, got %T", v)
		}
		m.requirePins = b
	}
	return nil
}

func (m *pinsModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	parsed, err := parseDeclarationFile(file)
	if err != nil {
		return nil, err
	}

	var findings []lint.Finding

	seen := make(map[string]int) // normalized name -> first line
	for _, req := range parsed.Requirements {
		name := requirements.NormalizeName(req.Name)
		if name != "" {
			if first, dup := seen[name]; dup {
				findings = append(findings, lint.Finding{
					File:     file.Path,
					Line:     req.Line,
					Module:   m.Name(),
					Severity: lint.SeverityWarning,
					Message:  fmt.Sprintf("%s already declared on line %d", req.Name, first),
				})
			} else {
				seen[name] = req.Line
			}
		}

		if req.VCS != nil {
			if req.VCS.Rev == "" {
				findings = append(findings, lint.Finding{
					File:     file.Path,
					Line:     req.Line,
					Module:   m.Name(),
					Severity: lint.SeverityWarning,
					Message:  "repository reference floats without a revision",
				})
			}
			continue
		}

		switch {
		case len(req.Specifiers) == 0:
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     req.Line,
				Module:   m.Name(),
				Severity: lint.SeverityWarning,
				Message:  fmt.Sprintf("%s has no version constraint", req.Name),
			})
		case !req.Specifiers.Satisfiable():
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     req.Line,
				Module:   m.Name(),
				Severity: lint.SeverityCritical,
				Message:  fmt.Sprintf("%s%s: no version can satisfy these constraints", req.Name, req.Specifiers),
			})
		case !req.Pinned():
			sev := lint.SeverityInfo
			if m.requirePins {
				sev = lint.SeverityWarning
			}
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     req.Line,
				Module:   m.Name(),
				Severity: sev,
				Message:  fmt.Sprintf("%s%s is a range, not an exact pin", req.Name, req.Specifiers),
			})
		}
	}

	return findings, nil
}
