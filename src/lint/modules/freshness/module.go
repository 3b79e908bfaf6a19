package freshness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pindown-dev/pindown/src/lint"
	"github.com/pindown-dev/pindown/src/registry"
	"github.com/pindown-dev/pindown/src/requirements"
)

// freshnessModule implements lint.Module, lint.ConfigurableModule, and
// lint.CacheTTLModule.
type freshnessModule struct {
	cfg   FreshnessConfig
	index *registry.Client
}

func newModule() *freshnessModule {
	return &freshnessModule{cfg: DefaultConfig()}
}

func (m *freshnessModule) Name() string         { return "freshness" }
func (m *freshnessModule) DefaultEnabled() bool { return true }

// CacheTTL implements lint.CacheTTLModule. Freshness findings depend on
// the index and the CVE feed, so they expire after the configured TTL.
func (m *freshnessModule) CacheTTL() time.Duration {
	mins := m.cfg.CacheTTLMins
	if mins <= 0 {
		mins = 360
	}
	return time.Duration(mins) * time.Minute
}

// Configure implements lint.ConfigurableModule.
func (m *freshnessModule) Configure(opts map[string]any) error {
	cfg, err := parseConfig(opts)
	if err != nil {
		return err
	}
	m.cfg = cfg
	m.index = registry.NewClient(cfg.registryURL(""), cfg.Timeout, cfg.registryAuthEnv())
	return nil
}

// Check parses one declaration file, resolves each declaration against
// the index, correlates vulnerabilities, and converts to findings.
func (m *freshnessModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	// Lazy-init the index client if Configure was not called (defaults).
	if m.index == nil {
		m.index = registry.NewClient("", m.cfg.Timeout, "")
	}

	deps, err := m.resolveFile(ctx, file)
	if err != nil {
		return nil, err
	}

	m.correlateVulns(ctx, deps)
	return m.depsToFindings(deps), nil
}

// resolveFile extracts dependencies from one declaration file and resolves
// their latest index versions. Direct repository references and installer
// options carry no index version and are skipped here.
func (m *freshnessModule) resolveFile(ctx context.Context, file lint.FileInfo) ([]Dependency, error) {
	parsed, err := parseByName(file)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, req := range parsed.Requirements {
		if req.VCS != nil {
			continue
		}

		dep := Dependency{
			Name:       req.Name,
			Current:    req.PinnedVersion(),
			Specifiers: req.Specifiers.String(),
			File:       file.Path,
			Line:       req.Line,
		}

		if dep.Current != "" {
			m.resolveIndex(ctx, &dep)
		}

		deps = append(deps, dep)
	}

	return deps, nil
}

// parseByName dispatches on the file's base name.
func parseByName(file lint.FileInfo) (*requirements.File, error) {
	if filepath.Base(file.Path) == "Pipfile" {
		return requirements.ParsePipfile(file.AbsPath)
	}
	return requirements.ParseFile(file.AbsPath)
}

// resolveIndex queries the package index for the latest version and the
// yanked state of the pinned release.
func (m *freshnessModule) resolveIndex(ctx context.Context, dep *Dependency) {
	project, err := m.index.Project(ctx, requirements.NormalizeName(dep.Name))
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			dep.Advisory = fmt.Sprintf("%s not found in the package index", dep.Name)
		}
		return // resolution is best-effort; network failures are not findings
	}

	dep.SourceURL = project.SourceURL
	dep.Latest = project.Latest

	if project.ReleaseYanked(dep.Current) {
		dep.Yanked = true
		dep.Advisory = fmt.Sprintf("%s==%s is yanked from the index", dep.Name, dep.Current)
	}
}

// depsToFindings converts resolved dependencies into findings, applying
// severity mapping, tolerance, vulnerability escalation, and ignore globs.
func (m *freshnessModule) depsToFindings(deps []Dependency) []lint.Finding {
	var findings []lint.Finding

	for _, dep := range deps {
		if m.cfg.isIgnored(dep.Name) {
			continue
		}

		// Emit vulnerability findings regardless of version freshness.
		// A dep can be on the latest version and still have unpatched CVEs.
		findings = append(findings, m.vulnFindings(dep)...)

		// Yanked pins and unknown packages surface as advisories even
		// when no newer version exists.
		if dep.Advisory != "" {
			sev := lint.SeverityInfo
			if dep.Yanked {
				sev = lint.SeverityWarning
			}
			findings = append(findings, lint.Finding{
				File:     dep.File,
				Line:     dep.Line,
				Module:   "freshness",
				Severity: sev,
				Message:  dep.Advisory,
			})
		}

		if dep.Latest == "" || dep.Current == dep.Latest {
			continue
		}

		delta := CompareVersions(dep.Current, dep.Latest)
		if delta.IsZero() {
			// Versions parsed equal — might be a non-semver difference.
			if dep.Current != dep.Latest {
				findings = append(findings, lint.Finding{
					File:     dep.File,
					Line:     dep.Line,
					Module:   "freshness",
					Severity: lint.SeverityInfo,
					Message:  fmt.Sprintf("%s %s → %s available", dep.Name, dep.Current, dep.Latest),
				})
			}
			continue
		}

		sev, msg, ok := mapSeverity(delta, m.cfg.Severity)
		if !ok && len(dep.Vulnerabilities) == 0 {
			continue // within tolerance and no CVEs
		}
		if !ok {
			// Within version tolerance but has CVEs — still report.
			sev = lint.SeverityInfo
			msg = "within tolerance"
		}

		// Escalate severity if dep has known vulnerabilities and override is on.
		if len(dep.Vulnerabilities) > 0 && m.cfg.vulnSeverityOverride() {
			sev = lint.SeverityCritical
		}

		finding := lint.Finding{
			File:     dep.File,
			Line:     dep.Line,
			Module:   "freshness",
			Severity: sev,
			Message:  fmt.Sprintf("%s %s → %s available (%s)", dep.Name, dep.Current, dep.Latest, msg),
		}

		if n := len(dep.Vulnerabilities); n > 0 {
			finding.Message += fmt.Sprintf(" [%d CVE(s)]", n)
		}

		findings = append(findings, finding)
	}

	return findings
}

// vulnFindings produces individual findings for each known vulnerability.
func (m *freshnessModule) vulnFindings(dep Dependency) []lint.Finding {
	if len(dep.Vulnerabilities) == 0 {
		return nil
	}

	var findings []lint.Finding
	for _, v := range dep.Vulnerabilities {
		sev := vulnSeverityToLint(v.Severity)
		msg := fmt.Sprintf("%s==%s has known vulnerability %s: %s", dep.Name, dep.Current, v.ID, v.Summary)
		if v.FixedIn != "" {
			msg += fmt.Sprintf(" (fixed in %s)", v.FixedIn)
		}
		findings = append(findings, lint.Finding{
			File:     dep.File,
			Line:     dep.Line,
			Module:   "freshness",
			Severity: sev,
			Message:  msg,
		})
	}
	return findings
}

// vulnSeverityToLint maps OSV severity labels to check severity.
func vulnSeverityToLint(sev string) lint.Severity {
	switch strings.ToUpper(sev) {
	case "CRITICAL", "HIGH":
		return lint.SeverityCritical
	case "MODERATE":
		return lint.SeverityWarning
	default:
		return lint.SeverityInfo
	}
}
