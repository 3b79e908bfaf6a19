package output

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MaxOutdated = 30
	MaxCVEs     = 12
)

// OutdatedDep is the view model for one outdated declaration.
type OutdatedDep struct {
	Name       string
	Current    string
	Latest     string
	UpdateType string // "major", "minor", "patch"
	File       string
	Yanked     bool
	CVEs       []string // IDs only
}

// CVERow is the view model for a known vulnerability in a pinned version.
type CVERow struct {
	ID       string // "CVE-2024-45337", "GHSA-xxxx-yyyy-zzzz"
	Severity string // "LOW", "MODERATE", "HIGH", "CRITICAL"
	Package  string
	Pinned   string
	FixedIn  string // empty = no fix published
	Summary  string
}

// SectionOutdated renders the "Outdated (N)" block.
func SectionOutdated(sec *Section, deps []OutdatedDep, color bool) {
	if len(deps) == 0 {
		sec.Row("")
		sec.Row("%s", Dimmed("everything pinned at latest", color))
		sec.Row("")
		return
	}

	sec.Row("")
	sec.Row("%s", bold(color, fmt.Sprintf("Outdated (%d)", len(deps))))

	show := len(deps)
	if show > MaxOutdated {
		show = MaxOutdated
	}

	for i := 0; i < show; i++ {
		d := deps[i]
		sec.Row("  %s", strings.TrimSpace(d.Name))

		line := fmt.Sprintf("    %s → %s", strings.TrimSpace(d.Current), strings.TrimSpace(d.Latest))
		if typ := strings.TrimSpace(d.UpdateType); typ != "" {
			line += "  " + Dimmed(typ, color)
		}
		if d.Yanked {
			line += "  " + VulnSeverityTag("HIGH", color) + " yanked"
		}
		sec.Row("%s", line)

		if len(d.CVEs) > 0 {
			sec.Row("%s", Dimmed("    carries "+strings.Join(d.CVEs, ", "), color))
		}
	}

	if len(deps) > MaxOutdated {
		remaining := len(deps) - MaxOutdated
		sec.Row("%s", Dimmed(fmt.Sprintf("  … and %d more", remaining), color))
	}

	sec.Row("")
}

// SectionCVEs renders the "Vulnerabilities (N)" table (truncates at MaxCVEs).
func SectionCVEs(sec *Section, cves []CVERow, color bool) {
	if len(cves) == 0 {
		return
	}

	sorted := sortCVEs(cves)

	sec.Row("")
	sec.Row("%s", bold(color, fmt.Sprintf("Vulnerabilities (%d)", len(sorted))))

	show := len(sorted)
	if show > MaxCVEs {
		show = MaxCVEs
	}

	for i := 0; i < show; i++ {
		c := sorted[i]
		tag := VulnSeverityTag(c.Severity, color)

		sec.Row("  %-14s  %-4s  %s", strings.TrimSpace(c.ID), tag, strings.TrimSpace(c.Package))

		fixed := strings.TrimSpace(c.FixedIn)
		if fixed == "" {
			sec.Row("    %s → %s  %s", strings.TrimSpace(c.Pinned), Dimmed("(no fix)", color), strings.TrimSpace(c.Summary))
		} else {
			sec.Row("    %s → %s  %s", strings.TrimSpace(c.Pinned), fixed, strings.TrimSpace(c.Summary))
		}

		if id := strings.TrimSpace(c.ID); id != "" {
			sec.Row("%s", Dimmed("    "+VulnURL(id), color))
		}
	}

	if len(sorted) > MaxCVEs {
		remaining := len(sorted) - MaxCVEs
		sec.Row("%s", Dimmed(fmt.Sprintf("  … and %d more", remaining), color))
	}

	sec.Row("")
}

// VulnSeverityTag returns a short severity label, optionally colored.
// CRITICAL→"CRIT" red, HIGH→"HIGH" red, MEDIUM/MODERATE→"MOD " yellow,
// LOW→"LOW " gray, UNKNOWN/empty→"UNK " gray.
func VulnSeverityTag(severity string, color bool) string {
	sev := normalizeSeverity(severity)

	tag := "UNK "
	ansi := colorGray

	switch sev {
	case "CRITICAL":
		tag, ansi = "CRIT", colorRed
	case "HIGH":
		tag, ansi = "HIGH", colorRed
	case "MEDIUM":
		tag, ansi = "MOD ", colorYellow
	case "LOW":
		tag, ansi = "LOW ", colorGray
	}

	if !color {
		return tag
	}
	return ansi + tag + colorReset
}

// VulnURL derives an advisory URL from a vulnerability ID.
// GHSA- → github.com/advisories, PYSEC- and everything else → osv.dev.
func VulnURL(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(strings.ToUpper(id), "GHSA-") {
		return "https://github.com/advisories/" + id
	}
	return "https://osv.dev/vulnerability/" + id
}

func normalizeSeverity(severity string) string {
	s := strings.TrimSpace(strings.ToUpper(severity))
	if s == "" {
		return "UNKNOWN"
	}
	if s == "MODERATE" {
		return "MEDIUM"
	}
	switch s {
	case "CRITICAL", "HIGH", "MEDIUM", "LOW", "UNKNOWN":
		return s
	default:
		return "UNKNOWN"
	}
}

// severityRank: lower is more severe (CRITICAL=0 ... UNKNOWN=4).
func severityRank(severity string) int {
	switch normalizeSeverity(severity) {
	case "CRITICAL":
		return 0
	case "HIGH":
		return 1
	case "MEDIUM":
		return 2
	case "LOW":
		return 3
	default:
		return 4
	}
}

func sortCVEs(cves []CVERow) []CVERow {
	out := make([]CVERow, len(cves))
	copy(out, cves)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		ra, rb := severityRank(a.Severity), severityRank(b.Severity)
		if ra != rb {
			return ra < rb // ascending rank = descending severity
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Package < b.Package
	})

	return out
}
