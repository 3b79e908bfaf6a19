package freshness

import (
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/pindown-dev/pindown/src/lint"
)

// VersionDelta describes how far behind a dependency is.
type VersionDelta struct {
	Major int
	Minor int
	Patch int
}

// IsZero returns true when there is no version difference.
func (d VersionDelta) IsZero() bool {
	return d.Major == 0 && d.Minor == 0 && d.Patch == 0
}

// CompareVersions compares two bare version strings.
// An unparseable side yields a zero delta; callers treat that pair as
// "different but unrankable" and report at info level.
func CompareVersions(current, latest string) VersionDelta {
	cur := parseVersion(current)
	lat := parseVersion(latest)
	if cur == nil || lat == nil {
		return VersionDelta{}
	}
	return VersionDelta{
		Major: int(lat.Major()) - int(cur.Major()),
		Minor: int(lat.Minor()) - int(cur.Minor()),
		Patch: int(lat.Patch()) - int(cur.Patch()),
	}
}

// parseVersion attempts a lenient parse of an index version string:
// leading 'v' stripped, epoch prefix (N!) and local segment (+local)
// removed, pre/post/dev suffixes separated by '.' trimmed down to the
// release segment Masterminds can handle.
func parseVersion(s string) *masterminds.Version {
	clean := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if idx := strings.IndexByte(clean, '!'); idx >= 0 {
		clean = clean[idx+1:]
	}
	if idx := strings.IndexByte(clean, '+'); idx >= 0 {
		clean = clean[:idx]
	}
	if v, err := masterminds.NewVersion(clean); err == nil {
		return v
	}

	// Progressive trim for 4+ component or suffixed versions
	// (e.g. "1.26.4.post1"): drop rightmost dot-segments until it parses.
	segments := strings.Split(clean, ".")
	for end := len(segments) - 1; end >= 1; end-- {
		if v, err := masterminds.NewVersion(strings.Join(segments[:end], ".")); err == nil {
			return v
		}
	}
	return nil
}

// DominantUpdateType returns "major", "minor", or "patch" for the
// highest-priority axis in a delta.
func DominantUpdateType(d VersionDelta) string {
	if d.Major > 0 {
		return "major"
	}
	if d.Minor > 0 {
		return "minor"
	}
	return "patch"
}

// mapSeverity converts a VersionDelta into a lint.Severity using the
// configured severity levels and tolerance thresholds.
// Returns the severity and a human-readable summary, or ok=false if
// the delta is within tolerance on all axes.
func mapSeverity(delta VersionDelta, cfg SeverityConfig) (lint.Severity, string, bool) {
	// Determine the highest-priority axis that exceeds tolerance.
	// Major > Minor > Patch.
	type axis struct {
		label     string
		count     int
		tolerance int
		severity  int
	}
	axes := []axis{
		{"major", delta.Major, cfg.MajorTolerance, cfg.Major},
		{"minor", delta.Minor, cfg.MinorTolerance, cfg.Minor},
		{"patch", delta.Patch, cfg.PatchTolerance, cfg.Patch},
	}

	var best *axis
	for i := range axes {
		a := &axes[i]
		if a.count <= 0 {
			continue
		}
		if a.count <= a.tolerance {
			continue
		}
		if best == nil || a.severity > best.severity {
			best = a
		}
	}

	if best == nil {
		return 0, "", false
	}

	return intToSeverity(best.severity), deltaMessage(delta), true
}

// intToSeverity converts 0/1/2 from config to lint.Severity.
func intToSeverity(v int) lint.Severity {
	switch {
	case v >= 2:
		return lint.SeverityCritical
	case v == 1:
		return lint.SeverityWarning
	default:
		return lint.SeverityInfo
	}
}

// deltaMessage produces a summary like "1 major, 3 minor behind".
func deltaMessage(d VersionDelta) string {
	var parts []string
	if d.Major > 0 {
		parts = append(parts, fmt.Sprintf("%d major", d.Major))
	}
	if d.Minor > 0 {
		parts = append(parts, fmt.Sprintf("%d minor", d.Minor))
	}
	if d.Patch > 0 {
		parts = append(parts, fmt.Sprintf("%d patch", d.Patch))
	}
	if len(parts) == 0 {
		return "up to date"
	}
	return strings.Join(parts, ", ") + " behind"
}
