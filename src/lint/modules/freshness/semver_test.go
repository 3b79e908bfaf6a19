package freshness

import (
	"testing"

	"github.com/pindown-dev/pindown/src/lint"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		current, latest string
		want            VersionDelta
	}{
		{"1.0.0", "1.0.0", VersionDelta{}},
		{"1.0.0", "2.1.3", VersionDelta{Major: 1, Minor: 1, Patch: 3}},
		{"2.28.1", "2.31.0", VersionDelta{Minor: 3, Patch: -1}},
		{"v1.2.0", "1.4.0", VersionDelta{Minor: 2}},
		// Two-component versions parse with an implicit zero patch.
		{"1.4", "1.5", VersionDelta{Minor: 1}},
		// Epoch and local segments are stripped before comparing.
		{"1!1.2.0", "1.3.0", VersionDelta{Minor: 1}},
		{"1.2.0+cpu", "1.2.1", VersionDelta{Patch: 1}},
		// Unparseable sides collapse to a zero delta.
		{"not-a-version", "1.0.0", VersionDelta{}},
		{"1.0.0", "???", VersionDelta{}},
	}
	for _, c := range cases {
		if got := CompareVersions(c.current, c.latest); got != c.want {
			t.Errorf("CompareVersions(%q, %q) = %+v, want %+v", c.current, c.latest, got, c.want)
		}
	}
}

func TestParseVersion_ProgressiveTrim(t *testing.T) {
	// Post/dev suffixed versions trim down to their release segment.
	v := parseVersion("1.26.4.post1")
	if v == nil {
		t.Fatal("parseVersion(1.26.4.post1) = nil")
	}
	if v.Major() != 1 || v.Minor() != 26 || v.Patch() != 4 {
		t.Errorf("got %d.%d.%d", v.Major(), v.Minor(), v.Patch())
	}

	if parseVersion("") != nil {
		t.Error("empty string parsed")
	}
}

func TestDominantUpdateType(t *testing.T) {
	cases := []struct {
		delta VersionDelta
		want  string
	}{
		{VersionDelta{Major: 2, Minor: 1}, "major"},
		{VersionDelta{Minor: 3, Patch: 5}, "minor"},
		{VersionDelta{Patch: 1}, "patch"},
		{VersionDelta{}, "patch"},
	}
	for _, c := range cases {
		if got := DominantUpdateType(c.delta); got != c.want {
			t.Errorf("DominantUpdateType(%+v) = %q, want %q", c.delta, got, c.want)
		}
	}
}

func TestMapSeverity(t *testing.T) {
	cfg := DefaultConfig().Severity

	sev, msg, ok := mapSeverity(VersionDelta{Major: 1}, cfg)
	if !ok || sev != lint.SeverityCritical {
		t.Errorf("major behind: sev=%v ok=%v", sev, ok)
	}
	if msg != "1 major behind" {
		t.Errorf("msg = %q", msg)
	}

	sev, _, ok = mapSeverity(VersionDelta{Minor: 2}, cfg)
	if !ok || sev != lint.SeverityWarning {
		t.Errorf("minor behind: sev=%v ok=%v", sev, ok)
	}

	// A single patch release behind is within the default tolerance.
	if _, _, ok := mapSeverity(VersionDelta{Patch: 1}, cfg); ok {
		t.Error("one patch behind reported despite tolerance")
	}
	sev, _, ok = mapSeverity(VersionDelta{Patch: 2}, cfg)
	if !ok || sev != lint.SeverityInfo {
		t.Errorf("two patches behind: sev=%v ok=%v", sev, ok)
	}

	// The highest-severity axis wins, and the message covers all axes.
	sev, msg, ok = mapSeverity(VersionDelta{Major: 1, Minor: 2, Patch: 3}, cfg)
	if !ok || sev != lint.SeverityCritical {
		t.Errorf("mixed delta: sev=%v ok=%v", sev, ok)
	}
	if msg != "1 major, 2 minor, 3 patch behind" {
		t.Errorf("msg = %q", msg)
	}
}

func TestMapSeverity_Tolerances(t *testing.T) {
	cfg := DefaultConfig().Severity
	cfg.MinorTolerance = 3

	if _, _, ok := mapSeverity(VersionDelta{Minor: 3}, cfg); ok {
		t.Error("within minor tolerance but reported")
	}
	if _, _, ok := mapSeverity(VersionDelta{Minor: 4}, cfg); !ok {
		t.Error("beyond minor tolerance but not reported")
	}
}
