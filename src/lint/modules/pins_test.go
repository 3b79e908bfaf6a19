package modules

import (
	"context"
	"strings"
	"testing"

	"github.com/pindown-dev/pindown/src/lint"
)

func runPins(t *testing.T, content string) []lint.Finding {
	t.Helper()
	fi := writeTempFile(t, "requirements.txt", []byte(content))
	m := &pinsModule{}
	findings, err := m.Check(context.Background(), fi)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return findings
}

func findByMessage(findings []lint.Finding, substr string) *lint.Finding {
	for i, f := range findings {
		if strings.Contains(f.Message, substr) {
			return &findings[i]
		}
	}
	return nil
}

func TestPins_ExactPinsAreClean(t *testing.T) {
	findings := runPins(t, "black==22.8.0\nmypy==0.982\n")
	if len(findings) != 0 {
		t.Errorf("exact pins produced findings: %+v", findings)
	}
}

func TestPins_UnconstrainedWarns(t *testing.T) {
	findings := runPins(t, "flask\n")
	f := findByMessage(findings, "no version constraint")
	if f == nil {
		t.Fatalf("expected unconstrained warning, got %+v", findings)
	}
	if f.Severity != lint.SeverityWarning {
		t.Errorf("severity = %v", f.Severity)
	}
}

func TestPins_RangeIsInfo(t *testing.T) {
	findings := runPins(t, "bandit>=1.7.4,<2.0.0\n")
	f := findByMessage(findings, "range, not an exact pin")
	if f == nil {
		t.Fatalf("expected range info, got %+v", findings)
	}
	if f.Severity != lint.SeverityInfo {
		t.Errorf("severity = %v", f.Severity)
	}
}

func TestPins_UnsatisfiableIsCritical(t *testing.T) {
	findings := runPins(t, "requests>=3.0.0,<2.0.0\n")
	f := findByMessage(findings, "no version can satisfy")
	if f == nil {
		t.Fatalf("expected unsatisfiable finding, got %+v", findings)
	}
	if f.Severity != lint.SeverityCritical {
		t.Errorf("severity = %v", f.Severity)
	}
}

func TestPins_ConflictingPinsAreCritical(t *testing.T) {
	findings := runPins(t, "requests==1.0.0,==2.0.0\n")
	f := findByMessage(findings, "no version can satisfy")
	if f == nil {
		t.Fatalf("expected unsatisfiable finding, got %+v", findings)
	}
	if f.Severity != lint.SeverityCritical {
		t.Errorf("severity = %v", f.Severity)
	}
}

func TestPins_RequirePinsEscalates(t *testing.T) {
	fi := writeTempFile(t, "requirements.txt", []byte("bandit>=1.7.4,<2.0.0\n"))
	m := &pinsModule{}
	if err := m.Configure(map[string]any{"require_pins": true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	findings, err := m.Check(context.Background(), fi)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	f := findByMessage(findings, "range, not an exact pin")
	if f == nil {
		t.Fatalf("expected range finding, got %+v", findings)
	}
	if f.Severity != lint.SeverityWarning {
		t.Errorf("severity = %v", f.Severity)
	}

	if err := m.Configure(map[string]any{"require_pins": "yes"}); err == nil {
		t.Error("expected error for non-bool require_pins")
	}
}

func TestPins_DuplicateDeclaration(t *testing.T) {
	// Names normalize before comparison: Flask and flask collide.
	findings := runPins(t, "Flask==2.2.2\nflask==2.0.0\n")
	f := findByMessage(findings, "already declared on line 1")
	if f == nil {
		t.Fatalf("expected duplicate finding, got %+v", findings)
	}
	if f.Line != 2 {
		t.Errorf("duplicate reported at line %d", f.Line)
	}
}

func TestPins_FloatingRepositoryReference(t *testing.T) {
	findings := runPins(t, "git+https://github.com/org/repo.git#egg=plugin\n")
	if findByMessage(findings, "floats without a revision") == nil {
		t.Fatalf("expected floating-ref warning, got %+v", findings)
	}

	pinnedRef := runPins(t, "git+https://github.com/org/repo.git@v1.0.0#egg=plugin\n")
	if len(pinnedRef) != 0 {
		t.Errorf("revision-pinned ref produced findings: %+v", pinnedRef)
	}
}
