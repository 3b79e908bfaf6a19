package requirements

import (
	"strings"
	"testing"
)

// devRequirements mirrors a real-world tooling declaration file: pinned
// formatters and linters, one bounded range, comments, a blank line, and
// a trailing direct repository reference.
const devRequirements = `# Dev tooling
#
# Formatting
black==22.8.0
isort==5.10.1

# Linting
flake8==5.0.4
flake8-bugbear==22.9.23
pylint==2.15.3

# Typing
mypy==0.982
types-requests==2.28.11
types-setuptools==65.4.0

# Security
bandit>=1.7.4,<2.0.0

# Testing
pytest==7.1.3
pytest-cov==4.0.0

git+https://github.com/example/pytest-acl-plugin.git@v0.3.1#egg=pytest-acl-plugin
`

func parseString(t *testing.T, content string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(content), "requirements-dev.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func findRequirement(t *testing.T, f *File, name string) Requirement {
	t.Helper()
	for _, r := range f.Requirements {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("requirement %q not found in %v", name, f.Names())
	return Requirement{}
}

func TestParse_DevRequirements(t *testing.T) {
	f := parseString(t, devRequirements)

	if len(f.Problems) != 0 {
		t.Fatalf("expected clean parse, got problems: %v", f.Problems)
	}
	if got := len(f.Requirements); got != 12 {
		t.Fatalf("expected 12 declarations, got %d: %v", got, f.Names())
	}

	black := findRequirement(t, f, "black")
	if !black.Pinned() || black.PinnedVersion() != "22.8.0" {
		t.Errorf("black: expected exact pin 22.8.0, got %q", black.Specifiers)
	}
	if black.Line != 4 {
		t.Errorf("black: expected line 4, got %d", black.Line)
	}

	mypy := findRequirement(t, f, "mypy")
	if mypy.PinnedVersion() != "0.982" {
		t.Errorf("mypy: expected exact pin 0.982, got %q", mypy.Specifiers)
	}

	bandit := findRequirement(t, f, "bandit")
	if bandit.Pinned() {
		t.Errorf("bandit: bounded range must not report as pinned")
	}
	if len(bandit.Specifiers) != 2 {
		t.Fatalf("bandit: expected 2 specifiers, got %v", bandit.Specifiers)
	}
	if bandit.Specifiers[0].Op != OpGreaterEqual || bandit.Specifiers[0].Version != "1.7.4" {
		t.Errorf("bandit: bad lower bound %v", bandit.Specifiers[0])
	}
	if bandit.Specifiers[1].Op != OpLess || bandit.Specifiers[1].Version != "2.0.0" {
		t.Errorf("bandit: bad upper bound %v", bandit.Specifiers[1])
	}

	// The final line must be a repository reference, not a registry lookup.
	last := f.Requirements[len(f.Requirements)-1]
	if last.VCS == nil {
		t.Fatalf("expected final declaration to be a repository reference, got %+v", last)
	}
	if last.VCS.URL != "https://github.com/example/pytest-acl-plugin.git" {
		t.Errorf("bad clone URL %q", last.VCS.URL)
	}
	if last.VCS.Rev != "v0.3.1" {
		t.Errorf("bad revision %q", last.VCS.Rev)
	}
	if last.Name != "pytest-acl-plugin" {
		t.Errorf("expected name from #egg fragment, got %q", last.Name)
	}
}

func TestParse_CommentsAndBlanks(t *testing.T) {
	f := parseString(t, "# header\n\n   \nrequests==2.28.1  # inline note\n")

	if len(f.Requirements) != 1 {
		t.Fatalf("expected 1 declaration, got %v", f.Names())
	}
	if f.Requirements[0].PinnedVersion() != "2.28.1" {
		t.Errorf("inline comment not stripped: %+v", f.Requirements[0])
	}
}

func TestParse_LineContinuation(t *testing.T) {
	f := parseString(t, "uvicorn[standard]>=0.18, \\\n    <0.20\n")

	if len(f.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", f.Problems)
	}
	if len(f.Requirements) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(f.Requirements))
	}
	req := f.Requirements[0]
	if req.Name != "uvicorn" {
		t.Errorf("bad name %q", req.Name)
	}
	if len(req.Extras) != 1 || req.Extras[0] != "standard" {
		t.Errorf("bad extras %v", req.Extras)
	}
	if len(req.Specifiers) != 2 {
		t.Errorf("continuation lost specifiers: %v", req.Specifiers)
	}
	if req.Line != 1 {
		t.Errorf("continuation should report the starting line, got %d", req.Line)
	}
}

func TestParse_OptionLines(t *testing.T) {
	f := parseString(t, "-r base.txt\n--index-url https://pypi.internal/simple\nflask==2.2.2\n")

	if len(f.Options) != 2 {
		t.Fatalf("expected 2 options, got %v", f.Options)
	}
	if f.Options[0].Flag != "-r" || f.Options[0].Value != "base.txt" {
		t.Errorf("bad -r option: %+v", f.Options[0])
	}
	if f.Options[1].Flag != "--index-url" {
		t.Errorf("bad long option: %+v", f.Options[1])
	}
	if len(f.Requirements) != 1 {
		t.Errorf("option lines must not shadow declarations: %v", f.Names())
	}
}

func TestParse_MalformedLinesCollected(t *testing.T) {
	f := parseString(t, "good==1.0\n==1.2.3\nbad~name==2.0\nalso-good==3.0\n")

	if len(f.Requirements) != 2 {
		t.Errorf("expected parsing to continue past bad lines, got %v", f.Names())
	}
	if len(f.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", f.Problems)
	}
	if f.Problems[0].Line != 2 {
		t.Errorf("bad problem line: %+v", f.Problems[0])
	}
}

func TestParse_EnvironmentMarker(t *testing.T) {
	f := parseString(t, `colorama==0.4.5 ; sys_platform == "win32"` + "\n")

	if len(f.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", f.Problems)
	}
	req := f.Requirements[0]
	if req.Name != "colorama" || req.PinnedVersion() != "0.4.5" {
		t.Errorf("marker broke the declaration: %+v", req)
	}
	if !strings.Contains(req.Marker, "sys_platform") {
		t.Errorf("marker not preserved: %q", req.Marker)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Django":               "django",
		"typing_extensions":    "typing-extensions",
		"zope.interface":       "zope-interface",
		"weird__Mixed..Name":   "weird-mixed-name",
		"flake8-bugbear":       "flake8-bugbear",
		"ruamel.yaml.clib":     "ruamel-yaml-clib",
		"backports.zoneinfo":   "backports-zoneinfo",
		"Flask-SQLAlchemy":     "flask-sqlalchemy",
		"types-python-dateutil": "types-python-dateutil",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequirementString(t *testing.T) {
	f := parseString(t, "requests[socks,security]>=2.25,<3\n")
	got := f.Requirements[0].String()
	want := "requests[socks,security]>=2.25,<3"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
