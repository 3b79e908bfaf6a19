package requirements

import (
	"os"
	"path/filepath"
	"testing"
)

const samplePipfile = `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]
requests = {version = "==2.28.1", extras = ["socks"]}
flask = ">=2.0,<3.0"
click = "*"
acl-plugin = {git = "https://github.com/example/acl-plugin.git", ref = "v0.3.1"}

[dev-packages]
black = "==22.8.0"
`

func writePipfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Pipfile")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write Pipfile: %v", err)
	}
	return path
}

func TestParsePipfile(t *testing.T) {
	f, err := ParsePipfile(writePipfile(t, samplePipfile))
	if err != nil {
		t.Fatalf("ParsePipfile: %v", err)
	}
	if len(f.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", f.Problems)
	}
	if len(f.Requirements) != 5 {
		t.Fatalf("expected 5 declarations, got %v", f.Names())
	}

	requests := findRequirement(t, f, "requests")
	if requests.PinnedVersion() != "2.28.1" {
		t.Errorf("requests: expected pin 2.28.1, got %q", requests.Specifiers)
	}
	if len(requests.Extras) != 1 || requests.Extras[0] != "socks" {
		t.Errorf("requests: extras = %v", requests.Extras)
	}

	flask := findRequirement(t, f, "flask")
	if flask.Pinned() {
		t.Errorf("flask: range must not report pinned")
	}
	if len(flask.Specifiers) != 2 {
		t.Errorf("flask: specifiers = %v", flask.Specifiers)
	}

	click := findRequirement(t, f, "click")
	if len(click.Specifiers) != 0 {
		t.Errorf("click: \"*\" should be unconstrained, got %v", click.Specifiers)
	}

	plugin := findRequirement(t, f, "acl-plugin")
	if plugin.VCS == nil {
		t.Fatalf("acl-plugin: expected repository reference")
	}
	if plugin.VCS.URL != "https://github.com/example/acl-plugin.git" || plugin.VCS.Rev != "v0.3.1" {
		t.Errorf("acl-plugin: ref = %+v", plugin.VCS)
	}

	black := findRequirement(t, f, "black")
	if black.PinnedVersion() != "22.8.0" {
		t.Errorf("dev-packages not parsed: %+v", black)
	}
	if black.Line == 0 {
		t.Errorf("black: expected a line number from the source text")
	}
}

func TestParsePipfile_BadSpecifier(t *testing.T) {
	f, err := ParsePipfile(writePipfile(t, "[packages]\nbroken = \"=>1.0\"\n"))
	if err != nil {
		t.Fatalf("ParsePipfile: %v", err)
	}
	if len(f.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %v", f.Problems)
	}
}

func TestIsDeclarationFile(t *testing.T) {
	for _, base := range []string{
		"requirements.txt", "requirements-dev.txt", "requirements_test.txt",
		"constraints.txt", "dev-requirements.txt", "Pipfile",
	} {
		if !IsDeclarationFile(base) {
			t.Errorf("IsDeclarationFile(%q) = false", base)
		}
	}
	for _, base := range []string{"setup.py", "pyproject.toml", "requirements.yml", "pipfile"} {
		if IsDeclarationFile(base) {
			t.Errorf("IsDeclarationFile(%q) = true", base)
		}
	}
}
