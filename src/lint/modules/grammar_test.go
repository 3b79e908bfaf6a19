package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pindown-dev/pindown/src/lint"
)

func writeTempFile(t *testing.T, name string, content []byte) lint.FileInfo {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return lint.FileInfo{Path: name, AbsPath: path}
}

func TestGrammar_CleanFile(t *testing.T) {
	fi := writeTempFile(t, "requirements.txt", []byte("# tools\nblack==22.8.0\nbandit>=1.7.4,<2.0.0\n\ngit+https://github.com/org/repo.git@v1.0#egg=plugin\n"))

	m := &grammarModule{}
	findings, err := m.Check(context.Background(), fi)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("clean file produced findings: %+v", findings)
	}
}

func TestGrammar_FlagsBadLines(t *testing.T) {
	fi := writeTempFile(t, "requirements.txt", []byte("good==1.0\n==2.0\ncvs+https://example.com/repo\n"))

	m := &grammarModule{}
	findings, err := m.Check(context.Background(), fi)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	for _, f := range findings {
		if f.Severity != lint.SeverityCritical {
			t.Errorf("grammar findings are critical, got %v", f.Severity)
		}
		if f.Module != "grammar" {
			t.Errorf("Module = %q", f.Module)
		}
	}
	if findings[0].Line != 2 || findings[1].Line != 3 {
		t.Errorf("bad line positions: %+v", findings)
	}
}

func TestGrammar_PipfileDispatch(t *testing.T) {
	fi := writeTempFile(t, "Pipfile", []byte("[packages]\nflask = \"==2.2.2\"\nbroken = \"=>1.0\"\n"))

	m := &grammarModule{}
	findings, err := m.Check(context.Background(), fi)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding from Pipfile, got %+v", findings)
	}
}
