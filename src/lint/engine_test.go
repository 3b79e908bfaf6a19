package lint

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pindown-dev/pindown/src/config"
)

// stubModule records how often it ran; registered once for the package's tests.
type stubModule struct {
	calls    *atomic.Int64
	findings []Finding
}

var stubCalls atomic.Int64

func init() {
	Register("stub", func() Module {
		return &stubModule{calls: &stubCalls}
	})
	Register("stub-noisy", func() Module {
		return &stubModule{
			calls: &stubCalls,
			findings: []Finding{{
				Module:   "stub-noisy",
				Severity: SeverityCritical,
				Message:  "always fires",
			}},
		}
	})
}

func (m *stubModule) Name() string {
	if len(m.findings) > 0 {
		return "stub-noisy"
	}
	return "stub"
}
func (m *stubModule) DefaultEnabled() bool { return false }

func (m *stubModule) Check(ctx context.Context, file FileInfo) ([]Finding, error) {
	m.calls.Add(1)
	out := make([]Finding, len(m.findings))
	for i, f := range m.findings {
		f.File = file.Path
		out[i] = f
	}
	return out, nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestCollectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt":              "flask==2.2.2\n",
		"requirements-dev.txt":          "black==22.8.0\n",
		"Pipfile":                       "[packages]\n",
		"services/api/requirements.txt": "requests==2.28.1\n",
		"constraints.txt":               "urllib3<2\n",
		"README.md":                     "# readme\n",
		"deps/extra.pip":                "click==8.1.3\n",
		".hidden/requirements.txt":      "never==1.0\n",
	})

	cfg := config.DefaultLintConfig()
	cfg.Include = []string{"deps/*.pip"}

	engine, err := NewEngine(cfg, root, []string{"stub"}, nil, false, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	files, err := engine.CollectFiles()
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	got := make(map[string]bool, len(files))
	for _, f := range files {
		got[filepath.ToSlash(f.Path)] = true
	}

	for _, want := range []string{
		"requirements.txt", "requirements-dev.txt", "Pipfile",
		"services/api/requirements.txt", "constraints.txt", "deps/extra.pip",
	} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, got)
		}
	}
	if got["README.md"] {
		t.Errorf("README.md is not a declaration file")
	}
	if got[".hidden/requirements.txt"] {
		t.Errorf("hidden directories must be skipped")
	}
}

func TestCollectFiles_Exclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt":        "flask==2.2.2\n",
		"vendor/requirements.txt": "bundled==0.1\n",
	})

	cfg := config.DefaultLintConfig()
	cfg.Exclude = []string{"vendor/**"}

	engine, err := NewEngine(cfg, root, []string{"stub"}, nil, false, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	files, err := engine.CollectFiles()
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	if len(files) != 1 || filepath.ToSlash(files[0].Path) != "requirements.txt" {
		t.Errorf("exclude glob ignored: %+v", files)
	}
}

func TestRunWithStats_CacheHits(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt": "flask==2.2.2\n",
	})

	cache := &Cache{Dir: t.TempDir(), Enabled: true}
	engine, err := NewEngine(config.DefaultLintConfig(), root, []string{"stub-noisy"}, nil, false, cache)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	files, err := engine.CollectFiles()
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	before := stubCalls.Load()

	findings, stats, err := engine.RunWithStats(context.Background(), files)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(findings) != 1 || findings[0].Severity != SeverityCritical {
		t.Fatalf("findings = %+v", findings)
	}
	if stats[0].Cached != 0 {
		t.Errorf("first run should be uncached: %+v", stats[0])
	}

	// Second run must come from cache without re-invoking the module.
	findings, stats, err = engine.RunWithStats(context.Background(), files)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("cached findings lost: %+v", findings)
	}
	if stats[0].Cached != 1 {
		t.Errorf("second run should hit the cache: %+v", stats[0])
	}
	if calls := stubCalls.Load() - before; calls != 1 {
		t.Errorf("module ran %d times, want 1", calls)
	}
}

func TestRunWithStats_CancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{
		"requirements.txt": "flask==2.2.2\n",
		"constraints.txt":  "urllib3<2\n",
	})

	engine, err := NewEngine(config.DefaultLintConfig(), root, []string{"stub"}, nil, false, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	files, err := engine.CollectFiles()
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := stubCalls.Load()
	if _, _, err := engine.RunWithStats(ctx, files); err == nil {
		t.Error("cancelled context must surface as an error")
	}
	if calls := stubCalls.Load() - before; calls != 0 {
		t.Errorf("module ran %d times under a cancelled context", calls)
	}
}

func TestFilterByDelta(t *testing.T) {
	files := []FileInfo{
		{Path: "requirements.txt"},
		{Path: "services/api/requirements.txt"},
	}

	filtered := FilterByDelta(files, map[string]bool{"requirements.txt": true})
	if len(filtered) != 1 || filtered[0].Path != "requirements.txt" {
		t.Errorf("delta filter: %+v", filtered)
	}

	// nil changed set means full scan.
	if got := FilterByDelta(files, nil); len(got) != len(files) {
		t.Errorf("nil set should pass everything through, got %+v", got)
	}
}

func TestNewEngine_SelectionAndSkip(t *testing.T) {
	cfg := config.DefaultLintConfig()

	engine, err := NewEngine(cfg, t.TempDir(), []string{"stub", "stub-noisy"}, []string{"stub-noisy"}, false, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	names := engine.ModuleNames()
	if len(names) != 1 || names[0] != "stub" {
		t.Errorf("modules = %v", names)
	}

	if _, err := NewEngine(cfg, t.TempDir(), []string{"no-such"}, nil, false, nil); err == nil {
		t.Errorf("unknown module must error")
	}
}
