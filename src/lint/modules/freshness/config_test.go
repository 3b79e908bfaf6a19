package freshness

import "testing"

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Severity.Major != 2 || cfg.Severity.Minor != 1 || cfg.Severity.Patch != 0 {
		t.Errorf("severity defaults = %+v", cfg.Severity)
	}
	if cfg.Severity.PatchTolerance != 1 {
		t.Errorf("patch tolerance = %d", cfg.Severity.PatchTolerance)
	}
	if !cfg.vulnEnabled() || !cfg.vulnSeverityOverride() {
		t.Error("vulnerability correlation should default on")
	}
	if cfg.Timeout != 10 || cfg.CacheTTLMins != 360 {
		t.Errorf("timeout=%d cache_ttl=%d", cfg.Timeout, cfg.CacheTTLMins)
	}
}

func TestParseConfig_Overrides(t *testing.T) {
	cfg, err := parseConfig(map[string]any{
		"registry": map[string]any{
			"url":      "https://pypi.internal/pypi",
			"auth_env": "PYPI_TOKEN",
		},
		"severity": map[string]any{
			"major":           1,
			"minor_tolerance": 2,
		},
		"vulnerability": map[string]any{
			"enabled": false,
		},
		"ignore":  []any{"types-*", "boto3"},
		"timeout": 3,
	})
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if got := cfg.registryURL("https://pypi.org/pypi"); got != "https://pypi.internal/pypi" {
		t.Errorf("registryURL = %q", got)
	}
	if cfg.registryAuthEnv() != "PYPI_TOKEN" {
		t.Errorf("auth env = %q", cfg.registryAuthEnv())
	}
	if cfg.Severity.Major != 1 {
		t.Errorf("major severity = %d", cfg.Severity.Major)
	}
	if cfg.Severity.MinorTolerance != 2 {
		t.Errorf("minor tolerance = %d", cfg.Severity.MinorTolerance)
	}
	// Untouched fields keep their defaults.
	if cfg.Severity.Minor != 1 || cfg.Severity.PatchTolerance != 1 {
		t.Errorf("defaults clobbered: %+v", cfg.Severity)
	}
	if cfg.vulnEnabled() {
		t.Error("vulnerability correlation should be off")
	}
	if cfg.Timeout != 3 {
		t.Errorf("timeout = %d", cfg.Timeout)
	}
}

func TestParseConfig_BadOptions(t *testing.T) {
	if _, err := parseConfig(map[string]any{"timeout": "soon"}); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
}

func TestIsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ignore = []string{"types-*", "boto3"}

	cases := []struct {
		name string
		want bool
	}{
		{"types-requests", true},
		{"types-setuptools", true},
		{"boto3", true},
		{"botocore", false},
		{"requests", false},
	}
	for _, c := range cases {
		if got := cfg.isIgnored(c.name); got != c.want {
			t.Errorf("isIgnored(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRegistryURL_Default(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.registryURL("https://pypi.org/pypi"); got != "https://pypi.org/pypi" {
		t.Errorf("registryURL = %q", got)
	}
	if cfg.registryAuthEnv() != "" {
		t.Errorf("auth env = %q", cfg.registryAuthEnv())
	}
}
