package freshness

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// FreshnessConfig holds registry overrides, severity mapping,
// vulnerability correlation, and ignore configuration.
type FreshnessConfig struct {
	Registry      *RegistryEndpoint `json:"registry"`
	Severity      SeverityConfig    `json:"severity"`
	Vulnerability VulnConfig        `json:"vulnerability"`
	Ignore        []string          `json:"ignore"`
	Timeout       int               `json:"timeout"`   // HTTP timeout in seconds (default 10)
	CacheTTLMins  int               `json:"cache_ttl"` // finding cache lifetime in minutes (default 360)
}

// RegistryEndpoint is a custom index URL with optional auth.
//
// .pindown.yml example:
//
//	modules:
//	  freshness:
//	    options:
//	      registry:
//	        url: "https://pypi.company.com/pypi"
//	        auth_env: "PYPI_TOKEN"
type RegistryEndpoint struct {
	URL     string `json:"url"`      // base URL (default "https://pypi.org/pypi")
	AuthEnv string `json:"auth_env"` // env var name holding auth token (Bearer)
}

// VulnConfig controls vulnerability correlation via the OSV database.
//
// .pindown.yml example:
//
//	vulnerability:
//	  enabled: true
//	  min_severity: "moderate"
//	  severity_override: true
type VulnConfig struct {
	Enabled          *bool  `json:"enabled"`           // default true
	MinSeverity      string `json:"min_severity"`      // "low", "moderate", "high", "critical" (default: "moderate")
	SeverityOverride *bool  `json:"severity_override"` // CVE-affected deps escalate to critical (default: true)
}

// SeverityConfig maps version-delta levels to check severities and
// controls how many versions behind are tolerated before reporting.
type SeverityConfig struct {
	Major int `json:"major"` // 0=info, 1=warning, 2=critical (default: 2)
	Minor int `json:"minor"` // default: 1
	Patch int `json:"patch"` // default: 0

	MajorTolerance int `json:"major_tolerance"` // default: 0
	MinorTolerance int `json:"minor_tolerance"` // default: 0
	PatchTolerance int `json:"patch_tolerance"` // default: 1
}

// DefaultConfig returns production defaults.
func DefaultConfig() FreshnessConfig {
	return FreshnessConfig{
		Severity: SeverityConfig{
			Major:          2, // critical
			Minor:          1, // warning
			Patch:          0, // info
			MajorTolerance: 0,
			MinorTolerance: 0,
			PatchTolerance: 1,
		},
		Vulnerability: VulnConfig{
			MinSeverity: "moderate",
		},
		Timeout:      10,
		CacheTTLMins: 360,
	}
}

// parseConfig deserialises the raw YAML options map into FreshnessConfig.
// Missing fields keep their defaults.
func parseConfig(opts map[string]any) (FreshnessConfig, error) {
	cfg := DefaultConfig()
	if opts == nil {
		return cfg, nil
	}
	// Round-trip through JSON so mapstructure-style decoding works
	// without pulling in a new dependency.
	raw, err := json.Marshal(opts)
	if err != nil {
		return cfg, fmt.Errorf("freshness: marshal options: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("freshness: unmarshal options: %w", err)
	}
	return cfg, nil
}

// vulnEnabled returns whether vulnerability correlation is active.
func (c *FreshnessConfig) vulnEnabled() bool {
	if c.Vulnerability.Enabled == nil {
		return true // default on
	}
	return *c.Vulnerability.Enabled
}

// vulnSeverityOverride returns whether CVE-affected deps should be
// escalated to critical regardless of version delta.
func (c *FreshnessConfig) vulnSeverityOverride() bool {
	if c.Vulnerability.SeverityOverride == nil {
		return true // default on
	}
	return *c.Vulnerability.SeverityOverride
}

// isIgnored returns true if name matches any ignore glob.
func (c *FreshnessConfig) isIgnored(name string) bool {
	for _, pattern := range c.Ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// registryURL returns the custom index URL, or defaultURL when none is set.
func (c *FreshnessConfig) registryURL(defaultURL string) string {
	if c.Registry != nil && c.Registry.URL != "" {
		return c.Registry.URL
	}
	return defaultURL
}

// registryAuthEnv returns the configured auth env var, or "".
func (c *FreshnessConfig) registryAuthEnv() string {
	if c.Registry != nil {
		return c.Registry.AuthEnv
	}
	return ""
}
