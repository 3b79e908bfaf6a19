package freshness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// osvEndpoint is the OSV.dev batch-free query endpoint.
const osvEndpoint = "https://api.osv.dev/v1/query"

type osvQueryRequest struct {
	Version string     `json:"version"`
	Package osvPackage `json:"package"`
}

type osvPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type osvQueryResponse struct {
	Vulns []osvVuln `json:"vulns"`
}

type osvVuln struct {
	ID       string        `json:"id"`
	Summary  string        `json:"summary"`
	Details  string        `json:"details"`
	Severity []osvSeverity `json:"severity"`
	Affected []osvAffected `json:"affected"`
	Database struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

type osvSeverity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

type osvAffected struct {
	Package  osvPackage `json:"package"`
	Ranges   []osvRange `json:"ranges"`
	Database struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

type osvRange struct {
	Type   string     `json:"type"`
	Events []osvEvent `json:"events"`
}

type osvEvent struct {
	Introduced string `json:"introduced"`
	Fixed      string `json:"fixed"`
}

// correlateVulns queries OSV for each pinned dependency and attaches any
// advisories at or above the configured minimum severity. Failures are
// silent: vulnerability data is an enrichment, not a gate.
func (m *freshnessModule) correlateVulns(ctx context.Context, deps []Dependency) {
	if !m.cfg.vulnEnabled() {
		return
	}

	client := &http.Client{Timeout: time.Duration(m.cfg.Timeout) * time.Second}

	for i := range deps {
		dep := &deps[i]
		if dep.Current == "" {
			continue
		}

		vulns, err := queryOSV(ctx, client, dep.Name, dep.Current)
		if err != nil {
			continue
		}

		for _, v := range vulns {
			sev := extractSeverity(v)
			if !meetsMinSeverity(sev, m.cfg.Vulnerability.MinSeverity) {
				continue
			}

			summary := v.Summary
			if summary == "" {
				summary = firstLine(v.Details)
			}

			dep.Vulnerabilities = append(dep.Vulnerabilities, VulnInfo{
				ID:       v.ID,
				Summary:  summary,
				Severity: sev,
				FixedIn:  extractFixedVersion(v, dep.Name),
			})
		}
	}
}

func queryOSV(ctx context.Context, client *http.Client, name, version string) ([]osvVuln, error) {
	body, err := json.Marshal(osvQueryRequest{
		Version: version,
		Package: osvPackage{Name: name, Ecosystem: "PyPI"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, osvEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osv query returned %d", resp.StatusCode)
	}

	var parsed osvQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Vulns, nil
}

// extractSeverity returns the highest severity label found on a vuln,
// checking database_specific labels first and falling back to CVSS scores.
func extractSeverity(v osvVuln) string {
	if v.Database.Severity != "" {
		return strings.ToUpper(v.Database.Severity)
	}
	for _, aff := range v.Affected {
		if aff.Database.Severity != "" {
			return strings.ToUpper(aff.Database.Severity)
		}
	}
	best := ""
	for _, s := range v.Severity {
		label := cvssToLabel(parseCVSSBaseScore(s.Score))
		if severityRank(label) > severityRank(best) {
			best = label
		}
	}
	if best == "" {
		return "UNKNOWN"
	}
	return best
}

// parseCVSSBaseScore handles the two score formats OSV publishes: plain
// numeric base scores, and CVSS vector strings which carry no precomputed
// score and get a coarse estimate instead.
func parseCVSSBaseScore(score string) float64 {
	if f, err := strconv.ParseFloat(score, 64); err == nil {
		return f
	}
	// Network-reachable vectors estimate higher.
	if strings.Contains(score, "AV:N") {
		return 7.5
	}
	if strings.Contains(score, "CVSS:") {
		return 5.0
	}
	return 0
}

func cvssToLabel(score float64) string {
	switch {
	case score >= 9.0:
		return "CRITICAL"
	case score >= 7.0:
		return "HIGH"
	case score >= 4.0:
		return "MODERATE"
	case score > 0:
		return "LOW"
	default:
		return ""
	}
}

func severityRank(sev string) int {
	switch strings.ToUpper(sev) {
	case "CRITICAL":
		return 4
	case "HIGH":
		return 3
	case "MODERATE", "MEDIUM":
		return 2
	case "LOW":
		return 1
	default:
		return 0
	}
}

func meetsMinSeverity(sev, min string) bool {
	if min == "" {
		return true
	}
	return severityRank(sev) >= severityRank(min)
}

// extractFixedVersion returns the first fixed version listed for the
// package across the vuln's affected ranges.
func extractFixedVersion(v osvVuln, name string) string {
	for _, aff := range v.Affected {
		if !strings.EqualFold(aff.Package.Name, name) {
			continue
		}
		for _, r := range aff.Ranges {
			for _, e := range r.Events {
				if e.Fixed != "" {
					return e.Fixed
				}
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
