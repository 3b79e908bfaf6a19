package freshness

// Dependency is a version-pinned declaration resolved against the index.
// It is the bridge type consumed by both check reporting and the
// outdated command.
type Dependency struct {
	Name       string // declared package name
	Current    string // pinned version ("" for unpinned/ranged declarations)
	Specifiers string // declared constraint set, canonical form
	Latest     string // latest available (filled by resolver)
	File       string // relative path of the declaring file
	Line       int    // line number of the declaration
	SourceURL  string // index API URL that was queried
	Yanked     bool   // the pinned release is yanked from the index
	Advisory   string // informational note (e.g. yanked release)

	// Vulnerability info populated by the OSV correlation pass.
	Vulnerabilities []VulnInfo
}

// VulnInfo describes a single known vulnerability affecting a dependency.
type VulnInfo struct {
	ID       string // e.g. "GHSA-xxxx-yyyy-zzzz", "CVE-2024-12345"
	Summary  string // short description
	Severity string // "LOW", "MODERATE", "HIGH", "CRITICAL" (from OSV/CVSS)
	FixedIn  string // version that fixes the vulnerability (if known)
}
