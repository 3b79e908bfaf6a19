// Package freshness checks declaration files for outdated pins.
//
// Each pinned declaration is resolved against the package index for its
// latest available release, compared as a version delta, and reported
// through the check engine with configurable severity and tolerance.
// Known vulnerabilities are correlated via the OSV database, and yanked
// releases produce advisories. The same Dependency records feed the
// `pindown outdated` report.
package freshness

import "github.com/pindown-dev/pindown/src/lint"

func init() {
	lint.Register("freshness", func() lint.Module { return newModule() })
}
