// Package requirements parses pip-style dependency declaration files:
// line-oriented lists of package names with optional version constraints,
// consumed by an external installer. The package models each line as a
// [Requirement] (registry lookup or direct repository reference) or an
// [Option] (installer flag), preserving file positions for reporting.
package requirements

import "strings"

// Requirement is a single dependency declaration.
// Exactly one of two shapes: a registry lookup by Name (with optional
// Specifiers), or a direct repository reference (VCS non-nil).
type Requirement struct {
	Name       string       // normalized package name ("" for VCS refs without #egg)
	Extras     []string     // e.g. requests[socks,security]
	Specifiers SpecifierSet // empty = unconstrained
	Marker     string       // raw environment marker after ';' (uninterpreted)
	VCS        *VCSRef      // non-nil for direct repository references
	File       string       // relative path of the declaring file
	Line       int          // 1-based line number
	Raw        string       // original line text, trimmed
}

// Pinned reports whether the declaration resolves to exactly one version:
// a single == or === specifier with no wildcard.
func (r *Requirement) Pinned() bool {
	return r.PinnedVersion() != ""
}

// PinnedVersion returns the exact pinned version, or "" when the
// declaration is unconstrained, ranged, or wildcarded.
func (r *Requirement) PinnedVersion() string {
	if r.VCS != nil {
		return ""
	}
	if len(r.Specifiers) != 1 {
		return ""
	}
	s := r.Specifiers[0]
	if s.Op != OpEqual && s.Op != OpArbitraryEqual {
		return ""
	}
	if strings.Contains(s.Version, "*") {
		return ""
	}
	return s.Version
}

// String renders the canonical single-line form of the declaration.
func (r *Requirement) String() string {
	if r.VCS != nil {
		return r.VCS.String()
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	b.WriteString(r.Specifiers.String())
	if r.Marker != "" {
		b.WriteString(" ; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}

// Option is an installer flag line (e.g. "-r base.txt", "--index-url ...").
// pindown records these for display but never interprets them; they belong
// to the external installer.
type Option struct {
	Flag  string // e.g. "-r", "--index-url"
	Value string // remainder of the line, trimmed
	Line  int
	Raw   string
}

// File is the parsed form of one declaration file.
// Problems collects grammar violations without aborting the parse, so a
// single malformed line does not hide the rest of the file.
type File struct {
	Path         string
	Requirements []Requirement
	Options      []Option
	Problems     []ParseError
}

// Names returns the declared package names in file order (VCS refs
// contribute their #egg name when present).
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Requirements))
	for _, r := range f.Requirements {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}
