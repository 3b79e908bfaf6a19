package requirements

import (
	"fmt"
	"strings"
)

// VCSRef is a direct repository reference, e.g.
// git+https://github.com/org/repo.git@v1.2.3#egg=name&subdirectory=pkg
type VCSRef struct {
	VCS          string // "git", "hg", "svn", "bzr"
	URL          string // clone URL without the vcs+ prefix, rev, or fragment
	Rev          string // tag, branch, or commit after '@' ("" = default branch)
	Egg          string // package name from the #egg= fragment
	Subdirectory string // from the #subdirectory= fragment
	Raw          string
}

var vcsSchemes = []string{"git", "hg", "svn", "bzr"}

// IsVCSURL reports whether a declaration line is a direct repository
// reference rather than a registry lookup.
func IsVCSURL(s string) bool {
	for _, vcs := range vcsSchemes {
		if strings.HasPrefix(s, vcs+"+") {
			return true
		}
	}
	return false
}

// ParseVCSURL parses a direct repository reference.
func ParseVCSURL(s string) (*VCSRef, error) {
	ref := &VCSRef{Raw: s}

	plus := strings.IndexByte(s, '+')
	if plus < 0 {
		return nil, fmt.Errorf("repository reference %q: missing vcs+ prefix", s)
	}
	ref.VCS = s[:plus]
	rest := s[plus+1:]

	valid := false
	for _, vcs := range vcsSchemes {
		if ref.VCS == vcs {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("repository reference %q: unsupported vcs %q", s, ref.VCS)
	}

	// Fragment carries egg / subdirectory metadata.
	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		parseFragment(ref, rest[idx+1:])
		rest = rest[:idx]
	}

	schemeEnd := strings.Index(rest, "://")
	if schemeEnd < 0 {
		return nil, fmt.Errorf("repository reference %q: missing scheme", s)
	}

	// A '@' in the path portion selects a revision. The userinfo '@'
	// (git+ssh://git@host/...) sits before the first path slash and is
	// not a revision separator.
	pathStart := strings.IndexByte(rest[schemeEnd+3:], '/')
	if pathStart >= 0 {
		pathStart += schemeEnd + 3
		if at := strings.LastIndexByte(rest[pathStart:], '@'); at >= 0 {
			ref.Rev = rest[pathStart+at+1:]
			rest = rest[:pathStart+at]
			if ref.Rev == "" {
				return nil, fmt.Errorf("repository reference %q: empty revision after '@'", s)
			}
		}
	}

	ref.URL = rest
	return ref, nil
}

// parseFragment extracts egg= and subdirectory= from a '#' fragment.
func parseFragment(ref *VCSRef, frag string) {
	for _, part := range strings.Split(frag, "&") {
		switch {
		case strings.HasPrefix(part, "egg="):
			ref.Egg = strings.TrimPrefix(part, "egg=")
		case strings.HasPrefix(part, "subdirectory="):
			ref.Subdirectory = strings.TrimPrefix(part, "subdirectory=")
		}
	}
}

// String reconstructs the canonical declaration form.
func (v *VCSRef) String() string {
	var b strings.Builder
	b.WriteString(v.VCS)
	b.WriteString("+")
	b.WriteString(v.URL)
	if v.Rev != "" {
		b.WriteString("@")
		b.WriteString(v.Rev)
	}
	if v.Egg != "" || v.Subdirectory != "" {
		b.WriteString("#")
		sep := ""
		if v.Egg != "" {
			b.WriteString("egg=")
			b.WriteString(v.Egg)
			sep = "&"
		}
		if v.Subdirectory != "" {
			b.WriteString(sep)
			b.WriteString("subdirectory=")
			b.WriteString(v.Subdirectory)
		}
	}
	return b.String()
}
