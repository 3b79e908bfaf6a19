package requirements

import (
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// Comparison operators, longest-match-first for parsing.
const (
	OpArbitraryEqual = "===" // string equality, no version semantics
	OpEqual          = "=="
	OpCompatible     = "~="
	OpNotEqual       = "!="
	OpGreaterEqual   = ">="
	OpLessEqual      = "<="
	OpGreater        = ">"
	OpLess           = "<"
)

var specifierOps = []string{
	OpArbitraryEqual, OpEqual, OpCompatible, OpNotEqual,
	OpGreaterEqual, OpLessEqual, OpGreater, OpLess,
}

// Specifier is one version constraint: an operator and a version literal.
type Specifier struct {
	Op      string
	Version string
}

// ParseSpecifier parses a single constraint like ">=1.7.4".
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	for _, op := range specifierOps {
		if !strings.HasPrefix(s, op) {
			continue
		}
		ver := strings.TrimSpace(s[len(op):])
		if ver == "" {
			return Specifier{}, fmt.Errorf("specifier %q: missing version after %s", s, op)
		}
		if err := validateVersionLiteral(op, ver); err != nil {
			return Specifier{}, fmt.Errorf("specifier %q: %w", s, err)
		}
		return Specifier{Op: op, Version: ver}, nil
	}
	return Specifier{}, fmt.Errorf("specifier %q: unknown operator", s)
}

// validateVersionLiteral rejects characters that cannot appear in a version
// token and wildcards outside ==/!= position.
func validateVersionLiteral(op, ver string) error {
	for _, c := range ver {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c == '.' || c == '-' || c == '_' || c == '+' || c == '!' || c == '*':
		default:
			return fmt.Errorf("invalid character %q in version %q", c, ver)
		}
	}
	if strings.Contains(ver, "*") && op != OpEqual && op != OpNotEqual {
		return fmt.Errorf("wildcard version %q only valid with == or !=", ver)
	}
	return nil
}

func (s Specifier) String() string { return s.Op + s.Version }

// Match reports whether the given version satisfies this constraint.
// Versions that fail to parse as semver match only via string equality
// on == and ===; ordered comparisons on unparseable versions are false.
func (s Specifier) Match(version string) bool {
	switch s.Op {
	case OpArbitraryEqual:
		return version == s.Version
	case OpEqual:
		if strings.HasSuffix(s.Version, ".*") {
			return wildcardMatch(strings.TrimSuffix(s.Version, ".*"), version)
		}
		if versionsEqual(version, s.Version) {
			return true
		}
		return version == s.Version
	case OpNotEqual:
		if strings.HasSuffix(s.Version, ".*") {
			return !wildcardMatch(strings.TrimSuffix(s.Version, ".*"), version)
		}
		return !versionsEqual(version, s.Version) && version != s.Version
	case OpCompatible:
		return compatibleMatch(s.Version, version)
	}

	v := parseVersion(version)
	bound := parseVersion(s.Version)
	if v == nil || bound == nil {
		return false
	}
	switch s.Op {
	case OpGreaterEqual:
		return !v.LessThan(bound)
	case OpLessEqual:
		return !v.GreaterThan(bound)
	case OpGreater:
		return v.GreaterThan(bound)
	case OpLess:
		return v.LessThan(bound)
	}
	return false
}

// wildcardMatch implements "==1.2.*": version must equal or extend prefix.
func wildcardMatch(prefix, version string) bool {
	version = strings.TrimPrefix(version, "v")
	return version == prefix || strings.HasPrefix(version, prefix+".")
}

// compatibleMatch implements "~=X.Y[.Z]": >=X.Y.Z with the last declared
// component free to grow. "~=1.4.2" means >=1.4.2,<1.5.0; "~=1.4" means
// >=1.4,<2.0.
func compatibleMatch(bound, version string) bool {
	v := parseVersion(version)
	b := parseVersion(bound)
	if v == nil || b == nil {
		return false
	}
	if v.LessThan(b) {
		return false
	}
	segments := strings.Split(strings.TrimPrefix(bound, "v"), ".")
	if len(segments) < 2 {
		return false // ~= requires at least two components
	}
	if len(segments) == 2 {
		return v.Major() == b.Major()
	}
	return v.Major() == b.Major() && v.Minor() == b.Minor()
}

// versionsEqual compares two version strings semantically (1.0 == 1.0.0).
func versionsEqual(a, b string) bool {
	va := parseVersion(a)
	vb := parseVersion(b)
	if va == nil || vb == nil {
		return false
	}
	return va.Equal(vb)
}

// parseVersion attempts a lenient semver parse: leading 'v' stripped,
// local version segments (+local) and epoch markers (N!) removed.
// Returns nil when the literal has no usable version shape.
func parseVersion(s string) *masterminds.Version {
	clean := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if idx := strings.IndexByte(clean, '!'); idx >= 0 {
		clean = clean[idx+1:]
	}
	if idx := strings.IndexByte(clean, '+'); idx >= 0 {
		clean = clean[:idx]
	}
	v, err := masterminds.NewVersion(clean)
	if err != nil {
		return nil
	}
	return v
}

// SpecifierSet is a comma-separated conjunction of specifiers.
// All members must match for the set to match.
type SpecifierSet []Specifier

// ParseSpecifierSet parses a comma-separated constraint list like
// ">=1.7.4,<2.0.0". An empty string yields an empty (unconstrained) set.
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	set := make(SpecifierSet, 0, len(parts))
	for _, part := range parts {
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	return set, nil
}

// Match reports whether version satisfies every specifier in the set.
// The empty set matches everything.
func (ss SpecifierSet) Match(version string) bool {
	for _, s := range ss {
		if !s.Match(version) {
			return false
		}
	}
	return true
}

func (ss SpecifierSet) String() string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Satisfiable reports whether any version could satisfy the set.
// It checks the parseable ordered bounds against each other and against
// exact pins; sets with only unparseable versions are assumed satisfiable.
func (ss SpecifierSet) Satisfiable() bool {
	var lower, upper *masterminds.Version
	var lowerExcl, upperExcl bool

	for _, s := range ss {
		v := parseVersion(s.Version)
		if v == nil {
			continue
		}
		switch s.Op {
		case OpGreater, OpGreaterEqual:
			if lower == nil || v.GreaterThan(lower) {
				lower = v
				lowerExcl = s.Op == OpGreater
			}
		case OpLess, OpLessEqual:
			if upper == nil || v.LessThan(upper) {
				upper = v
				upperExcl = s.Op == OpLess
			}
		}
	}

	if lower != nil && upper != nil {
		if lower.GreaterThan(upper) {
			return false
		}
		if lower.Equal(upper) && (lowerExcl || upperExcl) {
			return false
		}
	}

	// Exact pins must fall inside the ordered bounds, agree with each
	// other, and not be excluded by a != specifier.
	var pin *masterminds.Version
	for _, s := range ss {
		if s.Op != OpEqual || strings.Contains(s.Version, "*") {
			continue
		}
		v := parseVersion(s.Version)
		if v == nil {
			continue
		}
		if pin != nil && !v.Equal(pin) {
			return false
		}
		pin = v
		if lower != nil && (v.LessThan(lower) || (v.Equal(lower) && lowerExcl)) {
			return false
		}
		if upper != nil && (v.GreaterThan(upper) || (v.Equal(upper) && upperExcl)) {
			return false
		}
	}
	if pin != nil {
		for _, s := range ss {
			if s.Op != OpNotEqual || strings.Contains(s.Version, "*") {
				continue
			}
			if v := parseVersion(s.Version); v != nil && v.Equal(pin) {
				return false
			}
		}
	}

	return true
}
