package requirements

import (
	"fmt"
	"os"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ParsePipfile parses the TOML Pipfile dialect into the same File shape as
// the line-oriented format. [packages] and [dev-packages] entries both
// count as declarations; other sections belong to the installer.
func ParsePipfile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePipfileBytes(data, path)
}

func parsePipfileBytes(data []byte, path string) (*File, error) {
	var pf struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("requirements: parse Pipfile %s: %w", path, err)
	}

	file := &File{Path: path}
	lines := strings.Split(string(data), "\n")

	appendSection := func(pkgs map[string]any) {
		// TOML maps are unordered; sort for stable output.
		names := make([]string, 0, len(pkgs))
		for name := range pkgs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			line := pipfileLine(lines, name)
			req, err := pipfileRequirement(name, pkgs[name])
			if err != nil {
				file.Problems = append(file.Problems, ParseError{
					File:   path,
					Line:   line,
					Raw:    name,
					Reason: err.Error(),
				})
				continue
			}
			req.File = path
			req.Line = line
			file.Requirements = append(file.Requirements, *req)
		}
	}

	appendSection(pf.Packages)
	appendSection(pf.DevPackages)
	return file, nil
}

// pipfileRequirement converts one Pipfile entry. Specs are either a bare
// string ("==1.0", "*") or a table ({version = "==1.0"} or {git = "...",
// ref = "..."}).
func pipfileRequirement(name string, spec any) (*Requirement, error) {
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("invalid package name %q", name)
	}

	switch v := spec.(type) {
	case string:
		req := &Requirement{Name: name, Raw: name + " = " + quote(v)}
		if v == "" || v == "*" {
			return req, nil // unconstrained
		}
		set, err := ParseSpecifierSet(v)
		if err != nil {
			return nil, err
		}
		req.Specifiers = set
		return req, nil

	case map[string]any:
		if gitURL, ok := v["git"].(string); ok {
			ref := &VCSRef{VCS: "git", URL: gitURL, Egg: name, Raw: gitURL}
			if rev, ok := v["ref"].(string); ok {
				ref.Rev = rev
			}
			return &Requirement{Name: name, VCS: ref, Raw: name}, nil
		}
		req := &Requirement{Name: name, Raw: name}
		if ver, ok := v["version"].(string); ok && ver != "" && ver != "*" {
			set, err := ParseSpecifierSet(ver)
			if err != nil {
				return nil, err
			}
			req.Specifiers = set
		}
		if extras, ok := v["extras"].([]any); ok {
			for _, e := range extras {
				if s, ok := e.(string); ok {
					req.Extras = append(req.Extras, s)
				}
			}
		}
		return req, nil
	}

	return nil, fmt.Errorf("unsupported Pipfile spec for %q", name)
}

// pipfileLine finds the approximate line number for a Pipfile key.
func pipfileLine(lines []string, key string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, key+" ") || strings.HasPrefix(trimmed, key+"=") || strings.HasPrefix(trimmed, `"`+key+`"`) {
			return i + 1
		}
	}
	return 0
}

func quote(s string) string { return `"` + s + `"` }

// IsDeclarationFile reports whether a filename looks like a declaration
// file this package understands.
func IsDeclarationFile(base string) bool {
	if base == "Pipfile" {
		return true
	}
	if strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt") {
		return true
	}
	return base == "constraints.txt" || base == "dev-requirements.txt"
}
