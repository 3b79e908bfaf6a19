package requirements

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ParseError describes one malformed declaration line.
type ParseError struct {
	File   string
	Line   int
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// namePattern follows the PEP 508 naming rule: alphanumeric start and end,
// dots/hyphens/underscores inside.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// ParseFile reads and parses a declaration file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a declaration file line by line. Blank lines and comment
// lines beginning with '#' are ignored; each remaining line yields at most
// one declaration or one installer option. Grammar violations are collected
// into File.Problems rather than aborting, so every line gets inspected.
// Only I/O failures return an error.
func Parse(r io.Reader, path string) (*File, error) {
	file := &File{Path: path}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	startLine := 0
	var pending strings.Builder

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Trailing-backslash continuation joins physical lines into one
		// logical declaration.
		if pending.Len() == 0 {
			startLine = lineNum
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, "\\") {
			pending.WriteString(strings.TrimSuffix(trimmed, "\\"))
			continue
		}
		pending.WriteString(line)
		logical := pending.String()
		pending.Reset()

		parseLogicalLine(file, logical, startLine)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("requirements: reading %s: %w", path, err)
	}
	if pending.Len() > 0 {
		// File ended mid-continuation; parse what we have.
		parseLogicalLine(file, pending.String(), startLine)
	}

	return file, nil
}

// parseLogicalLine classifies one logical line and appends the result.
func parseLogicalLine(file *File, line string, lineNum int) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	// Strip inline comments. A '#' only starts a comment when preceded by
	// whitespace, so VCS fragments like #egg= survive.
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
		if line == "" {
			return
		}
	}

	// Installer options belong to the external installer; record and move on.
	if strings.HasPrefix(line, "-") {
		flag := line
		value := ""
		if idx := strings.IndexAny(line, " ="); idx >= 0 {
			flag = line[:idx]
			value = strings.TrimSpace(line[idx+1:])
		}
		file.Options = append(file.Options, Option{
			Flag:  flag,
			Value: value,
			Line:  lineNum,
			Raw:   line,
		})
		return
	}

	req, err := ParseLine(line)
	if err != nil {
		file.Problems = append(file.Problems, ParseError{
			File:   file.Path,
			Line:   lineNum,
			Raw:    line,
			Reason: err.Error(),
		})
		return
	}
	req.File = file.Path
	req.Line = lineNum
	file.Requirements = append(file.Requirements, *req)
}

// ParseLine parses a single declaration: "<name>==<version>",
// "<name>>=<low>,<high>", a bare "<name>", or a direct repository
// reference. File and Line are left for the caller to fill.
func ParseLine(line string) (*Requirement, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty declaration")
	}

	if IsVCSURL(line) {
		ref, err := ParseVCSURL(line)
		if err != nil {
			return nil, err
		}
		return &Requirement{
			Name: ref.Egg,
			VCS:  ref,
			Raw:  line,
		}, nil
	}

	req := &Requirement{Raw: line}

	// Environment marker: everything after ';' is the installer's business.
	rest := line
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		req.Marker = strings.TrimSpace(rest[idx+1:])
		rest = strings.TrimSpace(rest[:idx])
		if rest == "" {
			return nil, fmt.Errorf("declaration has a marker but no name")
		}
	}

	// Split name[extras] from the specifier set at the first operator byte.
	nameEnd := strings.IndexAny(rest, "=<>!~")
	namePart := rest
	specPart := ""
	if nameEnd >= 0 {
		namePart = strings.TrimSpace(rest[:nameEnd])
		specPart = strings.TrimSpace(rest[nameEnd:])
	}

	// Extras: requests[socks,security]
	if idx := strings.IndexByte(namePart, '['); idx >= 0 {
		if !strings.HasSuffix(namePart, "]") {
			return nil, fmt.Errorf("unterminated extras in %q", namePart)
		}
		extras := namePart[idx+1 : len(namePart)-1]
		namePart = namePart[:idx]
		for _, e := range strings.Split(extras, ",") {
			e = strings.TrimSpace(e)
			if e == "" {
				return nil, fmt.Errorf("empty extra in %q", line)
			}
			req.Extras = append(req.Extras, e)
		}
	}

	if namePart == "" {
		return nil, fmt.Errorf("declaration %q has no package name", line)
	}
	if !namePattern.MatchString(namePart) {
		return nil, fmt.Errorf("invalid package name %q", namePart)
	}
	req.Name = namePart

	if specPart != "" {
		set, err := ParseSpecifierSet(specPart)
		if err != nil {
			return nil, err
		}
		req.Specifiers = set
	}

	return req, nil
}

// NormalizeName lowercases a package name and collapses runs of
// '.', '-', '_' into single hyphens, the way the package index does.
func NormalizeName(name string) string {
	var b strings.Builder
	prevSep := false
	for _, c := range strings.ToLower(name) {
		if c == '.' || c == '-' || c == '_' {
			if !prevSep {
				b.WriteByte('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(c)
	}
	return b.String()
}
