package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pindown-dev/pindown/src/lint"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", ts, id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", ts, id)
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteCheckJUnit writes check findings as JUnit XML for CI test reporting.
// Each module becomes a test suite, each scanned file becomes a test case.
func WriteCheckJUnit(dir string, findings []lint.Finding, files []lint.FileInfo, modules []string, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	// Group findings by module → file
	byModule := make(map[string]map[string][]lint.Finding)
	for _, m := range modules {
		byModule[m] = make(map[string][]lint.Finding)
	}
	for _, f := range findings {
		if _, ok := byModule[f.Module]; !ok {
			byModule[f.Module] = make(map[string][]lint.Finding)
		}
		byModule[f.Module][f.File] = append(byModule[f.Module][f.File], f)
	}

	totalTests := 0
	totalFailures := 0
	var suites []JUnitTestSuite

	for _, mod := range modules {
		modFindings := byModule[mod]
		suite := JUnitTestSuite{
			Name: "pindown/check/" + mod,
			Time: fmt.Sprintf("%.3f", elapsed.Seconds()/float64(len(modules))),
		}

		// Create a test case for each file scanned
		for _, f := range files {
			tc := JUnitTestCase{
				Name:      f.Path,
				Classname: "pindown.check." + mod,
				Time:      "0.000",
			}

			if ff, ok := modFindings[f.Path]; ok && len(ff) > 0 {
				// Find worst severity
				worst := lint.SeverityInfo
				var lines []string
				for _, finding := range ff {
					if finding.Severity > worst {
						worst = finding.Severity
					}
					lines = append(lines, fmt.Sprintf("  %d [%s] %s", finding.Line, finding.Severity, finding.Message))
				}

				// Only critical findings are failures; warnings are not
				if worst >= lint.SeverityCritical {
					tc.Failure = &JUnitFailure{
						Message: fmt.Sprintf("%d finding(s) in %s", len(ff), f.Path),
						Type:    worst.String(),
						Body:    strings.Join(lines, "\n"),
					}
					suite.Failures++
					totalFailures++
				}
			}

			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
			totalTests++
		}

		suites = append(suites, suite)
	}

	root := JUnitTestSuites{
		Name:     "pindown-check",
		Tests:    totalTests,
		Failures: totalFailures,
		Time:     fmt.Sprintf("%.3f", elapsed.Seconds()),
		Suites:   suites,
	}

	path := filepath.Join(dir, "check.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	f.WriteString(xml.Header)
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	f.WriteString("\n")

	return nil
}
