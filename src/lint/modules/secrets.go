package modules

import (
	"context"
	"os"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/pindown-dev/pindown/src/lint"
)

func init() {
	lint.Register("secrets", func() lint.Module { return &secretsModule{} })
}

// secretsModule scans declaration files for embedded credentials. Index
// URLs and repository references are the usual offenders: tokens pasted
// into https URLs or --extra-index-url options.
type secretsModule struct {
	once     sync.Once
	detector *detect.Detector
	initErr  error
}

func (m *secretsModule) Name() string         { return "secrets" }
func (m *secretsModule) DefaultEnabled() bool { return true }

func (m *secretsModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	// One module instance serves every file the engine scans, and the
	// engine runs files concurrently; the detector init must be once-only.
	m.once.Do(func() {
		m.detector, m.initErr = detect.NewDetectorDefaultConfig()
	})
	if m.initErr != nil {
		return nil, m.initErr
	}

	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}

	hits := m.detector.DetectBytes(data)
	if len(hits) == 0 {
		return nil, nil
	}

	findings := make([]lint.Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, lint.Finding{
			File:     file.Path,
			Line:     h.StartLine + 1, // gitleaks is 0-indexed
			Module:   m.Name(),
			Severity: lint.SeverityCritical,
			Message:  h.Description + " (" + h.RuleID + ")",
		})
	}
	return findings, nil
}
