package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pindown-dev/pindown/src/config"
	"github.com/pindown-dev/pindown/src/requirements"
)

// Engine orchestrates check modules across declaration files.
type Engine struct {
	Config  config.LintConfig
	RootDir string
	Modules []Module
	Cache   *Cache
	Verbose bool

	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
}

// NewEngine creates an engine with the selected modules.
// With explicit moduleNames, exactly those run (minus skipNames); otherwise
// all default-enabled modules run, honoring config-level disables.
func NewEngine(cfg config.LintConfig, rootDir string, moduleNames []string, skipNames []string, verbose bool, cache *Cache) (*Engine, error) {
	skipSet := make(map[string]bool, len(skipNames))
	for _, name := range skipNames {
		skipSet[name] = true
	}

	var modules []Module

	if len(moduleNames) > 0 {
		for _, name := range moduleNames {
			if skipSet[name] {
				continue
			}
			m, err := Get(name)
			if err != nil {
				return nil, err
			}
			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	} else {
		for _, name := range All() {
			if skipSet[name] {
				continue
			}
			m, err := Get(name)
			if err != nil {
				return nil, err
			}

			enabled := m.DefaultEnabled()
			if mc, ok := cfg.Modules[name]; ok && mc.Enabled != nil {
				enabled = *mc.Enabled
			}
			if !enabled {
				continue
			}

			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("no check modules selected")
	}

	return &Engine{
		Config:  cfg,
		RootDir: rootDir,
		Modules: modules,
		Cache:   cache,
		Verbose: verbose,
	}, nil
}

// ModuleStats holds per-module scan statistics.
type ModuleStats struct {
	Name     string
	Files    int
	Cached   int
	Findings int
	Critical int
	Warnings int
}

// Run executes all modules against the given files and returns findings.
func (e *Engine) Run(ctx context.Context, files []FileInfo) ([]Finding, error) {
	findings, _, err := e.RunWithStats(ctx, files)
	return findings, err
}

// RunWithStats executes all modules and returns findings plus per-module
// statistics. Modules run concurrently, bounded by a weighted semaphore;
// results are cached by content hash when a cache is attached.
func (e *Engine) RunWithStats(ctx context.Context, files []FileInfo) ([]Finding, []ModuleStats, error) {
	var (
		mu       sync.Mutex
		findings []Finding
		wg       sync.WaitGroup
		errs     []error
	)

	sem := semaphore.NewWeighted(int64(runtime.NumCPU() * 2))

	modStats := make([]ModuleStats, len(e.Modules))
	for i, m := range e.Modules {
		modStats[i].Name = m.Name()
	}

	record := func(idx int, results []Finding, cached bool) {
		modStats[idx].Files++
		if cached {
			modStats[idx].Cached++
		}
		for _, f := range results {
			modStats[idx].Findings++
			switch f.Severity {
			case SeverityCritical:
				modStats[idx].Critical++
			case SeverityWarning:
				modStats[idx].Warnings++
			}
		}
		findings = append(findings, results...)
	}

	for _, file := range files {
		if e.isExcluded(file.Path) {
			continue
		}

		// Read content once per file for cache keying.
		var content []byte
		if e.Cache != nil && e.Cache.Enabled {
			var err error
			content, err = os.ReadFile(file.AbsPath)
			if err != nil {
				content = nil // non-fatal, run without cache
			}
		}

		for mi, mod := range e.Modules {
			if err := sem.Acquire(ctx, 1); err != nil {
				// Context cancelled: nothing was acquired, don't launch.
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %s: %w", mod.Name(), file.Path, err))
				mu.Unlock()
				continue
			}
			wg.Add(1)
			go func(m Module, f FileInfo, data []byte, idx int) {
				defer wg.Done()
				defer sem.Release(1)

				if e.isModuleExcluded(m.Name(), f.Path) {
					return
				}

				useCache := e.Cache != nil && e.Cache.Enabled && data != nil
				var key string
				var maxAge time.Duration
				if useCache {
					key = e.Cache.Key(data, m.Name(), e.moduleConfigJSON(m.Name()))
					if tm, ok := m.(CacheTTLModule); ok {
						maxAge = tm.CacheTTL()
						if maxAge < 0 {
							useCache = false
						}
					}
					if useCache {
						if cached, ok := e.Cache.Get(key, maxAge); ok {
							e.CacheHits.Add(1)
							mu.Lock()
							record(idx, cached, true)
							mu.Unlock()
							return
						}
						e.CacheMisses.Add(1)
					}
				}

				results, err := m.Check(ctx, f)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					modStats[idx].Files++
					errs = append(errs, fmt.Errorf("%s: %s: %w", m.Name(), f.Path, err))
					return
				}
				record(idx, results, false)

				// Cache even empty results (clean pass).
				if useCache {
					if cacheErr := e.Cache.Put(key, results); cacheErr != nil && e.Verbose {
						fmt.Fprintf(os.Stderr, "cache: write failed for %s/%s: %v\n", m.Name(), f.Path, cacheErr)
					}
				}
			}(mod, file, content, mi)
		}
	}

	wg.Wait()

	if len(errs) > 0 {
		return findings, modStats, fmt.Errorf("%d module errors (first: %w)", len(errs), errs[0])
	}

	return findings, modStats, nil
}

// CollectFiles walks the root directory and returns FileInfo for every
// declaration file (requirements*.txt, constraints.txt, Pipfile), plus any
// paths matched by config include globs.
func (e *Engine) CollectFiles() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(e.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(e.RootDir, path)
		if err != nil {
			return err
		}

		// Skip hidden directories and .git
		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") && base != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		base := filepath.Base(rel)
		if !requirements.IsDeclarationFile(base) && !e.isIncluded(rel) {
			return nil
		}

		if e.isExcluded(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:    rel,
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})

	return files, err
}

// FilterByDelta filters a file list to only include changed files.
// If changedSet is nil, returns all files (full scan).
func FilterByDelta(files []FileInfo, changedSet map[string]bool) []FileInfo {
	if changedSet == nil {
		return files
	}

	filtered := make([]FileInfo, 0, len(changedSet))
	for _, f := range files {
		path := normalizeSlashPath(f.Path)
		if changedSet[path] || changedSet[f.Path] {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// ModuleNames returns the names of all active modules in this engine.
func (e *Engine) ModuleNames() []string {
	names := make([]string, len(e.Modules))
	for i, m := range e.Modules {
		names[i] = m.Name()
	}
	return names
}

// normalizeSlashPath converts a path to forward slashes and strips leading "./".
func normalizeSlashPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return p
}

// matchExcludePattern matches a single pattern against a normalized path.
// Patterns containing "/" or "**" match the full path; others match the
// base name only.
func matchExcludePattern(pattern, normPath, baseName string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
		return matchGlob(pattern, normPath)
	}
	return matchGlob(pattern, baseName)
}

func (e *Engine) isExcluded(path string) bool {
	if len(e.Config.Exclude) == 0 {
		return false
	}
	normPath := normalizeSlashPath(path)
	baseName := filepath.Base(normPath)
	for _, pattern := range e.Config.Exclude {
		if matchExcludePattern(pattern, normPath, baseName) {
			return true
		}
	}
	return false
}

// isIncluded checks config include globs for extra declaration files with
// nonstandard names (e.g. "deps/*.pip").
func (e *Engine) isIncluded(path string) bool {
	normPath := normalizeSlashPath(path)
	baseName := filepath.Base(normPath)
	for _, pattern := range e.Config.Include {
		if matchExcludePattern(pattern, normPath, baseName) {
			return true
		}
	}
	return false
}

// isModuleExcluded checks per-module exclude patterns from config.
// Engine-wide isExcluded prevents files from being queued at all;
// module excludes prevent only that module from running on matching files.
func (e *Engine) isModuleExcluded(moduleName, path string) bool {
	mc, ok := e.Config.Modules[moduleName]
	if !ok || len(mc.Exclude) == 0 {
		return false
	}
	normPath := normalizeSlashPath(path)
	baseName := filepath.Base(normPath)
	for _, pattern := range mc.Exclude {
		if matchExcludePattern(pattern, normPath, baseName) {
			return true
		}
	}
	return false
}

// configureModule passes YAML options to modules that implement ConfigurableModule.
func configureModule(m Module, cfg config.LintConfig, name string) error {
	cm, ok := m.(ConfigurableModule)
	if !ok {
		return nil
	}
	mc, exists := cfg.Modules[name]
	if !exists || mc.Options == nil {
		// Call with empty map so the module can apply defaults.
		return cm.Configure(nil)
	}
	return cm.Configure(mc.Options)
}

func (e *Engine) moduleConfigJSON(name string) string {
	mc, ok := e.Config.Modules[name]
	if !ok || mc.Options == nil {
		return "{}"
	}
	data, err := json.Marshal(mc.Options)
	if err != nil {
		return "{}"
	}
	return string(data)
}
