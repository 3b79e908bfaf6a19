package config

// Level controls how much of the tree gets scanned.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// ModuleConfig holds per-module overrides.
type ModuleConfig struct {
	Enabled *bool          `yaml:"enabled,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
	Exclude []string       `yaml:"exclude,omitempty"`
}

// LintConfig holds check-specific configuration.
type LintConfig struct {
	Level        Level                   `yaml:"level"`
	CacheDir     string                  `yaml:"cache_dir"`
	TargetBranch string                  `yaml:"target_branch"`
	Include      []string                `yaml:"include"` // extra declaration-file globs
	Exclude      []string                `yaml:"exclude"`
	Modules      map[string]ModuleConfig `yaml:"modules"`
}

// DefaultLintConfig returns production defaults.
func DefaultLintConfig() LintConfig {
	return LintConfig{
		Level:   LevelChanged,
		Include: []string{},
		Exclude: []string{},
		Modules: map[string]ModuleConfig{},
	}
}
