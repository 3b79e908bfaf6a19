package config

// BadgeConfig controls SVG badge generation.
type BadgeConfig struct {
	Label    string  `yaml:"label"`     // left-side text (default "deps")
	Output   string  `yaml:"output"`    // output path (default ".pindown/badges/deps.svg")
	FontFile string  `yaml:"font_file"` // TTF/OTF path; empty uses built-in metrics
	FontSize float64 `yaml:"font_size"` // point size (default 11)
}

// DefaultBadgeConfig returns production defaults.
func DefaultBadgeConfig() BadgeConfig {
	return BadgeConfig{
		Label:    "deps",
		Output:   ".pindown/badges/deps.svg",
		FontSize: 11,
	}
}
