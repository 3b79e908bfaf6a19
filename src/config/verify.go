package config

// VerifyConfig controls repository-reference verification.
type VerifyConfig struct {
	TimeoutSecs int `yaml:"timeout"`     // per-remote timeout (default 30)
	Concurrency int `yaml:"concurrency"` // parallel remote listings (default 4)
}

// DefaultVerifyConfig returns production defaults.
func DefaultVerifyConfig() VerifyConfig {
	return VerifyConfig{
		TimeoutSecs: 30,
		Concurrency: 4,
	}
}
