package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultCacheDir = ".pindown/cache"
	engineVersion   = "0.1.0"
)

// Cache provides content-addressed result caching.
type Cache struct {
	Dir     string
	Enabled bool
}

// ResolveCacheDir returns the cache directory, preferring the configured
// override and falling back to .pindown/cache under the scan root.
func ResolveCacheDir(rootDir, configured string) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(rootDir, configured)
	}
	return filepath.Join(rootDir, defaultCacheDir)
}

// cacheEntry stores cached findings for a file+module combination.
type cacheEntry struct {
	Findings []Finding `json:"findings"`
	Stored   int64     `json:"stored"` // unix seconds
}

// Key computes a cache key from file content, module name, and config.
func (c *Cache) Key(content []byte, moduleName string, configJSON string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte(moduleName))
	h.Write([]byte(configJSON))
	h.Write([]byte(engineVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves cached findings. maxAge 0 means entries never expire.
// Returns nil, false on a miss or an expired entry.
func (c *Cache) Get(key string, maxAge time.Duration) ([]Finding, bool) {
	if !c.Enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if maxAge > 0 {
		stored := time.Unix(entry.Stored, 0)
		if time.Since(stored) > maxAge {
			return nil, false
		}
	}

	return entry.Findings, true
}

// Put stores findings in the cache.
func (c *Cache) Put(key string, findings []Finding) error {
	if !c.Enabled {
		return nil
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	entry := cacheEntry{Findings: findings, Stored: time.Now().Unix()}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Clear removes the entire cache directory.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.Dir)
}

// path returns the filesystem path for a cache key.
// Uses a 2-char prefix subdirectory to avoid huge flat directories.
func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".json")
}
