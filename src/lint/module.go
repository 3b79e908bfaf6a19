package lint

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Module is the interface every check implements.
type Module interface {
	Name() string
	Check(ctx context.Context, file FileInfo) ([]Finding, error)
	DefaultEnabled() bool
}

// ConfigurableModule is implemented by modules that accept YAML options.
type ConfigurableModule interface {
	Configure(opts map[string]any) error
}

// CacheTTLModule is implemented by modules whose findings depend on
// external state (registries, remotes). A positive TTL expires cached
// results; a negative TTL disables caching entirely.
type CacheTTLModule interface {
	CacheTTL() time.Duration
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Module{}
)

// Register adds a module constructor to the global registry.
// Called from init() in each module file.
func Register(name string, constructor func() Module) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("lint: duplicate module registration: %s", name))
	}
	registry[name] = constructor
}

// Get returns a new instance of the named module.
func Get(name string) (Module, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("lint: unknown module: %s", name)
	}
	return ctor(), nil
}

// All returns sorted names of all registered modules.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
