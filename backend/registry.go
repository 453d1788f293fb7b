package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory opens a device of one backend.
type Factory func(cfg Config) (Device, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default (first that opens wins). GL is left out:
	// it needs a context made current by the caller.
	backendPriority = []string{WGPU, Soft}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens a device of the named backend.
func Open(name string, cfg Config) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	return dev, nil
}

// Default opens the best available backend by priority and returns its
// name. Priority order: wgpu > soft.
func Default(cfg Config) (Device, string, error) {
	var errs []error
	for _, name := range backendPriority {
		if !IsRegistered(name) {
			continue
		}
		dev, err := Open(name, cfg)
		if err == nil {
			return dev, name, nil
		}
		errs = append(errs, err)
	}
	return nil, "", fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}
