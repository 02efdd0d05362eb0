package model

import (
	"sync"

	"github.com/ecospace/sdmgo/pkg/errors"
)

// Factory builds a trainer from free-form tuning arguments. Arguments are
// passed through verbatim from the public entry point; unknown keys should
// be rejected by the factory.
type Factory func(args map[string]any) (Trainer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Family]Factory)
)

// Register installs a factory for an algorithm family. Later registrations
// replace earlier ones, so callers can override the built-in GLM.
func Register(family Family, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[family] = factory
}

// New builds a trainer for the given family.
func New(family Family, args map[string]any) (Trainer, error) {
	registryMu.RLock()
	factory, ok := registry[family]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFamily, "family %q", family)
	}
	return factory(args)
}

// Registered reports whether a factory exists for the family.
func Registered(family Family) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[family]
	return ok
}
