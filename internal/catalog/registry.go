// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"fmt"
	"sort"
	"sync"
)

var (
	// Process-wide registry of resource kinds, seeded with the built-in ones.
	registry     = map[string]Resource{Creatures.Key: Creatures, Specimens.Key: Specimens}
	registryLock sync.RWMutex
)

// Lookup returns the resource registered under key.
func Lookup(key string) (Resource, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	r, ok := registry[key]
	if !ok {
		return Resource{}, fmt.Errorf("unknown resource %q (available: %v)", key, keysLocked())
	}
	return r, nil
}

// All returns the registered resources ordered by key.
func All() []Resource {
	registryLock.RLock()
	defer registryLock.RUnlock()
	out := make([]Resource, 0, len(registry))
	for _, k := range keysLocked() {
		out = append(out, registry[k])
	}
	return out
}

// Keys returns the registered resource keys in sorted order.
func Keys() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	return keysLocked()
}

func keysLocked() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
