package domain

import (
	"maps"
	"slices"
)

// InvalidDensity marks a material known to have no meaningful density.
// Cached with this value, the material is never looked up again.
const InvalidDensity = 0

// DensityCache maps normalized material names to densities in kg/m³.
// It lives across runs through a ports.DensityStore; entries are only
// ever added or overwritten.
type DensityCache struct {
	entries map[string]int
}

// NewDensityCache creates a cache seeded with a copy of entries
func NewDensityCache(entries map[string]int) *DensityCache {
	c := &DensityCache{entries: make(map[string]int, len(entries))}
	maps.Copy(c.entries, entries)
	return c
}

// Get returns the cached density for a normalized name
func (c *DensityCache) Get(name string) (int, bool) {
	d, ok := c.entries[name]
	return d, ok
}

// Set records a density for a normalized name
func (c *DensityCache) Set(name string, density int) {
	c.entries[name] = density
}

// Len returns the number of entries
func (c *DensityCache) Len() int {
	return len(c.entries)
}

// Names returns the cached names in sorted order
func (c *DensityCache) Names() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Entries returns a copy of the cache contents for persisting
func (c *DensityCache) Entries() map[string]int {
	return maps.Clone(c.entries)
}
