package ports

import "context"

// DensityLookup resolves a material density from an external source
type DensityLookup interface {
	// LookupDensity returns the density of material in kg/m³.
	// Zero means the source considers the material invalid.
	// temperature controls determinism (0 is the most deterministic).
	LookupDensity(ctx context.Context, material string, temperature float64) (int, error)
}

// DensityLookupFunc adapts a plain function to DensityLookup
type DensityLookupFunc func(ctx context.Context, material string, temperature float64) (int, error)

// LookupDensity calls f
func (f DensityLookupFunc) LookupDensity(ctx context.Context, material string, temperature float64) (int, error) {
	return f(ctx, material, temperature)
}

// DensityStore persists the density cache between runs
type DensityStore interface {
	// Load reads every entry. A store that does not exist yet yields an empty map.
	Load() (map[string]int, error)

	// Save replaces the stored entries with entries
	Save(entries map[string]int) error
}
