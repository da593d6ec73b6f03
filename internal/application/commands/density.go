package commands

import (
	"context"
	"fmt"

	"ifcmass/internal/application"
	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// DensityResolver maps material names to densities through the cache,
// falling back to an optional external lookup
type DensityResolver struct {
	cache       *domain.DensityCache
	lookup      ports.DensityLookup
	temperature float64
	failed      map[string]bool
}

// DensityOption configures a DensityResolver
type DensityOption func(*DensityResolver)

// WithTemperature sets the determinism parameter passed to the lookup
func WithTemperature(temperature float64) DensityOption {
	return func(r *DensityResolver) {
		r.temperature = temperature
	}
}

// NewDensityResolver creates a resolver. lookup may be nil.
func NewDensityResolver(cache *domain.DensityCache, lookup ports.DensityLookup, opts ...DensityOption) *DensityResolver {
	r := &DensityResolver{
		cache:  cache,
		lookup: lookup,
		failed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the density of a raw material name in kg/m³.
// ok is false when the material has no usable density for this run.
//
// Order: a positive cache entry is returned as is; a zero entry marks a known
// invalid material; the unknown sentinel is never looked up or cached; on a
// miss the lookup is asked and any answer, zero included, is cached. Lookup
// failures leave the cache untouched so a later run can try again.
func (r *DensityResolver) Resolve(ctx context.Context, material string) (density int, ok bool) {
	key := domain.NormalizeMaterialName(material)

	if d, hit := r.cache.Get(key); hit {
		if d > 0 {
			return d, true
		}
		logger.Info("Material considered invalid, skipping", "material", key)
		return 0, false
	}

	if material == domain.UnknownMaterial {
		return 0, false
	}

	if key == "" {
		logger.Debug("Material name has no letters, skipping lookup", "material", material)
		return 0, false
	}

	if r.lookup == nil || r.failed[key] {
		return 0, false
	}

	d, err := r.lookup.LookupDensity(ctx, key, r.temperature)
	if err == nil && d < 0 {
		err = fmt.Errorf("%w: negative density %d", application.ErrInvalidDensity, d)
	}
	if err != nil {
		r.failed[key] = true
		logger.Warn("Error getting density", "err", &application.LookupError{Material: key, Err: err})
		return 0, false
	}

	r.cache.Set(key, d)
	if d == domain.InvalidDensity {
		logger.Info("Material considered invalid by lookup, skipping", "material", key)
		return 0, false
	}

	logger.Debug("Resolved density", "material", key, "density", d)
	return d, true
}
