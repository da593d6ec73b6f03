package commands

import (
	"context"
	"fmt"

	"ifcmass/internal/application"
	"ifcmass/internal/domain"
	"ifcmass/internal/ports"
)

// DensityEntry is one persisted density
type DensityEntry struct {
	Name    string
	Density int
}

// Invalid reports whether the entry marks a material as invalid
func (e DensityEntry) Invalid() bool {
	return e.Density <= domain.InvalidDensity
}

// ListDensitiesCommand lists the persisted density cache
type ListDensitiesCommand struct {
	store ports.DensityStore
}

// NewListDensitiesCommand creates a new ListDensitiesCommand
func NewListDensitiesCommand(store ports.DensityStore) *ListDensitiesCommand {
	return &ListDensitiesCommand{store: store}
}

// Execute returns the entries sorted by name
func (c *ListDensitiesCommand) Execute(ctx context.Context) ([]DensityEntry, error) {
	entries, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load densities: %w", err)
	}

	cache := domain.NewDensityCache(entries)
	out := make([]DensityEntry, 0, cache.Len())
	for _, name := range cache.Names() {
		d, _ := cache.Get(name)
		out = append(out, DensityEntry{Name: name, Density: d})
	}
	return out, nil
}

// SetDensityResult contains the result of setting a density
type SetDensityResult struct {
	Entry   DensityEntry
	Message string
}

// SetDensityCommand records a density for a material by hand
type SetDensityCommand struct {
	store    ports.DensityStore
	Material string
	Density  int
}

// NewSetDensityCommand creates a new SetDensityCommand
func NewSetDensityCommand(store ports.DensityStore, material string, density int) *SetDensityCommand {
	return &SetDensityCommand{
		store:    store,
		Material: material,
		Density:  density,
	}
}

// Validate checks if the set operation is valid
func (c *SetDensityCommand) Validate() error {
	if err := application.ValidateRequired("material", c.Material); err != nil {
		return err
	}
	if domain.NormalizeMaterialName(c.Material) == "" {
		return &application.ValidationError{
			Field:   "material",
			Message: fmt.Sprintf("material name has no letters: %s", c.Material),
		}
	}
	return application.ValidateDensity(c.Density)
}

// Execute stores the density under the material's normalized name
func (c *SetDensityCommand) Execute(ctx context.Context) (*SetDensityResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entries, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load densities: %w", err)
	}

	cache := domain.NewDensityCache(entries)
	name := domain.NormalizeMaterialName(c.Material)
	cache.Set(name, c.Density)

	if err := c.store.Save(cache.Entries()); err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrCacheSave, err)
	}

	entry := DensityEntry{Name: name, Density: c.Density}
	msg := fmt.Sprintf("Set %s = %d kg/m³", name, c.Density)
	if entry.Invalid() {
		msg = fmt.Sprintf("Marked %s as invalid", name)
	}
	return &SetDensityResult{Entry: entry, Message: msg}, nil
}

// ImportDensitiesResult contains the result of an import
type ImportDensitiesResult struct {
	Added     int
	Updated   int
	Unchanged int
}

// ImportDensitiesCommand merges the densities of another store into the
// target store. Existing entries are kept unless Overwrite is set.
type ImportDensitiesCommand struct {
	target    ports.DensityStore
	source    ports.DensityStore
	Overwrite bool
}

// NewImportDensitiesCommand creates a new ImportDensitiesCommand
func NewImportDensitiesCommand(target, source ports.DensityStore, overwrite bool) *ImportDensitiesCommand {
	return &ImportDensitiesCommand{
		target:    target,
		source:    source,
		Overwrite: overwrite,
	}
}

// Execute performs the merge
func (c *ImportDensitiesCommand) Execute(ctx context.Context) (*ImportDensitiesResult, error) {
	incoming, err := c.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load source densities: %w", err)
	}
	existing, err := c.target.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load target densities: %w", err)
	}

	cache := domain.NewDensityCache(existing)
	result := &ImportDensitiesResult{}
	for name, d := range incoming {
		if application.ValidateDensity(d) != nil {
			continue
		}
		key := domain.NormalizeMaterialName(name)
		if key == "" {
			continue
		}
		current, ok := cache.Get(key)
		switch {
		case !ok:
			result.Added++
		case current == d || !c.Overwrite:
			result.Unchanged++
			continue
		default:
			result.Updated++
		}
		cache.Set(key, d)
	}

	if err := c.target.Save(cache.Entries()); err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrCacheSave, err)
	}
	return result, nil
}
