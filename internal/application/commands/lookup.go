package commands

import (
	"context"

	"ifcmass/internal/application"
	"ifcmass/internal/domain"
	"ifcmass/internal/ports"
)

// LookupDensityResult contains the answer of a direct lookup
type LookupDensityResult struct {
	Material string
	Density  int
	Valid    bool // False when the source reported the material as invalid
}

// LookupDensityCommand asks the external source for one density,
// bypassing the cache
type LookupDensityCommand struct {
	lookup      ports.DensityLookup
	Material    string
	Temperature float64
}

// NewLookupDensityCommand creates a new LookupDensityCommand
func NewLookupDensityCommand(lookup ports.DensityLookup, material string) *LookupDensityCommand {
	return &LookupDensityCommand{
		lookup:   lookup,
		Material: material,
	}
}

// Validate checks if the lookup can run
func (c *LookupDensityCommand) Validate() error {
	if c.lookup == nil {
		return application.ErrNoLookup
	}
	if err := application.ValidateRequired("material", c.Material); err != nil {
		return err
	}
	return application.ValidateTemperature(c.Temperature)
}

// Execute runs the lookup
func (c *LookupDensityCommand) Execute(ctx context.Context) (*LookupDensityResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	d, err := c.lookup.LookupDensity(ctx, c.Material, c.Temperature)
	if err != nil {
		return nil, &application.LookupError{Material: c.Material, Err: err}
	}
	if err := application.ValidateDensity(d); err != nil {
		return nil, &application.LookupError{Material: c.Material, Err: application.ErrInvalidDensity}
	}

	return &LookupDensityResult{
		Material: c.Material,
		Density:  d,
		Valid:    d != domain.InvalidDensity,
	}, nil
}
