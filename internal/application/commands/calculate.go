package commands

import (
	"context"
	"fmt"

	"ifcmass/internal/application"
	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// CalculateResult contains the outcome of a mass calculation run
type CalculateResult struct {
	ModelPath string
	Schema    string
	Unit      domain.LengthUnit
	Volumes   *domain.VolumeSummary
	Mass      *domain.MassSummary
	Stats     domain.AggregateStats
	CacheSize int // Density entries after the run
}

// CalculateCommand computes the total mass of a model. It loads the density
// cache before the run and saves it afterwards so lookups compound across runs.
type CalculateCommand struct {
	loader      ports.ModelLoader
	kernels     ports.GeometryKernelFactory
	store       ports.DensityStore
	lookup      ports.DensityLookup
	ModelPath   string
	Temperature float64
	Types       []string // Element types to aggregate, empty for all volumetric types
}

// NewCalculateCommand creates a new CalculateCommand.
// kernels and lookup may be nil to disable geometry and external lookups.
func NewCalculateCommand(
	loader ports.ModelLoader,
	kernels ports.GeometryKernelFactory,
	store ports.DensityStore,
	lookup ports.DensityLookup,
	modelPath string,
) *CalculateCommand {
	return &CalculateCommand{
		loader:    loader,
		kernels:   kernels,
		store:     store,
		lookup:    lookup,
		ModelPath: modelPath,
	}
}

// Validate checks if the calculation can run
func (c *CalculateCommand) Validate() error {
	if err := application.ValidateRequired("modelPath", c.ModelPath); err != nil {
		return err
	}
	return application.ValidateTemperature(c.Temperature)
}

// Execute runs the calculation. Only a model that fails to load aborts the
// run. A cache that cannot be saved returns the complete result together
// with an error wrapping ErrCacheSave. An unreadable cache is never
// overwritten: the run starts empty and skips the save.
func (c *CalculateCommand) Execute(ctx context.Context) (*CalculateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cache, loadErr := c.loadCache()

	model, err := c.loader.Load(c.ModelPath)
	if err != nil {
		return nil, &application.ModelLoadError{Path: c.ModelPath, Err: err}
	}

	var kernel ports.GeometryKernel
	if c.kernels != nil {
		kernel, err = c.kernels(model)
		if err != nil {
			logger.Warn("Geometry kernel unavailable, using declared volumes only", "err", err)
			kernel = nil
		}
	}

	aggregator := NewAggregator(model, kernel)
	if len(c.Types) > 0 {
		aggregator = aggregator.WithTypes(c.Types)
	}
	volumes, stats := aggregator.Aggregate()

	resolver := NewDensityResolver(cache, c.lookup, WithTemperature(c.Temperature))
	mass := NewMassCalculator(resolver).Calculate(ctx, volumes)

	result := &CalculateResult{
		ModelPath: c.ModelPath,
		Schema:    model.Schema(),
		Unit:      model.LengthUnit(),
		Volumes:   volumes,
		Mass:      mass,
		Stats:     stats,
		CacheSize: cache.Len(),
	}

	if loadErr != nil {
		return result, fmt.Errorf("%w: existing cache left untouched: %w", application.ErrCacheSave, loadErr)
	}
	if c.store != nil {
		if err := c.store.Save(cache.Entries()); err != nil {
			return result, fmt.Errorf("%w: %w", application.ErrCacheSave, err)
		}
	}

	return result, nil
}

// loadCache reads the persisted densities. When they cannot be read the
// cache starts empty and the read error is returned alongside it.
func (c *CalculateCommand) loadCache() (*domain.DensityCache, error) {
	if c.store == nil {
		return domain.NewDensityCache(nil), nil
	}
	entries, err := c.store.Load()
	if err != nil {
		logger.Warn("Cannot read density cache, starting empty", "err", err)
		return domain.NewDensityCache(nil), err
	}
	logger.Debug("Loaded density cache", "entries", len(entries))
	return domain.NewDensityCache(entries), nil
}

// RepeatResult contains the totals of repeated runs
type RepeatResult struct {
	Totals []float64
}

// RepeatCommand runs the same calculation several times. With an external
// lookup the cache fills up over the first runs, so totals show how the
// estimate settles.
type RepeatCommand struct {
	calc  *CalculateCommand
	Runs  int
	OnRun func(run int, result *CalculateResult) error
}

// NewRepeatCommand creates a new RepeatCommand
func NewRepeatCommand(calc *CalculateCommand, runs int) *RepeatCommand {
	return &RepeatCommand{calc: calc, Runs: runs}
}

// Validate checks if the repeat operation is valid
func (c *RepeatCommand) Validate() error {
	if err := application.ValidateRuns(c.Runs); err != nil {
		return err
	}
	return c.calc.Validate()
}

// Execute runs the calculation Runs times, stopping at the first fatal error
func (c *RepeatCommand) Execute(ctx context.Context) (*RepeatResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	out := &RepeatResult{Totals: make([]float64, 0, c.Runs)}
	for i := 0; i < c.Runs; i++ {
		logger.Info("Running iteration", "run", i)

		result, err := c.calc.Execute(ctx)
		if result == nil {
			return out, err
		}
		if err != nil {
			logger.Error("Run finished with error", "run", i, "err", err)
		}

		out.Totals = append(out.Totals, result.Mass.TotalMass)
		if c.OnRun != nil {
			if err := c.OnRun(i, result); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}
