package commands

import (
	"errors"

	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// Aggregator sums element volumes per (element type, material)
type Aggregator struct {
	model   ports.Model
	volumes *VolumeResolver
	types   []string
}

// NewAggregator creates an aggregator over the volume-bearing element types.
// Volumes are scaled by the model's declared length unit.
func NewAggregator(model ports.Model, kernel ports.GeometryKernel) *Aggregator {
	scale := domain.VolumeScale(model.LengthUnit())
	return &Aggregator{
		model:   model,
		volumes: NewVolumeResolver(kernel, scale),
		types:   domain.VolumeElementTypes,
	}
}

// WithTypes restricts aggregation to the given element types
func (a *Aggregator) WithTypes(types []string) *Aggregator {
	a.types = types
	return a
}

// collect gathers the elements of every type the schema supports.
// Types the schema lacks are skipped with a warning.
func (a *Aggregator) collect(stats *domain.AggregateStats) []domain.Element {
	var elements []domain.Element
	for _, t := range a.types {
		els, err := a.model.ElementsByType(t)
		if err != nil {
			if errors.Is(err, ports.ErrUnsupportedType) {
				logger.Warn("Type not found in model schema", "type", t, "schema", a.model.Schema())
			} else {
				logger.Warn("Cannot query element type", "type", t, "err", err)
			}
			stats.SkippedTypes = append(stats.SkippedTypes, t)
			continue
		}
		elements = append(elements, els...)
	}
	return elements
}

// Aggregate folds every element's volume into a summary. Elements without
// a volume are left out entirely.
func (a *Aggregator) Aggregate() (*domain.VolumeSummary, domain.AggregateStats) {
	var stats domain.AggregateStats
	summary := domain.NewVolumeSummary()

	for _, el := range a.collect(&stats) {
		stats.Elements++

		rels := a.model.Relationships(el)
		material := ResolveMaterialName(rels)

		volume, source := a.volumes.Resolve(el, rels)
		switch source {
		case VolumeDeclared:
			stats.Declared++
		case VolumeComputed:
			stats.Computed++
		default:
			stats.NoVolume++
			continue
		}

		summary.Add(domain.VolumeKey{ElementType: el.Type, Material: material}, volume)
	}

	logger.Debug("Aggregated volumes",
		"elements", stats.Elements,
		"declared", stats.Declared,
		"computed", stats.Computed,
		"no_volume", stats.NoVolume,
		"rows", summary.Len(),
	)

	return summary, stats
}
