package commands

import (
	"context"

	"ifcmass/internal/domain"
)

// MassCalculator turns a volume summary into masses
type MassCalculator struct {
	densities *DensityResolver
}

// NewMassCalculator creates a calculator backed by a density resolver
func NewMassCalculator(densities *DensityResolver) *MassCalculator {
	return &MassCalculator{densities: densities}
}

// Calculate attaches a mass to every row whose material density resolves.
// Unresolved rows stay in the output but are not counted in the total.
func (c *MassCalculator) Calculate(ctx context.Context, summary *domain.VolumeSummary) *domain.MassSummary {
	rows := summary.Rows()
	out := &domain.MassSummary{Rows: make([]domain.MassRow, 0, len(rows))}

	for _, row := range rows {
		mr := domain.MassRow{VolumeRow: row}
		if d, ok := c.densities.Resolve(ctx, row.Material); ok {
			mr.Density = d
			mr.Mass = row.Volume * float64(d)
			mr.Resolved = true
			out.TotalMass += mr.Mass
		}
		out.Rows = append(out.Rows, mr)
	}

	return out
}
