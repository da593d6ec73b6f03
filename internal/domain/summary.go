package domain

import "math"

// VolumeKey groups volumes by element type and material
type VolumeKey struct {
	ElementType string
	Material    string
}

// VolumeRow is the accumulated volume of one (element type, material) pair
type VolumeRow struct {
	VolumeKey
	Volume float64 // m³
}

// VolumeSummary accumulates volumes per key, keeping rows in first-seen order
type VolumeSummary struct {
	rows  []VolumeRow
	index map[VolumeKey]int
}

// NewVolumeSummary creates an empty summary
func NewVolumeSummary() *VolumeSummary {
	return &VolumeSummary{index: make(map[VolumeKey]int)}
}

// Add folds volume into the row for key, creating it at zero on first use
func (s *VolumeSummary) Add(key VolumeKey, volume float64) {
	i, ok := s.index[key]
	if !ok {
		i = len(s.rows)
		s.index[key] = i
		s.rows = append(s.rows, VolumeRow{VolumeKey: key})
	}
	s.rows[i].Volume += volume
}

// Volume returns the accumulated volume for key
func (s *VolumeSummary) Volume(key VolumeKey) (float64, bool) {
	i, ok := s.index[key]
	if !ok {
		return 0, false
	}
	return s.rows[i].Volume, true
}

// Rows returns a copy of the rows in first-seen order
func (s *VolumeSummary) Rows() []VolumeRow {
	out := make([]VolumeRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of rows
func (s *VolumeSummary) Len() int {
	return len(s.rows)
}

// TotalVolume returns the sum of all row volumes
func (s *VolumeSummary) TotalVolume() float64 {
	var total float64
	for _, r := range s.rows {
		total += r.Volume
	}
	return total
}

// AggregateStats counts what happened to the elements of one aggregation
type AggregateStats struct {
	Elements     int      // Elements visited
	Declared     int      // Volumes taken from quantity sets
	Computed     int      // Volumes computed from geometry
	NoVolume     int      // Elements excluded for lack of volume
	SkippedTypes []string // Types absent from the model schema
}

// MassRow is a volume row with its resolved mass.
// Unresolved rows keep their volume but carry no mass.
type MassRow struct {
	VolumeRow
	Density  int     // kg/m³, meaningful only when Resolved
	Mass     float64 // kg, meaningful only when Resolved
	Resolved bool
}

// MassSummary is the outcome of a mass calculation
type MassSummary struct {
	Rows      []MassRow
	TotalMass float64 // kg, resolved rows only
}

// Unresolved returns the rows that contributed no mass
func (s *MassSummary) Unresolved() []MassRow {
	var out []MassRow
	for _, r := range s.Rows {
		if !r.Resolved {
			out = append(out, r)
		}
	}
	return out
}

// Round3 rounds to three decimals for presentation
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
