package commands

import (
	"math"

	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// VolumeSource tells where a resolved volume came from
type VolumeSource int

const (
	VolumeNone     VolumeSource = iota // No volume could be determined
	VolumeDeclared                     // Taken from an element quantity set
	VolumeComputed                     // Computed by the geometry kernel
)

func (s VolumeSource) String() string {
	switch s {
	case VolumeDeclared:
		return "declared"
	case VolumeComputed:
		return "computed"
	default:
		return "none"
	}
}

// VolumeResolver determines element volumes in cubic metres
type VolumeResolver struct {
	kernel ports.GeometryKernel
	scale  float64
}

// NewVolumeResolver creates a resolver. scale converts model volumes to m³;
// kernel may be nil, in which case only declared quantities are used.
func NewVolumeResolver(kernel ports.GeometryKernel, scale float64) *VolumeResolver {
	return &VolumeResolver{
		kernel: kernel,
		scale:  scale,
	}
}

// Resolve returns the volume of el. A declared volume quantity always wins
// over geometry. Geometry failures are logged and reported as VolumeNone.
func (r *VolumeResolver) Resolve(el domain.Element, rels []domain.Relationship) (float64, VolumeSource) {
	if v, ok := DeclaredVolume(rels); ok {
		if v >= 0 {
			return v * r.scale, VolumeDeclared
		}
		logger.Warn("Ignoring negative declared volume", "global_id", el.GlobalID, "volume", v)
	}

	if r.kernel == nil {
		return 0, VolumeNone
	}

	solid, err := r.kernel.Solid(el)
	if err != nil {
		logger.Warn("Wrong geometry for element", "global_id", el.GlobalID, "type", el.Type, "err", err)
		return 0, VolumeNone
	}

	v := solid.Volume()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Warn("Geometry produced no finite volume", "global_id", el.GlobalID, "type", el.Type)
		return 0, VolumeNone
	}

	return math.Abs(v) * r.scale, VolumeComputed
}

// DeclaredVolume returns the first volume quantity found in the element
// quantity sets attached to an element
func DeclaredVolume(rels []domain.Relationship) (float64, bool) {
	for _, rel := range rels {
		if rel.Kind != domain.RelationshipProperties || !rel.Definition.IsElementQuantity() {
			continue
		}
		for _, q := range rel.Definition.Quantities {
			if q.Kind == domain.QuantityVolume {
				return q.Value, true
			}
		}
	}
	return 0, false
}
