package ports

import "ifcmass/internal/domain"

// GeometrySettings configures how the kernel builds solids
type GeometrySettings struct {
	WorldCoords bool // Apply object placements to the produced solids
}

// Solid is a tessellated element body
type Solid interface {
	// Volume returns the enclosed volume in model units cubed
	Volume() float64
}

// GeometryKernel computes solids from element representations
type GeometryKernel interface {
	// Solid builds the element's body. Malformed or unsupported
	// representations return an error.
	Solid(el domain.Element) (Solid, error)
}

// GeometryKernelFactory builds a kernel bound to a loaded model
type GeometryKernelFactory func(model Model) (GeometryKernel, error)
