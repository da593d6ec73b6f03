package geometry

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is one facet, counter-clockwise seen from outside
type Triangle [3]v3.Vec

// Mesh is a triangle soup bounding a solid
type Mesh struct {
	Triangles []Triangle
}

// Volume calculates the enclosed volume using the signed volume method:
// each triangle spans a tetrahedron with the origin, and the signed volumes
// of a closed surface sum to the volume it encloses.
func (m *Mesh) Volume() float64 {
	volume := 0.0
	for _, t := range m.Triangles {
		volume += t[0].Dot(t[1].Cross(t[2]))
	}
	return math.Abs(volume / 6.0)
}

// Bounds returns the axis-aligned bounding box
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if len(m.Triangles) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Triangles[0][0], m.Triangles[0][0]
	for _, t := range m.Triangles {
		for _, p := range t {
			min = v3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
			max = v3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
		}
	}
	return min, max
}

func (m *Mesh) append(other *Mesh) {
	m.Triangles = append(m.Triangles, other.Triangles...)
}

// transform maps every vertex through f
func (m *Mesh) transform(f frame) *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		out.Triangles[i] = Triangle{f.point(t[0]), f.point(t[1]), f.point(t[2])}
	}
	return out
}

// addPolygon fan-triangulates a planar loop. Fan triangles may overlap for
// concave loops; their signed contributions still sum to the loop's flux.
func (m *Mesh) addPolygon(loop []v3.Vec) {
	for i := 1; i+1 < len(loop); i++ {
		m.Triangles = append(m.Triangles, Triangle{loop[0], loop[i], loop[i+1]})
	}
}
