package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrUnsupportedGeometry is returned for representations the kernel cannot build
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	errUnbounded = errors.New("unbounded solid")
)

// shape is a solid in object coordinates. Bounded shapes tessellate directly;
// shapes taking part in booleans also provide a signed distance field.
type shape interface {
	mesh(cells int) (*Mesh, error)
	field() (sdf.SDF3, error)
}

// circleSegments is the tessellation of circular profiles
const circleSegments = 96

// profile is a closed planar area: a polygon or a circle
type profile struct {
	points []v2.Vec
	center v2.Vec
	radius float64 // Non-zero for circles
}

// polygon returns the outline, counter-clockwise. Circles get their radius
// scaled so the polygon keeps the circle's area.
func (p profile) polygon() []v2.Vec {
	if p.radius > 0 {
		step := 2 * math.Pi / circleSegments
		r := p.radius * math.Sqrt(2*math.Pi/(circleSegments*math.Sin(step)))
		pts := make([]v2.Vec, circleSegments)
		for i := range pts {
			a := float64(i) * step
			pts[i] = v2.Vec{X: p.center.X + r*math.Cos(a), Y: p.center.Y + r*math.Sin(a)}
		}
		return pts
	}

	if signedArea(p.points) < 0 {
		rev := make([]v2.Vec, len(p.points))
		for i, pt := range p.points {
			rev[len(p.points)-1-i] = pt
		}
		return rev
	}
	return p.points
}

func (p profile) field() (sdf.SDF2, error) {
	if p.radius > 0 {
		c, err := sdf.Circle2D(p.radius)
		if err != nil {
			return nil, err
		}
		return sdf.Transform2D(c, sdf.Translate2d(p.center)), nil
	}
	return sdf.Polygon2D(p.points)
}

func signedArea(pts []v2.Vec) float64 {
	a := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// prism is an extruded area solid
type prism struct {
	profile profile
	dir     v3.Vec // Unit extrusion direction in the placement frame
	depth   float64
	place   frame
}

func (p *prism) mesh(int) (*Mesh, error) {
	outline := p.profile.polygon()
	if len(outline) < 3 {
		return nil, fmt.Errorf("%w: profile with %d points", ErrUnsupportedGeometry, len(outline))
	}
	if math.Abs(p.dir.Z) <= epsilon {
		return nil, fmt.Errorf("%w: extrusion parallel to the profile", ErrUnsupportedGeometry)
	}

	offset := p.dir.MulScalar(p.depth)
	n := len(outline)
	bottom := make([]v3.Vec, n)
	top := make([]v3.Vec, n)
	for i, pt := range outline {
		b := v3.Vec{X: pt.X, Y: pt.Y}
		bottom[n-1-i] = p.place.point(b)
		top[i] = p.place.point(b.Add(offset))
	}

	m := &Mesh{}
	m.addPolygon(bottom) // Reversed so it faces away from the extrusion
	m.addPolygon(top)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b0, b1 := p.place.point(v3.Vec{X: outline[i].X, Y: outline[i].Y}), p.place.point(v3.Vec{X: outline[j].X, Y: outline[j].Y})
		t0, t1 := top[i], top[j]
		m.Triangles = append(m.Triangles, Triangle{b0, b1, t1}, Triangle{b0, t1, t0})
	}

	// Extruding below the profile turns the surface inside out
	if p.dir.Z < 0 {
		for i, t := range m.Triangles {
			m.Triangles[i] = Triangle{t[0], t[2], t[1]}
		}
	}
	return m, nil
}

func (p *prism) field() (sdf.SDF3, error) {
	if math.Abs(math.Abs(p.dir.Z)-1) > epsilon {
		return nil, fmt.Errorf("%w: oblique extrusion in a boolean", ErrUnsupportedGeometry)
	}
	area, err := p.profile.field()
	if err != nil {
		return nil, err
	}
	// Extrude3D is centred on the profile plane
	s := sdf.Extrude3D(area, p.depth)
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: p.dir.Z * p.depth / 2}))
	return &placed{inner: s, place: p.place}, nil
}

// facets is a solid given by its boundary triangles
type facets struct {
	triangles *Mesh
}

func (f *facets) mesh(int) (*Mesh, error) {
	return f.triangles, nil
}

func (f *facets) field() (sdf.SDF3, error) {
	return nil, fmt.Errorf("%w: boundary representation in a boolean", ErrUnsupportedGeometry)
}

// halfSpace is everything behind a plane; normal points away from the material
type halfSpace struct {
	origin v3.Vec
	normal v3.Vec
	bound  shape // Optional prism limiting the half space
}

func (h *halfSpace) mesh(int) (*Mesh, error) {
	return nil, errUnbounded
}

func (h *halfSpace) field() (sdf.SDF3, error) {
	var s sdf.SDF3 = &plane{origin: h.origin, normal: h.normal}
	if h.bound == nil {
		return s, nil
	}
	b, err := h.bound.field()
	if err != nil {
		return nil, err
	}
	return sdf.Intersect3D(s, b), nil
}

// boolean combines two operands
type boolean struct {
	op            string // DIFFERENCE, UNION or INTERSECTION
	first, second shape
}

func (b *boolean) field() (sdf.SDF3, error) {
	s0, err := b.first.field()
	if err != nil {
		return nil, err
	}
	s1, err := b.second.field()
	if err != nil {
		return nil, err
	}

	switch b.op {
	case "DIFFERENCE":
		return sdf.Difference3D(s0, s1), nil
	case "UNION":
		return sdf.Union3D(s0, s1), nil
	case "INTERSECTION":
		return sdf.Intersect3D(s0, s1), nil
	default:
		return nil, fmt.Errorf("%w: boolean operator %s", ErrUnsupportedGeometry, b.op)
	}
}

// mesh renders the combined field with marching cubes
func (b *boolean) mesh(cells int) (*Mesh, error) {
	if _, isHalf := b.first.(*halfSpace); isHalf {
		return nil, errUnbounded
	}
	s, err := b.field()
	if err != nil {
		return nil, err
	}

	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	m := &Mesh{Triangles: make([]Triangle, 0, len(triangles))}
	for _, t := range triangles {
		m.Triangles = append(m.Triangles, Triangle{t[0], t[1], t[2]})
	}
	return m, nil
}

// placed applies a rigid frame to a distance field
type placed struct {
	inner sdf.SDF3
	place frame
}

func (p *placed) Evaluate(q v3.Vec) float64 {
	return p.inner.Evaluate(p.place.local(q))
}

func (p *placed) BoundingBox() sdf.Box3 {
	bb := p.inner.BoundingBox()
	var out sdf.Box3
	for i := 0; i < 8; i++ {
		c := bb.Min
		if i&1 != 0 {
			c.X = bb.Max.X
		}
		if i&2 != 0 {
			c.Y = bb.Max.Y
		}
		if i&4 != 0 {
			c.Z = bb.Max.Z
		}
		w := p.place.point(c)
		if i == 0 {
			out = sdf.Box3{Min: w, Max: w}
			continue
		}
		out.Min = v3.Vec{X: math.Min(out.Min.X, w.X), Y: math.Min(out.Min.Y, w.Y), Z: math.Min(out.Min.Z, w.Z)}
		out.Max = v3.Vec{X: math.Max(out.Max.X, w.X), Y: math.Max(out.Max.Y, w.Y), Z: math.Max(out.Max.Z, w.Z)}
	}
	return out
}

// planeExtent bounds the otherwise infinite plane field
const planeExtent = 1e9

// plane is the exact distance field of a half space
type plane struct {
	origin v3.Vec
	normal v3.Vec
}

func (p *plane) Evaluate(q v3.Vec) float64 {
	return q.Sub(p.origin).Dot(p.normal)
}

func (p *plane) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -planeExtent, Y: -planeExtent, Z: -planeExtent},
		Max: v3.Vec{X: planeExtent, Y: planeExtent, Z: planeExtent},
	}
}
