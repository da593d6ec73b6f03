package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"ifcmass/internal/adapters/ifc"
	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// Verify interface compliance
var (
	_ ports.GeometryKernel = (*Kernel)(nil)
	_ ports.Solid          = (*Solid)(nil)
)

// DefaultMeshCells controls marching cubes resolution for boolean results
const DefaultMeshCells = 128

// maxDepth bounds nested placements and booleans
const maxDepth = 64

// ErrNoBody is returned for elements without a body representation
var ErrNoBody = errors.New("no body representation")

// Solid is a tessellated element body
type Solid struct {
	mesh   *Mesh
	volume float64
}

// Volume returns the enclosed volume in model units cubed
func (s *Solid) Volume() float64 {
	return s.volume
}

// Mesh returns the tessellation
func (s *Solid) Mesh() *Mesh {
	return s.mesh
}

// Kernel builds solids from the geometric items of an IFC model
type Kernel struct {
	model    *ifc.Model
	settings ports.GeometrySettings
	cells    int
}

// Option configures a Kernel
type Option func(*Kernel)

// WithMeshCells sets the marching cubes resolution along the longest axis
func WithMeshCells(cells int) Option {
	return func(k *Kernel) {
		if cells > 0 {
			k.cells = cells
		}
	}
}

// NewKernel creates a kernel bound to model
func NewKernel(model *ifc.Model, settings ports.GeometrySettings, opts ...Option) *Kernel {
	k := &Kernel{model: model, settings: settings, cells: DefaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewFactory returns a factory producing kernels for models read by the ifc loader
func NewFactory(settings ports.GeometrySettings, opts ...Option) ports.GeometryKernelFactory {
	return func(model ports.Model) (ports.GeometryKernel, error) {
		m, ok := model.(*ifc.Model)
		if !ok {
			return nil, fmt.Errorf("geometry needs an IFC model, got %T", model)
		}
		return NewKernel(m, settings, opts...), nil
	}
}

// Solid tessellates the body of an element. With world coordinates enabled
// the object placement is applied to the mesh.
func (k *Kernel) Solid(el domain.Element) (ports.Solid, error) {
	in, ok := k.model.Instance(el.ID)
	if !ok {
		return nil, fmt.Errorf("element #%d not in model", el.ID)
	}

	items, err := k.bodyItems(in)
	if err != nil {
		return nil, err
	}

	voids, err := k.openingShapes(in)
	if err != nil {
		logger.Debug("Openings not subtracted", "element", el.GlobalID, "err", err)
		voids = nil
	}

	// Items are measured one by one so their orientations cannot cancel out
	mesh := &Mesh{}
	volume := 0.0
	for _, item := range items {
		s, err := k.shape(item.instance, item.place, 0)
		if err != nil {
			return nil, err
		}
		m, err := k.voided(s, voids, el.GlobalID)
		if err != nil {
			return nil, err
		}
		volume += m.Volume()
		mesh.append(m)
	}

	if k.settings.WorldCoords {
		place, err := k.localPlacement(in.Arg(5), 0)
		if err != nil {
			return nil, err
		}
		mesh = mesh.transform(place)
	}

	return &Solid{mesh: mesh, volume: volume}, nil
}

// openingShapes returns the bodies of the openings voiding product, placed
// in the product's object frame
func (k *Kernel) openingShapes(product *ifc.Instance) ([]shape, error) {
	openings := k.model.Openings(product.ID)
	if len(openings) == 0 {
		return nil, nil
	}

	host, err := k.localPlacement(product.Arg(5), 0)
	if err != nil {
		return nil, err
	}
	toHost := host.inverse()

	var out []shape
	for _, opening := range openings {
		place, err := k.localPlacement(opening.Arg(5), 0)
		if err != nil {
			return nil, err
		}
		items, err := k.bodyItems(opening)
		if err != nil {
			return nil, fmt.Errorf("opening #%d: %w", opening.ID, err)
		}
		rel := toHost.compose(place)
		for _, item := range items {
			s, err := k.shape(item.instance, rel.compose(item.place), 0)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// voided tessellates s with the openings cut out. Bodies that cannot take
// part in a boolean keep their full volume.
func (k *Kernel) voided(s shape, voids []shape, globalID string) (*Mesh, error) {
	if len(voids) > 0 {
		cut := s
		for _, v := range voids {
			cut = &boolean{op: "DIFFERENCE", first: cut, second: v}
		}
		m, err := cut.mesh(k.cells)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, ErrUnsupportedGeometry) {
			return nil, err
		}
		logger.Debug("Openings not subtracted", "element", globalID, "err", err)
	}
	return s.mesh(k.cells)
}

type placedItem struct {
	instance *ifc.Instance
	place    frame
}

// bodyItems returns the items of the Body representation, expanding mapped items
func (k *Kernel) bodyItems(product *ifc.Instance) ([]placedItem, error) {
	pds, ok := k.resolve(product.Arg(6))
	if !ok {
		return nil, ErrNoBody
	}

	var reps []*ifc.Instance
	for _, r := range pds.RefsArg(2) {
		if rep, ok := k.model.Resolve(r); ok {
			reps = append(reps, rep)
		}
	}

	var body *ifc.Instance
	for _, rep := range reps {
		if id, _ := rep.StringArg(1); strings.EqualFold(id, "Body") {
			body = rep
			break
		}
	}
	if body == nil && len(reps) > 0 {
		body = reps[0]
	}
	if body == nil {
		return nil, ErrNoBody
	}

	return k.representationItems(body, identity, 0)
}

func (k *Kernel) representationItems(rep *ifc.Instance, place frame, depth int) ([]placedItem, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: mapped items nested too deep", ErrUnsupportedGeometry)
	}

	var items []placedItem
	for _, r := range rep.RefsArg(3) {
		item, ok := k.model.Resolve(r)
		if !ok {
			continue
		}
		if item.Type != "IFCMAPPEDITEM" {
			items = append(items, placedItem{instance: item, place: place})
			continue
		}

		// MappingSource is an IfcRepresentationMap, MappingTarget a transformation operator
		source, ok := k.resolve(item.Arg(0))
		if !ok {
			continue
		}
		origin, err := k.placement3D(source.Arg(0))
		if err != nil {
			return nil, err
		}
		target, err := k.transformOperator(item.Arg(1))
		if err != nil {
			return nil, err
		}
		mapped, ok := k.resolve(source.Arg(1))
		if !ok {
			continue
		}
		sub, err := k.representationItems(mapped, place.compose(target).compose(origin), depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, sub...)
	}

	if len(items) == 0 {
		return nil, ErrNoBody
	}
	return items, nil
}

// shape decodes a solid model item
func (k *Kernel) shape(in *ifc.Instance, place frame, depth int) (shape, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: booleans nested too deep", ErrUnsupportedGeometry)
	}

	switch in.Type {
	case "IFCEXTRUDEDAREASOLID":
		return k.extrusion(in, place)

	case "IFCFACETEDBREP":
		shell, ok := k.resolve(in.Arg(0))
		if !ok {
			return nil, fmt.Errorf("%w: brep without shell", ErrUnsupportedGeometry)
		}
		m, err := k.shellMesh(shell)
		if err != nil {
			return nil, err
		}
		return &facets{triangles: m.transform(place)}, nil

	case "IFCTRIANGULATEDFACESET":
		m, err := k.triangulatedMesh(in)
		if err != nil {
			return nil, err
		}
		return &facets{triangles: m.transform(place)}, nil

	case "IFCPOLYGONALFACESET":
		m, err := k.polygonalMesh(in)
		if err != nil {
			return nil, err
		}
		return &facets{triangles: m.transform(place)}, nil

	case "IFCBOOLEANRESULT", "IFCBOOLEANCLIPPINGRESULT":
		op, _ := in.EnumArg(0)
		first, ok := k.resolve(in.Arg(1))
		if !ok {
			return nil, fmt.Errorf("%w: boolean without first operand", ErrUnsupportedGeometry)
		}
		second, ok := k.resolve(in.Arg(2))
		if !ok {
			return nil, fmt.Errorf("%w: boolean without second operand", ErrUnsupportedGeometry)
		}
		s0, err := k.shape(first, place, depth+1)
		if err != nil {
			return nil, err
		}
		s1, err := k.shape(second, place, depth+1)
		if err != nil {
			return nil, err
		}
		return &boolean{op: op, first: s0, second: s1}, nil

	case "IFCHALFSPACESOLID", "IFCPOLYGONALBOUNDEDHALFSPACE":
		return k.halfSpace(in, place)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, in.Type)
	}
}

func (k *Kernel) extrusion(in *ifc.Instance, place frame) (shape, error) {
	area, ok := k.resolve(in.Arg(0))
	if !ok {
		return nil, fmt.Errorf("%w: extrusion without profile", ErrUnsupportedGeometry)
	}
	prof, err := k.profile(area)
	if err != nil {
		return nil, err
	}

	local := identity
	if in.Arg(1) != nil {
		if local, err = k.placement3D(in.Arg(1)); err != nil {
			return nil, err
		}
	}

	dir, err := k.direction(in.Arg(2))
	if err != nil {
		return nil, err
	}
	depth, ok := in.FloatArg(3)
	if !ok || depth <= 0 {
		return nil, fmt.Errorf("%w: extrusion depth", ErrUnsupportedGeometry)
	}

	return &prism{profile: prof, dir: dir.Normalize(), depth: depth, place: place.compose(local)}, nil
}

func (k *Kernel) profile(in *ifc.Instance) (profile, error) {
	pos := identity
	if in.Type == "IFCRECTANGLEPROFILEDEF" || in.Type == "IFCCIRCLEPROFILEDEF" {
		if in.Arg(2) != nil {
			var err error
			if pos, err = k.placement2D(in.Arg(2)); err != nil {
				return profile{}, err
			}
		}
	}
	at := func(x, y float64) v2.Vec {
		p := pos.point(v3.Vec{X: x, Y: y})
		return v2.Vec{X: p.X, Y: p.Y}
	}

	switch in.Type {
	case "IFCRECTANGLEPROFILEDEF":
		x, okX := in.FloatArg(3)
		y, okY := in.FloatArg(4)
		if !okX || !okY || x <= 0 || y <= 0 {
			return profile{}, fmt.Errorf("%w: rectangle dimensions", ErrUnsupportedGeometry)
		}
		return profile{points: []v2.Vec{
			at(-x/2, -y/2), at(x/2, -y/2), at(x/2, y/2), at(-x/2, y/2),
		}}, nil

	case "IFCCIRCLEPROFILEDEF":
		r, ok := in.FloatArg(3)
		if !ok || r <= 0 {
			return profile{}, fmt.Errorf("%w: circle radius", ErrUnsupportedGeometry)
		}
		return profile{center: at(0, 0), radius: r}, nil

	case "IFCARBITRARYCLOSEDPROFILEDEF":
		curve, ok := k.resolve(in.Arg(2))
		if !ok {
			return profile{}, fmt.Errorf("%w: profile without curve", ErrUnsupportedGeometry)
		}
		pts, err := k.curvePoints(curve)
		if err != nil {
			return profile{}, err
		}
		if len(pts) < 3 {
			return profile{}, fmt.Errorf("%w: profile with %d points", ErrUnsupportedGeometry, len(pts))
		}
		return profile{points: pts}, nil

	default:
		return profile{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, in.Type)
	}
}

// curvePoints returns the vertices of a closed 2D polyline without the repeated end point
func (k *Kernel) curvePoints(curve *ifc.Instance) ([]v2.Vec, error) {
	var pts []v2.Vec
	switch curve.Type {
	case "IFCPOLYLINE":
		for _, r := range curve.RefsArg(0) {
			p, err := k.point(r)
			if err != nil {
				return nil, err
			}
			pts = append(pts, v2.Vec{X: p.X, Y: p.Y})
		}
	case "IFCINDEXEDPOLYCURVE":
		if curve.Arg(1) != nil {
			return nil, fmt.Errorf("%w: polycurve segments", ErrUnsupportedGeometry)
		}
		list, ok := k.resolve(curve.Arg(0))
		if !ok {
			return nil, fmt.Errorf("%w: polycurve without points", ErrUnsupportedGeometry)
		}
		for _, c := range coordList(list) {
			pts = append(pts, v2.Vec{X: c.X, Y: c.Y})
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, curve.Type)
	}

	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts, nil
}

// shellMesh triangulates the faces of a closed shell
func (k *Kernel) shellMesh(shell *ifc.Instance) (*Mesh, error) {
	m := &Mesh{}
	for _, fr := range shell.RefsArg(0) {
		face, ok := k.model.Resolve(fr)
		if !ok {
			continue
		}
		for _, br := range face.RefsArg(0) {
			bound, ok := k.model.Resolve(br)
			if !ok {
				continue
			}
			loop, ok := k.resolve(bound.Arg(0))
			if !ok {
				continue
			}
			if loop.Type != "IFCPOLYLOOP" {
				return nil, fmt.Errorf("%w: face bound %s", ErrUnsupportedGeometry, loop.Type)
			}
			var pts []v3.Vec
			for _, pr := range loop.RefsArg(0) {
				p, err := k.point(pr)
				if err != nil {
					return nil, err
				}
				pts = append(pts, p)
			}
			if orientation, _ := bound.EnumArg(1); orientation == "F" {
				reverse(pts)
			}
			m.addPolygon(pts)
		}
	}
	if len(m.Triangles) == 0 {
		return nil, fmt.Errorf("%w: empty shell", ErrUnsupportedGeometry)
	}
	return m, nil
}

// triangulatedMesh reads an IfcTriangulatedFaceSet
func (k *Kernel) triangulatedMesh(in *ifc.Instance) (*Mesh, error) {
	list, ok := k.resolve(in.Arg(0))
	if !ok {
		return nil, fmt.Errorf("%w: face set without coordinates", ErrUnsupportedGeometry)
	}
	coords := coordList(list)

	m := &Mesh{}
	for _, tri := range in.ListArg(3) {
		pts, err := indexed(coords, ifc.AsList(tri))
		if err != nil {
			return nil, err
		}
		m.addPolygon(pts)
	}
	return m, nil
}

// polygonalMesh reads an IfcPolygonalFaceSet; inner loops are reversed faces
func (k *Kernel) polygonalMesh(in *ifc.Instance) (*Mesh, error) {
	list, ok := k.resolve(in.Arg(0))
	if !ok {
		return nil, fmt.Errorf("%w: face set without coordinates", ErrUnsupportedGeometry)
	}
	coords := coordList(list)

	m := &Mesh{}
	for _, fr := range in.RefsArg(2) {
		face, ok := k.model.Resolve(fr)
		if !ok {
			continue
		}
		outer, err := indexed(coords, face.ListArg(0))
		if err != nil {
			return nil, err
		}
		m.addPolygon(outer)

		if face.Type == "IFCINDEXEDPOLYGONALFACEWITHVOIDS" {
			for _, inner := range face.ListArg(1) {
				pts, err := indexed(coords, ifc.AsList(inner))
				if err != nil {
					return nil, err
				}
				reverse(pts)
				m.addPolygon(pts)
			}
		}
	}
	return m, nil
}

func (k *Kernel) halfSpace(in *ifc.Instance, place frame) (shape, error) {
	surface, ok := k.resolve(in.Arg(0))
	if !ok || surface.Type != "IFCPLANE" {
		return nil, fmt.Errorf("%w: half space base surface", ErrUnsupportedGeometry)
	}
	plane, err := k.placement3D(surface.Arg(0))
	if err != nil {
		return nil, err
	}
	plane = place.compose(plane)

	// With AgreementFlag true the plane normal points away from the material
	normal := plane.z
	if agree, _ := in.EnumArg(1); agree != "T" {
		normal = normal.MulScalar(-1)
	}
	h := &halfSpace{origin: plane.origin, normal: normal}

	if in.Type == "IFCPOLYGONALBOUNDEDHALFSPACE" {
		pos, err := k.placement3D(in.Arg(2))
		if err != nil {
			return nil, err
		}
		curve, ok := k.resolve(in.Arg(3))
		if !ok {
			return nil, fmt.Errorf("%w: half space boundary", ErrUnsupportedGeometry)
		}
		pts, err := k.curvePoints(curve)
		if err != nil {
			return nil, err
		}
		// The boundary is extruded both ways along the position z axis
		base := place.compose(pos)
		base.origin = base.point(v3.Vec{Z: -planeExtent / 2})
		h.bound = &prism{
			profile: profile{points: pts},
			dir:     v3.Vec{Z: 1},
			depth:   planeExtent,
			place:   base,
		}
	}
	return h, nil
}

// localPlacement resolves an IfcLocalPlacement chain into one frame
func (k *Kernel) localPlacement(v any, depth int) (frame, error) {
	in, ok := k.resolve(v)
	if !ok {
		return identity, nil
	}
	if depth > maxDepth {
		return identity, fmt.Errorf("%w: placement chain too deep", ErrUnsupportedGeometry)
	}
	if in.Type != "IFCLOCALPLACEMENT" {
		return identity, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, in.Type)
	}

	parent, err := k.localPlacement(in.Arg(0), depth+1)
	if err != nil {
		return identity, err
	}
	rel, err := k.placement3D(in.Arg(1))
	if err != nil {
		return identity, err
	}
	return parent.compose(rel), nil
}

// placement3D reads an IfcAxis2Placement3D
func (k *Kernel) placement3D(v any) (frame, error) {
	in, ok := k.resolve(v)
	if !ok {
		return identity, nil
	}
	if in.Type != "IFCAXIS2PLACEMENT3D" {
		return identity, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, in.Type)
	}

	origin, err := k.pointValue(in.Arg(0))
	if err != nil {
		return identity, err
	}
	axis, _ := k.optionalDirection(in.Arg(1))
	ref, _ := k.optionalDirection(in.Arg(2))
	return newFrame(origin, axis, ref), nil
}

// placement2D reads an IfcAxis2Placement2D as a frame in the xy plane
func (k *Kernel) placement2D(v any) (frame, error) {
	in, ok := k.resolve(v)
	if !ok {
		return identity, nil
	}
	origin, err := k.pointValue(in.Arg(0))
	if err != nil {
		return identity, err
	}
	ref, _ := k.optionalDirection(in.Arg(1))
	return newFrame(origin, v3.Vec{Z: 1}, ref), nil
}

// transformOperator reads an IfcCartesianTransformationOperator3D; only rigid ones are supported
func (k *Kernel) transformOperator(v any) (frame, error) {
	in, ok := k.resolve(v)
	if !ok {
		return identity, nil
	}
	if scale, ok := in.FloatArg(3); ok && math.Abs(scale-1) > epsilon {
		return identity, fmt.Errorf("%w: scaled mapped item", ErrUnsupportedGeometry)
	}
	origin, err := k.pointValue(in.Arg(2))
	if err != nil {
		return identity, err
	}
	x, _ := k.optionalDirection(in.Arg(0))
	z, _ := k.optionalDirection(in.Arg(4))
	return newFrame(origin, z, x), nil
}

func (k *Kernel) direction(v any) (v3.Vec, error) {
	d, ok := k.optionalDirection(v)
	if !ok || d.Length() <= epsilon {
		return v3.Vec{}, fmt.Errorf("%w: missing direction", ErrUnsupportedGeometry)
	}
	return d, nil
}

func (k *Kernel) optionalDirection(v any) (v3.Vec, bool) {
	in, ok := k.resolve(v)
	if !ok || in.Type != "IFCDIRECTION" {
		return v3.Vec{}, false
	}
	return vec(in.ListArg(0)), true
}

func (k *Kernel) point(r ifc.Ref) (v3.Vec, error) {
	return k.pointValue(r)
}

func (k *Kernel) pointValue(v any) (v3.Vec, error) {
	in, ok := k.resolve(v)
	if !ok {
		return v3.Vec{}, nil
	}
	if in.Type != "IFCCARTESIANPOINT" {
		return v3.Vec{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, in.Type)
	}
	return vec(in.ListArg(0)), nil
}

func (k *Kernel) resolve(v any) (*ifc.Instance, bool) {
	r, ok := ifc.AsRef(v)
	if !ok {
		return nil, false
	}
	return k.model.Resolve(r)
}

// vec reads up to three coordinates; missing ones are zero
func vec(coords []any) v3.Vec {
	var c [3]float64
	for i := 0; i < len(coords) && i < 3; i++ {
		c[i], _ = ifc.AsFloat(coords[i])
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}
}

// coordList reads IfcCartesianPointList2D/3D coordinates
func coordList(in *ifc.Instance) []v3.Vec {
	var out []v3.Vec
	for _, c := range in.ListArg(0) {
		out = append(out, vec(ifc.AsList(c)))
	}
	return out
}

// indexed picks coordinates by their one-based indices
func indexed(coords []v3.Vec, indices []any) ([]v3.Vec, error) {
	pts := make([]v3.Vec, 0, len(indices))
	for _, idx := range indices {
		f, ok := ifc.AsFloat(idx)
		i := int(f)
		if !ok || i < 1 || i > len(coords) {
			return nil, fmt.Errorf("%w: coordinate index %v", ErrUnsupportedGeometry, idx)
		}
		pts = append(pts, coords[i-1])
	}
	return pts, nil
}

func reverse(pts []v3.Vec) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
