package geometry

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// frame is a right-handed orthonormal coordinate system
type frame struct {
	origin  v3.Vec
	x, y, z v3.Vec
}

var identity = frame{
	x: v3.Vec{X: 1},
	y: v3.Vec{Y: 1},
	z: v3.Vec{Z: 1},
}

const epsilon = 1e-9

// newFrame builds a frame from an origin, a z axis and an approximate x axis.
// Missing or degenerate axes fall back to the global ones.
func newFrame(origin, axis, ref v3.Vec) frame {
	z := v3.Vec{Z: 1}
	if axis.Length() > epsilon {
		z = axis.Normalize()
	}

	x := ref.Sub(z.MulScalar(ref.Dot(z)))
	if x.Length() <= epsilon {
		x = v3.Vec{X: 1}
		if math.Abs(z.X) > 0.9 {
			x = v3.Vec{Y: 1}
		}
		x = x.Sub(z.MulScalar(x.Dot(z)))
	}
	x = x.Normalize()

	return frame{origin: origin, x: x, y: z.Cross(x), z: z}
}

// point maps local coordinates to the parent system
func (f frame) point(p v3.Vec) v3.Vec {
	return f.origin.Add(f.dir(p))
}

// dir maps a local direction to the parent system
func (f frame) dir(d v3.Vec) v3.Vec {
	return f.x.MulScalar(d.X).Add(f.y.MulScalar(d.Y)).Add(f.z.MulScalar(d.Z))
}

// local maps parent coordinates into the frame
func (f frame) local(p v3.Vec) v3.Vec {
	d := p.Sub(f.origin)
	return v3.Vec{X: d.Dot(f.x), Y: d.Dot(f.y), Z: d.Dot(f.z)}
}

// compose returns the frame that applies inner first, then f
func (f frame) compose(inner frame) frame {
	return frame{
		origin: f.point(inner.origin),
		x:      f.dir(inner.x),
		y:      f.dir(inner.y),
		z:      f.dir(inner.z),
	}
}

// inverse maps parent coordinates into the frame; inverse().point equals local
func (f frame) inverse() frame {
	return frame{
		origin: f.local(v3.Vec{}),
		x:      v3.Vec{X: f.x.X, Y: f.y.X, Z: f.z.X},
		y:      v3.Vec{X: f.x.Y, Y: f.y.Y, Z: f.z.Y},
		z:      v3.Vec{X: f.x.Z, Y: f.y.Z, Z: f.z.Z},
	}
}
