package must3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const basisTol = 1e-9

// oriented places an SDF3 defined in local x, y, z coordinates into the
// world with local axes u, v, n and local origin o.
type oriented struct {
	s       sdf.SDF3
	u, v, n r3.Vec
	o       r3.Vec
	bb      sdf.Box3
}

// Orient returns s with its local x, y and z axes mapped to u, v and n and its
// local origin moved to origin. u, v and n must be a right handed orthonormal basis.
func Orient(s sdf.SDF3, u, v, n, origin r3.Vec) sdf.SDF3 {
	if s == nil {
		panic("nil sdf")
	}
	for _, a := range [3]r3.Vec{u, v, n} {
		if math.Abs(r3.Norm(a)-1) > basisTol {
			panic("basis vector not unit length")
		}
	}
	if math.Abs(r3.Dot(u, v)) > basisTol || math.Abs(r3.Dot(u, n)) > basisTol || math.Abs(r3.Dot(v, n)) > basisTol {
		panic("basis not orthogonal")
	}
	if r3.Dot(r3.Cross(u, v), n) < 0 {
		panic("basis is left handed")
	}
	// identity orientation needs no wrapper.
	if u == (r3.Vec{X: 1}) && v == (r3.Vec{Y: 1}) && n == (r3.Vec{Z: 1}) {
		return sdf.Transform3D(s, sdf.Translate3d(d3.ToV3(origin)))
	}
	o := &oriented{s: s, u: u, v: v, n: n, o: origin}
	local := d3.FromBox3(s.BoundingBox())
	var world d3.Box
	for i, c := range local.Vertices() {
		w := o.toWorld(c)
		if i == 0 {
			world = d3.Box{Min: w, Max: w}
			continue
		}
		world = world.Include(w)
	}
	o.bb = world.ToBox3()
	return o
}

func (s *oriented) toWorld(p r3.Vec) r3.Vec {
	return r3.Add(s.o, r3.Add(r3.Scale(p.X, s.u), r3.Add(r3.Scale(p.Y, s.v), r3.Scale(p.Z, s.n))))
}

// Evaluate returns the distance to the oriented shape.
func (s *oriented) Evaluate(p v3.Vec) float64 {
	q := r3.Sub(d3.FromV3(p), s.o)
	return s.s.Evaluate(v3.Vec{X: r3.Dot(q, s.u), Y: r3.Dot(q, s.v), Z: r3.Dot(q, s.n)})
}

// BoundingBox returns the world bounding box.
func (s *oriented) BoundingBox() sdf.Box3 { return s.bb }
