// Package form3 is the shape algebra parts are built with. It wraps the sdfx
// signed distance kernel with directed primitives positioned by axis vectors,
// boolean operations and edge fillets and chamfers selected by a point on the
// edge and its direction.
package form3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge is a straight edge of a primitive, tracked through boolean operations.
type Edge struct {
	A, B r3.Vec
}

// Length returns the distance between the edge end points.
func (e Edge) Length() float64 { return r3.Norm(r3.Sub(e.B, e.A)) }

// Dir returns the unit direction from A to B.
func (e Edge) Dir() r3.Vec { return r3.Unit(r3.Sub(e.B, e.A)) }

// Mid returns the edge midpoint.
func (e Edge) Mid() r3.Vec { return r3.Scale(0.5, r3.Add(e.A, e.B)) }

// Solid is a closed volume. The zero value is the empty solid.
type Solid struct {
	s     sdf.SDF3
	edges []Edge
}

// FromSDF3 wraps a kernel shape. It has no tracked edges.
func FromSDF3(s sdf.SDF3) Solid { return Solid{s: s} }

// SDF3 returns the kernel shape, nil for the empty solid.
func (s Solid) SDF3() sdf.SDF3 { return s.s }

// IsEmpty reports whether s holds no shape.
func (s Solid) IsEmpty() bool { return s.s == nil }

// Edges returns the straight edges of the primitives s was built from. Edges
// of primitives removed by later booleans are not pruned.
func (s Solid) Edges() []Edge { return s.edges }

// Evaluate returns the signed distance from p to s. Negative inside.
func (s Solid) Evaluate(p r3.Vec) float64 {
	if s.s == nil {
		return math.Inf(1)
	}
	return s.s.Evaluate(d3.ToV3(p))
}

// Contains reports whether p lies strictly inside s.
func (s Solid) Contains(p r3.Vec) bool { return s.Evaluate(p) < 0 }

// Bounds returns the bounding box of s.
func (s Solid) Bounds() d3.Box {
	if s.s == nil {
		return d3.Box{}
	}
	return d3.FromBox3(s.s.BoundingBox())
}

// Translate returns s moved by v.
func (s Solid) Translate(v r3.Vec) Solid {
	if s.s == nil || d3.IsZero(v) {
		return s
	}
	edges := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		edges[i] = Edge{A: r3.Add(e.A, v), B: r3.Add(e.B, v)}
	}
	return Solid{
		s:     sdf.Transform3D(s.s, sdf.Translate3d(d3.ToV3(v))),
		edges: edges,
	}
}

// Union returns the union of all non-empty solids.
func Union(solids ...Solid) Solid {
	var list []sdf.SDF3
	var edges []Edge
	for _, s := range solids {
		if s.s == nil {
			continue
		}
		list = append(list, s.s)
		edges = append(edges, s.edges...)
	}
	switch len(list) {
	case 0:
		return Solid{}
	case 1:
		return Solid{s: list[0], edges: edges}
	}
	return Solid{s: sdf.Union3D(list...), edges: edges}
}

// FuseList returns the union of list. It fails for an empty list.
func FuseList(list []Solid) (Solid, error) {
	u := Union(list...)
	if u.IsEmpty() {
		return Solid{}, badGeometry("fuse of %d empty solids", len(list))
	}
	return u, nil
}

// Difference returns a with b removed.
func Difference(a, b Solid) Solid {
	if a.s == nil || b.s == nil {
		return a
	}
	return Solid{
		s:     sdf.Difference3D(a.s, b.s),
		edges: concatEdges(a.edges, b.edges),
	}
}

// Intersect returns the volume common to a and b.
func Intersect(a, b Solid) Solid {
	if a.s == nil || b.s == nil {
		return Solid{}
	}
	return Solid{
		s:     sdf.Intersect3D(a.s, b.s),
		edges: concatEdges(a.edges, b.edges),
	}
}

func concatEdges(a, b []Edge) []Edge {
	edges := make([]Edge, 0, len(a)+len(b))
	edges = append(edges, a...)
	return append(edges, b...)
}

// surfaceTol is the distance under which a volume sample is taken to lie on
// the surface of a solid.
const surfaceTol = 1e-9

// Volume estimates the volume of s by sampling the centers of cubic cells of
// side cell over its bounding box. Samples lying on the surface count as half
// a cell so planes through a row of samples do not bias the estimate.
func Volume(s Solid, cell float64) float64 {
	if s.s == nil || cell <= 0 {
		return 0
	}
	bb := s.Bounds()
	size := bb.Size()
	nx := int(math.Ceil(size.X / cell))
	ny := int(math.Ceil(size.Y / cell))
	nz := int(math.Ceil(size.Z / cell))
	count := 0.0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				p := r3.Add(bb.Min, r3.Scale(cell, r3.Vec{X: float64(i) + 0.5, Y: float64(j) + 0.5, Z: float64(k) + 0.5}))
				switch d := s.Evaluate(p); {
				case math.Abs(d) <= surfaceTol:
					count += 0.5
				case d < 0:
					count++
				}
			}
		}
	}
	return count * cell * cell * cell
}
