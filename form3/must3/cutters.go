package must3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Edge cutters are prisms whose profile occupies the corner of the first
// quadrant of the local xy plane, the edge lying on the z axis. Subtracting a
// cutter from a solid whose material fills the quadrant rounds or bevels a
// convex edge. Adding it to a solid whose material fills the other three
// quadrants does the same for a concave edge.

type cutterKind int

const (
	chamfer cutterKind = iota
	fillet
)

type edgeCutter struct {
	kind  cutterKind
	r     float64 // chamfer or fillet radius
	ext   float64 // extension past the faces into the neighbouring quadrants
	halfL float64
	bb    sdf.Box3
}

// ChamferCutter returns a triangular prism of legs r and length l centered on
// the z axis. The legs are extended by ext outside the quadrant.
func ChamferCutter(r, l, ext float64) sdf.SDF3 {
	return newCutter(chamfer, r, l, ext)
}

// FilletCutter returns the prism left when a cylinder of radius r centered at
// (r, r) is removed from the square [0,r]x[0,r], extruded to length l.
func FilletCutter(r, l, ext float64) sdf.SDF3 {
	return newCutter(fillet, r, l, ext)
}

func newCutter(kind cutterKind, r, l, ext float64) *edgeCutter {
	if r <= 0 {
		panic("radius <= 0")
	}
	if l <= 0 {
		panic("length <= 0")
	}
	if ext < 0 {
		panic("ext < 0")
	}
	max := r
	if kind == chamfer {
		max = r + 2*ext
	}
	return &edgeCutter{
		kind:  kind,
		r:     r,
		ext:   ext,
		halfL: l / 2,
		bb: sdf.Box3{
			Min: v3.Vec{X: -ext, Y: -ext, Z: -l / 2},
			Max: v3.Vec{X: max, Y: max, Z: l / 2},
		},
	}
}

// Evaluate returns a lower bound of the distance to the cutter.
func (s *edgeCutter) Evaluate(p v3.Vec) float64 {
	d := math.Max(-s.ext-p.X, -s.ext-p.Y)
	d = math.Max(d, math.Abs(p.Z)-s.halfL)
	switch s.kind {
	case chamfer:
		d = math.Max(d, (p.X+p.Y-s.r)/math.Sqrt2)
	case fillet:
		d = math.Max(d, math.Max(p.X-s.r, p.Y-s.r))
		d = math.Max(d, s.r-math.Hypot(p.X-s.r, p.Y-s.r))
	}
	return d
}

// BoundingBox returns the bounding box of the cutter.
func (s *edgeCutter) BoundingBox() sdf.Box3 { return s.bb }
