package must3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box (exact distance field)

// box is a 3d box centered at the origin.
type box struct {
	half r3.Vec
	bb   sdf.Box3
}

// Box return an SDF3 for a 3d box centered at the origin.
func Box(size r3.Vec) *box {
	if d3.LTEZero(size) {
		panic("size <= 0")
	}
	half := r3.Scale(0.5, size)
	return &box{
		half: half,
		bb:   sdf.Box3{Min: d3.ToV3(r3.Scale(-1, half)), Max: d3.ToV3(half)},
	}
}

// Evaluate returns the minimum distance to a 3d box.
func (s *box) Evaluate(p v3.Vec) float64 {
	return sdfBox3d(d3.FromV3(p), s.half)
}

// BoundingBox returns the bounding box for a 3d box.
func (s *box) BoundingBox() sdf.Box3 { return s.bb }

// Cylinder (exact distance field)

// cylinder is a cylinder along the z axis centered at the origin.
type cylinder struct {
	halfH  float64
	radius float64
	bb     sdf.Box3
}

// Cylinder return an SDF3 for a cylinder along z centered at the origin.
func Cylinder(height, radius float64) *cylinder {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if height <= 0 {
		panic("height <= 0")
	}
	d := v3.Vec{X: radius, Y: radius, Z: height / 2}
	return &cylinder{
		halfH:  height / 2,
		radius: radius,
		bb:     sdf.Box3{Min: neg(d), Max: d},
	}
}

// Evaluate returns the minimum distance to a cylinder.
func (s *cylinder) Evaluate(p v3.Vec) float64 {
	return sdfBox2d(r2.Vec{X: math.Hypot(p.X, p.Y), Y: p.Z}, r2.Vec{X: s.radius, Y: s.halfH})
}

// BoundingBox returns the bounding box for a cylinder.
func (s *cylinder) BoundingBox() sdf.Box3 { return s.bb }

// Hexagonal prism

// hexPrism is a regular hexagonal prism along z with one vertex on +x.
type hexPrism struct {
	apothem float64
	halfH   float64
	bb      sdf.Box3
}

// normals of the three pairs of flat sides.
var hexNormals = [3]r2.Vec{
	{X: 0, Y: 1},
	{X: math.Sqrt(3) / 2, Y: 0.5},
	{X: math.Sqrt(3) / 2, Y: -0.5},
}

// HexPrism returns a hexagonal prism of circumscribed radius circR centered
// at the origin. Its axis is z and a vertex points along +x.
func HexPrism(circR, height float64) *hexPrism {
	if circR <= 0 {
		panic("circR <= 0")
	}
	if height <= 0 {
		panic("height <= 0")
	}
	a := circR * math.Sqrt(3) / 2
	d := v3.Vec{X: circR, Y: a, Z: height / 2}
	return &hexPrism{
		apothem: a,
		halfH:   height / 2,
		bb:      sdf.Box3{Min: neg(d), Max: d},
	}
}

// Evaluate returns a lower bound of the distance to the prism.
func (s *hexPrism) Evaluate(p v3.Vec) float64 {
	q := r2.Vec{X: p.X, Y: p.Y}
	d := math.Inf(-1)
	for _, n := range hexNormals {
		d = math.Max(d, math.Abs(r2.Dot(q, n))-s.apothem)
	}
	return math.Max(d, math.Abs(p.Z)-s.halfH)
}

// BoundingBox returns the bounding box of the prism.
func (s *hexPrism) BoundingBox() sdf.Box3 { return s.bb }

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}

func sdfBox2d(p, s r2.Vec) float64 {
	p = r2.Vec{X: math.Abs(p.X), Y: math.Abs(p.Y)}
	d := r2.Sub(p, s)
	if d.X > 0 && d.Y > 0 {
		return r2.Norm(d)
	}
	return math.Max(d.X, d.Y)
}

func neg(v v3.Vec) v3.Vec { return v3.Vec{X: -v.X, Y: -v.Y, Z: -v.Z} }
