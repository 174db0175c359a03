package form3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/stage/form3/must3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default axes used when a direction is left as the zero vector.
var (
	DefaultD = r3.Vec{X: 1}
	DefaultW = r3.Vec{Y: 1}
	DefaultH = r3.Vec{Z: 1}
)

// BoxParams defines a box directed along three axes.
type BoxParams struct {
	Size                r3.Vec // length along d (X), w (Y) and h (Z)
	AxisD, AxisW, AxisH r3.Vec // AxisH is d × w when zero
	CenD, CenW, CenH    bool   // Pos is at the center of the axis, else at its start
	Pos                 r3.Vec
	// Extra length added past each face. They do not move Pos.
	XtrD, XtrND float64
	XtrW, XtrNW float64
	XtrH, XtrNH float64
}

// axes returns the normalized box basis.
func (p BoxParams) axes() (d, w, h r3.Vec) {
	d, w, h = p.AxisD, p.AxisW, p.AxisH
	if d3.IsZero(d) {
		d = DefaultD
	}
	if d3.IsZero(w) {
		w = DefaultW
	}
	if d3.IsZero(h) {
		h = r3.Cross(d, w)
	}
	return r3.Unit(d), r3.Unit(w), r3.Unit(h)
}

// span returns the start and end of an axis of length l.
func span(l float64, centered bool, xtrNeg, xtrPos float64) (lo, hi float64) {
	if centered {
		return -l/2 - xtrNeg, l/2 + xtrPos
	}
	return -xtrNeg, l + xtrPos
}

// Box returns a box directed along AxisD, AxisW and AxisH.
func Box(p BoxParams) (s Solid, err error) {
	defer catch(&err)
	return mustBox(p), err
}

func mustBox(p BoxParams) Solid {
	if d3.LTEZero(p.Size) {
		panic("box size <= 0")
	}
	d, w, h := p.axes()
	loD, hiD := span(p.Size.X, p.CenD, p.XtrND, p.XtrD)
	loW, hiW := span(p.Size.Y, p.CenW, p.XtrNW, p.XtrW)
	loH, hiH := span(p.Size.Z, p.CenH, p.XtrNH, p.XtrH)
	size := r3.Vec{X: hiD - loD, Y: hiW - loW, Z: hiH - loH}
	if d3.LTEZero(size) {
		panic("box extras leave no volume")
	}
	center := r3.Add(p.Pos, r3.Add(r3.Scale((loD+hiD)/2, d), r3.Add(r3.Scale((loW+hiW)/2, w), r3.Scale((loH+hiH)/2, h))))
	sd := must3.Orient(must3.Box(size), d, w, h, center)
	return Solid{s: sd, edges: boxEdges(center, d, w, h, size)}
}

// boxEdges returns the 12 edges of a box.
func boxEdges(center, d, w, h, size r3.Vec) []Edge {
	hd, hw, hh := r3.Scale(size.X/2, d), r3.Scale(size.Y/2, w), r3.Scale(size.Z/2, h)
	corner := func(sd, sw, sh float64) r3.Vec {
		return r3.Add(center, r3.Add(r3.Scale(sd, hd), r3.Add(r3.Scale(sw, hw), r3.Scale(sh, hh))))
	}
	edges := make([]Edge, 0, 12)
	for _, a := range [2]float64{-1, 1} {
		for _, b := range [2]float64{-1, 1} {
			edges = append(edges,
				Edge{A: corner(-1, a, b), B: corner(1, a, b)}, // along d
				Edge{A: corner(a, -1, b), B: corner(a, 1, b)}, // along w
				Edge{A: corner(a, b, -1), B: corner(a, b, 1)}, // along h
			)
		}
	}
	return edges
}

// CylinderParams defines a cylinder directed along Axis.
type CylinderParams struct {
	R, H     float64
	Axis     r3.Vec // default Z
	Pos      r3.Vec // center of the bottom face, or of the cylinder when Centered
	Centered bool
	XtrTop   float64 // extra length past the top face, in the Axis direction
	XtrBot   float64 // extra length past the bottom face
}

func (p CylinderParams) axis() r3.Vec {
	if d3.IsZero(p.Axis) {
		return DefaultH
	}
	return r3.Unit(p.Axis)
}

// orientZ orients a shape built along z onto axis with its center at center.
func orientZ(s sdf.SDF3, axis, center r3.Vec) Solid {
	u, v := d3.Perpendicular(axis)
	return Solid{s: must3.Orient(s, u, v, axis, center)}
}

// Cylinder returns a cylinder directed along Axis.
func Cylinder(p CylinderParams) (s Solid, err error) {
	defer catch(&err)
	return mustCylinder(p), err
}

func mustCylinder(p CylinderParams) Solid {
	if p.H <= 0 {
		panic("cylinder height <= 0")
	}
	axis := p.axis()
	lo, hi := span(p.H, p.Centered, p.XtrBot, p.XtrTop)
	center := r3.Add(p.Pos, r3.Scale((lo+hi)/2, axis))
	return orientZ(must3.Cylinder(hi-lo, p.R), axis, center)
}

// CylinderHole returns the cylinder of p with a coaxial hole of radius rIn.
// The hole always passes through both faces.
func CylinderHole(p CylinderParams, rIn float64) (s Solid, err error) {
	defer catch(&err)
	if rIn <= 0 || rIn >= p.R {
		panic("inner radius out of range (0, R)")
	}
	outer := mustCylinder(p)
	ext := math.Max(1, p.H/10)
	hole := p
	hole.R = rIn
	hole.XtrTop += ext
	hole.XtrBot += ext
	return Difference(outer, mustCylinder(hole)), err
}

// HexPrismParams defines a hexagonal prism such as a nut.
type HexPrismParams struct {
	CircR    float64 // circumscribed radius
	H        float64
	Axis     r3.Vec // default Z
	Vertex   r3.Vec // direction of one vertex, perpendicular to Axis. Optional.
	Pos      r3.Vec // center of the bottom face, or of the prism when Centered
	Centered bool
	XtrTop   float64
	XtrBot   float64
}

// HexPrism returns a regular hexagonal prism.
func HexPrism(p HexPrismParams) (s Solid, err error) {
	defer catch(&err)
	return mustHexPrism(p), err
}

func mustHexPrism(p HexPrismParams) Solid {
	if p.H <= 0 {
		panic("prism height <= 0")
	}
	axis := DefaultH
	if !d3.IsZero(p.Axis) {
		axis = r3.Unit(p.Axis)
	}
	u, v := d3.Perpendicular(axis)
	if !d3.IsZero(p.Vertex) {
		u = r3.Sub(p.Vertex, r3.Scale(r3.Dot(p.Vertex, axis), axis))
		if r3.Norm(u) < 1e-9 {
			panic("vertex direction parallel to axis")
		}
		u = r3.Unit(u)
		v = r3.Cross(axis, u)
	}
	lo, hi := span(p.H, p.Centered, p.XtrBot, p.XtrTop)
	center := r3.Add(p.Pos, r3.Scale((lo+hi)/2, axis))
	return Solid{s: must3.Orient(must3.HexPrism(p.CircR, hi-lo), u, v, axis, center)}
}

// BoltParams defines a bolt shaped solid, usually cut to make a counterbored hole.
type BoltParams struct {
	ShankR, HeadR float64
	HeadL         float64 // head length, 0 for a plain shank
	TotalL        float64 // head plus shank length
	Normal        r3.Vec  // points from the shank tip to the head, default Z
	Pos           r3.Vec  // center of the head top face
	HexHead       bool    // hexagonal head of circumscribed radius HeadR
	XtrHead       float64 // extra length past the head top, along Normal
	XtrShank      float64 // extra length past the shank tip
}

// Bolt returns a solid with a head and a shank along Normal.
func Bolt(p BoltParams) (s Solid, err error) {
	defer catch(&err)
	return mustBolt(p), err
}

func mustBolt(p BoltParams) Solid {
	if p.TotalL <= p.HeadL {
		panic("bolt total length <= head length")
	}
	if p.HeadL > 0 && p.HeadR <= p.ShankR {
		panic("bolt head radius <= shank radius")
	}
	n := DefaultH
	if !d3.IsZero(p.Normal) {
		n = r3.Unit(p.Normal)
	}
	down := r3.Scale(-1, n)
	shankL := p.TotalL - p.HeadL
	shank := mustCylinder(CylinderParams{
		R:      p.ShankR,
		H:      shankL,
		Axis:   down,
		Pos:    r3.Add(p.Pos, r3.Scale(p.HeadL, down)),
		XtrBot: math.Min(p.HeadL, 0.1) + boolIf(p.HeadL == 0, p.XtrHead),
		XtrTop: p.XtrShank,
	})
	if p.HeadL == 0 {
		return shank
	}
	var head Solid
	if p.HexHead {
		head = mustHexPrism(HexPrismParams{CircR: p.HeadR, H: p.HeadL, Axis: down, Pos: p.Pos, XtrBot: p.XtrHead})
	} else {
		head = mustCylinder(CylinderParams{R: p.HeadR, H: p.HeadL, Axis: down, Pos: p.Pos, XtrBot: p.XtrHead})
	}
	return Union(head, shank)
}

func boolIf(b bool, v float64) float64 {
	if b {
		return v
	}
	return 0
}

// NutHoleParams defines a hexagonal nut pocket with a lateral insertion slot.
type NutHoleParams struct {
	CircR    float64 // nut circumscribed radius, tolerance included
	NutH     float64 // pocket height along NutAxis
	HoleH    float64 // slot length along HoleAxis from the nut center, 0 for no slot
	NutAxis  r3.Vec
	HoleAxis r3.Vec // direction the nut slides in from, perpendicular to NutAxis
	Pos      r3.Vec // nut center on its bottom face, or its center when Centered
	Centered bool
	XtrTop   float64 // extra height past the top of the pocket
	XtrBot   float64
}

// NutHole returns a nut pocket. The hexagon flats are parallel to HoleAxis so
// the slot width equals the nut width across flats.
func NutHole(p NutHoleParams) (s Solid, err error) {
	defer catch(&err)
	if d3.IsZero(p.NutAxis) {
		panic("nut axis undefined")
	}
	nut := r3.Unit(p.NutAxis)
	hex := mustHexPrism(HexPrismParams{
		CircR: p.CircR, H: p.NutH, Axis: nut, Vertex: p.HoleAxis,
		Pos: p.Pos, Centered: p.Centered, XtrTop: p.XtrTop, XtrBot: p.XtrBot,
	})
	if p.HoleH <= 0 {
		return hex, err
	}
	if d3.IsZero(p.HoleAxis) {
		panic("hole axis undefined")
	}
	hole := r3.Unit(p.HoleAxis)
	if math.Abs(r3.Dot(hole, nut)) > 1e-9 {
		panic("hole axis not perpendicular to nut axis")
	}
	slot := mustBox(BoxParams{
		Size:  r3.Vec{X: p.HoleH, Y: p.CircR * math.Sqrt(3), Z: p.NutH},
		AxisD: hole, AxisW: r3.Cross(nut, hole), AxisH: nut,
		CenW: true, CenH: p.Centered,
		Pos:  p.Pos,
		XtrH: p.XtrTop, XtrNH: p.XtrBot,
	})
	return Union(hex, slot), err
}
