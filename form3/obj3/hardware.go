package obj3

import (
	"fmt"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hardware: bolts, nuts and washers drawn at nominal size for the assembly
// view. They are not meant to be printed.

// BoltParams defines a DIN 912 bolt. Named points along h: 0 head top,
// 1 head bottom, 2 tip. The bolt axis is d = w = 0 and h points from the
// head to the tip.
type BoltParams struct {
	Name   string
	M      float64
	Length float64 // shank length below the head
	Style  CylinderStyle
	Color  stage.Color
	Placement
}

// DefaultBoltParams returns an M3x10 socket head bolt.
func DefaultBoltParams() BoltParams {
	return BoltParams{M: 3, Length: 10, Style: CylinderCircular, Color: stage.Gray}
}

// NewBolt builds a bolt and registers it into the context scene.
func NewBolt(ctx *part.Context, p BoltParams) (b *part.Part, err error) {
	name := part.Name(p.Name, fmt.Sprintf("bolt_l%g", p.Length), p.M)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	bolt, err := catalog.LookupBolt(p.M)
	stage.Must(err)
	positive("bolt length", p.Length)

	f := p.frame(true, true, false)
	f.SetD()
	f.SetW()
	f.SetH(bolt.HeadL, bolt.HeadL+p.Length)
	p.anchor(&f)

	step = "solid"
	headR := bolt.HeadD / 2
	if p.Style == CylinderHex {
		// hex heads are circumscribed.
		headR = bolt.HeadD / 2 / 0.866
	}
	s := must(form3.Bolt(form3.BoltParams{
		ShankR:  p.M / 2,
		HeadR:   headR,
		HeadL:   bolt.HeadL,
		TotalL:  bolt.HeadL + p.Length,
		Normal:  r3.Scale(-1, f.AxisH),
		Pos:     f.MustLocal(0, 0, 0),
		HexHead: p.Style == CylinderHex,
	}))
	return register(ctx, name, f, s, p.Color, f.AxisH)
}

// NutParams defines a DIN 934 nut. Named points along h: 0 bottom face,
// 1 top face. The nut axis is d = w = 0.
type NutParams struct {
	Name  string
	M     float64
	Style CylinderStyle
	Color stage.Color
	Placement
}

// NewNut builds a nut and registers it into the context scene.
func NewNut(ctx *part.Context, p NutParams) (n *part.Part, err error) {
	name := part.Name(p.Name, "nut", p.M)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	nut, err := catalog.LookupNut(p.M)
	stage.Must(err)

	f := p.frame(true, true, false)
	f.SetD()
	f.SetW()
	f.SetH(nut.H)
	p.anchor(&f)

	step = "solid"
	var body form3.Solid
	switch p.Style {
	case CylinderCircular:
		body = must(form3.Cylinder(form3.CylinderParams{R: nut.CircR, H: nut.H, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0)}))
	case CylinderHex, 0:
		body = must(form3.HexPrism(form3.HexPrismParams{CircR: nut.CircR, H: nut.H, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0)}))
	default:
		panic(badParam("unknown nut style %v", p.Style))
	}
	hole := must(form3.Cylinder(form3.CylinderParams{
		R: p.M / 2, H: nut.H, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0), XtrTop: xtr, XtrBot: xtr,
	}))
	return register(ctx, name, f, form3.Difference(body, hole), p.Color, f.AxisH)
}

// WasherParams defines a flat washer. Named points along h: 0 bottom face,
// 1 top face.
type WasherParams struct {
	Name  string
	M     float64
	Large bool // DIN 9021 instead of DIN 125
	Color stage.Color
	Placement
}

// NewWasher builds a washer and registers it into the context scene.
func NewWasher(ctx *part.Context, p WasherParams) (w *part.Part, err error) {
	kind, lookup := "washer", catalog.LookupWasher
	if p.Large {
		kind, lookup = "largewasher", catalog.LookupLargeWasher
	}
	name := part.Name(p.Name, kind, p.M)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	washer, err := lookup(p.M)
	stage.Must(err)

	f := p.frame(true, true, false)
	f.SetD()
	f.SetW()
	f.SetH(washer.T)
	p.anchor(&f)

	step = "solid"
	s := must(form3.CylinderHole(form3.CylinderParams{
		R: washer.OD / 2, H: washer.T, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0),
	}, washer.ID/2))
	return register(ctx, name, f, s, p.Color, f.AxisH)
}

// register wraps s into a part of the given color and print axis and
// registers it.
func register(ctx *part.Context, name string, f stage.Frame, s form3.Solid, c stage.Color, up r3.Vec) (*part.Part, error) {
	prt := part.New(name, f, s)
	if c != (stage.Color{}) {
		prt.Color = c
	}
	prt.PrintUp = up
	stage.Must(prt.Register(ctx))
	return prt, nil
}
