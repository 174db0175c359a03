package obj3

import (
	"fmt"
	"math"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// NemaBracketParams defines a reinforced L bracket carrying a NEMA stepper
// motor on its top plate and bolted to a profile through two vertical slots
// in its wall.
//
// Named points along d: 0 wall back face, 1 wall front face, 2 motor axis,
// 3 front face. Along w (centered): 0 mid-plane, 1 slot axis,
// 2 reinforcement inner face, 3 side face. Along h: 0 bottom, 1 slot low
// end, 2 slot high end, 3 top plate bottom, 4 top face.
type NemaBracketParams struct {
	Name          string
	NemaSize      int
	WallThick     float64 // vertical plate thickness
	MotorThick    float64 // top plate thickness
	ReinfThick    float64 // side reinforcement thickness
	MotorXtrSpace float64 // clearance around the motor face
	MotorHoleR    float64 // motor boss hole radius, 0 for half the bolt spacing
	MinH, MaxH    float64 // slot range measured down from the top plate bottom
	ExtraDown     float64 // wall below the lowest slot position
	ChamferR      float64 // chamfer of the four vertical edges
	BoltWallM     float64 // slot bolt metric
	Color         stage.Color
	Placement
}

// DefaultNemaBracketParams returns a NEMA 17 bracket with M4 slots.
func DefaultNemaBracketParams() NemaBracketParams {
	return NemaBracketParams{
		NemaSize:      17,
		WallThick:     4,
		MotorThick:    5,
		ReinfThick:    4,
		MotorXtrSpace: 1,
		MinH:          10,
		MaxH:          40,
		ExtraDown:     5,
		ChamferR:      2,
		BoltWallM:     4,
		Color:         stage.Green,
	}
}

// NemaBracketDims are the dimensions derived from NemaBracketParams.
type NemaBracketDims struct {
	Motor            catalog.NEMA
	MotorBolt        catalog.Bolt
	SlotBolt         catalog.Bolt
	TotW, TotD, TotH float64
	HoleR            float64 // motor boss hole radius
	ReinfR           float64 // reinforcement chamfer
}

// Dims derives the bracket dimensions.
func (p NemaBracketParams) Dims() (NemaBracketDims, error) {
	var d NemaBracketDims
	var err error
	if d.Motor, err = catalog.LookupNEMA(p.NemaSize); err != nil {
		return d, err
	}
	if d.MotorBolt, err = catalog.LookupBolt(d.Motor.BoltM); err != nil {
		return d, err
	}
	if d.SlotBolt, err = catalog.LookupBolt(p.BoltWallM); err != nil {
		return d, err
	}
	d.TotW = 2*p.ReinfThick + d.Motor.W + 2*p.MotorXtrSpace
	d.TotD = p.WallThick + d.Motor.W + 2*p.MotorXtrSpace
	d.TotH = p.MotorThick + p.MaxH + p.ExtraDown
	d.HoleR = p.MotorHoleR
	if d.HoleR == 0 {
		d.HoleR = d.Motor.BoltSep / 2
	}
	d.ReinfR = math.Min(d.TotD-p.WallThick, d.TotH-p.MotorThick)
	return d, nil
}

// NemaBracket is a built motor bracket.
type NemaBracket struct {
	*part.Part
	NemaBracketDims
}

// MotorSeat returns the world position of the motor axis on the top face.
func (b *NemaBracket) MotorSeat() r3.Vec {
	v, err := b.WorldPos(2, 0, 4)
	stage.Must(err)
	return v
}

// NewNemaBracket builds a motor bracket and registers it into the context
// scene.
func NewNemaBracket(ctx *part.Context, p NemaBracketParams) (nb *NemaBracket, err error) {
	name := part.Name(p.Name, fmt.Sprintf("nema%d_bracket", p.NemaSize), 0)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	dims, err := p.Dims()
	stage.Must(err)

	step = "parameters"
	positive("wall thickness", p.WallThick)
	positive("motor plate thickness", p.MotorThick)
	positive("reinforcement thickness", p.ReinfThick)
	positive("edge chamfer", p.ChamferR)
	if p.MotorXtrSpace < 0 {
		panic(badParam("negative motor clearance %g", p.MotorXtrSpace))
	}
	slotR := dims.SlotBolt.ShankRTol
	if p.MinH < slotR || p.MaxH <= p.MinH {
		panic(badParam("slot range %g..%g", p.MinH, p.MaxH))
	}
	if p.ExtraDown < slotR {
		panic(badParam("extra down %g under the slot radius %g", p.ExtraDown, slotR))
	}
	if dims.HoleR <= dims.Motor.BossD/2 || dims.HoleR >= dims.Motor.W/2 {
		panic(badParam("motor hole radius %g out of the boss and face range", dims.HoleR))
	}
	if p.ChamferR >= math.Min(p.WallThick, p.ReinfThick) {
		panic(badParam("edge chamfer %g too large", p.ChamferR))
	}
	boltOff := dims.Motor.BoltSep / 2

	f := p.frame(false, true, false)
	motorD := p.WallThick + p.MotorXtrSpace + dims.Motor.W/2
	plateH := dims.TotH - p.MotorThick
	f.SetD(p.WallThick, motorD, dims.TotD)
	f.SetW(-dims.TotW/4, -(dims.TotW/2 - p.ReinfThick), -dims.TotW/2)
	f.SetH(plateH-p.MaxH, plateH-p.MinH, plateH, dims.TotH)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: dims.TotD, Y: dims.TotW, Z: dims.TotH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s := must(form3.Box(bp))

	step = "edge chamfer"
	var corners []r3.Vec
	for _, dw := range [][2]int{{0, 3}, {0, -3}, {3, 3}, {3, -3}} {
		corners = append(corners, r3.Add(f.MustLocal(dw[0], dw[1], 0), f.VecH(dims.TotH/2)))
	}
	s = must(form3.ChamferPoints(s, f.AxisH, corners, p.ChamferR))

	step = "reinforcement chamfer"
	s = must(form3.ChamferPoints(s, f.AxisW, []r3.Vec{f.MustLocal(3, 0, 0)}, dims.ReinfR))

	step = "inner cut"
	in := boxAlong(&f, r3.Vec{X: dims.TotD - p.WallThick, Y: dims.TotW - 2*p.ReinfThick, Z: plateH}, f.MustLocal(1, 0, 0))
	in.CenW = true
	in.XtrD, in.XtrNH = xtr, xtr
	s = form3.Difference(s, must(form3.Box(in)))

	step = "motor holes"
	seat := f.MustLocal(2, 0, 3)
	holes := []form3.Solid{must(form3.Cylinder(form3.CylinderParams{
		R:      dims.HoleR,
		H:      p.MotorThick,
		Axis:   f.AxisH,
		Pos:    seat,
		XtrBot: xtr,
		XtrTop: xtr,
	}))}
	for _, off := range [][2]float64{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}} {
		holes = append(holes, must(form3.Cylinder(form3.CylinderParams{
			R:      dims.MotorBolt.ShankRTol,
			H:      p.MotorThick,
			Axis:   f.AxisH,
			Pos:    r3.Add(seat, f.VecDWH(off[0]*boltOff, off[1]*boltOff, 0)),
			XtrBot: xtr,
			XtrTop: xtr,
		})))
	}
	s = form3.Difference(s, form3.Union(holes...))

	step = "wall slots"
	for _, w := range []int{1, -1} {
		s = form3.Difference(s, slot(&f, f.MustLocal(0, w, 1), f.MustLocal(0, w, 2), slotR, p.WallThick))
	}

	step = "register"
	prt := part.New(name, f, s)
	prt.Color = p.Color
	prt.PrintUp = f.AxisD
	stage.Must(prt.Register(ctx))
	return &NemaBracket{Part: prt, NemaBracketDims: dims}, nil
}

// slot returns a stadium shaped cutter of radius r through a wall of
// thickness t along f.AxisD, with end centers lo and hi on the wall back face.
func slot(f *stage.Frame, lo, hi r3.Vec, r, t float64) form3.Solid {
	ends := []form3.Solid{}
	for _, c := range []r3.Vec{lo, hi} {
		ends = append(ends, must(form3.Cylinder(form3.CylinderParams{
			R: r, H: t, Axis: f.AxisD, Pos: c, XtrBot: xtr, XtrTop: xtr,
		})))
	}
	length := r3.Norm(r3.Sub(hi, lo))
	if length == 0 {
		return ends[0]
	}
	bp := form3.BoxParams{
		Size:  r3.Vec{X: t, Y: 2 * r, Z: length},
		AxisD: f.AxisD,
		AxisW: f.AxisW,
		AxisH: r3.Unit(r3.Sub(hi, lo)),
		CenW:  true,
		Pos:   lo,
		XtrD:  xtr,
		XtrND: xtr,
	}
	return form3.Union(append(ends, must(form3.Box(bp)))...)
}
