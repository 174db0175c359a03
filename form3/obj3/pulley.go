package obj3

import (
	"fmt"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// IdlerPulleyParams defines an idler pulley made of bearings stacked on a
// bolt between two large washers acting as belt flanges. Named points along
// h: 0 bottom, 1 belt bottom, 2 belt center, 3 belt top, 4 top. The pulley
// axis is d = w = 0.
type IdlerPulleyParams struct {
	Name      string
	BoltM     float64
	Bearing   string
	NBearings int
	Color     stage.Color
	Placement
}

// DefaultIdlerPulleyParams returns two 683 bearings on an M3 bolt, a 6 mm
// belt seat.
func DefaultIdlerPulleyParams() IdlerPulleyParams {
	return IdlerPulleyParams{BoltM: 3, Bearing: "683", NBearings: 2, Color: stage.Gray}
}

// IdlerPulley is a built idler pulley stack.
type IdlerPulley struct {
	*part.Part
	Washer  catalog.Washer
	Bearing catalog.Bearing
	H       float64 // stack height
}

// NewIdlerPulley builds an idler pulley and registers it into the context
// scene.
func NewIdlerPulley(ctx *part.Context, p IdlerPulleyParams) (ip *IdlerPulley, err error) {
	name := part.Name(p.Name, "idler_"+p.Bearing, p.BoltM)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	washer, err := catalog.LookupLargeWasher(p.BoltM)
	stage.Must(err)
	bearing, err := catalog.LookupBearing(p.Bearing)
	stage.Must(err)
	if p.NBearings < 1 {
		panic(badParam("%d bearings", p.NBearings))
	}
	if bearing.ID < p.BoltM {
		panic(badParam("bearing %s does not fit an M%g bolt", p.Bearing, p.BoltM))
	}
	beltH := float64(p.NBearings) * bearing.T
	total := 2*washer.T + beltH

	f := p.frame(true, true, false)
	f.SetD()
	f.SetW()
	f.SetH(washer.T, washer.T+beltH/2, washer.T+beltH, total)
	p.anchor(&f)

	step = "stack"
	layer := func(r, rIn, h, at float64) form3.Solid {
		return must(form3.CylinderHole(form3.CylinderParams{
			R: r, H: h, Axis: f.AxisH, Pos: r3.Add(f.MustLocal(0, 0, 0), f.VecH(at)),
		}, rIn))
	}
	solids := []form3.Solid{
		layer(washer.OD/2, washer.ID/2, washer.T, 0),
		layer(washer.OD/2, washer.ID/2, washer.T, washer.T+beltH),
	}
	for i := 0; i < p.NBearings; i++ {
		solids = append(solids, layer(bearing.OD/2, bearing.ID/2, bearing.T, washer.T+float64(i)*bearing.T))
	}
	s, err := form3.FuseList(solids)
	stage.Must(err)

	step = "register"
	prt, err := register(ctx, name, f, s, p.Color, f.AxisH)
	stage.Must(err)
	return &IdlerPulley{Part: prt, Washer: washer, Bearing: bearing, H: total}, nil
}

// GT2PulleyParams defines a toothed GT2 pulley. Named points along h:
// 0 bottom (hub end), 1 bottom flange, 2 belt center, 3 top flange, 4 top.
// The pulley axis is d = w = 0.
type GT2PulleyParams struct {
	Name  string
	Teeth int
	BeltW float64
	Bore  float64
	Color stage.Color
	Placement
}

// DefaultGT2PulleyParams returns a 20 teeth pulley for a 6 mm belt on a 5 mm
// shaft.
func DefaultGT2PulleyParams() GT2PulleyParams {
	return GT2PulleyParams{Teeth: 20, BeltW: 6, Bore: 5, Color: stage.Gray}
}

// GT2Pulley is a built GT2 pulley.
type GT2Pulley struct {
	*part.Part
	catalog.Pulley
}

// NewGT2Pulley builds a GT2 pulley and registers it into the context scene.
func NewGT2Pulley(ctx *part.Context, p GT2PulleyParams) (gp *GT2Pulley, err error) {
	name := part.Name(p.Name, fmt.Sprintf("gt2_%d", p.Teeth), 0)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	pl, err := catalog.LookupGT2(p.Teeth, p.BeltW, p.Bore)
	stage.Must(err)
	positive("belt width", p.BeltW)
	if p.Bore <= 0 || p.Bore >= pl.HubD {
		panic(badParam("bore %g out of the hub", p.Bore))
	}

	f := p.frame(true, true, false)
	f.SetD()
	f.SetW()
	f.SetH(pl.HubH, pl.HubH+pl.FlangeT+pl.ToothH/2, pl.HubH+pl.FlangeT+pl.ToothH, pl.TotalH())
	p.anchor(&f)

	step = "body"
	cyl := func(r, h, at float64) form3.Solid {
		return must(form3.Cylinder(form3.CylinderParams{
			R: r, H: h, Axis: f.AxisH, Pos: r3.Add(f.MustLocal(0, 0, 0), f.VecH(at)),
		}))
	}
	s := form3.Union(
		cyl(pl.HubD/2, pl.HubH, 0),
		cyl(pl.FlangeD/2, pl.FlangeT, pl.HubH),
		cyl(pl.OD/2, pl.ToothH, pl.HubH+pl.FlangeT),
		cyl(pl.FlangeD/2, pl.FlangeT, pl.HubH+pl.FlangeT+pl.ToothH),
	)

	step = "bore"
	s = form3.Difference(s, must(form3.Cylinder(form3.CylinderParams{
		R: p.Bore/2 + catalog.STol, H: pl.TotalH(), Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0), XtrTop: xtr, XtrBot: xtr,
	})))

	step = "register"
	prt, err := register(ctx, name, f, s, p.Color, f.AxisH)
	stage.Must(err)
	return &GT2Pulley{Part: prt, Pulley: pl}, nil
}

// NemaMotorParams defines a NEMA stepper motor. Named points along h:
// 0 mounting face, 1 boss top, 2 shaft tip, 3 body bottom. The shaft axis is
// d = w = 0.
type NemaMotorParams struct {
	Name   string
	Size   int
	BodyL  float64
	ShaftL float64 // shaft length out of the mounting face
	Color  stage.Color
	Placement
}

// DefaultNemaMotorParams returns a 40 mm long NEMA 17 motor.
func DefaultNemaMotorParams() NemaMotorParams {
	return NemaMotorParams{Size: 17, BodyL: 40, ShaftL: 24, Color: stage.Black}
}

// NemaMotor is a built NEMA motor.
type NemaMotor struct {
	*part.Part
	catalog.NEMA
}

// NewNemaMotor builds a motor and registers it into the context scene.
func NewNemaMotor(ctx *part.Context, p NemaMotorParams) (nm *NemaMotor, err error) {
	name := part.Name(p.Name, fmt.Sprintf("nema%d", p.Size), 0)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	n, err := catalog.LookupNEMA(p.Size)
	stage.Must(err)
	positive("body length", p.BodyL)
	if p.ShaftL <= n.BossH {
		panic(badParam("shaft length %g inside the boss", p.ShaftL))
	}

	f := p.frame(true, true, false)
	f.SetD(-n.W / 2)
	f.SetW(-n.W / 2)
	f.SetH(n.BossH, p.ShaftL, -p.BodyL)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: n.W, Y: n.W, Z: p.BodyL}, f.MustLocal(0, 0, 3))
	bp.CenD, bp.CenW = true, true
	s := must(form3.Box(bp))
	var corners []r3.Vec
	for _, dw := range [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		corners = append(corners, r3.Add(f.MustLocal(dw[0], dw[1], 3), f.VecH(p.BodyL/2)))
	}
	s = must(form3.ChamferPoints(s, f.AxisH, corners, n.W/10))

	step = "boss and shaft"
	s = form3.Union(s,
		must(form3.Cylinder(form3.CylinderParams{R: n.BossD / 2, H: n.BossH, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0), XtrBot: 0.1})),
		must(form3.Cylinder(form3.CylinderParams{R: n.ShaftD / 2, H: p.ShaftL, Axis: f.AxisH, Pos: f.MustLocal(0, 0, 0), XtrBot: 0.1})),
	)

	step = "bolt holes"
	off := n.BoltSep / 2
	var holes []form3.Solid
	for _, dw := range [][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		holes = append(holes, must(form3.Cylinder(form3.CylinderParams{
			R:      n.BoltM / 2,
			H:      4,
			Axis:   r3.Scale(-1, f.AxisH),
			Pos:    r3.Add(f.MustLocal(0, 0, 0), f.VecDWH(dw[0]*off, dw[1]*off, 0)),
			XtrBot: xtr,
		})))
	}
	s = form3.Difference(s, form3.Union(holes...))

	step = "register"
	prt, err := register(ctx, name, f, s, p.Color, f.AxisH)
	stage.Must(err)
	return &NemaMotor{Part: prt, NEMA: n}, nil
}
