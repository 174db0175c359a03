package filterstage

import (
	"fmt"
	"math"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/form3/obj3"
	"github.com/soypat/stage/internal/d3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// TensionerSetParams defines an idler tensioner sitting in its holder, with
// the idler pulley stack on its far end and the tensioning bolt driving its
// nut through the holder back wall.
//
// Named points along d: 0 holder back face, 1 idler axis. Along w
// (centered): 0 mid-plane. Along h: 0 holder bottom, 1 belt center.
type TensionerSetParams struct {
	Name   string
	Holder obj3.HolderParams // its Tensioner field is the tensioner built
	Idler  obj3.IdlerPulleyParams
	Gap    float64 // tensioner back face to the holder pocket start
	obj3.Placement
}

// DefaultTensionerSetParams returns the default holder and tensioner with an
// idler of two 683 bearings, 4 mm out of the holder back wall.
func DefaultTensionerSetParams() TensionerSetParams {
	return TensionerSetParams{
		Holder: obj3.DefaultHolderParams(),
		Idler:  obj3.DefaultIdlerPulleyParams(),
		Gap:    4,
	}
}

// TensionerSet is a built tensioner set.
type TensionerSet struct {
	*part.Set
	Holder    *obj3.Holder
	Tensioner *obj3.Tensioner
	Idler     *obj3.IdlerPulley
	Bolt, Nut *part.Part
}

// BeltCenter returns the world position of the idler axis at the belt
// centerline.
func (t *TensionerSet) BeltCenter() r3.Vec {
	v, err := t.WorldPos(1, 0, 1)
	stage.Must(err)
	return v
}

// NewTensionerSet builds a tensioner set and registers its parts into the
// context scene. Parts already registered are removed if a later one fails.
func NewTensionerSet(ctx *part.Context, p TensionerSetParams) (ts *TensionerSet, err error) {
	name := p.Name
	if name == "" {
		name = "tensioner_set"
	}
	s := part.NewSet(ctx, name, stage.Frame{})
	defer rollback(ctx, s, &err)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "parameters"
	tp := p.Holder.Tensioner
	if p.Gap < 0 || p.Gap > tp.Stroke {
		panic(fmt.Errorf("%w: tensioner gap %g outside the stroke [0, %g]", stage.ErrBadGeometry, p.Gap, tp.Stroke))
	}
	s.Frame = setFrame(p.Placement, false, true, false)
	axes := obj3.Placement{AxisD: s.AxisD, AxisW: s.AxisW, AxisH: s.AxisH}
	ts = &TensionerSet{Set: s}

	step = "holder"
	ctx.Step(name, step)
	hp := p.Holder
	hp.Placement = axes
	ts.Holder, err = obj3.NewHolder(ctx, hp)
	stage.Must(err)
	add(ctx, s, ts.Holder.Part)

	step = "tensioner"
	ctx.Step(name, step)
	h := ts.Holder
	tp.Placement = axes.At(0, 0, 2, r3.Add(h.MustLocal(1, 0, 2), h.VecDWH(p.Gap, 0, catalog.STol)))
	ts.Tensioner, err = obj3.NewTensioner(ctx, tp)
	stage.Must(err)
	add(ctx, s, ts.Tensioner.Part)

	step = "idler"
	ctx.Step(name, step)
	tens := ts.Tensioner
	ip := p.Idler
	ip.BoltM = tp.BoltIdlerM
	ip.Placement = axes.At(0, 0, 0, tens.MustLocal(4, 0, 1))
	ts.Idler, err = obj3.NewIdlerPulley(ctx, ip)
	stage.Must(err)
	add(ctx, s, ts.Idler.Part)
	if ts.Idler.H > tp.IdlerH {
		panic(fmt.Errorf("%w: idler stack %g higher than its cavity %g", stage.ErrBadGeometry, ts.Idler.H, tp.IdlerH))
	}

	step = "tensioner bolt"
	ctx.Step(name, step)
	// the bolt reaches through the nut and stops short of the pocket bottom.
	reach := tp.WallThick + p.Gap + tp.NutHolderThick + tens.TensNut.H
	boltAxes := obj3.Placement{AxisD: s.AxisW, AxisW: s.AxisH}
	ts.Bolt, err = obj3.NewBolt(ctx, obj3.BoltParams{
		M:         tp.BoltTensM,
		Length:    math.Floor(2*reach) / 2,
		Style:     obj3.CylinderCircular,
		Color:     stage.Gray,
		Placement: boltAxes.At(0, 0, 1, h.MustLocal(0, 0, 3)),
	})
	stage.Must(err)
	add(ctx, s, ts.Bolt)
	ts.Nut, err = obj3.NewNut(ctx, obj3.NutParams{
		M:         tp.BoltTensM,
		Style:     obj3.CylinderHex,
		Color:     stage.Gray,
		Placement: boltAxes.At(0, 0, 0, tens.MustLocal(1, 0, 0)),
	})
	stage.Must(err)
	add(ctx, s, ts.Nut)

	step = "frame"
	origin := h.MustLocal(0, 0, 0)
	s.SetD(r3.Dot(s.AxisD, r3.Sub(tens.MustLocal(4, 0, 0), origin)))
	s.SetW()
	s.SetH(r3.Dot(s.AxisH, r3.Sub(ts.Idler.MustLocal(0, 0, 2), origin)))
	anchorSet(ctx, s, p.Placement)
	return ts, nil
}

// MotorPulleySetParams defines a NEMA motor hanging under the top plate of
// its bracket, bolted through the plate, with a GT2 pulley on its shaft above
// the plate.
//
// Named points along d: 0 bracket wall back face, 1 motor axis. Along w
// (centered): 0 mid-plane. Along h: 0 bracket bottom, 1 belt center.
type MotorPulleySetParams struct {
	Name      string
	Bracket   obj3.NemaBracketParams
	Motor     obj3.NemaMotorParams // its size is the bracket size
	Pulley    obj3.GT2PulleyParams // its bore is the motor shaft diameter
	PulleyGap float64              // top plate to the pulley hub
	obj3.Placement
}

// DefaultMotorPulleySetParams returns a NEMA 17 motor in the default bracket
// with a 20 teeth pulley 1 mm over the plate.
func DefaultMotorPulleySetParams() MotorPulleySetParams {
	return MotorPulleySetParams{
		Bracket:   obj3.DefaultNemaBracketParams(),
		Motor:     obj3.DefaultNemaMotorParams(),
		Pulley:    obj3.DefaultGT2PulleyParams(),
		PulleyGap: 1,
	}
}

// MotorPulleySet is a built motor-pulley set.
type MotorPulleySet struct {
	*part.Set
	Bracket *obj3.NemaBracket
	Motor   *obj3.NemaMotor
	Pulley  *obj3.GT2Pulley
	Bolts   []*part.Part
}

// BeltCenter returns the world position of the motor axis at the belt
// centerline.
func (m *MotorPulleySet) BeltCenter() r3.Vec {
	v, err := m.WorldPos(1, 0, 1)
	stage.Must(err)
	return v
}

// NewMotorPulleySet builds a motor-pulley set and registers its parts into
// the context scene. Parts already registered are removed if a later one
// fails.
func NewMotorPulleySet(ctx *part.Context, p MotorPulleySetParams) (ms *MotorPulleySet, err error) {
	name := p.Name
	if name == "" {
		name = "motor_set"
	}
	s := part.NewSet(ctx, name, stage.Frame{})
	defer rollback(ctx, s, &err)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "parameters"
	if p.PulleyGap < 0 {
		panic(fmt.Errorf("%w: negative pulley gap %g", stage.ErrBadGeometry, p.PulleyGap))
	}
	s.Frame = setFrame(p.Placement, false, true, false)
	axes := obj3.Placement{AxisD: s.AxisD, AxisW: s.AxisW, AxisH: s.AxisH}
	ms = &MotorPulleySet{Set: s}

	step = "bracket"
	ctx.Step(name, step)
	bp := p.Bracket
	bp.Placement = axes
	ms.Bracket, err = obj3.NewNemaBracket(ctx, bp)
	stage.Must(err)
	add(ctx, s, ms.Bracket.Part)
	b := ms.Bracket

	step = "motor"
	ctx.Step(name, step)
	mp := p.Motor
	mp.Size = bp.NemaSize
	mp.Placement = axes.At(0, 0, 0, b.MustLocal(2, 0, 3))
	ms.Motor, err = obj3.NewNemaMotor(ctx, mp)
	stage.Must(err)
	add(ctx, s, ms.Motor.Part)
	if r3.Dot(s.AxisH, r3.Sub(ms.Motor.MustLocal(0, 0, 3), b.MustLocal(0, 0, 0))) < 0 {
		panic(fmt.Errorf("%w: motor body %g long hangs under the bracket", stage.ErrBadGeometry, mp.BodyL))
	}

	step = "pulley"
	ctx.Step(name, step)
	pp := p.Pulley
	pp.Bore = ms.Motor.ShaftD
	pp.Placement = axes.At(0, 0, 0, r3.Add(b.MustLocal(2, 0, 4), b.VecH(p.PulleyGap)))
	ms.Pulley, err = obj3.NewGT2Pulley(ctx, pp)
	stage.Must(err)
	add(ctx, s, ms.Pulley.Part)
	tip := r3.Dot(s.AxisH, ms.Motor.MustLocal(0, 0, 2))
	if hub := r3.Dot(s.AxisH, ms.Pulley.MustLocal(0, 0, 1)); tip < hub {
		panic(fmt.Errorf("%w: motor shaft ends %g under the pulley hub top", stage.ErrBadGeometry, hub-tip))
	}

	step = "motor bolts"
	ctx.Step(name, step)
	off := ms.Motor.BoltSep / 2
	down := obj3.Placement{AxisD: s.AxisW, AxisW: s.AxisD}
	for _, dw := range [][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		bolt, err := obj3.NewBolt(ctx, obj3.BoltParams{
			M:         ms.Motor.BoltM,
			Length:    math.Ceil(bp.MotorThick + 3),
			Style:     obj3.CylinderCircular,
			Color:     stage.Gray,
			Placement: down.At(0, 0, 1, r3.Add(b.MustLocal(2, 0, 4), b.VecDWH(dw[0]*off, dw[1]*off, 0))),
		})
		stage.Must(err)
		add(ctx, s, bolt)
		ms.Bolts = append(ms.Bolts, bolt)
	}

	step = "frame"
	origin := b.MustLocal(0, 0, 0)
	s.SetD(r3.Dot(s.AxisD, r3.Sub(b.MustLocal(2, 0, 0), origin)))
	s.SetW()
	s.SetH(r3.Dot(s.AxisH, r3.Sub(ms.Pulley.MustLocal(0, 0, 2), origin)))
	anchorSet(ctx, s, p.Placement)
	return ms, nil
}

// setFrame returns the frame of a set placed with pl and empty tables. Axes
// default the way part axes do.
func setFrame(pl obj3.Placement, cenD, cenW, cenH bool) stage.Frame {
	d, w := pl.AxisD, pl.AxisW
	if d3.IsZero(d) {
		d = form3.DefaultD
	}
	if d3.IsZero(w) {
		w = form3.DefaultW
	}
	f, err := stage.NewFrame(d, w, pl.AxisH)
	stage.Must(err)
	stage.Must(f.Validate())
	f.CenD, f.CenW, f.CenH = cenD, cenW, cenH
	return f
}

// anchorSet moves the children of s, built around the origin, so that the
// anchor of pl lands on pl.Pos.
func anchorSet(ctx *part.Context, s *part.Set, pl obj3.Placement) {
	s.Pos = pl.Pos
	s.PosD, s.PosW, s.PosH = pl.PosD, pl.PosW, pl.PosH
	stage.Must(s.Validate())
	stage.Must(s.SetPosO(true))
	stage.Must(s.Place(ctx))
}

// add appends p to s. p is unregistered if it cannot be added.
func add(ctx *part.Context, s *part.Set, p *part.Part) {
	if err := s.AddPart(ctx, p); err != nil {
		p.Remove(ctx)
		panic(err)
	}
}

// rollback removes everything s registered when *err is set. It must be
// deferred before Recover so it observes the recovered error.
func rollback(ctx *part.Context, s *part.Set, err *error) {
	if *err != nil {
		s.Remove(ctx)
	}
}
