// Package filterstage assembles a filter stage: a filter holder carried by a
// linear guide block along a rail fixed to an aluminum profile, pulled by a
// GT2 belt running between a tensioned idler pulley and a stepper motor
// pulley.
//
// The assembly is a part set. Its parts are positioned from the named points
// of one another so a change to a driving parameter in Config moves every
// dependent part.
package filterstage

import (
	"fmt"
	"math"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3/obj3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// up is the world vertical. Belts run horizontally.
var up = r3.Vec{Z: 1}

// Stage is a built filter stage.
//
// Named points along d, the motion axis: 0 idler axis, 1 carriage home,
// 2 carriage travel end, 3 motor axis. Along w (centered):
// 0 clamped belt run, 1 idler axis, 2 motor axis, 3 filter holder back face,
// 4 profile face. Along h: 0 filter holder bottom, 1 rail axis, 2 belt
// center.
type Stage struct {
	*part.Set
	// Carriage holds the filter holder and its guide block. It is the only
	// moving child.
	Carriage     *part.Set
	FilterHolder *obj3.FilterHolder
	Block        *part.Part
	Rail         *part.Part
	Profile      *part.Part
	Tensioner    *TensionerSet
	Motor        *MotorPulleySet
	// Travel is the carriage travel from home.
	Travel float64
}

// New builds a filter stage from cfg and registers its parts into the
// context scene. Nothing stays registered when an error is returned.
func New(ctx *part.Context, cfg Config) (st *Stage, err error) {
	name := cfg.Name
	s := part.NewSet(ctx, name, stage.Frame{})
	defer rollback(ctx, s, &err)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "config"
	stage.Must(cfg.Validate())
	d := r3.Unit(cfg.moveAxis())
	f, err := stage.NewFrame(d, r3.Cross(up, d), up)
	stage.Must(err)
	f.CenW = true
	s.Frame = f
	st = &Stage{Set: s, Travel: cfg.MovDistance}

	step = "catalog"
	guide, err := catalog.LookupLinearGuide(cfg.Guide)
	stage.Must(err)
	bearing, err := catalog.LookupBearing(cfg.Tensioner.Bearing)
	stage.Must(err)
	pulley, err := catalog.LookupGT2(cfg.Motor.PulleyTeeth, cfg.BeltW, 0)
	stage.Must(err)

	// The carriage is built around its own origin, the filter holder belt line
	// at mid-plane and bottom, and moved to the home position last.
	step = "carriage"
	ctx.Step(name, step)
	st.Carriage = part.NewSet(ctx, "carriage", stage.Frame{})
	stage.Must(s.AddSet(ctx, st.Carriage))
	fp := cfg.FilterHolderParams()
	fp.Placement = obj3.Placement{AxisD: r3.Scale(-1, f.AxisW), AxisW: f.AxisD}.At(1, 0, 0, r3.Vec{})
	st.FilterHolder, err = obj3.NewFilterHolder(ctx, fp)
	stage.Must(err)
	add(ctx, st.Carriage, st.FilterHolder.Part)
	fh := st.FilterHolder
	st.Carriage.Frame = fh.Frame
	st.Block, err = obj3.NewLinearGuideBlock(ctx, obj3.LinearGuideBlockParams{
		Guide:     cfg.Guide,
		Color:     stage.Gray,
		Placement: obj3.Placement{AxisD: f.AxisD, AxisW: f.AxisH}.At(0, 0, 3, fh.MustLocal(0, 0, 1)),
	})
	stage.Must(err)
	add(ctx, st.Carriage, st.Block)

	step = "frame"
	home := (fh.PlateW + cfg.AluprofW) / 2
	span := cfg.MovDistance + fh.PlateW + cfg.AluprofW
	backW := r3.Dot(f.AxisW, fh.MustLocal(0, 0, 0))
	s.SetD(home, home+cfg.MovDistance, span)
	s.SetW(bearing.OD/2+catalog.GT2Thick/2, pulley.PitchD/2, backW, backW+guide.BlockH)
	s.SetH(r3.Dot(f.AxisH, fh.MustOToH(1)), r3.Dot(f.AxisH, fh.MustOToH(5)))
	s.Pos = cfg.pos()
	stage.Must(s.Validate())
	stage.Must(s.SetPosO(true))
	st.Carriage.RelPlace = r3.Add(s.MustLocal(1, 0, 0), s.VecD(cfg.Position))
	stage.Must(s.Place(ctx))

	step = "tensioner set"
	ctx.Step(name, step)
	tp := cfg.TensionerSetParams()
	tp.Idler.NBearings = int(math.Ceil(cfg.BeltW/bearing.T - 1e-9))
	tp.Placement = obj3.Placement{AxisD: f.AxisD, AxisW: f.AxisW}.At(1, 0, 1, s.MustLocal(0, 1, 2))
	st.Tensioner, err = NewTensionerSet(ctx, tp)
	stage.Must(err)
	if err = s.AddSet(ctx, st.Tensioner.Set); err != nil {
		st.Tensioner.Remove(ctx)
		panic(err)
	}

	step = "motor set"
	ctx.Step(name, step)
	mp := cfg.MotorPulleySetParams()
	// the bracket wall stands beyond the motor, its front face toward the carriage.
	mp.Placement = obj3.Placement{AxisD: r3.Scale(-1, f.AxisD), AxisW: r3.Scale(-1, f.AxisW)}.At(1, 0, 1, s.MustLocal(3, 2, 2))
	st.Motor, err = NewMotorPulleySet(ctx, mp)
	stage.Must(err)
	if err = s.AddSet(ctx, st.Motor.Set); err != nil {
		st.Motor.Remove(ctx)
		panic(err)
	}

	step = "rail"
	ctx.Step(name, step)
	// rail and profile run from the idler axis to the motor bracket front face.
	front, err := st.Motor.Bracket.WorldPos(3, 0, 0)
	stage.Must(err)
	railLen := r3.Dot(f.AxisD, r3.Sub(front, s.MustPosDWH(0, 0, 0)))
	along := obj3.Placement{AxisD: f.AxisD, AxisW: f.AxisH}
	st.Rail, err = obj3.NewLinearGuideRail(ctx, obj3.LinearGuideRailParams{
		Guide:     cfg.Guide,
		Length:    railLen,
		Color:     stage.Gray,
		Placement: along.At(0, 0, 0, s.MustLocal(0, 4, 1)),
	})
	stage.Must(err)
	add(ctx, s, st.Rail)
	st.Profile, err = obj3.NewAluProf(ctx, obj3.AluProfParams{
		W:         cfg.AluprofW,
		Length:    railLen,
		Color:     stage.DefaultColor,
		Placement: along.At(0, 0, -1, s.MustLocal(0, 4, 1)),
	})
	stage.Must(err)
	add(ctx, s, st.Profile)
	ctx.Log.Debug().Str("stage", name).Float64("span", span).Int("parts", len(s.Parts())).Msg("assembled")
	return st, nil
}

// MoveTo moves the carriage to x along the travel, 0 being home.
func (st *Stage) MoveTo(ctx *part.Context, x float64) error {
	if x < 0 || x > st.Travel {
		return fmt.Errorf("%w: carriage position %g outside the travel [0, %g]", stage.ErrBadGeometry, x, st.Travel)
	}
	home, err := st.Local(1, 0, 0)
	if err != nil {
		return err
	}
	return st.Carriage.SetPlace(ctx, r3.Add(home, st.VecD(x)))
}

// Span returns the distance between the idler and motor pulley axes.
func (st *Stage) Span() float64 {
	return r3.Dot(st.AxisD, st.MustDAB(0, 3))
}
