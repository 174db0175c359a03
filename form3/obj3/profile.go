package obj3

import (
	"math"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// AluProfParams defines a cut of square aluminum extrusion. Named points
// along d: 0 start, 1 end. Along w and h (centered): 0 axis, 1 face.
type AluProfParams struct {
	Name   string
	W      float64 // profile side
	Length float64
	Color  stage.Color
	Placement
}

// NewAluProf builds a profile cut with its central hole and four T slots.
func NewAluProf(ctx *part.Context, p AluProfParams) (prt *part.Part, err error) {
	name := part.Name(p.Name, "aluprof", p.W)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	prof, err := catalog.LookupAluProf(p.W)
	stage.Must(err)
	positive("profile length", p.Length)

	f := p.frame(false, true, true)
	f.SetD(p.Length)
	f.SetW(-p.W / 2)
	f.SetH(-p.W / 2)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: p.Length, Y: p.W, Z: p.W}, f.MustLocal(0, 0, 0))
	bp.CenW, bp.CenH = true, true
	s := must(form3.Box(bp))

	step = "center hole"
	cuts := []form3.Solid{must(form3.Cylinder(form3.CylinderParams{
		R:      prof.InHoleD / 2,
		H:      p.Length,
		Axis:   f.AxisD,
		Pos:    f.MustLocal(0, 0, 0),
		XtrBot: xtr,
		XtrTop: xtr,
	}))}

	step = "slots"
	cavW := math.Min(2*prof.Slot, p.W-4*prof.WallT)
	for _, n := range []r3.Vec{f.AxisW, r3.Scale(-1, f.AxisW), f.AxisH, r3.Scale(-1, f.AxisH)} {
		face := r3.Add(f.MustLocal(0, 0, 0), r3.Scale(p.W/2, n))
		lateral := r3.Cross(f.AxisD, n)
		lip := form3.BoxParams{
			Size:  r3.Vec{X: p.Length, Y: prof.Slot, Z: prof.WallT},
			AxisD: f.AxisD,
			AxisW: lateral,
			AxisH: r3.Scale(-1, n),
			CenW:  true,
			Pos:   face,
			XtrD:  xtr,
			XtrND: xtr,
			XtrNH: xtr,
		}
		cav := lip
		cav.Size = r3.Vec{X: p.Length, Y: cavW, Z: prof.SlotD - prof.WallT}
		cav.Pos = r3.Sub(face, r3.Scale(prof.WallT, n))
		cav.XtrNH = prof.WallT / 2
		cuts = append(cuts, must(form3.Box(lip)), must(form3.Box(cav)))
	}
	s = form3.Difference(s, form3.Union(cuts...))

	step = "register"
	return register(ctx, name, f, s, p.Color, f.AxisD)
}

// LinearGuideRailParams defines a linear guide rail cut to length. Named
// points along d: 0 start, 1 end. Along w (centered): 0 axis, 1 side. Along
// h: 0 bottom, 1 top.
type LinearGuideRailParams struct {
	Name   string
	Guide  string // catalog name, such as MGN12H
	Length float64
	Color  stage.Color
	Placement
}

// NewLinearGuideRail builds a rail with its counterbored bolt holes evenly
// spread around the middle of the rail.
func NewLinearGuideRail(ctx *part.Context, p LinearGuideRailParams) (prt *part.Part, err error) {
	name := part.Name(p.Name, "rail_"+p.Guide, 0)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	g, err := catalog.LookupLinearGuide(p.Guide)
	stage.Must(err)
	bolt, err := catalog.LookupBolt(g.RailBolt)
	stage.Must(err)
	positive("rail length", p.Length)
	if p.Length < g.RailPitch {
		panic(badParam("rail length %g shorter than the bolt pitch %g", p.Length, g.RailPitch))
	}

	f := p.frame(false, true, false)
	f.SetD(p.Length)
	f.SetW(-g.RailW / 2)
	f.SetH(g.RailH)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: p.Length, Y: g.RailW, Z: g.RailH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s := must(form3.Box(bp))

	step = "bolt holes"
	n := int(p.Length / g.RailPitch)
	first := (p.Length - float64(n-1)*g.RailPitch) / 2
	var holes []form3.Solid
	for i := 0; i < n; i++ {
		holes = append(holes, must(form3.Bolt(form3.BoltParams{
			ShankR:   bolt.ShankRTol,
			HeadR:    bolt.HeadRTol,
			HeadL:    math.Min(bolt.HeadLTol, g.RailH/2),
			TotalL:   g.RailH,
			Normal:   f.AxisH,
			Pos:      r3.Add(f.MustLocal(0, 0, 1), f.VecD(first+float64(i)*g.RailPitch)),
			XtrHead:  xtr,
			XtrShank: xtr,
		})))
	}
	s = form3.Difference(s, form3.Union(holes...))

	step = "register"
	return register(ctx, name, f, s, p.Color, f.AxisH)
}

// LinearGuideBlockParams defines the carriage block of a linear guide. Named
// points along d (centered): 0 center, 1 end. Along w (centered): 0 axis,
// 1 side. Along h: 0 rail bottom, 1 block bottom, 2 rail top, 3 block top.
type LinearGuideBlockParams struct {
	Name  string
	Guide string
	Color stage.Color
	Placement
}

// NewLinearGuideBlock builds a carriage block with its rail channel and the
// tapped holes of its bolt pattern.
func NewLinearGuideBlock(ctx *part.Context, p LinearGuideBlockParams) (prt *part.Part, err error) {
	name := part.Name(p.Name, "block_"+p.Guide, 0)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	g, err := catalog.LookupLinearGuide(p.Guide)
	stage.Must(err)

	f := p.frame(true, true, false)
	f.SetD(-g.BlockL / 2)
	f.SetW(-g.BlockW / 2)
	f.SetH(g.BlockGap, g.RailH, g.BlockH)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: g.BlockL, Y: g.BlockW, Z: g.BlockH - g.BlockGap}, f.MustLocal(0, 0, 1))
	bp.CenD, bp.CenW = true, true
	s := must(form3.Box(bp))

	step = "rail channel"
	ch := boxAlong(&f, r3.Vec{X: g.BlockL, Y: g.RailW + catalog.Tol, Z: g.RailH - g.BlockGap + catalog.STol}, f.MustLocal(0, 0, 1))
	ch.CenD, ch.CenW = true, true
	ch.XtrD, ch.XtrND, ch.XtrNH = xtr, xtr, xtr
	s = form3.Difference(s, must(form3.Box(ch)))

	step = "bolt holes"
	depth := 0.75 * (g.BlockH - g.RailH)
	var holes []form3.Solid
	for _, sl := range []float64{-1, 1} {
		for _, sw := range []float64{-1, 1} {
			holes = append(holes, must(form3.Cylinder(form3.CylinderParams{
				R:      g.BlockM / 2,
				H:      depth,
				Axis:   r3.Scale(-1, f.AxisH),
				Pos:    r3.Add(f.MustLocal(0, 0, 3), f.VecDWH(sl*g.BoltSepL/2, sw*g.BoltSepW/2, 0)),
				XtrBot: xtr,
			})))
			if g.BoltSepW == 0 {
				break
			}
		}
	}
	s = form3.Difference(s, form3.Union(holes...))

	step = "register"
	return register(ctx, name, f, s, p.Color, f.AxisH)
}

// ShaftHolderParams defines a split clamp holding a shaft parallel to its
// base. Named points along d: 0 back face, 1 front face. Along w (centered):
// 0 axis, 1 body side, 2 base bolt axis, 3 base side. Along h: 0 bottom,
// 1 base top, 2 shaft axis, 3 clamp bolt axis, 4 top.
type ShaftHolderParams struct {
	Name      string
	ShaftD    float64
	ShaftPosH float64 // shaft axis height over the bottom
	Thick     float64 // length along the shaft
	WallThick float64
	BoltM     float64 // base bolts
	ClampM    float64 // clamp bolt
	Color     stage.Color
	Placement
}

// DefaultShaftHolderParams returns the holder of an 8 mm shaft.
func DefaultShaftHolderParams() ShaftHolderParams {
	return ShaftHolderParams{
		ShaftD:    8,
		ShaftPosH: 20,
		Thick:     10,
		WallThick: 3,
		BoltM:     4,
		ClampM:    3,
		Color:     stage.Yellow,
	}
}

// NewShaftHolder builds a shaft holder and registers it into the context
// scene.
func NewShaftHolder(ctx *part.Context, p ShaftHolderParams) (prt *part.Part, err error) {
	name := part.Name(p.Name, "shaftholder", p.ShaftD)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	base, err := catalog.LookupBolt(p.BoltM)
	stage.Must(err)
	clamp, err := catalog.LookupBolt(p.ClampM)
	stage.Must(err)

	step = "parameters"
	positive("shaft diameter", p.ShaftD)
	positive("thickness", p.Thick)
	positive("wall thickness", p.WallThick)
	baseH := p.WallThick + base.HeadLTol
	shaftR := p.ShaftD/2 + catalog.STol
	if p.ShaftPosH-shaftR < baseH {
		panic(badParam("shaft at %g cuts the base %g", p.ShaftPosH, baseH))
	}
	if p.Thick < 2*clamp.HeadRTol {
		panic(badParam("thickness %g does not fit the clamp bolt", p.Thick))
	}
	bodyW := p.ShaftD + 2*p.WallThick + 2*clamp.HeadD
	boltW := bodyW/2 + base.HeadD
	baseW := 2 * (boltW + base.HeadD)
	clampH := p.ShaftPosH + shaftR + clamp.ShankRTol + p.WallThick/2
	topH := clampH + clamp.HeadRTol + p.WallThick

	f := p.frame(false, true, false)
	f.SetD(p.Thick)
	f.SetW(-bodyW/2, -boltW, -baseW/2)
	f.SetH(baseH, p.ShaftPosH, clampH, topH)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: p.Thick, Y: baseW, Z: baseH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s := must(form3.Box(bp))
	bp = boxAlong(&f, r3.Vec{X: p.Thick, Y: bodyW, Z: topH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s = form3.Union(s, must(form3.Box(bp)))
	s = must(form3.FilletPoints(s, f.AxisD, []r3.Vec{
		r3.Add(f.MustLocal(0, 1, 4), f.VecD(p.Thick/2)),
		r3.Add(f.MustLocal(0, -1, 4), f.VecD(p.Thick/2)),
	}, p.WallThick))

	step = "shaft hole"
	s = form3.Difference(s, must(form3.Cylinder(form3.CylinderParams{
		R: shaftR, H: p.Thick, Axis: f.AxisD, Pos: f.MustLocal(0, 0, 2), XtrBot: xtr, XtrTop: xtr,
	})))
	slit := boxAlong(&f, r3.Vec{X: p.Thick, Y: 1, Z: topH - p.ShaftPosH}, f.MustLocal(0, 0, 2))
	slit.CenW = true
	slit.XtrD, slit.XtrND, slit.XtrH = xtr, xtr, xtr
	s = form3.Difference(s, must(form3.Box(slit)))

	step = "bolt holes"
	s = form3.Difference(s, must(form3.Bolt(form3.BoltParams{
		ShankR:   clamp.ShankRTol,
		HeadR:    clamp.HeadRTol,
		HeadL:    p.WallThick,
		TotalL:   bodyW,
		Normal:   f.AxisW,
		Pos:      r3.Add(f.MustLocal(0, -1, 3), f.VecD(p.Thick/2)),
		XtrHead:  xtr,
		XtrShank: xtr,
	})))
	for _, w := range []int{2, -2} {
		s = form3.Difference(s, must(form3.Bolt(form3.BoltParams{
			ShankR:   base.ShankRTol,
			HeadR:    base.HeadRTol,
			HeadL:    base.HeadLTol,
			TotalL:   baseH,
			Normal:   f.AxisH,
			Pos:      r3.Add(f.MustLocal(0, w, 1), f.VecD(p.Thick/2)),
			XtrHead:  xtr,
			XtrShank: xtr,
		})))
	}

	step = "register"
	return register(ctx, name, f, s, p.Color, f.AxisD)
}
