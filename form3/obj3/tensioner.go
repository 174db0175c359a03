package obj3

import (
	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// TensionerParams defines an idler tensioner: a bar carrying an idler pulley
// at its far end, slid along its length by a bolt driving a captive nut.
//
// Named points along d: 0 back face (nut end), 1 past the nut holder wall,
// 2 stroke slot start, 3 stroke slot end, 4 idler bolt axis, 5 far end face.
// Along w (centered): 0 mid-plane, 1 side face. Along h (centered):
// 0 mid-plane, 1 idler cavity base, 2 bottom face.
type TensionerParams struct {
	Name             string
	IdlerH           float64 // idler cavity height
	IdlerRIn         float64 // idler bolt axis to the far end face
	IdlerRXtr        float64 // idler bolt axis to the cavity start, half the bar width
	InFillet         float64 // inner fillet radius, the far end chamfer is twice it
	BoltIdlerM       float64 // idler bolt metric
	BoltTensM        float64 // tensioner bolt and nut metric
	Stroke           float64 // length of the stroke slot
	WallThick        float64 // cavity roof and floor thickness
	NutHolderThick   float64 // walls on both sides of the nut pocket
	PulleyStrokeDist float64 // wall between stroke slot and idler cavity, 0 for none
	ChamferAll       bool    // chamfer the four far end edges, else only the horizontal ones
	Color            stage.Color
	Placement
}

// DefaultTensionerParams returns the tensioner of a 6 mm belt with M3 bolts.
func DefaultTensionerParams() TensionerParams {
	return TensionerParams{
		IdlerH:         10,
		IdlerRIn:       5,
		IdlerRXtr:      6,
		InFillet:       2,
		BoltIdlerM:     3,
		BoltTensM:      3,
		Stroke:         20,
		WallThick:      3,
		NutHolderThick: 4,
		Color:          stage.Orange,
	}
}

// TensionerDims are the dimensions derived from TensionerParams.
type TensionerDims struct {
	D, W, H   float64 // overall length, width and height
	NutSpace  float64 // nut pocket length, the nut height with tolerance
	IdlerBolt catalog.Bolt
	TensBolt  catalog.Bolt
	TensNut   catalog.Nut
}

// Dims derives the tensioner dimensions. It fails with ErrUnknownMetric for
// bolts missing from the catalog.
func (p TensionerParams) Dims() (TensionerDims, error) {
	var t TensionerDims
	var err error
	if t.IdlerBolt, err = catalog.LookupBolt(p.BoltIdlerM); err != nil {
		return t, err
	}
	if t.TensBolt, err = catalog.LookupBolt(p.BoltTensM); err != nil {
		return t, err
	}
	if t.TensNut, err = catalog.LookupNut(p.BoltTensM); err != nil {
		return t, err
	}
	t.NutSpace = t.TensNut.HTol
	t.D = 2*p.NutHolderThick + t.NutSpace + p.Stroke + p.PulleyStrokeDist + p.IdlerRXtr + p.IdlerRIn
	t.W = 2 * p.IdlerRXtr
	t.H = p.IdlerH + 2*p.WallThick
	return t, nil
}

// Tensioner is a built idler tensioner.
type Tensioner struct {
	*part.Part
	TensionerDims
}

// NewTensioner builds an idler tensioner and registers it into the context
// scene.
func NewTensioner(ctx *part.Context, p TensionerParams) (t *Tensioner, err error) {
	name := part.Name(p.Name, "tensioner", p.BoltIdlerM)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	dims, err := p.Dims()
	stage.Must(err)

	step = "parameters"
	positive("idler height", p.IdlerH)
	positive("idler inner radius", p.IdlerRIn)
	positive("idler outer radius", p.IdlerRXtr)
	positive("wall thickness", p.WallThick)
	positive("nut holder thickness", p.NutHolderThick)
	positive("inner fillet", p.InFillet)
	if p.Stroke < 0 {
		panic(badParam("negative stroke %g", p.Stroke))
	}
	if p.PulleyStrokeDist < 0 {
		panic(badParam("negative pulley stroke distance %g", p.PulleyStrokeDist))
	}
	if 2*dims.TensNut.CircRTol >= dims.W || dims.TensNut.STol >= dims.H {
		panic(badParam("M%g nut does not fit a %gx%g tensioner", p.BoltTensM, dims.W, dims.H))
	}
	if dims.IdlerBolt.ShankRTol >= p.IdlerRIn {
		panic(badParam("idler bolt hole breaks the far end"))
	}

	f := p.frame(false, true, true)
	nht := p.NutHolderThick
	d2 := 2*nht + dims.NutSpace
	f.SetD(nht, d2, d2+p.Stroke, dims.D-p.IdlerRIn, dims.D)
	f.SetW(-dims.W / 2)
	f.SetH(-p.IdlerH/2, -dims.H/2)
	p.anchor(&f)

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: dims.D, Y: dims.W, Z: dims.H}, f.MustLocal(0, 0, 0))
	bp.CenW, bp.CenH = true, true
	box := must(form3.Box(bp))

	step = "end chamfer"
	chmf := 2 * p.InFillet
	s := must(form3.ChamferPoints(box, f.AxisW, []r3.Vec{f.MustLocal(5, 0, 2), f.MustLocal(5, 0, -2)}, chmf))
	if p.ChamferAll {
		s = must(form3.ChamferPoints(s, f.AxisH, []r3.Vec{f.MustLocal(5, 1, 0), f.MustLocal(5, -1, 0)}, chmf))
	}

	step = "idler cavity"
	cavLen := p.IdlerRIn + p.IdlerRXtr
	cav := boxAlong(&f, r3.Vec{X: cavLen, Y: dims.W, Z: p.IdlerH}, r3.Sub(f.MustLocal(4, 0, 0), f.VecD(p.IdlerRXtr)))
	cav.CenW, cav.CenH = true, true
	cav.XtrD, cav.XtrW, cav.XtrNW = xtr, xtr, xtr
	cavity := must(form3.Box(cav))
	s = form3.Difference(s, cavity)

	step = "idler opening fillets"
	// the end chamfer may reach past the cavity roof, leaving no square lip
	// to round. The lips are rounded on the unchamfered body and both kept.
	lips := must(form3.FilletPoints(form3.Difference(box, cavity), f.AxisW, []r3.Vec{f.MustLocal(5, 0, 1), f.MustLocal(5, 0, -1)}, p.InFillet))
	s = form3.Intersect(s, lips)
	if p.PulleyStrokeDist > 0 {
		// cavity back wall, only present when the cavity does not merge with the stroke slot.
		cavStart := r3.Sub(f.MustLocal(4, 0, 0), f.VecD(p.IdlerRXtr))
		pts := []r3.Vec{r3.Add(cavStart, f.MustOToH(1)), r3.Add(cavStart, f.MustOToH(-1))}
		s = must(form3.FilletPoints(s, f.AxisW, pts, p.InFillet))
	}

	step = "idler bolt hole"
	s = form3.Difference(s, must(form3.Cylinder(form3.CylinderParams{
		R:        dims.IdlerBolt.ShankRTol,
		H:        dims.H,
		Axis:     f.AxisH,
		Pos:      f.MustLocal(4, 0, 0),
		Centered: true,
		XtrTop:   xtr,
		XtrBot:   xtr,
	})))

	if p.Stroke > 0 {
		step = "stroke slot"
		slot := boxAlong(&f, r3.Vec{X: p.Stroke, Y: dims.W, Z: p.IdlerH}, f.MustLocal(2, 0, 0))
		slot.CenW, slot.CenH = true, true
		slot.XtrW, slot.XtrNW = xtr, xtr
		if p.PulleyStrokeDist == 0 {
			slot.XtrD = xtr
		}
		s = form3.Difference(s, must(form3.Box(slot)))
		pts := []r3.Vec{f.MustLocal(2, 0, 1), f.MustLocal(2, 0, -1)}
		if p.PulleyStrokeDist > 0 {
			pts = append(pts, f.MustLocal(3, 0, 1), f.MustLocal(3, 0, -1))
		}
		s = must(form3.FilletPoints(s, f.AxisW, pts, p.InFillet))
	}

	step = "tensioner bolt hole"
	s = form3.Difference(s, must(form3.Cylinder(form3.CylinderParams{
		R:      dims.TensBolt.ShankRTol,
		H:      d2,
		Axis:   f.AxisD,
		Pos:    f.MustLocal(0, 0, 0),
		XtrBot: xtr,
		XtrTop: xtr,
	})))

	step = "nut pocket"
	s = form3.Difference(s, must(form3.NutHole(form3.NutHoleParams{
		CircR:    dims.TensNut.CircRTol,
		NutH:     dims.NutSpace,
		HoleH:    dims.W,
		NutAxis:  f.AxisD,
		HoleAxis: f.AxisW,
		Pos:      f.MustLocal(1, 0, 0),
	})))

	step = "register"
	prt := part.New(name, f, s)
	prt.Color = p.Color
	prt.PrintUp = f.AxisH
	stage.Must(prt.Register(ctx))
	return &Tensioner{Part: prt, TensionerDims: dims}, nil
}
