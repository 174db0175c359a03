package obj3

import (
	"math"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// HolderParams defines the bracket holding an idler tensioner on top of an
// aluminum profile. The tensioner slides along d inside the holder pocket
// and is pulled back by a bolt through the holder back wall.
//
// Named points along d: 0 back face, 1 pocket start, 2 base mid-plane,
// 3 front face. Along w (centered): 0 mid-plane, 1 body side,
// 2 profile bolt axis, 3 base side. Along h: 0 bottom, 1 base top,
// 2 pocket floor, 3 tensioner bolt axis, 4 pocket roof, 5 top face.
type HolderParams struct {
	Name      string
	Tensioner TensionerParams // tensioner held, its placement is ignored
	AluprofW  float64         // profile side
	BeltPosH  float64         // belt bottom height above the profile top
	BaseH     float64         // base thickness, 0 to derive it from the bolt head
	BoltM     float64         // profile bolt metric
	BothHoles bool            // profile bolts on both sides, else only on the +w side
	Windows   bool            // side windows to reach the tensioner nut
	Color     stage.Color
	Placement
}

// DefaultHolderParams returns a holder for a 20 mm profile and the default
// tensioner with a 12 mm stroke.
func DefaultHolderParams() HolderParams {
	tp := DefaultTensionerParams()
	tp.Stroke = 12
	return HolderParams{
		Tensioner: tp,
		AluprofW:  20,
		BeltPosH:  20,
		BoltM:     3,
		BothHoles: true,
		Windows:   true,
		Color:     stage.Yellow,
	}
}

// HolderDims are the dimensions derived from HolderParams.
type HolderDims struct {
	Tens        TensionerDims
	Prof        catalog.AluProf
	Bolt        catalog.Bolt // profile bolt
	Washer      catalog.Washer
	L           float64 // body and base length along d
	W, BaseW    float64 // body and base widths
	BaseH       float64
	TensPosH    float64 // tensioner bottom height
	TensLInside float64 // tensioner length inside the holder
	H           float64 // total height
}

// Dims derives the holder dimensions. A base thickness smaller than the
// profile bolt head needs is raised with a warning.
func (p HolderParams) Dims(ctx *part.Context) (HolderDims, error) {
	var h HolderDims
	var err error
	if h.Tens, err = p.Tensioner.Dims(); err != nil {
		return h, err
	}
	if h.Prof, err = catalog.LookupAluProf(p.AluprofW); err != nil {
		return h, err
	}
	if h.Bolt, err = catalog.LookupBolt(p.BoltM); err != nil {
		return h, err
	}
	if h.Washer, err = catalog.LookupLargeWasher(p.Tensioner.BoltIdlerM); err != nil {
		return h, err
	}
	tp := p.Tensioner
	h.TensLInside = h.Tens.D - 2*tp.IdlerRXtr
	h.L = h.TensLInside + tp.WallThick
	h.W = h.Tens.W + 2*tp.WallThick
	h.BaseW = h.W + 2*p.AluprofW
	h.TensPosH = p.BeltPosH - tp.WallThick - h.Washer.T
	minBase := h.Bolt.HeadLTol + tp.WallThick
	h.BaseH = minBase
	if p.BaseH != 0 {
		h.BaseH = ctx.Clamp(part.Name(p.Name, "holder", p.BoltM), "base_h", p.BaseH, minBase)
	}
	h.H = h.TensPosH + h.Tens.H + catalog.STol + tp.WallThick
	return h, nil
}

// Holder is a built tensioner holder.
type Holder struct {
	*part.Part
	HolderDims
}

// NewHolder builds a tensioner holder and registers it into the context
// scene.
func NewHolder(ctx *part.Context, p HolderParams) (hd *Holder, err error) {
	name := part.Name(p.Name, "holder", p.BoltM)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	dims, err := p.Dims(ctx)
	stage.Must(err)
	tp := p.Tensioner
	tensBolt := dims.Tens.TensBolt

	step = "parameters"
	pocketFloor := dims.TensPosH - catalog.STol
	if pocketFloor <= 0 {
		panic(badParam("belt height %g leaves no room under the tensioner", p.BeltPosH))
	}
	if dims.TensLInside <= tp.WallThick {
		panic(badParam("tensioner too short for the holder"))
	}
	// transition chamfer, kept clear of the profile bolt counterbores.
	chmf := math.Min(2*tp.WallThick, p.AluprofW/2-dims.Bolt.HeadRTol-0.5)
	chmf = math.Min(chmf, dims.H-dims.BaseH-tp.InFillet-0.5)
	positive("transition chamfer", chmf)

	f := p.frame(false, true, false)
	f.SetD(tp.WallThick, dims.L/2, dims.L)
	f.SetW(-dims.W/2, -(dims.W+p.AluprofW)/2, -dims.BaseW/2)
	f.SetH(dims.BaseH, pocketFloor, dims.TensPosH+dims.Tens.H/2, dims.TensPosH+dims.Tens.H+catalog.STol, dims.H)
	p.anchor(&f)

	step = "base"
	bp := boxAlong(&f, r3.Vec{X: dims.L, Y: dims.BaseW, Z: dims.BaseH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s := must(form3.Box(bp))
	var corners []r3.Vec
	for _, dw := range [][2]int{{0, 3}, {0, -3}, {3, 3}, {3, -3}} {
		corners = append(corners, r3.Add(f.MustLocal(dw[0], dw[1], 0), f.VecH(dims.BaseH/2)))
	}
	s = must(form3.FilletPoints(s, f.AxisH, corners, tp.InFillet))

	step = "body"
	bp = boxAlong(&f, r3.Vec{X: dims.L, Y: dims.W, Z: dims.H}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	s = form3.Union(s, must(form3.Box(bp)))

	step = "top fillet"
	s = must(form3.FilletPoints(s, f.AxisD, []r3.Vec{f.MustLocal(2, 1, 5), f.MustLocal(2, -1, 5)}, tp.InFillet))

	step = "transition chamfer"
	s = must(form3.ChamferPoints(s, f.AxisD, []r3.Vec{f.MustLocal(2, 1, 1), f.MustLocal(2, -1, 1)}, chmf))

	step = "pocket"
	pk := boxAlong(&f, r3.Vec{
		X: dims.L - tp.WallThick,
		Y: dims.Tens.W + catalog.Tol,
		Z: dims.Tens.H + catalog.Tol,
	}, f.MustLocal(1, 0, 2))
	pk.CenW = true
	pk.XtrD = xtr
	s = form3.Difference(s, must(form3.Box(pk)))

	step = "tensioner bolt hole"
	s = form3.Difference(s, must(form3.Cylinder(form3.CylinderParams{
		R:      tensBolt.ShankRTol,
		H:      tp.WallThick,
		Axis:   f.AxisD,
		Pos:    f.MustLocal(0, 0, 3),
		XtrBot: xtr,
		XtrTop: xtr,
	})))

	if p.Windows {
		step = "nut windows"
		nut := dims.Tens.TensNut
		wp := boxAlong(&f, r3.Vec{
			X: dims.Tens.NutSpace + catalog.Tol,
			Y: dims.W,
			Z: nut.STol,
		}, r3.Add(f.MustLocal(1, 0, 3), f.VecD(tp.NutHolderThick-catalog.STol)))
		wp.CenW, wp.CenH = true, true
		wp.XtrW, wp.XtrNW = xtr, xtr
		s = form3.Difference(s, must(form3.Box(wp)))
	}

	step = "profile bolt holes"
	sides := []int{2}
	if p.BothHoles {
		sides = append(sides, -2)
	}
	for _, w := range sides {
		s = form3.Difference(s, must(form3.Bolt(form3.BoltParams{
			ShankR:   dims.Bolt.ShankRTol,
			HeadR:    dims.Bolt.HeadRTol,
			HeadL:    dims.Bolt.HeadLTol,
			TotalL:   dims.BaseH,
			Normal:   f.AxisH,
			Pos:      f.MustLocal(2, w, 1),
			XtrHead:  xtr,
			XtrShank: xtr,
		})))
	}

	step = "register"
	prt := part.New(name, f, s)
	prt.Color = p.Color
	stage.Must(prt.Register(ctx))
	return &Holder{Part: prt, HolderDims: dims}, nil
}
