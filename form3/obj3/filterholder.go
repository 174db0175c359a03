package obj3

import (
	"math"
	"sort"

	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
)

// FilterHolderParams defines the carriage of the filter stage: a body bolted
// to a linear guide block on its back face, a top plate with a recessed
// filter pocket and a light opening, and a belt clamp on each side of the
// plate top.
//
// Named points along d: 0 back face, 1 belt line, 2 body front face,
// 3 filter pocket start, 4 filter pocket end, 5 plate front face.
// Along w (centered): 0 mid-plane, 1 light opening side, 2 filter pocket
// side, 3 plate side, 4 belt post large circle center. Along h: 0 bottom,
// 1 bolt rows center, 2 plate bottom, 3 pocket floor, 4 plate top,
// 5 belt centerline, 6 belt clamp top.
type FilterHolderParams struct {
	Name       string
	FiltL      float64  // filter side along w
	FiltW      float64  // filter side along d
	FiltT      float64  // filter thickness
	FiltSuppIn float64  // ledge the filter rests on around the light opening
	Rim        float64  // plate border around the pocket
	BaseH      float64  // plate thickness
	HoldD      float64  // body depth along d
	PlateR     float64  // fillet of the plate vertical corners
	BoltCenM   float64  // center bolt metric
	BoltLinM   float64  // guide block bolt metric
	Guides     []string // linear guides whose blocks the bolt pattern fits
	BoltRow1H  float64  // lowest bolt row height, 0 for the bolt head diameter
	BeltW      float64  // belt width
	ClampL     float64  // clamp block length along the belt
	ClampT     float64  // clamp block thickness
	PostGap    float64  // distance from the clamp blocks to the belt post
	BeltR1     float64  // belt post small radius, next to the clamp blocks
	BeltR2     float64  // belt post large radius
	BeltS      float64  // distance between belt post circle centers
	Color      stage.Color
	Placement
}

// DefaultFilterHolderParams returns the holder of a 60x25x2.5 mm filter on
// a MGN9H or MGN12H block.
func DefaultFilterHolderParams() FilterHolderParams {
	return FilterHolderParams{
		FiltL:      60,
		FiltW:      25,
		FiltT:      2.5,
		FiltSuppIn: 2,
		Rim:        3,
		BaseH:      6,
		HoldD:      12,
		PlateR:     2,
		BoltCenM:   4,
		BoltLinM:   3,
		Guides:     []string{"MGN9H", "MGN12H"},
		BeltW:      6,
		ClampL:     8,
		ClampT:     3,
		PostGap:    3,
		BeltR1:     1.5,
		BeltR2:     3,
		BeltS:      5,
		Color:      stage.Blue,
	}
}

// BoltHole is a hole position in the holder back pattern, counterbored from
// the back face, w and h measured from the holder origin.
type BoltHole struct {
	W, H float64
	Bolt catalog.Bolt
}

// FilterHolderDims are the dimensions derived from FilterHolderParams.
type FilterHolderDims struct {
	PlateW, PlateD float64
	BodyH          float64 // body height under the plate
	H              float64 // plate top height
	ClampH         float64 // belt clamp height above the plate
	ClampGap       float64 // gap the belt passes through
	RowCenterH     float64
	Rows           []float64 // bolt row heights, ascending
	Holes          []BoltHole
	BeltR1         float64 // belt post small radius after clamping
}

// Dims derives the holder dimensions. A lowest bolt row or a belt post
// radius too small is raised with a warning.
func (p FilterHolderParams) Dims(ctx *part.Context) (FilterHolderDims, error) {
	var d FilterHolderDims
	name := part.Name(p.Name, "filterholder", p.BoltLinM)
	linBolt, err := catalog.LookupBolt(p.BoltLinM)
	if err != nil {
		return d, err
	}
	cenBolt, err := catalog.LookupBolt(p.BoltCenM)
	if err != nil {
		return d, err
	}
	maxSepW := 0.0
	guides := make([]catalog.LinearGuide, len(p.Guides))
	for i, g := range p.Guides {
		if guides[i], err = catalog.LookupLinearGuide(g); err != nil {
			return d, err
		}
		maxSepW = math.Max(maxSepW, guides[i].BoltSepW)
	}
	headD := math.Max(linBolt.HeadD, cenBolt.HeadD)
	row1 := headD
	if p.BoltRow1H != 0 {
		row1 = ctx.Clamp(name, "boltrow1_h", p.BoltRow1H, headD)
	}
	d.RowCenterH = row1 + maxSepW/2
	d.Holes = append(d.Holes, BoltHole{H: d.RowCenterH, Bolt: cenBolt})
	rows := map[float64]bool{d.RowCenterH: true}
	for _, g := range guides {
		for _, sw := range []float64{-1, 1} {
			for _, sl := range []float64{-1, 1} {
				h := d.RowCenterH + sw*g.BoltSepW/2
				d.Holes = append(d.Holes, BoltHole{W: sl * g.BoltSepL / 2, H: h, Bolt: linBolt})
				rows[h] = true
			}
			if g.BoltSepW == 0 {
				break
			}
		}
	}
	for h := range rows {
		d.Rows = append(d.Rows, h)
	}
	sort.Float64s(d.Rows)
	d.PlateW = p.FiltL + 2*p.Rim
	d.PlateD = p.HoldD + p.FiltW + 2*p.Rim
	d.BodyH = d.RowCenterH + maxSepW/2 + headD
	d.H = d.BodyH + p.BaseH
	d.ClampH = p.BeltW + 1
	d.ClampGap = catalog.GT2Thick + catalog.Tol
	d.BeltR1 = ctx.Clamp(name, "belt_r1", p.BeltR1, catalog.GT2Thick)
	return d, nil
}

// FilterHolder is a built filter holder.
type FilterHolder struct {
	*part.Part
	FilterHolderDims
}

// BeltCenter returns the world position of the belt centerline on the holder
// mid-plane.
func (f *FilterHolder) BeltCenter() r3.Vec {
	v, err := f.WorldPos(1, 0, 5)
	stage.Must(err)
	return v
}

// NewFilterHolder builds a filter holder and registers it into the context
// scene.
func NewFilterHolder(ctx *part.Context, p FilterHolderParams) (fh *FilterHolder, err error) {
	name := part.Name(p.Name, "filterholder", p.BoltLinM)
	var step string
	defer stage.Recover(name, &step, &err)

	step = "catalog"
	dims, err := p.Dims(ctx)
	stage.Must(err)

	step = "parameters"
	for _, v := range []struct {
		name string
		v    float64
	}{
		{"filter length", p.FiltL}, {"filter width", p.FiltW}, {"filter thickness", p.FiltT},
		{"filter support", p.FiltSuppIn}, {"rim", p.Rim}, {"plate thickness", p.BaseH},
		{"body depth", p.HoldD}, {"belt width", p.BeltW}, {"clamp length", p.ClampL},
		{"clamp thickness", p.ClampT}, {"post gap", p.PostGap}, {"post radius", p.BeltR2},
	} {
		positive(v.name, v.v)
	}
	if len(p.Guides) == 0 {
		panic(badParam("no linear guide given"))
	}
	if len(dims.Rows) > 5 {
		panic(badParam("%d bolt rows, guides need at most 4 plus the center row", len(dims.Rows)))
	}
	if 2*p.FiltSuppIn >= math.Min(p.FiltL, p.FiltW) {
		panic(badParam("filter support %g closes the light opening", p.FiltSuppIn))
	}
	if p.FiltT+catalog.STol >= p.BaseH {
		panic(badParam("filter thickness %g does not fit plate %g", p.FiltT, p.BaseH))
	}
	if 2*p.ClampT+dims.ClampGap > p.HoldD {
		panic(badParam("belt clamp does not fit the body depth %g", p.HoldD))
	}
	postW := dims.PlateW/2 - p.ClampL - p.PostGap - dims.BeltR1 - p.BeltS
	if postW-p.BeltR2 <= 0 {
		panic(badParam("belt clamps overlap on a %g wide plate", dims.PlateW))
	}
	if r := math.Max(dims.BeltR1, p.BeltR2); 2*r > p.HoldD {
		panic(badParam("belt post radius %g larger than the body", r))
	}
	for _, hole := range dims.Holes {
		if hole.Bolt.HeadLTol >= p.HoldD {
			panic(badParam("M%g counterbore deeper than the body", hole.Bolt.M))
		}
	}

	f := p.frame(false, true, false)
	pocketD := p.HoldD + p.Rim - catalog.STol
	f.SetD(p.HoldD/2, p.HoldD, pocketD, pocketD+p.FiltW+catalog.Tol, dims.PlateD)
	f.SetW(-(p.FiltL/2 - p.FiltSuppIn), -(p.FiltL+catalog.Tol)/2, -dims.PlateW/2, -postW)
	f.SetH(dims.RowCenterH, dims.BodyH, dims.H-p.FiltT-catalog.STol, dims.H, dims.H+p.BeltW/2, dims.H+dims.ClampH)
	p.anchor(&f)

	step = "plate"
	pp := boxAlong(&f, r3.Vec{X: dims.PlateD, Y: dims.PlateW, Z: p.BaseH}, f.MustLocal(0, 0, 2))
	pp.CenW = true
	plate := must(form3.Box(pp))
	mid := f.VecH(p.BaseH / 2)
	plate = must(form3.FilletPoints(plate, f.AxisH, []r3.Vec{
		r3.Add(f.MustLocal(0, 3, 2), mid), r3.Add(f.MustLocal(0, -3, 2), mid),
		r3.Add(f.MustLocal(5, 3, 2), mid), r3.Add(f.MustLocal(5, -3, 2), mid),
	}, p.PlateR))

	step = "body"
	bp := boxAlong(&f, r3.Vec{X: p.HoldD, Y: dims.PlateW, Z: dims.BodyH}, f.MustLocal(0, 0, 0))
	bp.CenW = true
	bp.XtrH = p.BaseH / 2
	s := form3.Union(must(form3.Box(bp)), plate)

	step = "filter pocket"
	pk := boxAlong(&f, r3.Vec{X: p.FiltW + catalog.Tol, Y: p.FiltL + catalog.Tol, Z: p.FiltT + catalog.STol}, f.MustLocal(3, 0, 3))
	pk.CenW = true
	pk.XtrH = xtr
	s = form3.Difference(s, must(form3.Box(pk)))

	step = "light opening"
	op := boxAlong(&f, r3.Vec{X: p.FiltW - 2*p.FiltSuppIn, Y: p.FiltL - 2*p.FiltSuppIn, Z: p.BaseH},
		r3.Add(f.MustLocal(3, 0, 2), f.VecD(catalog.STol+p.FiltSuppIn)))
	op.CenW = true
	op.XtrH, op.XtrNH = xtr, xtr
	s = form3.Difference(s, must(form3.Box(op)))

	step = "bolt holes"
	// counterbores open on the back face.
	for _, hole := range dims.Holes {
		pos := r3.Add(f.MustLocal(0, 0, 0), f.VecDWH(0, hole.W, hole.H))
		s = form3.Difference(s, must(form3.Bolt(form3.BoltParams{
			ShankR:   hole.Bolt.ShankRTol,
			HeadR:    hole.Bolt.HeadRTol,
			HeadL:    hole.Bolt.HeadLTol,
			TotalL:   p.HoldD,
			Normal:   r3.Scale(-1, f.AxisD),
			Pos:      pos,
			XtrHead:  xtr,
			XtrShank: xtr,
		})))
	}

	step = "belt clamps"
	var clamps []form3.Solid
	for _, side := range []float64{1, -1} {
		// blocks end on the plate side face.
		out := f.VecW(side * dims.PlateW / 2)
		in := f.VecW(side * (dims.PlateW/2 - p.ClampL))
		for _, dside := range []float64{-1, 1} {
			near := dims.ClampGap / 2
			far := near + p.ClampT
			a := r3.Add(f.MustLocal(1, 0, 4), r3.Add(in, f.VecD(dside*near)))
			b := r3.Add(f.MustLocal(1, 0, 4), r3.Add(out, f.VecD(dside*far)))
			cb := boxFromCorners(&f, a, b, dims.ClampH)
			corner := r3.Add(r3.Add(f.MustLocal(1, 0, 4), out), r3.Add(f.VecD(dside*far), f.VecH(dims.ClampH/2)))
			clamps = append(clamps, must(form3.FilletPoints(cb, f.AxisH, []r3.Vec{corner}, 1)))
		}

		c2 := r3.Add(f.MustLocal(1, 0, 4), f.VecW(side*postW))
		c1 := r3.Add(c2, f.VecW(side*p.BeltS))
		w, werr := BeltPostWire(c1, dims.BeltR1, p.BeltR2, p.BeltS, f.VecW(-side), f.AxisD)
		stage.Must(werr)
		face, werr := form3.NewFace(w)
		stage.Must(werr)
		clamps = append(clamps, must(form3.Extrude(face, dims.ClampH, f.AxisH, false)))
	}
	s = form3.Union(append([]form3.Solid{s}, clamps...)...)

	step = "register"
	prt := part.New(name, f, s)
	prt.Color = p.Color
	prt.PrintUp = f.AxisD
	stage.Must(prt.Register(ctx))
	return &FilterHolder{Part: prt, FilterHolderDims: dims}, nil
}

// boxFromCorners returns the box of height h along f.AxisH whose base has
// opposite corners a and b.
func boxFromCorners(f *stage.Frame, a, b r3.Vec, h float64) form3.Solid {
	ab := r3.Sub(b, a)
	dd, dw := r3.Dot(ab, f.AxisD), r3.Dot(ab, f.AxisW)
	pos := r3.Add(a, r3.Add(f.VecD(math.Min(dd, 0)), f.VecW(math.Min(dw, 0))))
	return must(form3.Box(boxAlong(f, r3.Vec{X: math.Abs(dd), Y: math.Abs(dw), Z: h}, pos)))
}

// BeltPostWire returns the closed outline of a belt post: two circles of
// radii r1 and r2 with centers c1 and c1+s*axisS joined by their external
// tangents. axisL is the in-plane direction perpendicular to axisS.
//
// The wire starts at the tangent point on the r2 circle on the +axisL side,
// runs around the far side of r2 and back along the other tangent to the r1
// circle.
func BeltPostWire(c1 r3.Vec, r1, r2, s float64, axisS, axisL r3.Vec) (*form3.Wire, error) {
	if r1 <= 0 || r2 <= 0 {
		return nil, badParam("belt post radii %g, %g must be positive", r1, r2)
	}
	if s <= math.Abs(r2-r1) {
		return nil, badParam("belt post circles %g apart, one inside the other", s)
	}
	axisS, axisL = r3.Unit(axisS), r3.Unit(axisL)
	if math.Abs(r3.Dot(axisS, axisL)) > 1e-9 {
		return nil, badParam("belt post axes not perpendicular")
	}
	c2 := r3.Add(c1, r3.Scale(s, axisS))
	// unit normals of the tangent lines, pointing away from both circles.
	sinb := (r1 - r2) / s
	cosb := math.Sqrt(1 - sinb*sinb)
	np := r3.Add(r3.Scale(sinb, axisS), r3.Scale(cosb, axisL))
	nm := r3.Sub(r3.Scale(sinb, axisS), r3.Scale(cosb, axisL))
	at := func(c r3.Vec, r float64, n r3.Vec) r3.Vec { return r3.Add(c, r3.Scale(r, n)) }

	w := form3.NewWire(at(c2, r2, np))
	w.ArcTo(at(c2, r2, axisS), at(c2, r2, nm))
	w.LineTo(at(c1, r1, nm))
	w.ArcTo(at(c1, r1, r3.Scale(-1, axisS)), at(c1, r1, np))
	w.Close()
	return w, w.Err()
}
