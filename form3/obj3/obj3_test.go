package obj3_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/soypat/stage"
	"github.com/soypat/stage/catalog"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/form3/obj3"
	"github.com/soypat/stage/internal/d3"
	"github.com/soypat/stage/part"
	"github.com/soypat/stage/render"
	"github.com/soypat/stage/scene"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func newContext() (*part.Context, *scene.Document) {
	doc := scene.New("test")
	return part.NewContext(doc), doc
}

// checkPoints checks which of the given points lie inside s.
func checkPoints(t *testing.T, name string, s form3.Solid, in, out []r3.Vec) {
	t.Helper()
	for _, p := range in {
		if !s.Contains(p) {
			t.Errorf("%s: %v should be solid", name, p)
		}
	}
	for _, p := range out {
		if s.Contains(p) {
			t.Errorf("%s: %v should be empty", name, p)
		}
	}
}

func TestTensioner(t *testing.T) {
	ctx, doc := newContext()
	tens, err := obj3.NewTensioner(ctx, obj3.DefaultTensionerParams())
	if err != nil {
		t.Fatal(err)
	}
	nut, _ := catalog.LookupNut(3)
	wantD := 39 + nut.HTol
	for _, test := range []struct {
		name      string
		got, want float64
	}{
		{"tens_d", tens.D, wantD},
		{"tens_w", tens.W, 12},
		{"tens_h", tens.H, 16},
		{"idler axis", r3.Norm(tens.MustDAB(0, 4)), wantD - 5},
		{"stroke", r3.Norm(tens.MustDAB(2, 3)), 20},
	} {
		if !scalar.EqualWithinAbs(test.got, test.want, tol) {
			t.Errorf("%s got %g, want %g", test.name, test.got, test.want)
		}
	}
	if tens.Name != "tensioner_m3" || doc.Len() != 1 {
		t.Errorf("registered %q, %d objects", tens.Name, doc.Len())
	}
	// default placement: back face at x = 0, centered on y and z.
	axis := wantD - 5
	checkPoints(t, "tensioner", tens.Solid, []r3.Vec{
		{X: axis - 2.5, Y: 0, Z: 6.5},      // cavity roof next to the idler hole
		{X: 2, Y: 4, Z: 0},                 // nut holder wall
		{X: wantD - 3, Y: 5, Z: -6.5},      // cavity floor
		{X: 11, Y: 0, Z: -4.85},            // stroke fillet filler
		{X: wantD - 2.5, Y: 3, Z: 5.05},    // cavity roof behind the opening fillet
	}, []r3.Vec{
		{X: axis, Y: 0, Z: 6.5},           // idler bolt hole
		{X: axis, Y: 0, Z: -6.5},          // idler bolt hole
		{X: 20, Y: 0, Z: 0},               // stroke slot
		{X: 2, Y: 0, Z: 0},                // tensioner bolt hole
		{X: 4 + nut.HTol/2, Y: 5.9, Z: 0}, // nut insertion slot
		{X: wantD - 0.5, Y: 0, Z: 7.7},    // end chamfer
		{X: wantD - 1.2, Y: 0, Z: 5.05},   // idler opening fillet, roof
		{X: wantD - 1.2, Y: -4, Z: -5.05}, // idler opening fillet, floor
	})

	// volume of the body less the cavity, the stroke slot and the end
	// chamfers, plus the stroke fillet fillers. Holes and the opening fillets
	// only remove from it.
	const r, chmf, roof, idlerH = 2.0, 4.0, 3.0, 10.0
	bolt, _ := catalog.LookupBolt(3)
	box := tens.D * tens.W * tens.H
	corner := r * r * (1 - math.Pi/4)
	chamfers := 2 * (chmf*chmf/2 - (chmf-roof)*(chmf-roof)/2) * tens.W
	upper := box - (5+6)*tens.W*idlerH - 20*tens.W*idlerH - chamfers + 2*corner*tens.W
	holes := math.Pi*bolt.ShankRTol*bolt.ShankRTol*(tens.H-idlerH) +
		math.Pi*bolt.ShankRTol*bolt.ShankRTol*r3.Norm(tens.MustDAB(0, 2)) +
		nut.HTol*(tens.W/2+nut.CircRTol)*2*nut.CircRTol +
		2*corner*tens.W
	lower := upper - holes
	vol := form3.Volume(tens.Solid, 0.4)
	if slack := 0.01 * box; vol < lower-slack || vol > upper+slack {
		t.Errorf("volume %g outside [%g, %g]", vol, lower, upper)
	}
	// the stroke slot merges with the idler cavity when no wall parts them.
	if ratio := vol / box; ratio < 0.46 || ratio > 0.53 {
		t.Errorf("volume ratio %g outside [0.46, 0.53]", ratio)
	}

	p := obj3.DefaultTensionerParams()
	p.Name = "walled"
	p.PulleyStrokeDist = 3
	p.ChamferAll = true
	walled, err := obj3.NewTensioner(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(walled.D, wantD+3, tol) {
		t.Errorf("walled tens_d got %g", walled.D)
	}
	wall := walled.D - 5 - 6 - 1.5
	checkPoints(t, "walled", walled.Solid, []r3.Vec{{X: wall, Y: 0, Z: 0}}, []r3.Vec{{X: walled.D - 0.5, Y: 5.7, Z: 6.5}})
	if wv := form3.Volume(walled.Solid, 0.4); wv < vol+300 {
		t.Errorf("walled volume %g, want the unwalled %g plus the wall", wv, vol)
	}
}

func TestTensionerErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		mod  func(*obj3.TensionerParams)
		want error
		step string
	}{
		{"unknown nut", func(p *obj3.TensionerParams) { p.BoltTensM = 7 }, stage.ErrUnknownMetric, "catalog"},
		{"unknown idler bolt", func(p *obj3.TensionerParams) { p.BoltIdlerM = 1 }, stage.ErrUnknownMetric, "catalog"},
		{"negative stroke", func(p *obj3.TensionerParams) { p.Stroke = -1 }, stage.ErrBadGeometry, "parameters"},
		{"nut wider than bar", func(p *obj3.TensionerParams) { p.IdlerRXtr = 3 }, stage.ErrBadGeometry, "parameters"},
		{"no wall", func(p *obj3.TensionerParams) { p.WallThick = 0 }, stage.ErrBadGeometry, "parameters"},
	} {
		ctx, doc := newContext()
		p := obj3.DefaultTensionerParams()
		test.mod(&p)
		_, err := obj3.NewTensioner(ctx, p)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
			continue
		}
		var be *stage.BuildError
		if !errors.As(err, &be) || !strings.HasPrefix(be.Part, "tensioner_m") || be.Step != test.step {
			t.Errorf("%s: build error %+v", test.name, be)
		}
		if doc.Len() != 0 {
			t.Errorf("%s: failed build registered %d objects", test.name, doc.Len())
		}
	}
}

func TestTensionerReanchor(t *testing.T) {
	ctx, _ := newContext()
	p := obj3.DefaultTensionerParams()
	p.Placement = p.At(0, 0, 0, r3.Vec{X: 3, Y: -2, Z: 7})
	a, err := obj3.NewTensioner(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	// same tensioner anchored at its idler axis on the cavity floor.
	off0, _ := a.Offset(0, 0, 0)
	off1, _ := a.Offset(4, 0, 1)
	p.Placement = p.At(4, 0, 1, r3.Add(r3.Sub(p.Pos, off0), off1))
	b, err := obj3.NewTensioner(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if !d3.EqualWithin(a.PosO, b.PosO, tol) {
		t.Errorf("re-anchored origin %v, want %v", b.PosO, a.PosO)
	}
	// moved tensioner.
	delta := r3.Vec{X: 10, Y: 5, Z: -3}
	p.Placement = p.At(0, 0, 0, r3.Add(r3.Vec{X: 3, Y: -2, Z: 7}, delta))
	c, err := obj3.NewTensioner(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Solid.Bounds().Translate(delta).Equals(c.Solid.Bounds(), 1e-6) {
		t.Errorf("moved bounds %+v", c.Solid.Bounds())
	}
	for _, v := range []r3.Vec{{X: 1, Y: 0.5, Z: 0.5}, {X: 20, Y: 1, Z: -4}, {X: 37, Y: -3, Z: 6}, {X: 40, Y: 5.5, Z: 7.5}} {
		q := r3.Add(a.PosO, v)
		if ea, eb, ec := a.Solid.Evaluate(q), b.Solid.Evaluate(q), c.Solid.Evaluate(r3.Add(q, delta)); math.Abs(ea-eb) > 1e-9 || math.Abs(ea-ec) > 1e-6 {
			t.Errorf("at %v: evaluate %g, re-anchored %g, moved %g", v, ea, eb, ec)
		}
	}
	// centered axes mirror around index 0.
	plus, minus, zero := a.MustOToH(2), a.MustOToH(-2), a.MustOToH(0)
	if !d3.EqualWithin(r3.Add(plus, minus), r3.Scale(2, zero), tol) {
		t.Errorf("h mirror: %v + %v != 2*%v", plus, minus, zero)
	}
}

func TestHolder(t *testing.T) {
	ctx, _ := newContext()
	var buf bytes.Buffer
	ctx.Log = zerolog.New(&buf).Level(zerolog.WarnLevel)
	h, err := obj3.NewHolder(ctx, obj3.DefaultHolderParams())
	if err != nil {
		t.Fatal(err)
	}
	bolt, _ := catalog.LookupBolt(3)
	washer, _ := catalog.LookupLargeWasher(3)
	for _, test := range []struct {
		name      string
		got, want float64
	}{
		{"hold_w", h.W, 18},
		{"hold_bas_w", h.BaseW, 58},
		{"base_h", h.BaseH, bolt.HeadLTol + 3},
		{"tens_pos_h", h.TensPosH, 20 - 3 - washer.T},
		{"hold_l", h.L, h.Tens.D - 12 + 3},
		{"bolt spacing", r3.Norm(h.MustWAB(-2, 2)), 38},
	} {
		if !scalar.EqualWithinAbs(test.got, test.want, tol) {
			t.Errorf("%s got %g, want %g", test.name, test.got, test.want)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("auto base height logged a warning: %s", buf.String())
	}
	for _, w := range []int{2, -2} {
		c := h.MustPosDWH(2, w, 1)
		if !scalar.EqualWithinAbs(c.X, h.L/2, tol) {
			t.Errorf("bolt %d off the base mid-plane: %v", w, c)
		}
		checkPoints(t, "profile bolt", h.Solid, []r3.Vec{
			r3.Add(c, r3.Vec{Y: 3.5, Z: -h.BaseH / 2}),
			r3.Add(c, r3.Vec{Y: 2.5, Z: -h.BaseH + 1}), // under the counterbore
		}, []r3.Vec{
			r3.Add(c, r3.Vec{Z: -h.BaseH + 0.5}), // shank
			r3.Add(c, r3.Vec{Y: 2.5, Z: -0.5}),   // counterbore
		})
	}
	axis := h.MustPosDWH(0, 0, 3)
	checkPoints(t, "holder", h.Solid, []r3.Vec{
		{X: h.L / 2, Y: 0, Z: 1},                   // under the pocket
		{X: h.L / 2, Y: h.W/2 + 0.5, Z: h.BaseH + 1}, // transition chamfer filler
		{X: 1.5, Y: 4, Z: axis.Z},                  // back wall
		{X: h.L / 2, Y: 0, Z: h.H - 1.5},           // pocket roof
		{X: h.L / 2, Y: h.W/2 - 0.3, Z: axis.Z},    // side wall
		{X: 1, Y: h.BaseW/2 - 0.5, Z: h.BaseH / 2}, // base corner inside the fillet
	}, []r3.Vec{
		{X: 1.5, Y: 0, Z: axis.Z},                    // tensioner bolt hole
		{X: h.L / 2, Y: 0, Z: axis.Z},                // pocket
		{X: 0.2, Y: h.BaseW/2 - 0.2, Z: h.BaseH / 2}, // base fillet
		{X: h.L / 2, Y: h.W/2 - 0.1, Z: h.H - 0.1},   // top fillet
		{X: 8, Y: h.W/2 - 0.5, Z: axis.Z + 1},        // nut window
	})

	p := obj3.DefaultHolderParams()
	p.Name = "thin"
	p.BaseH = 4
	thin, err := obj3.NewHolder(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if thin.BaseH != h.BaseH || !strings.Contains(buf.String(), `"param":"base_h"`) {
		t.Errorf("thin base got %g, log %s", thin.BaseH, buf.String())
	}

	p = obj3.DefaultHolderParams()
	p.AluprofW = 25
	if _, err := obj3.NewHolder(ctx, p); !errors.Is(err, stage.ErrUnknownMetric) {
		t.Errorf("unknown profile: got %v", err)
	}
}

func TestFilterHolder(t *testing.T) {
	ctx, doc := newContext()
	fh, err := obj3.NewFilterHolder(ctx, obj3.DefaultFilterHolderParams())
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name      string
		got, want float64
	}{
		{"plate width", fh.PlateW, 66},
		{"plate depth", fh.PlateD, 12 + 25 + 6},
		{"pocket width", r3.Norm(fh.MustWAB(-2, 2)), 60 + catalog.Tol},
		{"opening width", r3.Norm(fh.MustWAB(-1, 1)), 60 - 2*2},
		{"pocket depth", r3.Norm(fh.MustHAB(3, 4)), 2.5 + catalog.STol},
		{"lowest row", fh.Rows[0], 7},
	} {
		if !scalar.EqualWithinAbs(test.got, test.want, tol) {
			t.Errorf("%s got %g, want %g", test.name, test.got, test.want)
		}
	}
	// center row plus two rows per guide.
	if len(fh.Rows) != 5 || len(fh.Holes) != 9 {
		t.Errorf("%d rows, %d holes", len(fh.Rows), len(fh.Holes))
	}
	if doc.Len() != 1 {
		t.Errorf("%d objects registered", doc.Len())
	}
	top := fh.H
	pocket := fh.MustPosDWH(3, 0, 3)
	checkPoints(t, "filter holder", fh.Solid, []r3.Vec{
		{X: pocket.X + 1, Y: 31.5, Z: top - 1},    // rim
		{X: pocket.X + 1, Y: 29, Z: pocket.Z - 1}, // ledge under the filter
		{X: 6, Y: 0, Z: fh.RowCenterH + 4},        // body between holes
		{X: 11, Y: 8, Z: fh.RowCenterH + 5.1},     // front face around the MGN9H shank
		{X: 11, Y: -10, Z: fh.RowCenterH - 12.4},  // front face around the MGN12H shank
	}, []r3.Vec{
		{X: pocket.X + 5, Y: 0, Z: top - 0.5},      // pocket
		{X: pocket.X + 5, Y: 0, Z: fh.BodyH + 0.5}, // light opening
		{X: 1, Y: 0, Z: fh.RowCenterH},             // center bolt shank
		{X: 11, Y: 8, Z: fh.RowCenterH + 7.5},      // MGN9H shank at the front face
		{X: 1, Y: 8, Z: fh.RowCenterH + 5.1},       // MGN9H counterbore
		{X: 1, Y: -10, Z: fh.RowCenterH - 12.4},    // MGN12H counterbore
		{X: 20, Y: 0, Z: fh.BodyH / 2},             // under the plate, past the body
	})
	// belt clamps and posts are symmetric across the mid-plane.
	for x := 0.25; x < 12; x += 0.7 {
		for y := 10.1; y < 33; y += 0.9 {
			for _, z := range []float64{top + 0.5, top + 3, top + 6.5} {
				a, b := r3.Vec{X: x, Y: y, Z: z}, r3.Vec{X: x, Y: -y, Z: z}
				if ea, eb := fh.Solid.Evaluate(a), fh.Solid.Evaluate(b); math.Abs(ea-eb) > 1e-6 {
					t.Fatalf("asymmetric clamp at %v: %g != %g", a, ea, eb)
				}
			}
		}
	}
	belt := fh.BeltCenter()
	if !scalar.EqualWithinAbs(belt.Z, top+3, tol) || !scalar.EqualWithinAbs(belt.X, 6, tol) {
		t.Errorf("belt center %v", belt)
	}
	gap := catalog.GT2Thick + catalog.Tol
	checkPoints(t, "belt clamp", fh.Solid, []r3.Vec{
		{X: 6 + gap/2 + 1.5, Y: 29, Z: top + 3}, // block
		{X: 6, Y: 15.5, Z: top + 3},             // large post circle
	}, []r3.Vec{
		{X: 6, Y: 29, Z: top + 3},              // belt gap
		{X: 6, Y: 15.5, Z: top + fh.ClampH + 0.5}, // above the post
	})
}

func TestFilterHolderClamp(t *testing.T) {
	ctx, _ := newContext()
	var buf bytes.Buffer
	ctx.Log = zerolog.New(&buf).Level(zerolog.WarnLevel)
	p := obj3.DefaultFilterHolderParams()
	p.BoltRow1H = 3
	p.BeltR1 = 1
	fh, err := obj3.NewFilterHolder(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	bolt, _ := catalog.LookupBolt(4)
	if fh.Rows[0] < bolt.HeadD-tol || fh.BeltR1 != catalog.GT2Thick {
		t.Errorf("lowest row %g, belt radius %g", fh.Rows[0], fh.BeltR1)
	}
	out := buf.String()
	if !strings.Contains(out, `"param":"boltrow1_h"`) || !strings.Contains(out, `"param":"belt_r1"`) {
		t.Errorf("missing warnings:\n%s", out)
	}
	p = obj3.DefaultFilterHolderParams()
	p.Guides = []string{"MGN7"}
	if _, err := obj3.NewFilterHolder(ctx, p); !errors.Is(err, stage.ErrUnknownMetric) {
		t.Errorf("unknown guide: got %v", err)
	}
	p = obj3.DefaultFilterHolderParams()
	p.FiltSuppIn = 13
	if _, err := obj3.NewFilterHolder(ctx, p); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("closed light opening: got %v", err)
	}
}

func TestBeltPostWire(t *testing.T) {
	for _, test := range []struct {
		r1, r2, s float64
	}{
		{1.5, 3, 5},
		{2, 2, 4},
		{3, 1.5, 5},
		{1, 4, 3.5},
	} {
		w, err := obj3.BeltPostWire(r3.Vec{X: 1, Y: 2}, test.r1, test.r2, test.s, r3.Vec{X: 1}, r3.Vec{Y: 1})
		if err != nil {
			t.Fatal(err)
		}
		beta := math.Asin((test.r2 - test.r1) / test.s)
		tangent := math.Sqrt(test.s*test.s - (test.r1-test.r2)*(test.r1-test.r2))
		want := test.r1*(math.Pi-2*beta) + test.r2*(math.Pi+2*beta) + 2*tangent
		if got := w.Length(); !scalar.EqualWithinAbs(got, want, 1e-9) {
			t.Errorf("%+v: wire length got %g, want %g", test, got, want)
		}
		if !w.Closed() {
			t.Errorf("%+v: wire not closed", test)
		}
		f, err := form3.NewFace(w)
		if err != nil {
			t.Fatal(err)
		}
		post, err := form3.Extrude(f, 2, r3.Vec{Z: 1}, false)
		if err != nil {
			t.Fatal(err)
		}
		c2 := r3.Vec{X: 1 + test.s, Y: 2, Z: 1}
		checkPoints(t, "post", post, []r3.Vec{{X: 1, Y: 2, Z: 1}, c2, r3.Add(c2, r3.Vec{X: test.r2 - 0.05})},
			[]r3.Vec{r3.Add(c2, r3.Vec{X: test.r2 + 0.05}), {X: 1 - test.r1 - 0.05, Y: 2, Z: 1}})
	}
	if _, err := obj3.BeltPostWire(r3.Vec{}, 1, 4, 2, r3.Vec{X: 1}, r3.Vec{Y: 1}); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("nested circles: got %v", err)
	}
}

func TestNemaBracket(t *testing.T) {
	ctx, _ := newContext()
	b, err := obj3.NewNemaBracket(ctx, obj3.DefaultNemaBracketParams())
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name      string
		got, want float64
	}{
		{"tot_w", b.TotW, 2*4 + 42.3 + 2*1},
		{"tot_d", b.TotD, 4 + 42.3 + 2*1},
		{"tot_h", b.TotH, 50},
		{"motor hole", b.HoleR, 15.5},
		{"reinforcement", b.ReinfR, 4 + 42.3 + 2 - 4},
	} {
		if !scalar.EqualWithinAbs(test.got, test.want, tol) {
			t.Errorf("%s got %g, want %g", test.name, test.got, test.want)
		}
	}
	if b.Name != "nema17_bracket" {
		t.Errorf("name %q", b.Name)
	}
	seat := b.MustPosDWH(2, 0, 3)
	mid := r3.Vec{Z: 2.5}
	var in, out []r3.Vec
	for _, c := range [][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		hole := r3.Add(seat, r3.Add(mid, r3.Vec{X: 15.5 * c[0], Y: 15.5 * c[1]}))
		out = append(out, hole)
		in = append(in, r3.Add(hole, r3.Vec{X: 2.5 * c[0]}))
	}
	out = append(out,
		r3.Add(seat, r3.Add(mid, r3.Vec{X: 15})), // motor disc
		r3.Vec{X: 20, Y: 0, Z: 20},               // inner cut
		r3.Vec{X: b.TotD - 1, Y: b.TotW/2 - 2, Z: 1},
	)
	in = append(in,
		r3.Add(seat, r3.Add(mid, r3.Vec{X: 16.5})),
		r3.Vec{X: 6, Y: b.TotW/2 - 2, Z: 40}, // reinforcement
		r3.Vec{X: 2, Y: 0, Z: 20},            // wall
	)
	for _, w := range []int{1, -1} {
		lo, hi := b.MustPosDWH(0, w, 1), b.MustPosDWH(0, w, 2)
		if !scalar.EqualWithinAbs(hi.Z-lo.Z, 30, tol) {
			t.Errorf("slot length %g", hi.Z-lo.Z)
		}
		c := r3.Scale(0.5, r3.Add(lo, hi))
		out = append(out, r3.Add(c, r3.Vec{X: 2}), r3.Add(lo, r3.Vec{X: 2, Z: -2}))
		in = append(in, r3.Add(c, r3.Vec{X: 2, Y: 3.5}), r3.Add(lo, r3.Vec{X: 2, Z: -2.5}))
	}
	checkPoints(t, "bracket", b.Solid, in, out)

	p := obj3.DefaultNemaBracketParams()
	p.NemaSize = 16
	if _, err := obj3.NewNemaBracket(ctx, p); !errors.Is(err, stage.ErrUnknownMetric) {
		t.Errorf("unknown NEMA size: got %v", err)
	}
	p = obj3.DefaultNemaBracketParams()
	p.MinH = 45
	if _, err := obj3.NewNemaBracket(ctx, p); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("inverted slot range: got %v", err)
	}
}

func TestSmallParts(t *testing.T) {
	ctx, doc := newContext()
	builds := []struct {
		name  string
		build func() (*part.Part, error)
		size  r3.Vec // bounding box size
	}{
		{"aluprof_m20", func() (*part.Part, error) {
			return obj3.NewAluProf(ctx, obj3.AluProfParams{W: 20, Length: 50})
		}, r3.Vec{X: 50, Y: 20, Z: 20}},
		{"rail_MGN12H", func() (*part.Part, error) {
			return obj3.NewLinearGuideRail(ctx, obj3.LinearGuideRailParams{Guide: "MGN12H", Length: 100})
		}, r3.Vec{X: 100, Y: 12, Z: 8}},
		{"block_MGN9H", func() (*part.Part, error) {
			return obj3.NewLinearGuideBlock(ctx, obj3.LinearGuideBlockParams{Guide: "MGN9H"})
		}, r3.Vec{X: 39.9, Y: 20, Z: 8}},
		{"shaftholder_m8", func() (*part.Part, error) {
			return obj3.NewShaftHolder(ctx, obj3.DefaultShaftHolderParams())
		}, r3.Vec{}},
		{"bolt_l10_m3", func() (*part.Part, error) { return obj3.NewBolt(ctx, obj3.DefaultBoltParams()) }, r3.Vec{X: 5.5, Y: 5.5, Z: 13}},
		{"nut_m3", func() (*part.Part, error) { return obj3.NewNut(ctx, obj3.NutParams{M: 3}) }, r3.Vec{}},
		{"largewasher_m3", func() (*part.Part, error) {
			return obj3.NewWasher(ctx, obj3.WasherParams{M: 3, Large: true})
		}, r3.Vec{X: 9, Y: 9, Z: 0.8}},
		{"idler_683_m3", func() (*part.Part, error) {
			ip, err := obj3.NewIdlerPulley(ctx, obj3.DefaultIdlerPulleyParams())
			if err != nil {
				return nil, err
			}
			return ip.Part, nil
		}, r3.Vec{X: 9, Y: 9, Z: 7.6}},
		{"gt2_20", func() (*part.Part, error) {
			gp, err := obj3.NewGT2Pulley(ctx, obj3.DefaultGT2PulleyParams())
			if err != nil {
				return nil, err
			}
			return gp.Part, nil
		}, r3.Vec{}},
		{"nema17", func() (*part.Part, error) {
			m, err := obj3.NewNemaMotor(ctx, obj3.DefaultNemaMotorParams())
			if err != nil {
				return nil, err
			}
			return m.Part, nil
		}, r3.Vec{X: 42.3, Y: 42.3, Z: 64}},
	}
	for _, b := range builds {
		p, err := b.build()
		if err != nil {
			t.Errorf("%s: %v", b.name, err)
			continue
		}
		if p.Name != b.name {
			t.Errorf("name got %q, want %q", p.Name, b.name)
		}
		if b.size != (r3.Vec{}) {
			if got := p.Solid.Bounds().Size(); !d3.EqualWithin(got, b.size, 1e-6) {
				t.Errorf("%s: size got %v, want %v", b.name, got, b.size)
			}
		}
		if form3.Volume(p.Solid, 0.5) <= 0 {
			t.Errorf("%s: empty solid", b.name)
		}
	}
	if doc.Len() != len(builds) {
		t.Errorf("%d objects registered, want %d", doc.Len(), len(builds))
	}
	if _, err := obj3.NewLinearGuideRail(ctx, obj3.LinearGuideRailParams{Guide: "MGN12H", Length: 10}); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("short rail: got %v", err)
	}
}

func TestPartMesh(t *testing.T) {
	ctx, _ := newContext()
	tens, err := obj3.NewTensioner(ctx, obj3.DefaultTensionerParams())
	if err != nil {
		t.Fatal(err)
	}
	tris, err := render.Mesh(tens.World(), render.Quality{Cells: 96})
	if err != nil {
		t.Fatal(err)
	}
	want := form3.Volume(tens.Solid, 0.4)
	if got := render.MeshVolume(tris); !scalar.EqualWithinRel(got, want, 0.1) {
		t.Errorf("mesh volume got %g, want %g", got, want)
	}
}
