package filterstage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/stage"
	"github.com/soypat/stage/filterstage"
	"github.com/soypat/stage/internal/d3"
	"github.com/soypat/stage/part"
	"github.com/soypat/stage/scene"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func worldPos(t *testing.T, p *part.Part, d, w, h int) r3.Vec {
	t.Helper()
	v, err := p.WorldPos(d, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestStageAlignment(t *testing.T) {
	for _, test := range []struct {
		name string
		axis [3]float64
		pos  [3]float64
		mov  float64
	}{
		{name: "x", axis: [3]float64{1, 0, 0}, mov: 100},
		{name: "y offset", axis: [3]float64{0, 2, 0}, pos: [3]float64{10, -5, 30}, mov: 150},
		{name: "reversed", axis: [3]float64{-1, 0, 0}, pos: [3]float64{0, 0, -20}, mov: 80},
	} {
		cfg := filterstage.DefaultConfig()
		cfg.BeltW = 6
		cfg.Motor.ShaftL = 24
		cfg.MoveAxis, cfg.Pos, cfg.MovDistance = test.axis, test.pos, test.mov
		doc := scene.New(cfg.Name)
		ctx := part.NewContext(doc)
		st, err := filterstage.New(ctx, cfg)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		idler := worldPos(t, st.Tensioner.Idler.Part, 0, 0, 2)
		pulley := worldPos(t, st.Motor.Pulley.Part, 0, 0, 2)
		clamp := st.FilterHolder.BeltCenter()
		if !scalar.EqualWithinAbs(idler.Z, clamp.Z, 0.01) || !scalar.EqualWithinAbs(pulley.Z, clamp.Z, 0.01) {
			t.Errorf("%s: belt heights idler %g, motor pulley %g, clamp %g", test.name, idler.Z, pulley.Z, clamp.Z)
		}
		if !d3.EqualWithin(idler, st.Tensioner.BeltCenter(), 1e-9) || !d3.EqualWithin(pulley, st.Motor.BeltCenter(), 1e-9) {
			t.Errorf("%s: set belt centers disagree with their pulleys", test.name)
		}
		axis := r3.Unit(r3.Vec{X: test.axis[0], Y: test.axis[1], Z: test.axis[2]})
		got := r3.Dot(axis, r3.Sub(pulley, idler))
		want := cfg.MovDistance + st.FilterHolder.PlateW + cfg.AluprofW
		if !scalar.EqualWithinAbs(got, want, 1e-9) || !scalar.EqualWithinAbs(st.Span(), want, 1e-9) {
			t.Errorf("%s: pulley axes %g apart (span %g), want %g", test.name, got, st.Span(), want)
		}
		origin := r3.Vec{X: test.pos[0], Y: test.pos[1], Z: test.pos[2]}
		if got := st.MustPosDWH(0, 0, 0); !d3.EqualWithin(got, origin, 1e-9) {
			t.Errorf("%s: stage origin %v, want %v", test.name, got, origin)
		}
		// the clamped belt run passes through the clamp.
		lateral := r3.Cross(r3.Vec{Z: 1}, axis)
		if off := r3.Dot(lateral, r3.Sub(clamp, origin)); !scalar.EqualWithinAbs(off, 0, 1e-9) {
			t.Errorf("%s: clamp %g off the belt run", test.name, off)
		}
		if n := len(st.Parts()); doc.Len() != n || n != 16 {
			t.Errorf("%s: %d parts, %d scene objects", test.name, n, doc.Len())
		}
	}
}

func TestStageLayout(t *testing.T) {
	cfg := filterstage.DefaultConfig()
	st, err := filterstage.New(part.NewContext(scene.New(cfg.Name)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	fh := st.FilterHolder
	// carriage at home is centered half a plate and half a profile from the idler axis.
	home := (fh.PlateW + cfg.AluprofW) / 2
	if x := fh.BeltCenter().X; !scalar.EqualWithinAbs(x, home, 1e-9) {
		t.Errorf("carriage home at %g, want %g", x, home)
	}
	// the block bolts to the holder back face, the rail and profile follow.
	blockTop := worldPos(t, st.Block, 0, 0, 3)
	back := worldPos(t, fh.Part, 0, 0, 1)
	if !d3.EqualWithin(blockTop, back, 1e-9) {
		t.Errorf("block top %v, holder bolt pattern center %v", blockTop, back)
	}
	railBottom := worldPos(t, st.Rail, 0, 0, 0)
	if !scalar.EqualWithinAbs(railBottom.Y, back.Y+13, 1e-9) || !scalar.EqualWithinAbs(railBottom.Z, back.Z, 1e-9) {
		t.Errorf("rail bottom %v for holder back %v", railBottom, back)
	}
	face := worldPos(t, st.Profile, 0, 0, -1)
	if !d3.EqualWithin(face, railBottom, 1e-9) {
		t.Errorf("profile face %v, rail bottom %v", face, railBottom)
	}
	front := worldPos(t, st.Motor.Bracket.Part, 3, 0, 0)
	end := worldPos(t, st.Rail, 1, 0, 0)
	if !scalar.EqualWithinAbs(end.X, front.X, 1e-9) {
		t.Errorf("rail ends at %g, bracket front at %g", end.X, front.X)
	}
	// idler and motor sit on the profile side of the clamped run.
	if y := worldPos(t, st.Tensioner.Idler.Part, 0, 0, 0).Y; y <= 0 {
		t.Errorf("idler axis at y %g", y)
	}
	if y := worldPos(t, st.Motor.Pulley.Part, 0, 0, 0).Y; !scalar.EqualWithinAbs(y, st.Motor.Pulley.PitchD/2, 1e-9) {
		t.Errorf("motor axis at y %g", y)
	}
	// the idler end of the tensioner points at the carriage.
	hb := worldPos(t, st.Tensioner.Holder.Part, 0, 0, 0)
	if hb.X >= 0 {
		t.Errorf("holder back face at x %g", hb.X)
	}
}

func TestStageMove(t *testing.T) {
	cfg := filterstage.DefaultConfig()
	doc := scene.New(cfg.Name)
	ctx := part.NewContext(doc)
	st, err := filterstage.New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	before := st.FilterHolder.BeltCenter()
	block := worldPos(t, st.Block, 0, 0, 0)
	idler := worldPos(t, st.Tensioner.Idler.Part, 0, 0, 0)
	if err := st.MoveTo(ctx, cfg.MovDistance); err != nil {
		t.Fatal(err)
	}
	delta := r3.Vec{X: cfg.MovDistance}
	if got := st.FilterHolder.BeltCenter(); !d3.EqualWithin(got, r3.Add(before, delta), 1e-9) {
		t.Errorf("holder moved to %v", got)
	}
	if got := worldPos(t, st.Block, 0, 0, 0); !d3.EqualWithin(got, r3.Add(block, delta), 1e-9) {
		t.Errorf("block moved to %v", got)
	}
	if got := worldPos(t, st.Tensioner.Idler.Part, 0, 0, 0); !d3.EqualWithin(got, idler, 1e-12) {
		t.Error("idler moved with the carriage")
	}
	placed, err := doc.WorldPlacement(st.FilterHolder.ObjectID())
	if err != nil {
		t.Fatal(err)
	}
	if !d3.EqualWithin(placed, st.FilterHolder.Placement(), 1e-9) {
		t.Errorf("scene placement %v, part placement %v", placed, st.FilterHolder.Placement())
	}
	if err := st.MoveTo(ctx, cfg.MovDistance+1); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("move past the travel: got %v", err)
	}

	// grouping keeps world positions.
	if err := st.Group(ctx); err != nil {
		t.Fatal(err)
	}
	if got := st.FilterHolder.BeltCenter(); !d3.EqualWithin(got, r3.Add(before, delta), 1e-9) {
		t.Errorf("grouped holder at %v", got)
	}
	placed, _ = doc.WorldPlacement(st.FilterHolder.ObjectID())
	if !d3.EqualWithin(placed, st.FilterHolder.Placement(), 1e-9) {
		t.Errorf("grouped scene placement %v, part placement %v", placed, st.FilterHolder.Placement())
	}
}

func TestStageRollback(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(*filterstage.Config)
		want   error
		step   string
	}{
		{"nema", func(c *filterstage.Config) { c.Motor.NemaSize = 16 }, stage.ErrUnknownMetric, "motor set"},
		{"short shaft", func(c *filterstage.Config) { c.Motor.ShaftL = 10 }, stage.ErrBadGeometry, "motor set"},
		{"guide", func(c *filterstage.Config) { c.Guide = "MGN7" }, stage.ErrUnknownMetric, "catalog"},
		{"profile", func(c *filterstage.Config) { c.AluprofW = 25 }, stage.ErrUnknownMetric, "tensioner set"},
		{"bearing", func(c *filterstage.Config) { c.Tensioner.Bearing = "609" }, stage.ErrUnknownMetric, "catalog"},
		{"position", func(c *filterstage.Config) { c.Position = -1 }, stage.ErrBadGeometry, "config"},
	} {
		cfg := filterstage.DefaultConfig()
		test.modify(&cfg)
		doc := scene.New(cfg.Name)
		_, err := filterstage.New(part.NewContext(doc), cfg)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
			continue
		}
		var be *stage.BuildError
		if !errors.As(err, &be) || be.Part != cfg.Name || be.Step != test.step {
			t.Errorf("%s: build error %+v", test.name, be)
		}
		if doc.Len() != 0 {
			t.Errorf("%s: %d objects left registered", test.name, doc.Len())
		}
	}
}

func TestTensionerSet(t *testing.T) {
	doc := scene.New("doc")
	ctx := part.NewContext(doc)
	p := filterstage.DefaultTensionerSetParams()
	pos := r3.Vec{X: 5, Y: -2, Z: 40}
	p.Placement = p.Placement.At(1, 0, 1, pos)
	ts, err := filterstage.NewTensionerSet(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if got := ts.BeltCenter(); !d3.EqualWithin(got, pos, 1e-9) {
		t.Errorf("belt center %v, want %v", got, pos)
	}
	if got := worldPos(t, ts.Idler.Part, 0, 0, 2); !d3.EqualWithin(got, pos, 1e-9) {
		t.Errorf("idler belt center %v, want %v", got, pos)
	}
	// belt bottom sits at the holder belt height.
	beltH := r3.Dot(r3.Vec{Z: 1}, ts.MustOToH(1))
	seat := float64(p.Idler.NBearings) * ts.Idler.Bearing.T
	if !scalar.EqualWithinAbs(beltH, p.Holder.BeltPosH+seat/2, 1e-9) {
		t.Errorf("belt center %g over the holder bottom, want %g", beltH, p.Holder.BeltPosH+seat/2)
	}
	if got := worldPos(t, ts.Idler.Part, 0, 0, 1).Z - worldPos(t, ts.Holder.Part, 0, 0, 0).Z; !scalar.EqualWithinAbs(got, p.Holder.BeltPosH, 1e-9) {
		t.Errorf("belt bottom %g over the holder bottom", got)
	}
	// tensioner back face is Gap past the pocket start.
	back := worldPos(t, ts.Tensioner.Part, 0, 0, 0)
	pocket := worldPos(t, ts.Holder.Part, 1, 0, 0)
	if !scalar.EqualWithinAbs(back.X-pocket.X, p.Gap, 1e-9) {
		t.Errorf("tensioner %g past the pocket start, want %g", back.X-pocket.X, p.Gap)
	}
	// bolt head rests on the back face, the nut at the tensioner nut pocket.
	if got, want := worldPos(t, ts.Bolt, 0, 0, 1), worldPos(t, ts.Holder.Part, 0, 0, 3); !d3.EqualWithin(got, want, 1e-9) {
		t.Errorf("bolt head bottom %v, want %v", got, want)
	}
	nut := worldPos(t, ts.Nut, 0, 0, 0)
	tip := worldPos(t, ts.Bolt, 0, 0, 2)
	if tip.X < nut.X || tip.X > worldPos(t, ts.Tensioner.Part, 2, 0, 0).X {
		t.Errorf("bolt tip at x %g, nut at %g", tip.X, nut.X)
	}
	if doc.Len() != 5 || len(ts.Parts()) != 5 {
		t.Errorf("%d objects registered", doc.Len())
	}

	p.Gap = p.Holder.Tensioner.Stroke + 1
	if _, err := filterstage.NewTensionerSet(ctx, p); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("gap past the stroke: got %v", err)
	}
	p = filterstage.DefaultTensionerSetParams()
	p.Idler.NBearings = 3
	if _, err := filterstage.NewTensionerSet(ctx, p); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("idler stack over the cavity: got %v", err)
	}
	if doc.Len() != 5 {
		t.Errorf("failed sets left %d objects", doc.Len()-5)
	}
}

func TestMotorPulleySet(t *testing.T) {
	doc := scene.New("doc")
	ctx := part.NewContext(doc)
	p := filterstage.DefaultMotorPulleySetParams()
	ms, err := filterstage.NewMotorPulleySet(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	b := ms.Bracket
	// belt center over the top face: gap, hub, flange and half the teeth.
	pl := ms.Pulley.Pulley
	want := b.TotH + p.PulleyGap + pl.HubH + pl.FlangeT + pl.ToothH/2
	if got := ms.BeltCenter().Z; !scalar.EqualWithinAbs(got, want, 1e-9) {
		t.Errorf("belt center at %g, want %g", got, want)
	}
	if got, want := ms.BeltCenter().X, b.MustOToD(2).X; !scalar.EqualWithinAbs(got, want, 1e-9) {
		t.Errorf("motor axis at %g, want %g", got, want)
	}
	face := worldPos(t, ms.Motor.Part, 0, 0, 0)
	if !d3.EqualWithin(face, worldPos(t, b.Part, 2, 0, 3), 1e-9) {
		t.Errorf("motor face at %v", face)
	}
	if ms.Pulley.Bore != ms.Motor.ShaftD {
		t.Errorf("pulley bore %g on a %g shaft", ms.Pulley.Bore, ms.Motor.ShaftD)
	}
	if len(ms.Bolts) != 4 || doc.Len() != 7 {
		t.Errorf("%d bolts, %d objects", len(ms.Bolts), doc.Len())
	}
	for _, bolt := range ms.Bolts {
		if head := worldPos(t, bolt, 0, 0, 1); !scalar.EqualWithinAbs(head.Z, b.TotH, 1e-9) {
			t.Errorf("bolt head bottom at %g", head.Z)
		}
	}

	for _, test := range []struct {
		name   string
		modify func(*filterstage.MotorPulleySetParams)
		want   error
	}{
		{"short shaft", func(p *filterstage.MotorPulleySetParams) { p.Motor.ShaftL = 10 }, stage.ErrBadGeometry},
		{"long body", func(p *filterstage.MotorPulleySetParams) { p.Motor.BodyL = 60 }, stage.ErrBadGeometry},
		{"gap", func(p *filterstage.MotorPulleySetParams) { p.PulleyGap = -1 }, stage.ErrBadGeometry},
		{"teeth", func(p *filterstage.MotorPulleySetParams) { p.Pulley.Teeth = 18 }, stage.ErrUnknownMetric},
	} {
		p := filterstage.DefaultMotorPulleySetParams()
		test.modify(&p)
		if _, err := filterstage.NewMotorPulleySet(ctx, p); !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
		}
		if doc.Len() != 7 {
			t.Errorf("%s: %d objects left", test.name, doc.Len()-7)
		}
	}
}

func TestParseConfig(t *testing.T) {
	def := filterstage.DefaultConfig()
	cfg, err := filterstage.ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != def {
		t.Errorf("empty document changed the defaults: %+v", cfg)
	}

	cfg, err = filterstage.ParseConfig([]byte(`
name: bench
mov_distance: 80
move_axis: [0, 1, 0]
motor:
  shaft_l: 30
tensioner:
  chamfer_all: true
`))
	if err != nil {
		t.Fatal(err)
	}
	want := def
	want.Name = "bench"
	want.MovDistance = 80
	want.MoveAxis = [3]float64{0, 1, 0}
	want.Motor.ShaftL = 30
	want.Tensioner.ChamferAll = true
	if cfg != want {
		t.Errorf("got %+v\nwant %+v", cfg, want)
	}

	for _, test := range []struct {
		name string
		doc  string
		kind error
	}{
		{"unknown field", "movdistance: 3\n", nil},
		{"unknown nested field", "motor:\n  shaft: 3\n", nil},
		{"vertical axis", "move_axis: [0, 0, 1]\n", stage.ErrBadGeometry},
		{"position", "mov_distance: 50\nposition: 60\n", stage.ErrBadGeometry},
		{"deflection", "output:\n  lin_deflection: 1\n", stage.ErrBadGeometry},
		{"gap", "tensioner:\n  gap: 20\n", stage.ErrBadGeometry},
	} {
		_, err := filterstage.ParseConfig([]byte(test.doc))
		if err == nil {
			t.Errorf("%s: accepted", test.name)
			continue
		}
		if test.kind != nil && !errors.Is(err, test.kind) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.kind)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte("belt_w: 9\nmotor:\n  nema_size: 23\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := filterstage.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BeltW != 9 || cfg.Motor.NemaSize != 23 || cfg.Motor.ShaftL != 24 {
		t.Errorf("loaded %+v", cfg)
	}
	p := cfg.MotorPulleySetParams()
	if p.Pulley.BeltW != 9 || p.Bracket.NemaSize != 23 {
		t.Errorf("motor set params %+v", p)
	}
	if fp := cfg.FilterHolderParams(); fp.BeltW != 9 || len(fp.Guides) != 2 {
		t.Errorf("filter holder params %+v", fp)
	}
	if _, err := filterstage.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
