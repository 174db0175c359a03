package stage

import (
	"errors"
	"runtime"
	"testing"

	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func testFrame(t *testing.T) Frame {
	t.Helper()
	f, err := NewFrame(r3.Vec{X: 2}, r3.Vec{Y: 1}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	f.CenW, f.CenH = true, true
	f.SetD(4, 10.4, 30.4, 34.4, 40.4)
	f.SetW(-6)
	f.SetH(-5, -8)
	return f
}

func TestNewFrame(t *testing.T) {
	f := testFrame(t)
	if f.AxisD != (r3.Vec{X: 1}) {
		t.Errorf("axis d not normalized: %v", f.AxisD)
	}
	if f.AxisH != (r3.Vec{Z: 1}) {
		t.Errorf("axis h = %v, want d x w", f.AxisH)
	}
	if err := f.Validate(); err != nil {
		t.Error(err)
	}
	if _, err := NewFrame(r3.Vec{X: 1}, r3.Vec{X: -3}, r3.Vec{}); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("parallel axes: got %v, want ErrBadGeometry", err)
	}
	left := Frame{AxisD: r3.Vec{X: 1}, AxisW: r3.Vec{Y: 1}, AxisH: r3.Vec{Z: -1}}
	if err := left.Validate(); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("left handed basis: got %v, want ErrBadGeometry", err)
	}
}

func TestFrameLookup(t *testing.T) {
	f := testFrame(t)
	for _, test := range []struct {
		name string
		got  func() (r3.Vec, error)
		want r3.Vec
		err  error
	}{
		{"d0", func() (r3.Vec, error) { return f.OToD(0) }, r3.Vec{}, nil},
		{"d3", func() (r3.Vec, error) { return f.OToD(3) }, r3.Vec{X: 30.4}, nil},
		{"d-1", func() (r3.Vec, error) { return f.OToD(-1) }, r3.Vec{}, ErrBadIndex},
		{"d6", func() (r3.Vec, error) { return f.OToD(6) }, r3.Vec{}, ErrBadIndex},
		{"w1", func() (r3.Vec, error) { return f.OToW(1) }, r3.Vec{Y: -6}, nil},
		{"w-1", func() (r3.Vec, error) { return f.OToW(-1) }, r3.Vec{Y: 6}, nil},
		{"h-2", func() (r3.Vec, error) { return f.OToH(-2) }, r3.Vec{Z: 8}, nil},
		{"h-3", func() (r3.Vec, error) { return f.OToH(-3) }, r3.Vec{}, ErrBadIndex},
		{"dab", func() (r3.Vec, error) { return f.DAB(1, 4) }, r3.Vec{X: 30.4}, nil},
		{"hab", func() (r3.Vec, error) { return f.HAB(2, -2) }, r3.Vec{Z: 16}, nil},
	} {
		got, err := test.got()
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.err)
			continue
		}
		if err == nil && !d3.EqualWithin(got, test.want, tol) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestFrameAxisUndefined(t *testing.T) {
	f, err := NewFrame(r3.Vec{X: 1}, r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	f.SetW(3)
	if _, err := f.OToW(0); err != nil {
		t.Errorf("index 0 on undefined axis: %v", err)
	}
	if _, err := f.OToW(1); !errors.Is(err, ErrAxisUndefined) {
		t.Errorf("got %v, want ErrAxisUndefined", err)
	}
}

func TestFrameCenteredMirror(t *testing.T) {
	f := testFrame(t)
	for n := 0; n < len(f.H); n++ {
		p, _ := f.OToH(n)
		m, _ := f.OToH(-n)
		z, _ := f.OToH(0)
		if !d3.EqualWithin(r3.Add(p, m), r3.Scale(2, z), tol) {
			t.Errorf("h index %d: %v + %v != 2*%v", n, p, m, z)
		}
		// stored entries are returned as given, negative ones included.
		if !d3.EqualWithin(p, f.VecH(f.H[n]), tol) || !d3.EqualWithin(m, f.VecH(-f.H[n]), tol) {
			t.Errorf("h index %d: got %v and %v, want %g stored", n, p, m, f.H[n])
		}
	}
}

func TestFrameAnchor(t *testing.T) {
	pos := r3.Vec{X: 10, Y: -3, Z: 7}
	for _, adjust := range []bool{false, true} {
		for d := 0; d < 6; d++ {
			for w := -1; w <= 1; w++ {
				for h := -2; h <= 2; h++ {
					f := testFrame(t)
					f.Pos = pos
					f.PosD, f.PosW, f.PosH = d, w, h
					if err := f.SetPosO(adjust); err != nil {
						t.Fatal(err)
					}
					got := f.MustPosDWH(d, w, h)
					if !d3.EqualWithin(got, pos, tol) {
						t.Errorf("anchor (%d,%d,%d) adjust=%v: got %v, want %v", d, w, h, adjust, got, pos)
					}
					if adjust && !d3.IsZero(f.PosO) {
						t.Errorf("adjusted frame PosO = %v, want zero", f.PosO)
					}
				}
			}
		}
	}
	f := testFrame(t)
	f.PosD = 9
	if err := f.SetPosO(false); !errors.Is(err, ErrBadIndex) {
		t.Errorf("got %v, want ErrBadIndex", err)
	}
}

func TestRecover(t *testing.T) {
	build := func(fail int) (err error) {
		var step string
		defer Recover("bracket", &step, &err)
		step = "box"
		if fail == 1 {
			f := Frame{}
			f.MustOToD(3)
		}
		step = "holes"
		if fail == 2 {
			panic("kernel exploded")
		}
		if fail == 3 {
			return ErrBadGeometry
		}
		if fail == 4 {
			var tables []float64
			_ = tables[fail]
		}
		return nil
	}
	if err := build(0); err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		fail int
		step string
		kind error
	}{
		{1, "box", ErrAxisUndefined},
		{2, "holes", ErrKernelFailure},
		{3, "holes", ErrBadGeometry},
		{4, "holes", ErrKernelFailure},
	} {
		err := build(test.fail)
		var be *BuildError
		if !errors.As(err, &be) {
			t.Fatalf("got %T, want *BuildError", err)
		}
		if be.Part != "bracket" || be.Step != test.step {
			t.Errorf("got part %q step %q, want bracket %q", be.Part, be.Step, test.step)
		}
		if !errors.Is(err, test.kind) {
			t.Errorf("got %v, want %v", err, test.kind)
		}
	}
	// runtime panics keep their cause behind the kernel failure.
	var re runtime.Error
	if err := build(4); !errors.As(err, &re) {
		t.Errorf("got %v, want a runtime.Error cause", err)
	}
}

func TestColor(t *testing.T) {
	if err := DefaultColor.Valid(); err != nil {
		t.Error(err)
	}
	if err := (Color{R: 1.2}).Valid(); !errors.Is(err, ErrBadGeometry) {
		t.Errorf("got %v, want ErrBadGeometry", err)
	}
	if got := Orange.Hex(); got != "#ff8000" {
		t.Errorf("got %s, want #ff8000", got)
	}
}
