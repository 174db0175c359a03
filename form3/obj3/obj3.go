// Package obj3 is the library of filter stage parts. Every builder takes a
// parameter struct, derives its dimensions from the catalog, fills the named
// point tables of the part frame and builds the solid from those points.
// Built parts are registered into the context scene only when the build
// succeeds.
package obj3

import (
	"fmt"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// xtr is the extra length cutting tools are given past the faces they cut
// through so booleans leave no skin.
const xtr = 1.0

// CylinderStyle is the shape of a bolt head or a nut.
type CylinderStyle int

const (
	_ CylinderStyle = iota
	CylinderCircular
	CylinderHex
)

func (c CylinderStyle) String() (str string) {
	switch c {
	case CylinderCircular:
		str = "circular"
	case CylinderHex:
		str = "hex"
	default:
		str = "unknown"
	}
	return str
}

// Placement locates a part: its axes, the named point Pos refers to and Pos
// itself. A zero AxisD is X, a zero AxisW is Y and a zero AxisH is d × w.
type Placement struct {
	AxisD, AxisW, AxisH r3.Vec
	PosD, PosW, PosH    int // named point of the part at Pos
	Pos                 r3.Vec
}

// At returns pl anchored at named point (d, w, h) placed at pos.
func (pl Placement) At(d, w, h int, pos r3.Vec) Placement {
	pl.PosD, pl.PosW, pl.PosH = d, w, h
	pl.Pos = pos
	return pl
}

// frame returns the frame of pl with the given centering flags. Tables are
// filled by the caller before anchor is called.
func (pl Placement) frame(cenD, cenW, cenH bool) stage.Frame {
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

// anchor computes the local origin of f from the anchor of pl.
func (pl Placement) anchor(f *stage.Frame) {
	f.Pos = pl.Pos
	f.PosD, f.PosW, f.PosH = pl.PosD, pl.PosW, pl.PosH
	stage.Must(f.SetPosO(false))
}

// pt returns the build position of the point at signed distances d, w and h
// from the local origin of f.
func pt(f *stage.Frame, d, w, h float64) r3.Vec {
	return r3.Add(f.PosO, f.VecDWH(d, w, h))
}

// boxAlong returns box parameters directed along the axes of f.
func boxAlong(f *stage.Frame, size r3.Vec, pos r3.Vec) form3.BoxParams {
	return form3.BoxParams{Size: size, AxisD: f.AxisD, AxisW: f.AxisW, AxisH: f.AxisH, Pos: pos}
}

func must(s form3.Solid, err error) form3.Solid {
	if err != nil {
		panic(err)
	}
	return s
}

func badParam(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{stage.ErrBadGeometry}, args...)...)
}

func positive(name string, v float64) {
	if v <= 0 {
		panic(badParam("%s %g <= 0", name, v))
	}
}
