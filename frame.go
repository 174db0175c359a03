// Package stage models the parts of a belt driven filter stage from a few
// driving parameters. This package holds the axis frame every part and part
// set is positioned with, the error kinds shared by all builders and part
// display colors.
package stage

import (
	"fmt"
	"math"

	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitTol is the tolerance used when checking basis vectors.
const unitTol = 1e-9

// Frame is a local basis (d, w, h) with named points along each axis.
//
// The named point tables hold signed distances along their axis measured
// from the local origin. Index 0 is the reference point of the table and is
// always zero. On a centered axis index 0 is the centroid and the negative
// index -i is the mirror of i across it. On a non-centered axis index 0 is one
// end and negative indices are invalid.
//
// A positive index always returns its stored entry, sign included, so a
// centered table storing -H/2 at index 2 names the bottom face at 2 and the
// top face at -2.
type Frame struct {
	AxisD, AxisW, AxisH r3.Vec

	D, W, H []float64 // named point tables, D[0] == W[0] == H[0] == 0

	CenD, CenW, CenH bool // index 0 is the centroid of the axis

	Pos              r3.Vec // placement reference given by caller
	PosD, PosW, PosH int    // named point that Pos refers to

	// PosO is the world position of the local origin.
	PosO r3.Vec
	// PosOAdjust is the offset re-applied on placement for shapes built at the
	// world origin instead of PosO.
	PosOAdjust r3.Vec
}

// NewFrame returns a frame with the given axes normalized. When h is the zero
// vector and both d and w are given it is computed as d × w. Any axis may be
// left as the zero vector if the part does not use it.
func NewFrame(d, w, h r3.Vec) (Frame, error) {
	if d3.IsZero(h) && !d3.IsZero(d) && !d3.IsZero(w) {
		h = r3.Cross(d, w)
		if d3.IsZero(h) {
			return Frame{}, fmt.Errorf("%w: axis d and w are parallel", ErrBadGeometry)
		}
	}
	f := Frame{
		AxisD: unit(d),
		AxisW: unit(w),
		AxisH: unit(h),
		D:     []float64{0},
		W:     []float64{0},
		H:     []float64{0},
	}
	return f, nil
}

func unit(v r3.Vec) r3.Vec {
	if d3.IsZero(v) {
		return v
	}
	return r3.Unit(v)
}

// Validate checks all defined axes are unit vectors, mutually orthogonal and
// when all three are defined, that they form a right handed basis.
func (f *Frame) Validate() error {
	axes := [3]r3.Vec{f.AxisD, f.AxisW, f.AxisH}
	n := 0
	for _, a := range axes {
		if d3.IsZero(a) {
			continue
		}
		n++
		if !scalar.EqualWithinAbs(r3.Norm(a), 1, unitTol) {
			return fmt.Errorf("%w: axis %v not unit length", ErrBadGeometry, a)
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if dot := r3.Dot(axes[i], axes[j]); math.Abs(dot) > unitTol {
				return fmt.Errorf("%w: axes %v and %v not orthogonal", ErrBadGeometry, axes[i], axes[j])
			}
		}
	}
	if n == 3 {
		m := r3.NewMat([]float64{
			f.AxisD.X, f.AxisW.X, f.AxisH.X,
			f.AxisD.Y, f.AxisW.Y, f.AxisH.Y,
			f.AxisD.Z, f.AxisW.Z, f.AxisH.Z,
		})
		if m.Det() <= 0 {
			return fmt.Errorf("%w: basis d, w, h is left handed", ErrBadGeometry)
		}
	}
	for name, t := range map[string][]float64{"d": f.D, "w": f.W, "h": f.H} {
		if len(t) > 0 && t[0] != 0 {
			return fmt.Errorf("%w: %s table index 0 is %g, want 0", ErrBadGeometry, name, t[0])
		}
	}
	return nil
}

// SetD replaces the d table with {0, offsets...}. Same for SetW and SetH.
func (f *Frame) SetD(offsets ...float64) { f.D = append([]float64{0}, offsets...) }
func (f *Frame) SetW(offsets ...float64) { f.W = append([]float64{0}, offsets...) }
func (f *Frame) SetH(offsets ...float64) { f.H = append([]float64{0}, offsets...) }

// VecD returns x times the d axis. VecW and VecH work the same way.
func (f *Frame) VecD(x float64) r3.Vec { return r3.Scale(x, f.AxisD) }
func (f *Frame) VecW(x float64) r3.Vec { return r3.Scale(x, f.AxisW) }
func (f *Frame) VecH(x float64) r3.Vec { return r3.Scale(x, f.AxisH) }

// VecDWH returns the sum of the scaled axes.
func (f *Frame) VecDWH(d, w, h float64) r3.Vec {
	return r3.Add(f.VecD(d), r3.Add(f.VecW(w), f.VecH(h)))
}

// lookup resolves index i of table t to a signed distance along its axis.
func lookup(name string, t []float64, centered bool, axis r3.Vec, i int) (float64, error) {
	if i == 0 {
		return 0, nil
	}
	if d3.IsZero(axis) {
		return 0, fmt.Errorf("%w: %s axis lookup of index %d", ErrAxisUndefined, name, i)
	}
	j := i
	if i < 0 {
		if !centered {
			return 0, fmt.Errorf("%w: negative %s index %d on non-centered axis", ErrBadIndex, name, i)
		}
		j = -i
	}
	if j >= len(t) {
		return 0, fmt.Errorf("%w: %s index %d not in table of %d points", ErrBadIndex, name, i, len(t))
	}
	if i < 0 {
		// mirror across index 0
		return 2*t[0] - t[j], nil
	}
	return t[j], nil
}

// OToD returns the vector from the local origin to the i-th named point on
// the d axis.
func (f *Frame) OToD(i int) (r3.Vec, error) {
	x, err := lookup("d", f.D, f.CenD, f.AxisD, i)
	return f.VecD(x), err
}

// OToW returns the vector from the local origin to the i-th named point on
// the w axis.
func (f *Frame) OToW(i int) (r3.Vec, error) {
	x, err := lookup("w", f.W, f.CenW, f.AxisW, i)
	return f.VecW(x), err
}

// OToH returns the vector from the local origin to the i-th named point on
// the h axis.
func (f *Frame) OToH(i int) (r3.Vec, error) {
	x, err := lookup("h", f.H, f.CenH, f.AxisH, i)
	return f.VecH(x), err
}

// Offset returns the vector from the local origin to the named point (d, w, h).
func (f *Frame) Offset(d, w, h int) (r3.Vec, error) {
	vd, err := f.OToD(d)
	if err != nil {
		return r3.Vec{}, err
	}
	vw, err := f.OToW(w)
	if err != nil {
		return r3.Vec{}, err
	}
	vh, err := f.OToH(h)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Add(vd, r3.Add(vw, vh)), nil
}

// DAB returns the vector from named point a to named point b on the d axis.
func (f *Frame) DAB(a, b int) (r3.Vec, error) {
	va, err := f.OToD(a)
	if err != nil {
		return r3.Vec{}, err
	}
	vb, err := f.OToD(b)
	return r3.Sub(vb, va), err
}

// WAB returns the vector from named point a to named point b on the w axis.
func (f *Frame) WAB(a, b int) (r3.Vec, error) {
	va, err := f.OToW(a)
	if err != nil {
		return r3.Vec{}, err
	}
	vb, err := f.OToW(b)
	return r3.Sub(vb, va), err
}

// HAB returns the vector from named point a to named point b on the h axis.
func (f *Frame) HAB(a, b int) (r3.Vec, error) {
	va, err := f.OToH(a)
	if err != nil {
		return r3.Vec{}, err
	}
	vb, err := f.OToH(b)
	return r3.Sub(vb, va), err
}

// SetPosO computes the world position of the local origin from Pos and the
// anchor (PosD, PosW, PosH). With adjust set, the origin offset is recorded in
// PosOAdjust and PosO is left at zero: the shape is built around the world
// origin and moved into place when placed into the scene.
func (f *Frame) SetPosO(adjust bool) error {
	off, err := f.Offset(f.PosD, f.PosW, f.PosH)
	if err != nil {
		return err
	}
	o := r3.Sub(f.Pos, off)
	if adjust {
		f.PosOAdjust = o
		f.PosO = r3.Vec{}
	} else {
		f.PosOAdjust = r3.Vec{}
		f.PosO = o
	}
	return nil
}

// Origin returns the world position of the local origin, including any
// recorded adjustment.
func (f *Frame) Origin() r3.Vec { return r3.Add(f.PosO, f.PosOAdjust) }

// PosAtD returns the world position of the i-th named point on the d axis.
func (f *Frame) PosAtD(i int) (r3.Vec, error) {
	v, err := f.OToD(i)
	return r3.Add(f.Origin(), v), err
}

// PosAtW returns the world position of the i-th named point on the w axis.
func (f *Frame) PosAtW(i int) (r3.Vec, error) {
	v, err := f.OToW(i)
	return r3.Add(f.Origin(), v), err
}

// PosAtH returns the world position of the i-th named point on the h axis.
func (f *Frame) PosAtH(i int) (r3.Vec, error) {
	v, err := f.OToH(i)
	return r3.Add(f.Origin(), v), err
}

// PosDWH returns the world position of the named point (d, w, h).
func (f *Frame) PosDWH(d, w, h int) (r3.Vec, error) {
	v, err := f.Offset(d, w, h)
	return r3.Add(f.Origin(), v), err
}

// Local returns the position of named point (d, w, h) relative to the shape
// origin used during construction, PosO. Builders place primitives with it.
func (f *Frame) Local(d, w, h int) (r3.Vec, error) {
	v, err := f.Offset(d, w, h)
	return r3.Add(f.PosO, v), err
}

// Panicking variants for use inside builders that defer Recover.

func (f *Frame) MustOToD(i int) r3.Vec { return must(f.OToD(i)) }
func (f *Frame) MustOToW(i int) r3.Vec { return must(f.OToW(i)) }
func (f *Frame) MustOToH(i int) r3.Vec { return must(f.OToH(i)) }

func (f *Frame) MustDAB(a, b int) r3.Vec { return must(f.DAB(a, b)) }
func (f *Frame) MustWAB(a, b int) r3.Vec { return must(f.WAB(a, b)) }
func (f *Frame) MustHAB(a, b int) r3.Vec { return must(f.HAB(a, b)) }

func (f *Frame) MustPosDWH(d, w, h int) r3.Vec { return must(f.PosDWH(d, w, h)) }

// MustLocal panics if (d, w, h) is not a named point of f.
func (f *Frame) MustLocal(d, w, h int) r3.Vec { return must(f.Local(d, w, h)) }

func must(v r3.Vec, err error) r3.Vec {
	if err != nil {
		panic(err)
	}
	return v
}
