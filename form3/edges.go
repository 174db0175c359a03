package form3

import (
	"math"

	"github.com/soypat/stage/form3/must3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge sampling constants.
const (
	sampleDist = 1e-3 // distance of the quadrant samples from the edge
	marchStep  = 0.2  // step used when following an edge
	bisectTol  = 1e-4
	lengthTol  = 1e-3 // tolerance when matching edges by length
)

type edgeOp int

const (
	opChamfer edgeOp = iota
	opFillet
)

// FilletPoints rounds with radius r each edge parallel to axis that passes
// through one of pts. Convex edges lose material, concave edges gain it.
func FilletPoints(s Solid, axis r3.Vec, pts []r3.Vec, r float64) (Solid, error) {
	return edgePoints(opFillet, s, axis, pts, r)
}

// ChamferPoints bevels with legs of length r each edge parallel to axis that
// passes through one of pts.
func ChamferPoints(s Solid, axis r3.Vec, pts []r3.Vec, r float64) (Solid, error) {
	return edgePoints(opChamfer, s, axis, pts, r)
}

// FilletLength rounds the tracked edges of s parallel to axis whose length is
// length. If keep is not nil only edges for which it returns true are used.
// It fails if no edge of s matches.
func FilletLength(s Solid, length float64, axis r3.Vec, r float64, keep func(Edge) bool) (Solid, error) {
	return edgeLength(opFillet, s, length, axis, r, keep)
}

// ChamferLength bevels the tracked edges of s parallel to axis whose length
// is length. See FilletLength.
func ChamferLength(s Solid, length float64, axis r3.Vec, r float64, keep func(Edge) bool) (Solid, error) {
	return edgeLength(opChamfer, s, length, axis, r, keep)
}

// HasEdge reports whether an edge of s parallel to axis passes through p.
func HasEdge(s Solid, axis, p r3.Vec) bool {
	if s.IsEmpty() || d3.IsZero(axis) {
		return false
	}
	e1, e2 := d3.Perpendicular(r3.Unit(axis))
	_, ok := classify(s, p, e1, e2)
	return ok
}

func edgePoints(op edgeOp, s Solid, axis r3.Vec, pts []r3.Vec, r float64) (out Solid, err error) {
	defer catch(&err)
	if s.IsEmpty() {
		return s, badGeometry("edge operation on empty solid")
	}
	if r <= 0 {
		return s, badGeometry("edge radius %g <= 0", r)
	}
	if d3.IsZero(axis) {
		return s, badGeometry("edge axis undefined")
	}
	if len(pts) == 0 {
		return s, badGeometry("no edge points given")
	}
	for _, p := range pts {
		s, err = edgeAt(op, s, r3.Unit(axis), p, r)
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func edgeLength(op edgeOp, s Solid, length float64, axis r3.Vec, r float64, keep func(Edge) bool) (out Solid, err error) {
	defer catch(&err)
	if d3.IsZero(axis) {
		return s, badGeometry("edge axis undefined")
	}
	if r <= 0 {
		return s, badGeometry("edge radius %g <= 0", r)
	}
	axis = r3.Unit(axis)
	var mids []r3.Vec
	for _, e := range s.edges {
		if math.Abs(e.Length()-length) > lengthTol || !d3.Parallel(e.Dir(), axis, 1e-6) {
			continue
		}
		if keep != nil && !keep(e) {
			continue
		}
		m := e.Mid()
		dup := false
		for _, q := range mids {
			dup = dup || d3.EqualWithin(m, q, lengthTol)
		}
		if !dup {
			mids = append(mids, m)
		}
	}
	applied := 0
	for _, m := range mids {
		e1, e2 := d3.Perpendicular(axis)
		if _, ok := classify(s, m, e1, e2); !ok {
			// edge was removed or buried by a later boolean.
			continue
		}
		s, err = edgeAt(op, s, axis, m, r)
		if err != nil {
			return s, err
		}
		applied++
	}
	if applied == 0 {
		return s, badGeometry("no edge of length %g along %v", length, axis)
	}
	return s, nil
}

// corner describes the material around an edge: x and y point into the odd
// quadrant, which holds material for a convex edge and is empty for a
// concave one.
type corner struct {
	x, y    r3.Vec
	convex  bool
	pattern [4]bool
}

var quadrants = [4][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}

func sampleQuadrants(s Solid, p, e1, e2 r3.Vec) (in [4]bool) {
	for i, q := range quadrants {
		in[i] = s.Contains(r3.Add(p, r3.Scale(sampleDist, r3.Add(r3.Scale(q[0], e1), r3.Scale(q[1], e2)))))
	}
	return in
}

// classify samples the four quadrants around the line through p spanned by
// e1 x e2. It reports false if p does not lie on an edge.
func classify(s Solid, p, e1, e2 r3.Vec) (corner, bool) {
	in := sampleQuadrants(s, p, e1, e2)
	n := 0
	for _, b := range in {
		if b {
			n++
		}
	}
	if n != 1 && n != 3 {
		return corner{}, false
	}
	odd := -1
	for i, b := range in {
		if b == (n == 1) {
			odd = i
		}
	}
	q := quadrants[odd]
	return corner{
		x:       r3.Scale(q[0], e1),
		y:       r3.Scale(q[1], e2),
		convex:  n == 1,
		pattern: in,
	}, true
}

func edgeAt(op edgeOp, s Solid, axis, p r3.Vec, r float64) (Solid, error) {
	e1, e2 := d3.Perpendicular(axis)
	c, ok := classify(s, p, e1, e2)
	if !ok {
		return s, badGeometry("no edge along %v through %v", axis, p)
	}
	// the faces next to the edge must be at least r wide.
	side := 1.0
	if !c.convex {
		side = -1
	}
	reach := 0.99 * r
	if !s.Contains(r3.Add(p, r3.Add(r3.Scale(reach, c.x), r3.Scale(side*sampleDist, c.y)))) ||
		!s.Contains(r3.Add(p, r3.Add(r3.Scale(side*sampleDist, c.x), r3.Scale(reach, c.y)))) {
		return s, badGeometry("edge radius %g larger than face at %v", r, p)
	}
	z := r3.Cross(c.x, c.y)
	diag := r3.Norm(s.Bounds().Size())
	hi, extHi := edgeEnd(s, p, z, e1, e2, c, diag)
	lo, extLo := edgeEnd(s, p, r3.Scale(-1, z), e1, e2, c, diag)
	lo = -lo
	ext := 0.1 * r
	if extHi {
		hi += r
	}
	if extLo {
		lo -= r
	}
	center := r3.Add(p, r3.Scale((lo+hi)/2, z))
	length := hi - lo
	var cutter Solid
	switch op {
	case opChamfer:
		cutter = Solid{s: must3.Orient(must3.ChamferCutter(r, length, ext), c.x, c.y, z, center)}
	case opFillet:
		cutter = Solid{s: must3.Orient(must3.FilletCutter(r, length, ext), c.x, c.y, z, center)}
	}
	if c.convex {
		return Difference(s, cutter), nil
	}
	// filler edges are not part of the solid outline.
	return Solid{s: Union(s, cutter).s, edges: s.edges}, nil
}

// edgeEnd follows the edge from p along dir until the material pattern
// around it changes. It returns the distance to the end and whether the
// cutter may run past it, which is the case when the edge ends in free
// space for a convex edge or in material for a concave one.
func edgeEnd(s Solid, p, dir, e1, e2 r3.Vec, c corner, max float64) (float64, bool) {
	same := func(t float64) bool {
		return sampleQuadrants(s, r3.Add(p, r3.Scale(t, dir)), e1, e2) == c.pattern
	}
	good, bad := 0.0, -1.0
	for t := marchStep; t <= max+marchStep; t += marchStep {
		if !same(t) {
			bad = t
			break
		}
		good = t
	}
	if bad < 0 {
		return good, true
	}
	for bad-good > bisectTol {
		m := (good + bad) / 2
		if same(m) {
			good = m
		} else {
			bad = m
		}
	}
	beyond := sampleQuadrants(s, r3.Add(p, r3.Scale(good+10*bisectTol+sampleDist, dir)), e1, e2)
	free := true
	for _, in := range beyond {
		free = free && in == !c.convex
	}
	return good, free
}
