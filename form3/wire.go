package form3

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/soypat/stage/form3/must3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ArcStep is the largest angle an arc spans between two polygon vertices when
// a wire is turned into a face.
const ArcStep = math.Pi / 90

type segment struct {
	a, b   r3.Vec
	arc    bool
	center r3.Vec
	x, y   r3.Vec // arc plane basis, x points from center to a
	radius float64
	sweep  float64 // radians, in the direction of x to y
}

func (s segment) length() float64 {
	if s.arc {
		return s.radius * s.sweep
	}
	return r3.Norm(r3.Sub(s.b, s.a))
}

// points returns the segment discretized, excluding the end point.
func (s segment) points(step float64) []r3.Vec {
	if !s.arc {
		return []r3.Vec{s.a}
	}
	n := int(math.Ceil(s.sweep / step))
	if n < 1 {
		n = 1
	}
	pts := make([]r3.Vec, n)
	for i := range pts {
		t := s.sweep * float64(i) / float64(n)
		pts[i] = r3.Add(s.center, r3.Add(r3.Scale(s.radius*math.Cos(t), s.x), r3.Scale(s.radius*math.Sin(t), s.y)))
	}
	return pts
}

// Wire is a chain of line segments and circular arcs.
type Wire struct {
	start  r3.Vec
	end    r3.Vec
	segs   []segment
	closed bool
	err    error
}

// NewWire starts a wire at p.
func NewWire(p r3.Vec) *Wire {
	return &Wire{start: p, end: p}
}

// Polyline returns a wire joining pts with straight lines, closed back to the
// first point if closed is set.
func Polyline(pts []r3.Vec, closed bool) *Wire {
	if len(pts) == 0 {
		return &Wire{err: badGeometry("polyline with no points")}
	}
	w := NewWire(pts[0])
	for _, p := range pts[1:] {
		w.LineTo(p)
	}
	if closed {
		w.Close()
	}
	return w
}

// LineTo adds a straight segment from the wire end to p.
func (w *Wire) LineTo(p r3.Vec) *Wire {
	if w.closed {
		w.setErr(badGeometry("segment added to closed wire"))
		return w
	}
	if d3.EqualWithin(p, w.end, 1e-9) {
		return w
	}
	w.segs = append(w.segs, segment{a: w.end, b: p})
	w.end = p
	return w
}

// ArcTo adds a circular arc from the wire end through the point through and
// ending at end.
func (w *Wire) ArcTo(through, end r3.Vec) *Wire {
	if w.closed {
		w.setErr(badGeometry("segment added to closed wire"))
		return w
	}
	a := w.end
	ab, ac := r3.Sub(through, a), r3.Sub(end, a)
	n := r3.Cross(ab, ac)
	n2 := r3.Norm2(n)
	if n2 < 1e-18 {
		w.setErr(badGeometry("arc points %v %v %v are collinear", a, through, end))
		return w
	}
	// circumcenter of triangle a, through, end.
	center := r3.Add(a, r3.Scale(1/(2*n2), r3.Add(
		r3.Scale(r3.Norm2(ac), r3.Cross(n, ab)),
		r3.Scale(r3.Norm2(ab), r3.Cross(ac, n)),
	)))
	k := r3.Unit(r3.Cross(r3.Sub(through, a), r3.Sub(end, through)))
	x := r3.Sub(a, center)
	radius := r3.Norm(x)
	x = r3.Unit(x)
	y := r3.Cross(k, x)
	angle := func(p r3.Vec) float64 {
		q := r3.Sub(p, center)
		t := math.Atan2(r3.Dot(q, y), r3.Dot(q, x))
		if t < 0 {
			t += 2 * math.Pi
		}
		return t
	}
	w.segs = append(w.segs, segment{
		a: a, b: end, arc: true,
		center: center, x: x, y: y,
		radius: radius, sweep: angle(end),
	})
	w.end = end
	return w
}

// Close joins the wire end to its start with a straight segment if needed.
func (w *Wire) Close() *Wire {
	if w.closed {
		return w
	}
	w.LineTo(w.start)
	w.closed = true
	return w
}

func (w *Wire) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first error found while building the wire.
func (w *Wire) Err() error { return w.err }

// Closed reports whether the wire ends where it starts.
func (w *Wire) Closed() bool { return w.closed }

// Length returns the exact length of the wire.
func (w *Wire) Length() float64 {
	var l float64
	for _, s := range w.segs {
		l += s.length()
	}
	return l
}

// Points returns the wire vertices with arcs discretized in steps of at most
// step radians. The end point of a closed wire is not repeated.
func (w *Wire) Points(step float64) []r3.Vec {
	var pts []r3.Vec
	for _, s := range w.segs {
		pts = append(pts, s.points(step)...)
	}
	if !w.closed {
		pts = append(pts, w.end)
	}
	return pts
}

// Face is a planar region bounded by a closed wire.
type Face struct {
	pts    []r3.Vec
	normal r3.Vec
	lines  []Edge // straight boundary segments
}

// NewFace returns the face bounded by w, which must be closed and planar.
func NewFace(w *Wire) (Face, error) {
	if w.err != nil {
		return Face{}, w.err
	}
	if !w.closed {
		return Face{}, badGeometry("face from open wire")
	}
	pts := w.Points(ArcStep)
	if len(pts) < 3 {
		return Face{}, badGeometry("face needs at least 3 vertices, got %d", len(pts))
	}
	// Newell's method.
	var n r3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	if r3.Norm(n) < 1e-12 {
		return Face{}, badGeometry("face has no area")
	}
	n = r3.Unit(n)
	for _, p := range pts {
		if d := r3.Dot(r3.Sub(p, pts[0]), n); math.Abs(d) > 1e-6 {
			return Face{}, badGeometry("wire is not planar, vertex %v off plane by %g", p, d)
		}
	}
	f := Face{pts: pts, normal: n}
	for _, s := range w.segs {
		if !s.arc {
			f.lines = append(f.lines, Edge{A: s.a, B: s.b})
		}
	}
	return f, nil
}

// Normal returns the unit normal of the face, oriented counter clockwise
// with respect to the wire direction.
func (f Face) Normal() r3.Vec { return f.normal }

// Extrude sweeps f a distance length along dir, which must be perpendicular
// to the face. When centered the face lies at half the extrusion.
func Extrude(f Face, length float64, dir r3.Vec, centered bool) (s Solid, err error) {
	defer catch(&err)
	if length <= 0 {
		panic("extrusion length <= 0")
	}
	if len(f.pts) < 3 {
		panic("extrusion of empty face")
	}
	if !d3.Parallel(dir, f.normal, 1e-6) {
		return Solid{}, badGeometry("extrusion direction %v not normal to face", dir)
	}
	n := r3.Unit(dir)
	u, v := d3.Perpendicular(n)
	o := f.pts[0]
	verts := make([]v2.Vec, len(f.pts))
	var area float64
	for i, p := range f.pts {
		q := r3.Sub(p, o)
		verts[i] = v2.Vec{X: r3.Dot(q, u), Y: r3.Dot(q, v)}
	}
	for i, a := range verts {
		b := verts[(i+1)%len(verts)]
		area += a.X*b.Y - b.X*a.Y
	}
	if area < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	poly, err := sdf.Polygon2D(verts)
	if err != nil {
		panic(err)
	}
	start := 0.0
	if centered {
		start = -length / 2
	}
	center := r3.Add(o, r3.Scale(start+length/2, n))
	sd := must3.Orient(sdf.Extrude3D(poly, length), u, v, n, center)

	bot, top := r3.Scale(start, n), r3.Scale(start+length, n)
	var edges []Edge
	for _, l := range f.lines {
		edges = append(edges,
			Edge{A: r3.Add(l.A, bot), B: r3.Add(l.B, bot)},
			Edge{A: r3.Add(l.A, top), B: r3.Add(l.B, top)},
			Edge{A: r3.Add(l.A, bot), B: r3.Add(l.A, top)},
		)
	}
	return Solid{s: sd, edges: edges}, err
}
