package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = weldPoints{}
	_ kdtree.Comparable = weldPoint{}
)

// Weld merges vertices of tris closer than tol and returns the distinct
// vertices and the triangles as vertex indices. Triangles that collapse to a
// line or a point are dropped.
func Weld(tris []r3.Triangle, tol float64) (verts []r3.Vec, faces [][3]int) {
	pts := make(weldPoints, 0, 3*len(tris))
	for i, t := range tris {
		for j, v := range t {
			pts = append(pts, weldPoint{v: v, idx: 3*i + j})
		}
	}
	// kdtree.New reorders its input.
	tree := kdtree.New(append(weldPoints(nil), pts...), false)
	rep := make([]int, len(pts))
	for i := range rep {
		rep[i] = -1
	}
	for i, p := range pts {
		if rep[i] >= 0 {
			continue
		}
		k := len(verts)
		verts = append(verts, p.v)
		rep[i] = k
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, p)
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			if j := c.Comparable.(weldPoint).idx; rep[j] < 0 {
				rep[j] = k
			}
		}
	}
	for i := range tris {
		f := [3]int{rep[3*i], rep[3*i+1], rep[3*i+2]}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		faces = append(faces, f)
	}
	return verts, faces
}

// Report describes the topology of a welded mesh.
type Report struct {
	Triangles        int
	Vertices         int
	BoundaryEdges    int // edges used by a single triangle
	NonManifoldEdges int // edges used by more than two triangles
	MisorientedEdges int // edges traversed twice in the same direction
	Volume           float64
}

// Closed reports whether the mesh is a closed, consistently oriented
// manifold surface.
func (r Report) Closed() bool {
	return r.BoundaryEdges == 0 && r.NonManifoldEdges == 0 && r.MisorientedEdges == 0
}

// Check welds tris with tolerance tol and reports the mesh topology and
// enclosed signed volume. Volume is positive for outward facing triangles.
func Check(tris []r3.Triangle, tol float64) Report {
	verts, faces := Weld(tris, tol)
	type edge [2]int
	directed := make(map[edge]int)
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			directed[edge{f[k], f[(k+1)%3]}]++
		}
	}
	rep := Report{Triangles: len(faces), Vertices: len(verts)}
	for e, n := range directed {
		if e[0] > e[1] {
			// counted from the lower index.
			if _, ok := directed[edge{e[1], e[0]}]; ok {
				continue
			}
		}
		back := directed[edge{e[1], e[0]}]
		switch total := n + back; {
		case total == 1:
			rep.BoundaryEdges++
		case total > 2:
			rep.NonManifoldEdges++
		case n == 2 || back == 2:
			rep.MisorientedEdges++
		}
	}
	var vol float64
	for _, f := range faces {
		vol += r3.Dot(verts[f[0]], r3.Cross(verts[f[1]], verts[f[2]]))
	}
	rep.Volume = vol / 6
	return rep
}

// MeshVolume returns the signed volume enclosed by tris without welding.
func MeshVolume(tris []r3.Triangle) float64 {
	var vol float64
	for _, t := range tris {
		vol += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return vol / 6
}

type weldPoint struct {
	v   r3.Vec
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a weldPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	q := b.(weldPoint)
	switch d {
	case 0:
		return a.v.X - q.v.X
	case 1:
		return a.v.Y - q.v.Y
	}
	return a.v.Z - q.v.Z
}

// Dims returns the number of dimensions described in the Comparable.
func (a weldPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a weldPoint) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.v, b.(weldPoint).v))
}

type weldPoints []weldPoint

func (p weldPoints) Index(i int) kdtree.Comparable { return p[i] }

// Len returns the length of the list.
func (p weldPoints) Len() int { return len(p) }

// Pivot partitions the list based on the dimension specified.
func (p weldPoints) Pivot(d kdtree.Dim) int {
	pl := weldPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (p weldPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type weldPlane struct {
	dim    kdtree.Dim
	points weldPoints
}

func (p weldPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p weldPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p weldPlane) Len() int      { return len(p.points) }
func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// WeldTol returns a weld tolerance relative to the mesh size.
func WeldTol(tris []r3.Triangle) float64 {
	size := r3.Norm(Bounds(tris).Size())
	return math.Max(1e-9, 1e-6*size)
}
