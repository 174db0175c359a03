// Package render turns solids into triangle meshes, writes and reads STL
// files, checks meshes are closed and renders PNG previews of them.
package render

import (
	"fmt"
	"math"

	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quality controls mesh resolution.
type Quality struct {
	// LinDeflection is the largest distance in mm allowed between the mesh and
	// a curved surface. Between 0.01 and 0.1.
	LinDeflection float64
	// AngDeflection is the largest angle in radians between adjacent
	// facets of a curved surface. Between 0.05 and 0.5.
	AngDeflection float64
	// Cells overrides the deflections with a fixed number of marching cubes
	// cells along the longest side of the bounding box.
	Cells int
}

// DefaultQuality is the resolution used when exporting parts.
var DefaultQuality = Quality{LinDeflection: 0.05, AngDeflection: 0.2}

const (
	// refRadius is the curvature radius deflections are evaluated at, about
	// the size of the smallest holes in printed parts.
	refRadius = 2.0
	minCells  = 16
	maxCells  = 512
)

// Validate checks deflections are within their allowed ranges.
func (q Quality) Validate() error {
	if q.Cells > 0 {
		return nil
	}
	if q.LinDeflection < 0.01 || q.LinDeflection > 0.1 {
		return fmt.Errorf("%w: linear deflection %g outside [0.01, 0.1]", stage.ErrBadGeometry, q.LinDeflection)
	}
	if q.AngDeflection < 0.05 || q.AngDeflection > 0.5 {
		return fmt.Errorf("%w: angular deflection %g outside [0.05, 0.5]", stage.ErrBadGeometry, q.AngDeflection)
	}
	return nil
}

// CellSize returns the marching cubes cell size meeting both deflections on
// a surface of curvature radius refRadius.
func (q Quality) CellSize() float64 {
	// chord sagitta s = c^2 / (8R) for a chord c on a circle of radius R.
	lin := math.Sqrt(8 * q.LinDeflection * refRadius)
	ang := q.AngDeflection * refRadius
	return math.Min(lin, ang)
}

// cells returns the number of cells along the longest side of bb.
func (q Quality) cells(bb d3.Box) int {
	if q.Cells > 0 {
		return q.Cells
	}
	n := int(math.Ceil(d3.Max(bb.Size()) / q.CellSize()))
	if n < minCells {
		return minCells
	}
	if n > maxCells {
		return maxCells
	}
	return n
}

// Mesh returns the triangles of the surface of s. Vertex order is
// counter clockwise seen from outside.
func Mesh(s form3.Solid, q Quality) (tris []r3.Triangle, err error) {
	if s.IsEmpty() {
		return nil, fmt.Errorf("%w: mesh of empty solid", stage.ErrBadGeometry)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("%w: meshing: %v", stage.ErrKernelFailure, a)
		}
	}()
	r := sdfxrender.NewMarchingCubesUniform(q.cells(s.Bounds()))
	out := sdfxrender.ToTriangles(s.SDF3(), r)
	tris = make([]r3.Triangle, 0, len(out))
	for _, t := range out {
		tris = append(tris, r3.Triangle{d3.FromV3(t[0]), d3.FromV3(t[1]), d3.FromV3(t[2])})
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: mesh has no triangles", stage.ErrKernelFailure)
	}
	return tris, nil
}

// Bounds returns the bounding box of a mesh.
func Bounds(tris []r3.Triangle) d3.Box {
	if len(tris) == 0 {
		return d3.Box{}
	}
	bb := d3.Box{Min: tris[0][0], Max: tris[0][0]}
	for _, t := range tris {
		for _, v := range t {
			bb = bb.Include(v)
		}
	}
	return bb
}

// Orient returns tris moved so origin sits at zero and rotated so up points
// along +Z. A zero up keeps the orientation.
func Orient(tris []r3.Triangle, up, origin r3.Vec) []r3.Triangle {
	rot := upRotation(up)
	out := make([]r3.Triangle, len(tris))
	for i, t := range tris {
		for j, v := range t {
			out[i][j] = rot(r3.Sub(v, origin))
		}
	}
	return out
}

func upRotation(up r3.Vec) func(r3.Vec) r3.Vec {
	z := r3.Vec{Z: 1}
	if d3.IsZero(up) || d3.Parallel(up, z, 1e-12) && r3.Dot(up, z) > 0 {
		return func(v r3.Vec) r3.Vec { return v }
	}
	up = r3.Unit(up)
	axis := r3.Cross(up, z)
	if r3.Norm(axis) < 1e-12 {
		// up is -Z: half turn about X.
		axis = r3.Vec{X: 1}
	}
	angle := math.Acos(math.Max(-1, math.Min(1, r3.Dot(up, z))))
	rot := r3.NewRotation(angle, axis)
	if !d3.EqualWithin(rot.Rotate(up), z, 1e-9) {
		rot = r3.NewRotation(-angle, axis)
	}
	return rot.Rotate
}
