package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"github.com/soypat/stage/form3"
	"gonum.org/v1/gonum/spatial/r3"
)

// STLOptions configures STL export.
type STLOptions struct {
	Quality
	ASCII  bool
	Name   string // solid name written to the file
	Up     r3.Vec // preferred print axis, rotated onto +Z
	Origin r3.Vec // world point moved to zero before rotating
}

// ExportSTL meshes s and writes it to path. s is not modified.
func ExportSTL(path string, s form3.Solid, opt STLOptions) error {
	tris, err := Mesh(s, opt.Quality)
	if err != nil {
		return err
	}
	return CreateSTL(path, Orient(tris, opt.Up, opt.Origin), opt.ASCII, opt.Name)
}

// CreateSTL writes tris to a new file at path.
func CreateSTL(path string, tris []r3.Triangle, ascii bool, name string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteSTL(fp, tris, ascii, name)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteSTL writes tris to w in binary or ASCII STL format.
func WriteSTL(w io.Writer, tris []r3.Triangle, ascii bool, name string) error {
	if len(tris) == 0 {
		return errors.New("empty triangle slice")
	}
	solid := stl.Solid{
		Name:      name,
		IsAscii:   ascii,
		Triangles: make([]stl.Triangle, len(tris)),
	}
	for i, t := range tris {
		n := t.Normal()
		if norm := r3.Norm(n); norm > 0 {
			n = r3.Scale(1/norm, n)
		}
		solid.Triangles[i] = stl.Triangle{
			Normal:   toVec3(n),
			Vertices: [3]stl.Vec3{toVec3(t[0]), toVec3(t[1]), toVec3(t[2])},
		}
	}
	return solid.WriteAll(w)
}

// ReadSTL reads an ASCII or binary STL file. Triangles with NaN or infinite
// components are rejected.
func ReadSTL(path string) ([]r3.Triangle, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromSolid(solid)
}

// DecodeSTL reads an ASCII or binary STL stream.
func DecodeSTL(r io.Reader) ([]r3.Triangle, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	solid, err := stl.ReadAll(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return fromSolid(solid)
}

func fromSolid(solid *stl.Solid) ([]r3.Triangle, error) {
	tris := make([]r3.Triangle, len(solid.Triangles))
	for i, t := range solid.Triangles {
		if bad3F32(t.Normal) {
			return nil, fmt.Errorf("triangle %d: inf/NaN STL triangle normal", i)
		}
		for j, v := range t.Vertices {
			if bad3F32(v) {
				return nil, fmt.Errorf("triangle %d: inf/NaN STL triangle vertex", i)
			}
			tris[i][j] = r3From3F32(v)
		}
	}
	return tris, nil
}

func toVec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
