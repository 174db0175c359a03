package render_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/render"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

const quality = 64

func box(t testing.TB, size r3.Vec) form3.Solid {
	t.Helper()
	s, err := form3.Box(form3.BoxParams{Size: size})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMeshVolume(t *testing.T) {
	s := box(t, r3.Vec{X: 10, Y: 20, Z: 5})
	tris, err := render.Mesh(s, render.Quality{Cells: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got := render.MeshVolume(tris); !scalar.EqualWithinRel(got, 1000, 0.02) {
		t.Errorf("mesh volume got %g, want 1000", got)
	}
	bb := render.Bounds(tris)
	if !bb.Equals(s.Bounds(), 0.05) {
		t.Errorf("mesh bounds %+v differ from solid bounds %+v", bb, s.Bounds())
	}
	if _, err := render.Mesh(form3.Solid{}, render.DefaultQuality); !errors.Is(err, stage.ErrBadGeometry) {
		t.Errorf("empty solid: got %v, want ErrBadGeometry", err)
	}
}

func TestQuality(t *testing.T) {
	if err := render.DefaultQuality.Validate(); err != nil {
		t.Error(err)
	}
	for _, q := range []render.Quality{
		{LinDeflection: 0.001, AngDeflection: 0.2},
		{LinDeflection: 0.05, AngDeflection: 1},
	} {
		if err := q.Validate(); !errors.Is(err, stage.ErrBadGeometry) {
			t.Errorf("%+v: got %v, want ErrBadGeometry", q, err)
		}
	}
	fine := render.Quality{LinDeflection: 0.01, AngDeflection: 0.05}
	if fine.CellSize() >= render.DefaultQuality.CellSize() {
		t.Error("finer deflection should give smaller cells")
	}
}

func tetrahedron() []r3.Triangle {
	o, a, b, c := r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	return []r3.Triangle{{o, b, a}, {o, a, c}, {o, c, b}, {a, b, c}}
}

func TestCheck(t *testing.T) {
	tet := tetrahedron()
	rep := render.Check(tet, 1e-9)
	if !rep.Closed() || rep.Vertices != 4 || rep.Triangles != 4 {
		t.Errorf("tetrahedron report %+v", rep)
	}
	if !scalar.EqualWithinAbs(rep.Volume, 1./6, 1e-12) {
		t.Errorf("tetrahedron volume got %g, want 1/6", rep.Volume)
	}
	open := render.Check(tet[:3], 1e-9)
	if open.Closed() || open.BoundaryEdges != 3 {
		t.Errorf("open tetrahedron report %+v", open)
	}
	flipped := append([]r3.Triangle{}, tet...)
	flipped[3] = r3.Triangle{tet[3][0], tet[3][2], tet[3][1]}
	if rep := render.Check(flipped, 1e-9); rep.Closed() || rep.MisorientedEdges != 3 {
		t.Errorf("flipped face report %+v", rep)
	}
	// vertices off by less than the tolerance still weld.
	jitter := append([]r3.Triangle{}, tet...)
	jitter[3][0].X += 1e-7
	if rep := render.Check(jitter, 1e-6); !rep.Closed() {
		t.Errorf("jittered tetrahedron report %+v", rep)
	}
}

func TestExportSTL(t *testing.T) {
	dir := t.TempDir()
	s := box(t, r3.Vec{X: 30, Y: 10, Z: 5})
	opt := render.STLOptions{Quality: render.Quality{Cells: quality}, Up: r3.Vec{X: 1}, Name: "bar"}
	p1, p2 := filepath.Join(dir, "a.stl"), filepath.Join(dir, "b.stl")
	for _, p := range []string{p1, p2} {
		if err := render.ExportSTL(p, s, opt); err != nil {
			t.Fatal(err)
		}
	}
	b1, err := os.ReadFile(p1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(p2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("exporting the same solid twice gave different files")
	}
	tris, err := render.ReadSTL(p1)
	if err != nil {
		t.Fatal(err)
	}
	bb := render.Bounds(tris)
	// the long side along x is rotated onto z.
	if size := bb.Size(); math.Abs(size.Z-30) > 0.1 || math.Abs(bb.Min.Z) > 0.1 {
		t.Errorf("exported bounds %+v, want 30 mm tall starting at z=0", bb)
	}
	if got := render.MeshVolume(tris); !scalar.EqualWithinRel(got, 1500, 0.03) {
		t.Errorf("exported volume got %g, want 1500", got)
	}
}

func TestSTLASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := render.WriteSTL(&buf, tetrahedron(), true, "tet"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("solid tet")) {
		t.Errorf("ASCII STL header: %q", buf.Bytes()[:16])
	}
	tris, err := render.DecodeSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 4 || !render.Check(tris, 1e-6).Closed() {
		t.Errorf("ASCII round trip lost triangles: %d", len(tris))
	}
	if err := render.WriteSTL(&buf, nil, false, ""); err == nil {
		t.Error("expected error writing empty mesh")
	}
}

func TestPreviewPNG(t *testing.T) {
	dir := t.TempDir()
	stlPath := filepath.Join(dir, "box.stl")
	s := box(t, r3.Vec{X: 3, Y: 2, Z: 1})
	if err := render.ExportSTL(stlPath, s, render.STLOptions{Quality: render.Quality{Cells: 32}}); err != nil {
		t.Fatal(err)
	}
	view := render.DefaultView
	view.Width, view.Height, view.Scale = 160, 120, 1
	render1 := func(name string, c stage.Color) []byte {
		p := filepath.Join(dir, name)
		if err := render.PreviewPNG(stlPath, p, c, view); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	a, b, c := render1("a.png", stage.Orange), render1("b.png", stage.Orange), render1("c.png", stage.Blue)
	equal, err := cmpimg.EqualApprox("png", a, b, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("same preview rendered twice differs")
	}
	equal, err = cmpimg.EqualApprox("png", a, c, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if equal {
		t.Error("previews in different colors compare equal")
	}
}
