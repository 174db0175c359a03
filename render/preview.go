package render

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/stage"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a PNG preview. The mesh is scaled to fit a
// bi-unit cube centered at the origin before rendering.
type View struct {
	Eye, LookAt, Up r3.Vec
	Near, Far       float64
	Fovy            float64 // vertical field of view in degrees
	Width, Height   int
	Scale           int // supersampling factor
}

// DefaultView looks at the part from an isometric-like position with Z up.
var DefaultView = View{
	Eye:    r3.Vec{X: 3, Y: -3, Z: 2.5},
	Up:     r3.Vec{Z: 1},
	Near:   1,
	Far:    10,
	Fovy:   30,
	Width:  800,
	Height: 600,
	Scale:  2,
}

// PreviewPNG renders the STL file at stlPath shaded in color c and saves it as
// a PNG image at pngPath.
func PreviewPNG(stlPath, pngPath string, c stage.Color, view View) error {
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return err
	}
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	mesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.Color{R: c.R, G: c.G, B: c.B, A: 1}
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(view.Width), uint(view.Height), image, resize.Bilinear)
	return fauxgl.SavePNG(pngPath, image)
}
