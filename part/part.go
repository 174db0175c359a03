package part

import (
	"fmt"
	"path/filepath"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Part is a single solid with its axis frame. The solid is built in world
// coordinates around Frame.PosO. It is moved into place without rebuilding
// by its placement vectors.
type Part struct {
	stage.Frame
	Name  string
	Color stage.Color
	Solid form3.Solid
	// PrintUp is the part axis pointing up when printed. Zero keeps +Z.
	PrintUp r3.Vec

	Displacement r3.Vec // caller supplied displacement
	RelPlace     r3.Vec // placement relative to the enclosing set
	Extra        r3.Vec // extra movement, e.g. to show an exploded view

	world  r3.Vec // accumulated placement of the enclosing sets
	scene  r3.Vec // placement of the enclosing compound, if any
	obj    ObjectID
	parent int // 1 + index of the parent set in Context.sets
}

// New returns a part named name in the default color.
func New(name string, f stage.Frame, s form3.Solid) *Part {
	return &Part{Frame: f, Name: name, Color: stage.DefaultColor, Solid: s}
}

// local returns the placement of p relative to its set.
func (p *Part) local() r3.Vec {
	return r3.Add(p.PosOAdjust, r3.Add(p.Displacement, r3.Add(p.RelPlace, p.Extra)))
}

// Placement returns the world translation applied to the built solid.
func (p *Part) Placement() r3.Vec { return r3.Add(p.world, p.local()) }

// World returns the solid at its world placement.
func (p *Part) World() form3.Solid { return p.Solid.Translate(p.Placement()) }

// WorldPos returns the world position of named point (d, w, h) after
// placement.
func (p *Part) WorldPos(d, w, h int) (r3.Vec, error) {
	v, err := p.Local(d, w, h)
	return r3.Add(v, p.Placement()), err
}

// WorldOrigin returns the world position of the local origin after placement.
func (p *Part) WorldOrigin() r3.Vec { return r3.Add(p.PosO, p.Placement()) }

// ObjectID returns the scene object of p, zero if not registered.
func (p *Part) ObjectID() ObjectID { return p.obj }

// Register adds p to the context scene with its color and placement. It is
// a no-op if p is already registered or the context has no scene.
func (p *Part) Register(ctx *Context) error {
	if p.Solid.IsEmpty() {
		return fmt.Errorf("%w: part %q has no solid", stage.ErrBadGeometry, p.Name)
	}
	if err := p.Color.Valid(); err != nil {
		return err
	}
	if ctx.Scene == nil || p.obj != 0 {
		return nil
	}
	id, err := ctx.Scene.AddSolid(p.Name, p.Solid)
	if err != nil {
		return err
	}
	p.obj = id
	if err = ctx.Scene.SetColor(id, p.Color); err == nil {
		err = p.place(ctx, p.world, p.scene)
	}
	if err != nil {
		p.Remove(ctx)
		return err
	}
	ctx.Log.Debug().Str("part", p.Name).Int("object", int(id)).Msg("registered")
	return nil
}

// Remove unregisters p from the context scene.
func (p *Part) Remove(ctx *Context) {
	if ctx.Scene == nil || p.obj == 0 {
		return
	}
	if err := ctx.Scene.Remove(p.obj); err != nil {
		ctx.Log.Error().Err(err).Str("part", p.Name).Msg("remove")
	}
	p.obj = 0
}

// Place re-applies the placement of p to the scene. It is idempotent.
func (p *Part) Place(ctx *Context) error { return p.place(ctx, p.world, p.scene) }

// SetPlace sets the placement relative to the enclosing set and re-places p.
func (p *Part) SetPlace(ctx *Context, v r3.Vec) error {
	p.RelPlace = v
	return p.Place(ctx)
}

// Move adds v to the extra movement of p and re-places it.
func (p *Part) Move(ctx *Context, v r3.Vec) error {
	p.Extra = r3.Add(p.Extra, v)
	return p.Place(ctx)
}

func (p *Part) place(ctx *Context, world, scene r3.Vec) error {
	p.world, p.scene = world, scene
	if ctx.Scene == nil || p.obj == 0 {
		return nil
	}
	err := ctx.Scene.SetPlacement(p.obj, r3.Add(scene, p.local()))
	ctx.recompute()
	return err
}

// SetColor sets the display color of p.
func (p *Part) SetColor(ctx *Context, c stage.Color) error {
	if err := c.Valid(); err != nil {
		return err
	}
	p.Color = c
	if ctx.Scene == nil || p.obj == 0 {
		return nil
	}
	return ctx.Scene.SetColor(p.obj, c)
}

// ExportSTL writes p to <prefix>_<name>.stl in the context output
// directory and returns the file path. The part is exported with PrintUp
// pointing up and its local origin at zero.
func (p *Part) ExportSTL(ctx *Context, prefix string) (string, error) {
	path := filepath.Join(ctx.OutDir, fmt.Sprintf("%s_%s.stl", prefix, p.Name))
	return path, p.exportTo(ctx, path)
}

func (p *Part) exportTo(ctx *Context, path string) error {
	opt := ctx.STL
	opt.Name = p.Name
	opt.Up = p.PrintUp
	opt.Origin = p.WorldOrigin()
	if err := render.ExportSTL(path, p.World(), opt); err != nil {
		return fmt.Errorf("export %s: %w", p.Name, err)
	}
	ctx.Log.Info().Str("part", p.Name).Str("path", path).Msg("exported")
	return nil
}
