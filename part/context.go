// Package part holds the single parts and part sets the filter stage is
// assembled from. A part is an axis frame plus the solid built from it, a
// name and a color. A part set is an axis frame plus an ordered list of
// children, single parts or nested sets, whose placement it propagates.
//
// Parts are registered into a host Scene through a Context which also
// carries the logger and output settings of one assembly build.
package part

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// ObjectID identifies an object registered in a Scene. The zero value is no
// object.
type ObjectID int

// Scene is the host document parts are registered into.
type Scene interface {
	// AddSolid registers a solid and returns its id.
	AddSolid(name string, s form3.Solid) (ObjectID, error)
	// AddCompound groups objects under a new object. Children placements
	// become relative to the compound.
	AddCompound(name string, children []ObjectID) (ObjectID, error)
	SetColor(id ObjectID, c stage.Color) error
	SetPlacement(id ObjectID, p r3.Vec) error
	// Remove unregisters id. Removing a compound releases its children.
	Remove(id ObjectID) error
	// Recompute brings the document up to date after a change.
	Recompute()
}

// Context is the state shared by all builds of one assembly.
type Context struct {
	Log zerolog.Logger
	// Scene receives built parts. Parts are not registered when nil.
	Scene Scene
	// OutDir is the directory exported files are written to.
	OutDir string
	// STL holds the export options. Name, Up and Origin are set per part.
	STL render.STLOptions

	// sets is the side table set parents are looked up in.
	sets []*Set
}

// NewContext returns a context registering into sc with a no-op logger,
// default mesh quality and binary STL output in the working directory.
func NewContext(sc Scene) *Context {
	return &Context{
		Log:    zerolog.Nop(),
		Scene:  sc,
		OutDir: ".",
		STL:    render.STLOptions{Quality: render.DefaultQuality},
	}
}

// Clamp returns v raised to min. A warning is logged when v changes.
func (c *Context) Clamp(part, param string, v, min float64) float64 {
	if v >= min {
		return v
	}
	c.Log.Warn().Str("part", part).Str("param", param).
		Float64("supplied", v).Float64("clamped", min).
		Msg("parameter raised to minimum")
	return min
}

// ClampMax returns v lowered to max. A warning is logged when v changes.
func (c *Context) ClampMax(part, param string, v, max float64) float64 {
	if v <= max {
		return v
	}
	c.Log.Warn().Str("part", part).Str("param", param).
		Float64("supplied", v).Float64("clamped", max).
		Msg("parameter lowered to maximum")
	return max
}

// Step logs the start of a build step at debug level.
func (c *Context) Step(part, step string) {
	c.Log.Debug().Str("part", part).Str("step", step).Msg("build")
}

// Parent returns the set n was added to, or nil.
func (c *Context) Parent(n Node) *Set {
	i := n.parentIndex()
	if i <= 0 || i > len(c.sets) {
		return nil
	}
	return c.sets[i-1]
}

func (c *Context) recompute() {
	if c.Scene != nil {
		c.Scene.Recompute()
	}
}

// Name returns name if not empty, else a name derived from the part kind and
// its driving metric size, e.g. "tensioner_m3".
func Name(name, kind string, metric float64) string {
	if name != "" {
		return name
	}
	if metric <= 0 {
		return kind
	}
	return fmt.Sprintf("%s_m%g", kind, metric)
}
