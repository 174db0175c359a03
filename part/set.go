package part

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is a child of a set: either a single part or a nested set.
type Node struct {
	part *Part
	set  *Set
}

// PartNode returns a node holding p.
func PartNode(p *Part) Node { return Node{part: p} }

// SetNode returns a node holding s.
func SetNode(s *Set) Node { return Node{set: s} }

// Part returns the part held by n or nil.
func (n Node) Part() *Part { return n.part }

// Set returns the set held by n or nil.
func (n Node) Set() *Set { return n.set }

// Name returns the name of the held part or set.
func (n Node) Name() string {
	if n.part != nil {
		return n.part.Name
	}
	if n.set != nil {
		return n.set.Name
	}
	return ""
}

// Frame returns the axis frame of the held part or set.
func (n Node) Frame() *stage.Frame {
	if n.part != nil {
		return &n.part.Frame
	}
	if n.set != nil {
		return &n.set.Frame
	}
	return nil
}

func (n Node) parentIndex() int {
	if n.part != nil {
		return n.part.parent
	}
	if n.set != nil {
		return n.set.parent
	}
	return 0
}

func (n Node) setParent(i int) {
	if n.part != nil {
		n.part.parent = i
	} else {
		n.set.parent = i
	}
}

func (n Node) place(ctx *Context, world, scene r3.Vec) error {
	if n.part != nil {
		return n.part.place(ctx, world, scene)
	}
	return n.set.place(ctx, world, scene)
}

func (n Node) remove(ctx *Context) {
	if n.part != nil {
		n.part.Remove(ctx)
	} else {
		n.set.Remove(ctx)
	}
}

// objects returns the top level scene objects of n.
func (n Node) objects() []ObjectID {
	if n.part != nil {
		if n.part.obj == 0 {
			return nil
		}
		return []ObjectID{n.part.obj}
	}
	if n.set.compound != 0 {
		return []ObjectID{n.set.compound}
	}
	var ids []ObjectID
	for _, c := range n.set.children {
		ids = append(ids, c.objects()...)
	}
	return ids
}

// Set is an ordered collection of parts and nested sets sharing an axis
// frame. Children are placed relative to the set.
type Set struct {
	stage.Frame
	Name string

	Displacement r3.Vec
	RelPlace     r3.Vec
	Extra        r3.Vec

	children []Node
	compound ObjectID
	world    r3.Vec
	scene    r3.Vec
	index    int // 1 + index in Context.sets
	parent   int
}

// NewSet returns an empty set named name, recorded in the context side table
// so its children can look it up.
func NewSet(ctx *Context, name string, f stage.Frame) *Set {
	s := &Set{Frame: f, Name: name}
	ctx.sets = append(ctx.sets, s)
	s.index = len(ctx.sets)
	return s
}

// Children returns the direct children of s in insertion order.
func (s *Set) Children() []Node { return s.children }

// Add appends n to the children of s and places it relative to s.
func (s *Set) Add(ctx *Context, n Node) error {
	if n.part == nil && n.set == nil {
		return errors.New("add of empty node")
	}
	if n.set == s {
		return fmt.Errorf("set %q added to itself", s.Name)
	}
	if n.parentIndex() != 0 {
		return fmt.Errorf("%q already belongs to a set", n.Name())
	}
	if s.compound != 0 {
		return fmt.Errorf("add %q to grouped set %q", n.Name(), s.Name)
	}
	if s.index == 0 {
		return fmt.Errorf("set %q not created with NewSet", s.Name)
	}
	n.setParent(s.index)
	s.children = append(s.children, n)
	world, scene := s.childBase()
	return n.place(ctx, world, scene)
}

// AddPart is shorthand for s.Add(ctx, PartNode(p)).
func (s *Set) AddPart(ctx *Context, p *Part) error { return s.Add(ctx, PartNode(p)) }

// AddSet is shorthand for s.Add(ctx, SetNode(c)).
func (s *Set) AddSet(ctx *Context, c *Set) error { return s.Add(ctx, SetNode(c)) }

func (s *Set) local() r3.Vec {
	return r3.Add(s.PosOAdjust, r3.Add(s.Displacement, r3.Add(s.RelPlace, s.Extra)))
}

// Placement returns the world translation applied to the children of s.
func (s *Set) Placement() r3.Vec { return r3.Add(s.world, s.local()) }

// WorldPos returns the world position of named point (d, w, h) of the set
// frame after placement.
func (s *Set) WorldPos(d, w, h int) (r3.Vec, error) {
	v, err := s.Local(d, w, h)
	return r3.Add(v, s.Placement()), err
}

// childBase returns the world and scene placement children are put at.
func (s *Set) childBase() (world, scene r3.Vec) {
	world = s.Placement()
	if s.compound != 0 {
		return world, r3.Vec{}
	}
	return world, r3.Add(s.scene, s.local())
}

func (s *Set) place(ctx *Context, world, scene r3.Vec) error {
	s.world, s.scene = world, scene
	if s.compound != 0 && ctx.Scene != nil {
		if err := ctx.Scene.SetPlacement(s.compound, r3.Add(scene, s.local())); err != nil {
			return err
		}
	}
	cw, cs := s.childBase()
	for _, c := range s.children {
		if err := c.place(ctx, cw, cs); err != nil {
			return err
		}
	}
	ctx.recompute()
	return nil
}

// Place re-applies the placement of s and all its descendants.
func (s *Set) Place(ctx *Context) error { return s.place(ctx, s.world, s.scene) }

// SetPlace sets the placement relative to the enclosing set and re-places s.
func (s *Set) SetPlace(ctx *Context, v r3.Vec) error {
	s.RelPlace = v
	return s.Place(ctx)
}

// Move adds v to the extra movement of s and re-places it.
func (s *Set) Move(ctx *Context, v r3.Vec) error {
	s.Extra = r3.Add(s.Extra, v)
	return s.Place(ctx)
}

// Grouped reports whether s is grouped under a scene compound.
func (s *Set) Grouped() bool { return s.compound != 0 }

// Group creates a scene compound holding the children of s. Child world
// positions do not change.
func (s *Set) Group(ctx *Context) error {
	if ctx.Scene == nil || s.compound != 0 {
		return nil
	}
	var ids []ObjectID
	for _, c := range s.children {
		ids = append(ids, c.objects()...)
	}
	id, err := ctx.Scene.AddCompound(s.Name, ids)
	if err != nil {
		return fmt.Errorf("group %s: %w", s.Name, err)
	}
	s.compound = id
	return s.Place(ctx)
}

// Ungroup removes the scene compound of s. Child world positions do not
// change.
func (s *Set) Ungroup(ctx *Context) error {
	if ctx.Scene == nil || s.compound == 0 {
		return nil
	}
	if err := ctx.Scene.Remove(s.compound); err != nil {
		return fmt.Errorf("ungroup %s: %w", s.Name, err)
	}
	s.compound = 0
	return s.Place(ctx)
}

// Remove unregisters the compound and all descendants of s from the scene.
// Builders call it to roll back a set that failed halfway.
func (s *Set) Remove(ctx *Context) {
	if ctx.Scene != nil && s.compound != 0 {
		if err := ctx.Scene.Remove(s.compound); err != nil {
			ctx.Log.Error().Err(err).Str("set", s.Name).Msg("remove compound")
		}
	}
	s.compound = 0
	for i := len(s.children) - 1; i >= 0; i-- {
		s.children[i].remove(ctx)
	}
}

// Parts returns the single parts of s depth first in insertion order.
func (s *Set) Parts() []*Part {
	var parts []*Part
	s.Walk(func(p *Part) bool {
		parts = append(parts, p)
		return true
	})
	return parts
}

// Walk calls fn for every single part of s depth first until fn returns
// false. It reports whether the walk completed.
func (s *Set) Walk(fn func(*Part) bool) bool {
	for _, c := range s.children {
		if c.part != nil {
			if !fn(c.part) {
				return false
			}
		} else if !c.set.Walk(fn) {
			return false
		}
	}
	return true
}

// SetColor sets the color of every part of s. Children may override it
// afterwards.
func (s *Set) SetColor(ctx *Context, c stage.Color) error {
	if err := c.Valid(); err != nil {
		return err
	}
	var err error
	s.Walk(func(p *Part) bool {
		err = p.SetColor(ctx, c)
		return err == nil
	})
	return err
}

// Solid returns the union of the parts of s at their world placement.
func (s *Set) Solid() form3.Solid {
	var list []form3.Solid
	s.Walk(func(p *Part) bool {
		list = append(list, p.World())
		return true
	})
	return form3.Union(list...)
}

// ExportSTL writes every part of s to <prefix>_<name>_<i>.stl in the
// context output directory, i being the depth first part index. It returns
// the written paths.
func (s *Set) ExportSTL(ctx *Context, prefix string) ([]string, error) {
	var paths []string
	for i, p := range s.Parts() {
		path := filepath.Join(ctx.OutDir, fmt.Sprintf("%s_%s_%d.stl", prefix, s.Name, i))
		if err := p.exportTo(ctx, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
