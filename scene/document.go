// Package scene implements an in-memory host document for parts. It keeps
// registered solids and compounds with their colors and placements and
// saves a summary of the assembly as YAML.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3"
	"github.com/soypat/stage/part"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for an object id absent from the document.
var ErrNotFound = errors.New("object not found")

var _ part.Scene = (*Document)(nil)

type object struct {
	id        part.ObjectID
	name      string
	solid     form3.Solid // empty for compounds
	compound  bool
	color     stage.Color
	placement r3.Vec
	parent    part.ObjectID // compound holding the object
	children  []part.ObjectID
}

// Document is a host document. It is not safe for concurrent use.
type Document struct {
	Name       string
	objects    map[part.ObjectID]*object
	next       part.ObjectID
	recomputes int
}

// New returns an empty document.
func New(name string) *Document {
	return &Document{Name: name, objects: make(map[part.ObjectID]*object)}
}

func (d *Document) get(id part.ObjectID) (*object, error) {
	o, ok := d.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return o, nil
}

func (d *Document) add(o *object) part.ObjectID {
	d.next++
	o.id = d.next
	d.objects[o.id] = o
	return o.id
}

// AddSolid registers s under name.
func (d *Document) AddSolid(name string, s form3.Solid) (part.ObjectID, error) {
	if s.IsEmpty() {
		return 0, fmt.Errorf("%w: empty solid %q", stage.ErrBadGeometry, name)
	}
	return d.add(&object{name: name, solid: s, color: stage.DefaultColor}), nil
}

// AddCompound groups children under a new compound object. Children keep
// their placement values, which become relative to the compound.
func (d *Document) AddCompound(name string, children []part.ObjectID) (part.ObjectID, error) {
	for i, c := range children {
		o, err := d.get(c)
		if err != nil {
			return 0, err
		}
		if o.parent != 0 {
			return 0, fmt.Errorf("object %d already in compound %d", c, o.parent)
		}
		for _, prev := range children[:i] {
			if prev == c {
				return 0, fmt.Errorf("object %d listed twice", c)
			}
		}
	}
	id := d.add(&object{name: name, compound: true, color: stage.DefaultColor})
	for _, c := range children {
		d.objects[c].parent = id
	}
	d.objects[id].children = append([]part.ObjectID{}, children...)
	return id, nil
}

// SetColor sets the display color of id.
func (d *Document) SetColor(id part.ObjectID, c stage.Color) error {
	if err := c.Valid(); err != nil {
		return err
	}
	o, err := d.get(id)
	if err != nil {
		return err
	}
	o.color = c
	return nil
}

// SetPlacement sets the placement of id relative to its compound, or to the
// world when it is not grouped.
func (d *Document) SetPlacement(id part.ObjectID, p r3.Vec) error {
	o, err := d.get(id)
	if err != nil {
		return err
	}
	o.placement = p
	return nil
}

// Remove deletes id. Children of a removed compound are released to the top
// level with their placements composed so their world position is kept.
func (d *Document) Remove(id part.ObjectID) error {
	o, err := d.get(id)
	if err != nil {
		return err
	}
	for _, c := range o.children {
		child := d.objects[c]
		child.parent = o.parent
		child.placement = r3.Add(child.placement, o.placement)
		if o.parent != 0 {
			p := d.objects[o.parent]
			p.children = append(p.children, c)
		}
	}
	if o.parent != 0 {
		p := d.objects[o.parent]
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(d.objects, id)
	return nil
}

// Recompute counts document recomputations. Placements are resolved lazily
// so there is nothing else to bring up to date.
func (d *Document) Recompute() { d.recomputes++ }

// Recomputes returns the number of Recompute calls.
func (d *Document) Recomputes() int { return d.recomputes }

// Len returns the number of registered objects, compounds included.
func (d *Document) Len() int { return len(d.objects) }

// WorldPlacement returns the placement of id composed with the placements of
// the compounds holding it.
func (d *Document) WorldPlacement(id part.ObjectID) (r3.Vec, error) {
	o, err := d.get(id)
	if err != nil {
		return r3.Vec{}, err
	}
	p := o.placement
	for o.parent != 0 {
		o = d.objects[o.parent]
		p = r3.Add(p, o.placement)
	}
	return p, nil
}

// Solid returns the solid of id at its world placement. Compounds return the
// union of their children.
func (d *Document) Solid(id part.ObjectID) (form3.Solid, error) {
	o, err := d.get(id)
	if err != nil {
		return form3.Solid{}, err
	}
	if !o.compound {
		p, _ := d.WorldPlacement(id)
		return o.solid.Translate(p), nil
	}
	var list []form3.Solid
	for _, c := range o.children {
		s, err := d.Solid(c)
		if err != nil {
			return form3.Solid{}, err
		}
		list = append(list, s)
	}
	return form3.Union(list...), nil
}

// Color returns the display color of id.
func (d *Document) Color(id part.ObjectID) (stage.Color, error) {
	o, err := d.get(id)
	if err != nil {
		return stage.Color{}, err
	}
	return o.color, nil
}

// Parent returns the compound holding id, zero if id is at the top level.
func (d *Document) Parent(id part.ObjectID) (part.ObjectID, error) {
	o, err := d.get(id)
	if err != nil {
		return 0, err
	}
	return o.parent, nil
}

// IDs returns all object ids in registration order.
func (d *Document) IDs() []part.ObjectID {
	ids := make([]part.ObjectID, 0, len(d.objects))
	for id := range d.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// File is the saved form of a document.
type File struct {
	Name    string   `yaml:"name"`
	Objects []Record `yaml:"objects"`
}

// Record is a saved document object.
type Record struct {
	ID        int           `yaml:"id"`
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"` // solid or compound
	Color     string        `yaml:"color"`
	Placement [3]float64    `yaml:"placement,flow"`
	World     [3]float64    `yaml:"world,flow"`
	Bounds    [2][3]float64 `yaml:"bounds,flow"`
	Parent    int           `yaml:"parent,omitempty"`
	Children  []int         `yaml:"children,omitempty,flow"`
}

// File returns the saved form of d.
func (d *Document) File() File {
	f := File{Name: d.Name}
	for _, id := range d.IDs() {
		o := d.objects[id]
		world, _ := d.WorldPlacement(id)
		r := Record{
			ID:        int(id),
			Name:      o.name,
			Kind:      "solid",
			Color:     o.color.Hex(),
			Placement: vec(o.placement),
			World:     vec(world),
			Parent:    int(o.parent),
		}
		if o.compound {
			r.Kind = "compound"
			for _, c := range o.children {
				r.Children = append(r.Children, int(c))
			}
		}
		if s, err := d.Solid(id); err == nil && !s.IsEmpty() {
			bb := s.Bounds()
			r.Bounds = [2][3]float64{vec(bb.Min), vec(bb.Max)}
		}
		f.Objects = append(f.Objects, r)
	}
	return f
}

func vec(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Save writes the document to <dir>/<name>.yaml and returns the path.
func (d *Document) Save(dir string) (string, error) {
	b, err := yaml.Marshal(d.File())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, d.Name+".yaml")
	return path, os.WriteFile(path, b, 0o644)
}

// ReadFile reads a document saved by Save.
func ReadFile(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	err = yaml.Unmarshal(b, &f)
	return f, err
}
