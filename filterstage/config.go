package filterstage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/soypat/stage"
	"github.com/soypat/stage/form3/obj3"
	"github.com/soypat/stage/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Config holds the driving parameters of a filter stage. Lengths are in mm.
// Every other dimension of the assembly is derived from them and the
// catalog.
type Config struct {
	Name string `yaml:"name"`
	// MoveAxis is the direction the filter travels along. It must be
	// horizontal.
	MoveAxis [3]float64 `yaml:"move_axis"`
	// Pos is the world position of the idler axis at the filter holder
	// bottom height.
	Pos         [3]float64 `yaml:"pos"`
	MovDistance float64    `yaml:"mov_distance"`
	Position    float64    `yaml:"position"` // carriage position along the travel
	AluprofW    float64    `yaml:"aluprof_w"`
	BeltW       float64    `yaml:"belt_w"`
	Guide       string     `yaml:"guide"`

	Filter    FilterConfig    `yaml:"filter"`
	Tensioner TensionerConfig `yaml:"tensioner"`
	Motor     MotorConfig     `yaml:"motor"`
	Output    OutputConfig    `yaml:"output"`
}

// FilterConfig is the filter the holder carries.
type FilterConfig struct {
	L float64 `yaml:"l"` // side along the motion axis
	W float64 `yaml:"w"`
	T float64 `yaml:"t"`
}

// TensionerConfig drives the tensioner set.
type TensionerConfig struct {
	IdlerBoltM float64 `yaml:"idler_bolt_m"`
	TensBoltM  float64 `yaml:"tens_bolt_m"`
	Stroke     float64 `yaml:"stroke"`
	Gap        float64 `yaml:"gap"`
	Bearing    string  `yaml:"bearing"`
	BeltPosH   float64 `yaml:"belt_pos_h"`
	ChamferAll bool    `yaml:"chamfer_all"`
}

// MotorConfig drives the motor-pulley set.
type MotorConfig struct {
	NemaSize    int     `yaml:"nema_size"`
	BodyL       float64 `yaml:"body_l"`
	ShaftL      float64 `yaml:"shaft_l"`
	PulleyTeeth int     `yaml:"pulley_teeth"`
	PulleyGap   float64 `yaml:"pulley_gap"`
	SlotBoltM   float64 `yaml:"slot_bolt_m"`
}

// OutputConfig tells the example program where and how to write files.
type OutputConfig struct {
	Dir           string  `yaml:"dir"`
	Prefix        string  `yaml:"prefix"`
	ASCII         bool    `yaml:"ascii"`
	LinDeflection float64 `yaml:"lin_deflection"`
	AngDeflection float64 `yaml:"ang_deflection"`
	Preview       bool    `yaml:"preview"`
}

// DefaultConfig returns a 100 mm travel stage for a 60x25 mm filter on a
// MGN12H guide, driven by a NEMA 17 motor with a 6 mm GT2 belt.
func DefaultConfig() Config {
	return Config{
		Name:        "filter_stage",
		MoveAxis:    [3]float64{1, 0, 0},
		MovDistance: 100,
		AluprofW:    20,
		BeltW:       6,
		Guide:       "MGN12H",
		Filter:      FilterConfig{L: 60, W: 25, T: 2.5},
		Tensioner: TensionerConfig{
			IdlerBoltM: 3,
			TensBoltM:  3,
			Stroke:     12,
			Gap:        4,
			Bearing:    "683",
			BeltPosH:   20,
		},
		Motor: MotorConfig{
			NemaSize:    17,
			BodyL:       40,
			ShaftL:      24,
			PulleyTeeth: 20,
			PulleyGap:   1,
			SlotBoltM:   4,
		},
		Output: OutputConfig{
			Dir:           "out",
			Prefix:        "stage",
			LinDeflection: render.DefaultQuality.LinDeflection,
			AngDeflection: render.DefaultQuality.AngDeflection,
			Preview:       true,
		},
	}
}

// LoadConfig reads the YAML file at path over the default configuration.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes a YAML document over the default configuration:
// fields absent from b keep their default. Unknown fields are rejected.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values catalog lookups do not cover.
func (c Config) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("config: %w: %s", stage.ErrBadGeometry, fmt.Sprintf(format, args...))
	}
	d := c.moveAxis()
	switch {
	case c.Name == "":
		return bad("empty name")
	case r3.Norm(d) == 0:
		return bad("zero move axis")
	case math.Abs(r3.Unit(d).Z) > 1e-9:
		return bad("move axis %v is not horizontal", c.MoveAxis)
	case c.MovDistance <= 0:
		return bad("travel %g", c.MovDistance)
	case c.Position < 0 || c.Position > c.MovDistance:
		return bad("position %g outside the travel [0, %g]", c.Position, c.MovDistance)
	case c.BeltW <= 0:
		return bad("belt width %g", c.BeltW)
	case c.Filter.L <= 0 || c.Filter.W <= 0 || c.Filter.T <= 0:
		return bad("filter %gx%gx%g", c.Filter.L, c.Filter.W, c.Filter.T)
	case c.Tensioner.Gap < 0 || c.Tensioner.Gap > c.Tensioner.Stroke:
		return bad("tensioner gap %g outside the stroke [0, %g]", c.Tensioner.Gap, c.Tensioner.Stroke)
	case c.Motor.PulleyGap < 0:
		return bad("pulley gap %g", c.Motor.PulleyGap)
	}
	return c.Quality().Validate()
}

// Quality returns the mesh quality of the output settings.
func (c Config) Quality() render.Quality {
	return render.Quality{LinDeflection: c.Output.LinDeflection, AngDeflection: c.Output.AngDeflection}
}

func (c Config) moveAxis() r3.Vec {
	return r3.Vec{X: c.MoveAxis[0], Y: c.MoveAxis[1], Z: c.MoveAxis[2]}
}

func (c Config) pos() r3.Vec {
	return r3.Vec{X: c.Pos[0], Y: c.Pos[1], Z: c.Pos[2]}
}

// FilterHolderParams returns the filter holder parameters of c. The bolt
// pattern fits the configured guide on top of the default ones.
func (c Config) FilterHolderParams() obj3.FilterHolderParams {
	p := obj3.DefaultFilterHolderParams()
	p.FiltL, p.FiltW, p.FiltT = c.Filter.L, c.Filter.W, c.Filter.T
	p.BeltW = c.BeltW
	found := false
	for _, g := range p.Guides {
		found = found || g == c.Guide
	}
	if !found {
		p.Guides = append(p.Guides, c.Guide)
	}
	return p
}

// TensionerSetParams returns the tensioner set parameters of c. The number
// of idler bearings is left for the assembly to derive from the belt width.
func (c Config) TensionerSetParams() TensionerSetParams {
	p := DefaultTensionerSetParams()
	h := &p.Holder
	h.AluprofW = c.AluprofW
	h.BeltPosH = c.Tensioner.BeltPosH
	h.Tensioner.BoltIdlerM = c.Tensioner.IdlerBoltM
	h.Tensioner.BoltTensM = c.Tensioner.TensBoltM
	h.Tensioner.Stroke = c.Tensioner.Stroke
	h.Tensioner.ChamferAll = c.Tensioner.ChamferAll
	p.Idler.Bearing = c.Tensioner.Bearing
	p.Gap = c.Tensioner.Gap
	return p
}

// MotorPulleySetParams returns the motor-pulley set parameters of c.
func (c Config) MotorPulleySetParams() MotorPulleySetParams {
	p := DefaultMotorPulleySetParams()
	p.Bracket.NemaSize = c.Motor.NemaSize
	p.Bracket.BoltWallM = c.Motor.SlotBoltM
	p.Motor.BodyL = c.Motor.BodyL
	p.Motor.ShaftL = c.Motor.ShaftL
	p.Pulley.Teeth = c.Motor.PulleyTeeth
	p.Pulley.BeltW = c.BeltW
	p.PulleyGap = c.Motor.PulleyGap
	return p
}
