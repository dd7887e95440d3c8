// Package scenario loads declarative hard-collision scenarios from YAML or
// TOML files and builds a ready-to-initialize scheduler from them.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/hardsim/hardsim/sim"
)

// Scenario is the top-level scenario configuration.
// Loaded from YAML or TOML via Load(path).
type Scenario struct {
	Seed              int64           `yaml:"seed" toml:"seed"`
	Box               BoxSpec         `yaml:"box" toml:"box"`
	Field             []float64       `yaml:"field,omitempty" toml:"field,omitempty"` // constant acceleration
	ParallelThreshold *int            `yaml:"parallel_threshold,omitempty" toml:"parallel_threshold,omitempty"`
	Types             []TypeSpec      `yaml:"types" toml:"types"`
	Particles         ParticlesSpec   `yaml:"particles" toml:"particles"`
	Bonds             *BondsSpec      `yaml:"bonds,omitempty" toml:"bonds,omitempty"`
	Potentials        []PotentialSpec `yaml:"potentials" toml:"potentials"`
	Tethers           []TetherSpec    `yaml:"tethers,omitempty" toml:"tethers,omitempty"`
}

// BoxSpec sizes the simulation box. A zero z size makes a planar system.
type BoxSpec struct {
	Size     []float64 `yaml:"size" toml:"size"`
	Periodic []bool    `yaml:"periodic,omitempty" toml:"periodic,omitempty"` // default: all periodic
}

// TypeSpec declares a particle species.
type TypeSpec struct {
	Name       string  `yaml:"name" toml:"name"`
	Mass       float64 `yaml:"mass" toml:"mass"`
	Stationary bool    `yaml:"stationary,omitempty" toml:"stationary,omitempty"` // infinite mass
}

// ParticlesSpec places particles explicitly, on a lattice, or both. Explicit
// particles come first in index order.
type ParticlesSpec struct {
	Explicit []ParticleSpec `yaml:"explicit,omitempty" toml:"explicit,omitempty"`
	Lattice  []LatticeSpec  `yaml:"lattice,omitempty" toml:"lattice,omitempty"`
}

// ParticleSpec places one particle.
type ParticleSpec struct {
	Type     string    `yaml:"type" toml:"type"`
	Position []float64 `yaml:"position" toml:"position"`
	Velocity []float64 `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
}

// LatticeSpec fills lattice sites with Count particles of Type at the given
// temperature. All lattice blocks share one grid spanning the box.
type LatticeSpec struct {
	Type        string  `yaml:"type" toml:"type"`
	Count       int     `yaml:"count" toml:"count"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`
}

// BondsSpec configures the bond table used by the reactive potentials.
type BondsSpec struct {
	Valence    int   `yaml:"valence" toml:"valence"`
	Initiators []int `yaml:"initiators,omitempty" toml:"initiators,omitempty"` // particles capped into radicals
}

// PotentialSpec configures one potential. Pair kinds name two types; a
// hard-wall names the types it confines (empty = all).
type PotentialSpec struct {
	Kind                   string   `yaml:"kind" toml:"kind"`
	Types                  []string `yaml:"types,omitempty" toml:"types,omitempty"`
	CoreDiameter           float64  `yaml:"core_diameter,omitempty" toml:"core_diameter,omitempty"`
	Lambda                 float64  `yaml:"lambda,omitempty" toml:"lambda,omitempty"`
	Epsilon                float64  `yaml:"epsilon,omitempty" toml:"epsilon,omitempty"`
	Barrier                float64  `yaml:"barrier,omitempty" toml:"barrier,omitempty"`
	CombinationProbability *float64 `yaml:"combination_probability,omitempty" toml:"combination_probability,omitempty"`
	Axis                   string   `yaml:"axis,omitempty" toml:"axis,omitempty"`
	Position               float64  `yaml:"position,omitempty" toml:"position,omitempty"`
	Velocity               float64  `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	Mass                   float64  `yaml:"mass,omitempty" toml:"mass,omitempty"` // 0 = infinite
	Force                  float64  `yaml:"force,omitempty" toml:"force,omitempty"`
	Pressure               float64  `yaml:"pressure,omitempty" toml:"pressure,omitempty"`
	Push                   string   `yaml:"push,omitempty" toml:"push,omitempty"` // direction of the pressure force
	CollisionRadius        float64  `yaml:"collision_radius,omitempty" toml:"collision_radius,omitempty"`
}

// TetherSpec binds a hard bond to an explicit particle pair.
type TetherSpec struct {
	I         int     `yaml:"i" toml:"i"`
	J         int     `yaml:"j" toml:"j"`
	MinLength float64 `yaml:"min_length" toml:"min_length"`
	MaxLength float64 `yaml:"max_length" toml:"max_length"`
}

// Valid value registries.
var (
	validAxes = map[string]int{
		"x": 0, "y": 1, "z": 2,
	}
	validPush = map[string]bool{
		"": true, "positive": true, "negative": true,
	}
	validFormats = map[string]bool{
		".yaml": true, ".yml": true, ".toml": true,
	}
	reactiveKinds = map[sim.Kind]bool{
		sim.KindBondingWell: true, sim.KindRadicalWell: true,
	}
)

// Load reads a scenario from path. The format follows the extension: .yaml
// or .yml (strict: unknown keys rejected) or .toml (undecoded keys rejected).
func Load(path string) (*Scenario, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !validFormats[ext] {
		return nil, fmt.Errorf("scenario %s: unknown format %q; valid: .yaml, .yml, .toml", path, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	if ext == ".toml" {
		return ParseTOML(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML scenario with strict field checking.
func ParseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// ParseTOML decodes a TOML scenario, rejecting keys that match no field.
func ParseTOML(data []byte) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("parsing scenario: unknown keys %s", strings.Join(keys, ", "))
	}
	return &s, nil
}

// Validate checks that all fields in the scenario are valid.
func (s *Scenario) Validate() error {
	if _, err := vec("box.size", s.Box.Size); err != nil {
		return err
	}
	if len(s.Box.Size) == 0 {
		return fmt.Errorf("box.size is required")
	}
	for _, v := range s.Box.Size {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("box.size must be finite and non-negative, got %v", s.Box.Size)
		}
	}
	if n := len(s.Box.Periodic); n != 0 && n != len(s.Box.Size) {
		return fmt.Errorf("box.periodic has %d entries, box.size has %d", n, len(s.Box.Size))
	}
	if _, err := vec("field", s.Field); err != nil {
		return err
	}
	if s.ParallelThreshold != nil && *s.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold must be non-negative, got %d", *s.ParallelThreshold)
	}

	types, err := s.typeIndex()
	if err != nil {
		return err
	}
	n, err := s.validateParticles(types)
	if err != nil {
		return err
	}
	if err := s.validatePotentials(types); err != nil {
		return err
	}
	for k, t := range s.Tethers {
		if t.I < 0 || t.J < 0 || t.I >= n || t.J >= n || t.I == t.J {
			return fmt.Errorf("tethers[%d]: particles %d-%d outside [0, %d) or equal", k, t.I, t.J, n)
		}
	}
	if s.Bonds != nil {
		for k, i := range s.Bonds.Initiators {
			if i < 0 || i >= n {
				return fmt.Errorf("bonds.initiators[%d]: particle %d outside [0, %d)", k, i, n)
			}
		}
	}
	return nil
}

func (s *Scenario) typeIndex() (map[string]sim.TypeID, error) {
	if len(s.Types) == 0 {
		return nil, fmt.Errorf("at least one type required")
	}
	idx := make(map[string]sim.TypeID, len(s.Types))
	for k, t := range s.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("types[%d]: name is required", k)
		}
		if _, dup := idx[t.Name]; dup {
			return nil, fmt.Errorf("types[%d]: duplicate name %q", k, t.Name)
		}
		if !t.Stationary && (!(t.Mass > 0) || math.IsInf(t.Mass, 0)) {
			return nil, fmt.Errorf("types[%d]: mass must be positive and finite, got %v", k, t.Mass)
		}
		idx[t.Name] = sim.TypeID(k)
	}
	return idx, nil
}

func (s *Scenario) validateParticles(types map[string]sim.TypeID) (int, error) {
	n := 0
	for k, p := range s.Particles.Explicit {
		prefix := fmt.Sprintf("particles.explicit[%d]", k)
		if _, ok := types[p.Type]; !ok {
			return 0, fmt.Errorf("%s: unknown type %q", prefix, p.Type)
		}
		if len(p.Position) == 0 {
			return 0, fmt.Errorf("%s: position is required", prefix)
		}
		if _, err := vec(prefix+".position", p.Position); err != nil {
			return 0, err
		}
		if _, err := vec(prefix+".velocity", p.Velocity); err != nil {
			return 0, err
		}
		n++
	}
	for k, l := range s.Particles.Lattice {
		prefix := fmt.Sprintf("particles.lattice[%d]", k)
		if _, ok := types[l.Type]; !ok {
			return 0, fmt.Errorf("%s: unknown type %q", prefix, l.Type)
		}
		if l.Count <= 0 {
			return 0, fmt.Errorf("%s: count must be positive, got %d", prefix, l.Count)
		}
		if l.Temperature < 0 || math.IsNaN(l.Temperature) || math.IsInf(l.Temperature, 0) {
			return 0, fmt.Errorf("%s: temperature must be finite and non-negative, got %v", prefix, l.Temperature)
		}
		n += l.Count
	}
	if len(s.Particles.Lattice) > 0 {
		size, _ := vec("box.size", s.Box.Size)
		if size.X <= 0 || size.Y <= 0 {
			return 0, fmt.Errorf("particles.lattice needs positive box x and y sizes, got %v", s.Box.Size)
		}
	}
	return n, nil
}

func (s *Scenario) validatePotentials(types map[string]sim.TypeID) error {
	covered := make(map[[2]string]bool)
	for k, p := range s.Potentials {
		prefix := fmt.Sprintf("potentials[%d]", k)
		kind := sim.Kind(p.Kind)
		if !sim.ValidKinds[kind] {
			return fmt.Errorf("%s: unknown kind %q; valid: %s", prefix, p.Kind, strings.Join(sim.KindNames(), ", "))
		}
		for _, t := range p.Types {
			if _, ok := types[t]; !ok {
				return fmt.Errorf("%s: unknown type %q", prefix, t)
			}
		}
		if p.CombinationProbability != nil && kind != sim.KindRadicalWell {
			logrus.Warnf("%s: combination_probability ignored for kind %q", prefix, p.Kind)
		}
		switch kind {
		case sim.KindHardWall:
			if _, ok := validAxes[p.Axis]; !ok {
				return fmt.Errorf("%s: unknown axis %q; valid: x, y, z", prefix, p.Axis)
			}
			if !validPush[p.Push] {
				return fmt.Errorf("%s: unknown push %q; valid: positive, negative", prefix, p.Push)
			}
			if p.Pressure != 0 && p.Push == "" {
				return fmt.Errorf("%s: pressure needs a push direction", prefix)
			}
			if p.Pressure != 0 && p.Force != 0 {
				return fmt.Errorf("%s: set force or pressure, not both", prefix)
			}
			if p.Mass < 0 {
				return fmt.Errorf("%s: mass must be non-negative (0 = infinite), got %v", prefix, p.Mass)
			}
			if (p.Pressure != 0 || p.Force != 0) && p.Mass == 0 {
				logrus.Warnf("%s: force on an infinitely massive wall has no effect", prefix)
			}
			if ax := validAxes[p.Axis]; ax < len(s.Box.Periodic) && s.Box.Periodic[ax] {
				return fmt.Errorf("%s: wall axis %s is periodic", prefix, p.Axis)
			}
			continue
		case sim.KindTether:
			return fmt.Errorf("%s: tether binds explicit particle pairs; use tethers", prefix)
		}
		if len(p.Types) != 2 {
			return fmt.Errorf("%s: %s needs exactly two types, got %d", prefix, p.Kind, len(p.Types))
		}
		if reactiveKinds[kind] && s.Bonds == nil {
			return fmt.Errorf("%s: %s needs a bonds section", prefix, p.Kind)
		}
		a, b := p.Types[0], p.Types[1]
		if a > b {
			a, b = b, a
		}
		if covered[[2]string{a, b}] {
			return fmt.Errorf("%s: types %s-%s already bound", prefix, a, b)
		}
		covered[[2]string{a, b}] = true
	}
	return nil
}

// vec converts 0, 2 or 3 components into a vector. Two components leave z at 0.
func vec(name string, c []float64) (r3.Vec, error) {
	var v r3.Vec
	switch len(c) {
	case 0:
		return v, nil
	case 2, 3:
	default:
		return v, fmt.Errorf("%s must have 2 or 3 components, got %d", name, len(c))
	}
	for _, x := range c {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, fmt.Errorf("%s must be finite, got %v", name, c)
		}
	}
	v.X, v.Y = c[0], c[1]
	if len(c) == 3 {
		v.Z = c[2]
	}
	return v, nil
}
