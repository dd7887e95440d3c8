package scenario

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hardsim/hardsim/sim"
)

// Built is a scenario turned into kernel objects. The scheduler is not yet
// initialized.
type Built struct {
	Scheduler *sim.Scheduler
	Particles []sim.Particle
	Bonds     *sim.BondTable // nil without a bonds section
	Walls     []*sim.HardWall
	RNG       *sim.PartitionedRNG
	Box       *sim.Box
}

// Build validates the scenario and assembles particles, bond table,
// potentials and scheduler.
func (s *Scenario) Build() (*Built, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	types, _ := s.typeIndex()
	out := &Built{RNG: sim.NewPartitionedRNG(sim.NewSimulationKey(s.Seed))}

	size, _ := vec("box.size", s.Box.Size)
	out.Box = &sim.Box{Size: size, Periodic: s.periodic()}

	particles, err := s.placeParticles(types, size, out.RNG)
	if err != nil {
		return nil, err
	}
	out.Particles = particles

	if s.Bonds != nil {
		bonds, err := sim.NewBondTable(len(particles), s.Bonds.Valence)
		if err != nil {
			return nil, err
		}
		for _, i := range s.Bonds.Initiators {
			if err := bonds.Cap(i); err != nil {
				return nil, fmt.Errorf("bonds.initiators: %w", err)
			}
		}
		out.Bonds = bonds
	}

	interactions := sim.NewInteractions()
	for k := range s.Potentials {
		if err := s.bindPotential(k, types, size, out, interactions); err != nil {
			return nil, err
		}
	}
	for k, t := range s.Tethers {
		tether, err := sim.NewTether(t.MinLength, t.MaxLength)
		if err != nil {
			return nil, fmt.Errorf("tethers[%d]: %w", k, err)
		}
		interactions.SetPair(t.I, t.J, tether)
	}

	cfg := sim.DefaultSchedulerConfig()
	cfg.Field, _ = vec("field", s.Field)
	if s.ParallelThreshold != nil {
		cfg.ParallelThreshold = *s.ParallelThreshold
	}
	sched, err := sim.NewScheduler(cfg, particles, out.Box, interactions)
	if err != nil {
		return nil, err
	}
	out.Scheduler = sched
	logrus.Infof("Built scenario: %d types, %d particles, %d potentials, %d tethers",
		len(s.Types), len(particles), len(s.Potentials), len(s.Tethers))
	return out, nil
}

// periodic returns the per-axis periodicity. Without an explicit setting
// every axis is periodic except those confined by a hard wall.
func (s *Scenario) periodic() [3]bool {
	var p [3]bool
	if len(s.Box.Periodic) > 0 {
		copy(p[:], s.Box.Periodic)
		return p
	}
	p = [3]bool{true, true, true}
	for _, ps := range s.Potentials {
		if sim.Kind(ps.Kind) == sim.KindHardWall {
			p[validAxes[ps.Axis]] = false
		}
	}
	return p
}

func (s *Scenario) bindPotential(k int, types map[string]sim.TypeID, size r3.Vec, out *Built, in *sim.Interactions) error {
	ps := s.Potentials[k]
	prefix := fmt.Sprintf("potentials[%d]", k)
	kind := sim.Kind(ps.Kind)

	if kind == sim.KindHardWall {
		wall, err := s.newWall(ps, size)
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		out.Walls = append(out.Walls, wall)
		names := ps.Types
		if len(names) == 0 {
			for _, t := range s.Types {
				names = append(names, t.Name)
			}
		}
		for _, n := range names {
			in.AddBoundary(types[n], wall)
		}
		return nil
	}

	var (
		pot sim.PairPotential
		err error
	)
	switch kind {
	case sim.KindIdeal:
		pot = sim.NewIdeal()
	case sim.KindHardSphere:
		pot, err = sim.NewHardSphere(ps.CoreDiameter)
	case sim.KindSquareWell:
		pot, err = sim.NewSquareWell(ps.CoreDiameter, ps.Lambda, ps.Epsilon)
	case sim.KindBondingWell:
		pot, err = sim.NewBondingWell(ps.CoreDiameter, ps.Lambda, ps.Epsilon, ps.Barrier, out.Bonds)
	case sim.KindRadicalWell:
		p := 0.0
		if ps.CombinationProbability != nil {
			p = *ps.CombinationProbability
		}
		pot, err = sim.NewRadicalWell(ps.CoreDiameter, ps.Lambda, ps.Epsilon, p, out.Bonds,
			out.RNG.ForSubsystem(sim.SubsystemReaction))
	default:
		return fmt.Errorf("%s: kind %q cannot bind a type pair", prefix, ps.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	in.SetTypes(types[ps.Types[0]], types[ps.Types[1]], pot)
	return nil
}

func (s *Scenario) newWall(ps PotentialSpec, size r3.Vec) (*sim.HardWall, error) {
	axis := validAxes[ps.Axis]
	cfg := sim.WallConfig{
		Axis:     axis,
		Radius:   ps.CollisionRadius,
		Position: ps.Position,
		Velocity: ps.Velocity,
		Force:    ps.Force,
	}
	if ps.Mass > 0 {
		cfg.InvMass = 1 / ps.Mass
	}
	if ps.Pressure != 0 {
		f := ps.Pressure * wallArea(size, axis)
		if ps.Push == "negative" {
			f = -f
		}
		cfg.Force = f
	}
	return sim.NewHardWall(cfg)
}

// wallArea is the product of the box edges transverse to axis, skipping a
// zero edge (planar systems give a length).
func wallArea(size r3.Vec, axis int) float64 {
	area := 1.0
	for a, l := range [3]float64{size.X, size.Y, size.Z} {
		if a != axis && l > 0 {
			area *= l
		}
	}
	return area
}

// placeParticles creates explicit particles first, then lattice blocks.
func (s *Scenario) placeParticles(types map[string]sim.TypeID, size r3.Vec, rng *sim.PartitionedRNG) ([]sim.Particle, error) {
	var ps []sim.Particle
	for _, e := range s.Particles.Explicit {
		t := types[e.Type]
		pos, _ := vec("position", e.Position)
		vel, _ := vec("velocity", e.Velocity)
		ps = append(ps, sim.Particle{Type: t, Pos: pos, Vel: vel, InvMass: s.invMass(t)})
	}
	if len(s.Particles.Lattice) == 0 {
		return ps, nil
	}

	total := 0
	for _, l := range s.Particles.Lattice {
		total += l.Count
	}
	sites := latticeSites(total, size)
	velRNG := rng.ForSubsystem(sim.SubsystemVelocities)
	start := len(ps)
	site := 0
	for _, l := range s.Particles.Lattice {
		t := types[l.Type]
		w := s.invMass(t)
		sigma := 0.0
		if w > 0 {
			sigma = math.Sqrt(l.Temperature * w)
		}
		for c := 0; c < l.Count; c++ {
			v := r3.Vec{X: sigma * velRNG.NormFloat64(), Y: sigma * velRNG.NormFloat64()}
			if size.Z > 0 {
				v.Z = sigma * velRNG.NormFloat64()
			}
			if w == 0 {
				v = r3.Vec{}
			}
			ps = append(ps, sim.Particle{Type: t, Pos: sites[site], Vel: v, InvMass: w})
			site++
		}
	}
	zeroMomentum(ps[start:])
	return ps, nil
}

func (s *Scenario) invMass(t sim.TypeID) float64 {
	ts := s.Types[t]
	if ts.Stationary {
		return 0
	}
	return 1 / ts.Mass
}

// latticeSites returns n sites of the smallest simple cubic (square when the
// box z size is 0) grid with at least n sites, cell-centred in the box.
func latticeSites(n int, size r3.Vec) []r3.Vec {
	planar := size.Z <= 0
	dim := 3.0
	if planar {
		dim = 2
	}
	m := int(math.Ceil(math.Pow(float64(n), 1/dim) - 1e-9))
	if m < 1 {
		m = 1
	}
	for math.Pow(float64(m), dim) < float64(n) {
		m++
	}
	mz := m
	if planar {
		mz = 1
	}
	sites := make([]r3.Vec, 0, n)
	for iz := 0; iz < mz && len(sites) < n; iz++ {
		for iy := 0; iy < m && len(sites) < n; iy++ {
			for ix := 0; ix < m && len(sites) < n; ix++ {
				p := r3.Vec{
					X: (float64(ix) + 0.5) * size.X / float64(m),
					Y: (float64(iy) + 0.5) * size.Y / float64(m),
				}
				if !planar {
					p.Z = (float64(iz) + 0.5) * size.Z / float64(m)
				}
				sites = append(sites, p)
			}
		}
	}
	return sites
}

// zeroMomentum removes the centre-of-mass velocity of the mobile particles.
func zeroMomentum(ps []sim.Particle) {
	mass := 0.0
	for i := range ps {
		if ps[i].Mobile() {
			mass += 1 / ps[i].InvMass
		}
	}
	if mass == 0 {
		return
	}
	vcm := r3.Scale(1/mass, sim.Momentum(ps))
	for i := range ps {
		if ps[i].Mobile() {
			ps[i].Vel = r3.Sub(ps[i].Vel, vcm)
		}
	}
}
