package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// CollisionEvent describes one resolved event. J equals I for boundary events.
type CollisionEvent struct {
	Time      float64
	I, J      int
	Potential Potential
	Outcome   Outcome
	Virial    float64
}

// Listener receives every resolved event right after its bump, while the
// potential's virial accumulators still describe it.
type Listener interface {
	CollisionOccurred(ev CollisionEvent)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev CollisionEvent)

func (f ListenerFunc) CollisionOccurred(ev CollisionEvent) { f(ev) }

// Scheduler is the event-driven integrator. It owns one Agent per particle,
// fires events in chronological order and keeps the agents consistent by
// up-list and down-list recomputation after every event.
//
// Agents hold absolute event times, so free flight never has to touch them:
// Agent(i).CollisionTime(Clock()) is the remaining time to particle i's event.
type Scheduler struct {
	cfg          SchedulerConfig
	particles    []Particle
	boundary     Boundary
	interactions *Interactions

	agents  []Agent
	queue   *agentQueue
	movers  []Mover
	halfBox [3]float64 // half edge per periodic axis, +Inf elsewhere

	clock     float64
	events    int64
	ready     bool
	listeners []Listener
}

// NewScheduler validates the configuration and creates a scheduler over
// particles. The slice is shared with the caller and mutated in place.
func NewScheduler(cfg SchedulerConfig, particles []Particle, boundary Boundary, interactions *Interactions) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if boundary == nil || interactions == nil {
		return nil, fmt.Errorf("scheduler needs a boundary and interactions: %w", ErrInvalidParameter)
	}
	hasField := cfg.Field != (r3.Vec{})
	types := make([]TypeID, len(particles))
	for i := range particles {
		p := &particles[i]
		if !(p.InvMass >= 0) || math.IsInf(p.InvMass, 0) {
			return nil, fmt.Errorf("particle %d inverse mass %v: %w", i, p.InvMass, ErrInvalidParameter)
		}
		if hasField && !p.Mobile() {
			return nil, fmt.Errorf("particle %d is stationary: %w", i, ErrFieldWithImmobile)
		}
		types[i] = p.Type
	}
	if err := interactions.Validate(types); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:          cfg,
		particles:    particles,
		boundary:     boundary,
		interactions: interactions,
	}
	size := boundary.Dimensions()
	for a, periodic := range boundary.PeriodicAxes() {
		s.halfBox[a] = math.Inf(1)
		if periodic {
			s.halfBox[a] = 0.5 * component(size, a)
		}
	}
	for _, p := range interactions.Potentials() {
		if m, ok := p.(Mover); ok {
			s.movers = append(s.movers, m)
		}
		pp, ok := p.(PairPotential)
		if !ok {
			continue
		}
		for a, half := range s.halfBox {
			if pp.Range() >= half {
				return nil, fmt.Errorf("%s range %v reaches half the periodic box along axis %d: %w",
					pp.Kind(), pp.Range(), a, ErrInvalidParameter)
			}
		}
	}
	return s, nil
}

// AddListener registers l for every subsequent event.
func (s *Scheduler) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Scheduler) Particles() []Particle { return s.particles }
func (s *Scheduler) Interactions() *Interactions { return s.interactions }
func (s *Scheduler) Config() SchedulerConfig { return s.cfg }
func (s *Scheduler) Clock() float64 { return s.clock }
func (s *Scheduler) EventCount() int64 { return s.events }

// Agent returns a copy of particle i's agent.
func (s *Scheduler) Agent(i int) Agent {
	if !s.ready {
		return idleAgent()
	}
	return s.agents[i]
}

// Initialize checks the configuration for overlaps, sets the clock to zero
// and computes every agent by a full up-list scan.
func (s *Scheduler) Initialize() error {
	s.clock = 0
	s.events = 0
	if err := s.recompute(); err != nil {
		return err
	}
	next := math.Inf(1)
	if i := s.queue.next(); i != NoPartner {
		next = s.agents[i].EventTime
	}
	logrus.Infof("Initialized collision scheduler: %d particles, %d movers, first event at t=%.6g",
		len(s.particles), len(s.movers), next)
	return nil
}

// Reset recomputes every agent at the current clock. Call it after editing
// particle state or bonds outside of a collision.
func (s *Scheduler) Reset() error {
	return s.recompute()
}

func (s *Scheduler) recompute() error {
	s.ready = false
	if err := s.checkOverlaps(); err != nil {
		return err
	}
	s.agents = make([]Agent, len(s.particles))
	for i := range s.particles {
		s.agents[i] = s.earliest(i)
	}
	s.queue = newAgentQueue(s.agents)
	s.ready = true
	return nil
}

// Step advances the clock by budget, firing every event that falls inside
// it in chronological order.
func (s *Scheduler) Step(budget float64) error {
	if !s.ready {
		return ErrNotInitialized
	}
	if !(budget >= 0) || math.IsInf(budget, 0) {
		return fmt.Errorf("step budget %v: %w", budget, ErrInvalidParameter)
	}
	end := s.clock + budget
	for {
		i := s.queue.next()
		if i == NoPartner || s.agents[i].EventTime > end {
			break
		}
		s.fire(i)
	}
	s.advance(end - s.clock)
	s.clock = end
	return nil
}

// StepEvent advances to the next collision and fires it. Image refreshes on
// the way are processed silently. It returns ErrNoEvent, with the clock
// unchanged, when nothing is scheduled, and ErrRefreshLimit, with the clock
// left at the last refresh, after MaxRefreshes refreshes without a collision.
func (s *Scheduler) StepEvent() (CollisionEvent, error) {
	if !s.ready {
		return CollisionEvent{}, ErrNotInitialized
	}
	for refreshes := 0; ; refreshes++ {
		i := s.queue.next()
		if i == NoPartner || math.IsInf(s.agents[i].EventTime, 1) {
			return CollisionEvent{}, ErrNoEvent
		}
		if s.agents[i].Potential() == nil && s.cfg.MaxRefreshes > 0 && refreshes == s.cfg.MaxRefreshes {
			return CollisionEvent{}, fmt.Errorf("%d image refreshes up to t=%.6g: %w", refreshes, s.clock, ErrRefreshLimit)
		}
		if ev, ok := s.fire(i); ok {
			return ev, nil
		}
	}
}

// PotentialEnergy sums the energy of every bound pair and boundary.
func (s *Scheduler) PotentialEnergy() float64 {
	u := 0.0
	for i := range s.particles {
		for j := i + 1; j < len(s.particles); j++ {
			if pot := s.pairPotential(i, j); pot != nil {
				u += pot.Energy(s.pair(i, j))
			}
		}
		for _, b := range s.interactions.Boundary(s.particles[i].Type) {
			u += b.Energy(s.single(i))
		}
	}
	return u
}

// fire advances to agent i's event and resolves it. It reports false for an
// image refresh, which only rescans particle i.
func (s *Scheduler) fire(i int) (CollisionEvent, bool) {
	a := s.agents[i]
	s.advance(a.EventTime - s.clock)
	s.clock = a.EventTime

	if a.Potential() == nil {
		s.upList(i)
		s.downList(i)
		return CollisionEvent{}, false
	}

	ev := CollisionEvent{Time: s.clock, I: i, J: a.Partner, Potential: a.Potential()}
	if a.Pair != nil {
		ev.Outcome = a.Pair.Bump(s.pair(i, a.Partner), 0)
		ev.Virial = a.Pair.LastCollisionVirial()
		s.refreshAfter(i, a.Partner)
	} else {
		ev.Outcome = a.Boundary.Bump(s.single(i), 0)
		ev.Virial = a.Boundary.LastCollisionVirial()
		s.refreshAfter(i, i)
		if d, ok := a.Boundary.(Dynamic); ok && d.Dynamic() {
			s.refreshBoundary(a.Boundary, i)
		}
	}
	s.events++

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("[t=%.6f] %d-%d %s %s", ev.Time, ev.I, ev.J, ev.Potential.Kind(), ev.Outcome)
	}
	for _, l := range s.listeners {
		l.CollisionOccurred(ev)
	}
	return ev, true
}

// refreshAfter recomputes the agents invalidated by an event on c1 and c2
// (c1 <= c2, equal for boundary events): every agent scheduled against a
// collider, then the colliders' own up and down lists.
func (s *Scheduler) refreshAfter(c1, c2 int) {
	for k := 0; k < c2; k++ {
		if k == c1 {
			continue
		}
		if p := s.agents[k].Partner; p == c1 || p == c2 {
			s.upList(k)
		}
	}
	s.upList(c1)
	s.downList(c1)
	if c2 != c1 {
		s.upList(c2)
		s.downList(c2)
	}
}

// refreshBoundary updates every particle's candidate against a boundary
// whose own kinematics just changed.
func (s *Scheduler) refreshBoundary(b BoundaryPotential, cause int) {
	for k := range s.particles {
		if k == cause {
			continue
		}
		if s.agents[k].Boundary == b {
			s.upList(k)
			continue
		}
		if !s.governs(b, k) {
			continue
		}
		if t := s.boundaryTime(k, b); t < s.agents[k].EventTime {
			s.setAgent(k, Agent{EventTime: t, Partner: k, Boundary: b})
		}
	}
}

func (s *Scheduler) governs(b BoundaryPotential, k int) bool {
	for _, g := range s.interactions.Boundary(s.particles[k].Type) {
		if g == b {
			return true
		}
	}
	return false
}

func (s *Scheduler) upList(i int) {
	s.setAgent(i, s.earliest(i))
}

// downList offers particle i's new trajectory to every agent earlier in
// iteration order, which would otherwise never look at i.
func (s *Scheduler) downList(i int) {
	for j := 0; j < i; j++ {
		pot := s.pairPotential(j, i)
		if pot == nil {
			continue
		}
		if t := s.pairTime(j, i, pot); t < s.agents[j].EventTime {
			s.setAgent(j, Agent{EventTime: t, Partner: i, Pair: pot})
		}
	}
}

// earliest scans particle i's up list and boundaries. When some pair of i
// may change minimum image first, the agent becomes a refresh of i at that
// time.
func (s *Scheduler) earliest(i int) Agent {
	a := idleAgent()
	refresh := math.Inf(1)
	for j := range s.particles {
		if j == i {
			continue
		}
		pot := s.pairPotential(i, j)
		if pot == nil {
			continue
		}
		refresh = math.Min(refresh, s.horizon(i, j, pot))
		if j < i {
			continue
		}
		if t := s.pairTime(i, j, pot); t < a.EventTime {
			a = Agent{EventTime: t, Partner: j, Pair: pot}
		}
	}
	for _, b := range s.interactions.Boundary(s.particles[i].Type) {
		if t := s.boundaryTime(i, b); t < a.EventTime {
			a = Agent{EventTime: t, Partner: i, Boundary: b}
		}
	}
	if t := s.clock + refresh; t < a.EventTime {
		a = Agent{EventTime: t, Partner: i}
	}
	return a
}

// horizon is how long the minimum image of pair i-j stays the only one that
// can reach the potential's range at the current relative velocity: another
// image needs some periodic component to cover half the box less the range.
func (s *Scheduler) horizon(i, j int, pot PairPotential) float64 {
	dv := r3.Sub(s.particles[j].Vel, s.particles[i].Vel)
	h := math.Inf(1)
	for a, half := range s.halfBox {
		if math.IsInf(half, 1) {
			continue
		}
		if v := math.Abs(component(dv, a)); v > 0 {
			h = math.Min(h, (half-pot.Range())/v)
		}
	}
	return h
}

func (s *Scheduler) setAgent(i int, a Agent) {
	s.agents[i] = a
	s.queue.update(i)
}

func (s *Scheduler) pairPotential(i, j int) PairPotential {
	return s.interactions.Pair(i, j, s.particles[i].Type, s.particles[j].Type)
}

func (s *Scheduler) pair(i, j int) Pair {
	a, b := &s.particles[i], &s.particles[j]
	return Pair{I: i, J: j, A: a, B: b, Dr: s.boundary.NearestImage(r3.Sub(b.Pos, a.Pos))}
}

func (s *Scheduler) single(i int) Single {
	return Single{I: i, A: &s.particles[i], Accel: s.cfg.Field}
}

// pairTime returns the absolute time of the next i-j event.
func (s *Scheduler) pairTime(i, j int, pot PairPotential) float64 {
	return s.clock + s.checked(pot.CollisionTime(s.pair(i, j), 0), i, j, pot.Kind())
}

func (s *Scheduler) boundaryTime(i int, b BoundaryPotential) float64 {
	return s.clock + s.checked(b.CollisionTime(s.single(i), 0), i, i, b.Kind())
}

// checked enforces a non-negative collision time. Values inside the
// tolerance band are clamped to zero; anything else aborts the run.
func (s *Scheduler) checked(t float64, i, j int, kind Kind) float64 {
	switch {
	case t >= 0:
		return t
	case t >= -s.cfg.TimeTolerance:
		logrus.Warnf("[t=%.6f] clamping collision time %.3g for %d-%d (%s) to 0", s.clock, t, i, j, kind)
		return 0
	case math.IsNaN(t):
		panic(&InvariantError{Time: s.clock, EventTime: t, I: i, J: j, Kind: kind, Reason: "collision time is NaN"})
	}
	panic(&InvariantError{Time: s.clock, EventTime: t, I: i, J: j, Kind: kind, Reason: "negative collision time"})
}

func (s *Scheduler) checkOverlaps() error {
	for i := range s.particles {
		for j := i + 1; j < len(s.particles); j++ {
			pot := s.pairPotential(i, j)
			if pot == nil {
				continue
			}
			pr := s.pair(i, j)
			if math.IsInf(pot.Energy(pr), 1) {
				return &OverlapError{I: i, J: j, Kind: pot.Kind(), Separation: r3.Norm(pr.Dr)}
			}
		}
		for _, b := range s.interactions.Boundary(s.particles[i].Type) {
			if math.IsInf(b.Energy(s.single(i)), 1) {
				return &OverlapError{I: i, J: i, Kind: b.Kind()}
			}
		}
	}
	return nil
}

// advance moves every mobile particle and mover by free flight over dt.
func (s *Scheduler) advance(dt float64) {
	if dt < 0 {
		panic(&InvariantError{Time: s.clock, EventTime: dt, I: NoPartner, J: NoPartner, Reason: "free flight backwards in time"})
	}
	for _, m := range s.movers {
		m.Advance(dt)
	}
	if dt == 0 {
		return
	}
	n := len(s.particles)
	if s.cfg.ParallelThreshold == 0 || n <= s.cfg.ParallelThreshold {
		if err := s.flight(0, n, dt); err != nil {
			panic(err)
		}
		return
	}
	w := s.cfg.workers()
	chunk := (n + w - 1) / w
	var g errgroup.Group
	g.SetLimit(w)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			return s.flight(lo, hi, dt)
		})
	}
	if err := g.Wait(); err != nil {
		panic(err)
	}
}

// flight moves particles [lo, hi) and reports the first one whose position
// left the finite numbers.
func (s *Scheduler) flight(lo, hi int, dt float64) error {
	field := s.cfg.Field
	half := r3.Scale(0.5*dt*dt, field)
	dv := r3.Scale(dt, field)
	accelerated := field != (r3.Vec{})
	for i := lo; i < hi; i++ {
		p := &s.particles[i]
		if !p.Mobile() {
			continue
		}
		p.Pos = r3.Add(p.Pos, r3.Scale(dt, p.Vel))
		if accelerated {
			p.Pos = r3.Add(p.Pos, half)
			p.Vel = r3.Add(p.Vel, dv)
		}
		if !finite(p.Pos) {
			return &InvariantError{Time: s.clock, EventTime: math.NaN(), I: i, J: i, Reason: "non-finite position after free flight"}
		}
	}
	return nil
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
