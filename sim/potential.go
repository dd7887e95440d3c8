package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind names a concrete hard potential.
type Kind string

const (
	KindIdeal       Kind = "ideal"
	KindHardSphere  Kind = "hard-sphere"
	KindSquareWell  Kind = "square-well"
	KindTether      Kind = "tether"
	KindBondingWell Kind = "bonding-well"
	KindRadicalWell Kind = "radical-well"
	KindHardWall    Kind = "hard-wall"
)

// ValidKinds is the set of recognized potential kinds.
// Shared by scenario validation and the CLI kinds listing.
var ValidKinds = map[Kind]bool{
	KindIdeal:       true,
	KindHardSphere:  true,
	KindSquareWell:  true,
	KindTether:      true,
	KindBondingWell: true,
	KindRadicalWell: true,
	KindHardWall:    true,
}

// KindNames returns the valid kind names in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(ValidKinds))
	for k := range ValidKinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// Outcome classifies what a bump did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeBounce
	OutcomeCapture
	OutcomeEscape
	OutcomeBond
	OutcomeDissociation
	OutcomeCombination
	OutcomeDisproportionation
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:               "none",
	OutcomeBounce:             "bounce",
	OutcomeCapture:            "capture",
	OutcomeEscape:             "escape",
	OutcomeBond:               "bond",
	OutcomeDissociation:       "dissociation",
	OutcomeCombination:        "combination",
	OutcomeDisproportionation: "disproportionation",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Pair is the subject of a two-body interaction. Dr is the minimum-image
// displacement B.Pos - A.Pos at the last synchronization.
type Pair struct {
	I, J int
	A, B *Particle
	Dr   r3.Vec
}

// Single is the subject of a one-body (boundary) interaction. Accel is the
// particle's constant acceleration from an external field.
type Single struct {
	I     int
	A     *Particle
	Accel r3.Vec
}

// Potential is the part of the hard-collision contract shared by every kind.
// The virial accumulators are overwritten by each Bump and are meant to be
// read immediately afterwards.
type Potential interface {
	Kind() Kind
	LastCollisionVirial() float64
	LastCollisionVirialTensor() mat.Symmetric
}

// PairPotential is a hard interaction between two particles.
//
// Range is the largest separation at which the pair can have an event.
// CollisionTime returns the time from now until the next qualifying event,
// given positions that are falseTime behind the current clock, or +Inf.
// Bump resolves the falseTime gap, applies the impulse and reports what
// happened. Energy is +Inf inside a forbidden region.
type PairPotential interface {
	Potential
	Range() float64
	CollisionTime(p Pair, falseTime float64) float64
	Bump(p Pair, falseTime float64) Outcome
	Energy(p Pair) float64
}

// BoundaryPotential is a hard interaction between one particle and a boundary.
type BoundaryPotential interface {
	Potential
	CollisionTime(s Single, falseTime float64) float64
	Bump(s Single, falseTime float64) Outcome
	Energy(s Single) float64
}

// Mover is implemented by potentials with their own kinematics, advanced
// together with the particles during free flight.
type Mover interface {
	Advance(dt float64)
}

// Dynamic is implemented by potentials whose bump changes their own
// kinematics, which invalidates every particle's candidate against them.
type Dynamic interface {
	Dynamic() bool
}

// Numeric tolerances shared by the concrete potentials.
const (
	// OverlapTolerance is the relative band on squared distances inside which
	// a start on the wrong side of a threshold is treated as touching.
	OverlapTolerance = 1e-10

	// NudgeFraction scales the post-event displacement (relative to the
	// threshold distance) that puts a pair strictly on the intended side of
	// a well or tether boundary.
	NudgeFraction = 1e-10
)

// virialAccum holds the per-bump virial outputs.
type virialAccum struct {
	virial float64
	tensor *mat.SymDense
}

func newVirialAccum() virialAccum {
	return virialAccum{tensor: mat.NewSymDense(3, nil)}
}

func (v *virialAccum) LastCollisionVirial() float64 {
	return v.virial
}

func (v *virialAccum) LastCollisionVirialTensor() mat.Symmetric {
	return v.tensor
}

// record stores virial = lambda*|dr|^2 and tensor = lambda*dr⊗dr.
func (v *virialAccum) record(lambda float64, dr r3.Vec) {
	v.virial = lambda * r3.Norm2(dr)
	c := [3]float64{dr.X, dr.Y, dr.Z}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v.tensor.SetSym(i, j, lambda*c[i]*c[j])
		}
	}
}

// kick applies the impulse taking b to bNew, nudges the pair by shift and
// records the virial.
func (v *virialAccum) kick(p Pair, dr r3.Vec, b, bNew, r2, falseTime, shift float64) {
	lambda := impulseFor(b, bNew, invMassSum(p), r2)
	applyImpulse(p, dr, lambda, falseTime)
	if shift != 0 {
		nudge(p, dr, shift)
	}
	v.record(lambda, dr)
}

func (v *virialAccum) reset() {
	v.virial = 0
	v.tensor.Zero()
}

// relative returns the displacement and velocity of B relative to A with
// the displacement projected forward by falseTime.
func relative(p Pair, falseTime float64) (dr, dv r3.Vec) {
	dv = r3.Sub(p.B.Vel, p.A.Vel)
	dr = r3.Add(p.Dr, r3.Scale(falseTime, dv))
	return dr, dv
}

// invMassSum returns 1/mu for the pair.
func invMassSum(p Pair) float64 {
	return p.A.InvMass + p.B.InvMass
}

// applyImpulse changes velocities by v_A += wA*lambda*dr, v_B -= wB*lambda*dr
// and moves the stale positions back by falseTime times the velocity change,
// so that a later advance over falseTime lands on the post-collision path.
func applyImpulse(p Pair, dr r3.Vec, lambda, falseTime float64) {
	imp := r3.Scale(lambda, dr)
	dvA := r3.Scale(p.A.InvMass, imp)
	dvB := r3.Scale(-p.B.InvMass, imp)
	p.A.Vel = r3.Add(p.A.Vel, dvA)
	p.B.Vel = r3.Add(p.B.Vel, dvB)
	if falseTime != 0 {
		p.A.Pos = r3.Sub(p.A.Pos, r3.Scale(falseTime, dvA))
		p.B.Pos = r3.Sub(p.B.Pos, r3.Scale(falseTime, dvB))
	}
}

// impulseFor returns lambda taking b = dr·dv to bNew.
func impulseFor(b, bNew, w, r2 float64) float64 {
	return (b - bNew) / (w * r2)
}

// nudge widens the pair separation by delta (narrows when negative) along
// dr, keeping the centre of mass fixed.
func nudge(p Pair, dr r3.Vec, delta float64) {
	w := invMassSum(p)
	r := r3.Norm(dr)
	if w == 0 || r == 0 {
		return
	}
	n := r3.Scale(delta/(r*w), dr)
	p.A.Pos = r3.Sub(p.A.Pos, r3.Scale(p.A.InvMass, n))
	p.B.Pos = r3.Add(p.B.Pos, r3.Scale(p.B.InvMass, n))
}

// approachTime is the earliest time an approaching pair reaches the
// threshold from outside: |dr + t dv|^2 = thrSq. b = dr·dv, v2 = dv·dv,
// c = |dr|^2 - thrSq. Returns +Inf when receding or missing. A start
// within the overlap band returns 0; a deeper start returns the negative
// root so the caller can detect the overlap.
func approachTime(b, v2, c, thrSq float64) float64 {
	if b >= 0 {
		return math.Inf(1)
	}
	if c < 0 && c > -OverlapTolerance*thrSq {
		return 0
	}
	disc := b*b - v2*c
	if disc <= 0 {
		return math.Inf(1)
	}
	return c / (-b + math.Sqrt(disc))
}

// exitTime is the time a pair inside the threshold reaches it moving
// outwards. A start slightly outside within the overlap band while
// receding returns 0.
func exitTime(b, v2, c, thrSq float64) float64 {
	if v2 == 0 {
		return math.Inf(1)
	}
	if c > 0 {
		if b >= 0 && c < OverlapTolerance*thrSq {
			return 0
		}
		if b >= 0 {
			return -c / (b + math.Sqrt(b*b+v2*c))
		}
	}
	disc := b*b - v2*c
	if disc < 0 {
		disc = 0
	}
	if b > 0 {
		return -c / (b + math.Sqrt(disc))
	}
	return (-b + math.Sqrt(disc)) / v2
}
