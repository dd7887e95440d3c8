package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// wellGeometry is the core/well pair shared by the square-well family.
type wellGeometry struct {
	core    float64
	well    float64
	coreSq  float64
	wellSq  float64
	epsilon float64
}

func newWellGeometry(kind Kind, core, lambda, epsilon float64) (wellGeometry, error) {
	if !(core > 0) || math.IsInf(core, 0) {
		return wellGeometry{}, fmt.Errorf("%s core diameter %v: %w", kind, core, ErrInvalidParameter)
	}
	if !(lambda > 1) || math.IsInf(lambda, 0) {
		return wellGeometry{}, fmt.Errorf("%s lambda %v must exceed 1: %w", kind, lambda, ErrInvalidParameter)
	}
	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return wellGeometry{}, fmt.Errorf("%s epsilon %v: %w", kind, epsilon, ErrInvalidParameter)
	}
	well := core * lambda
	return wellGeometry{core: core, well: well, coreSq: core * core, wellSq: well * well, epsilon: epsilon}, nil
}

// CoreDiameter returns the hard-core contact distance.
func (g *wellGeometry) CoreDiameter() float64 { return g.core }

// WellDiameter returns the outer edge of the well.
func (g *wellGeometry) WellDiameter() float64 { return g.well }

// Range is the well edge, the outermost event distance.
func (g *wellGeometry) Range() float64 { return g.well }

// Epsilon returns the well depth.
func (g *wellGeometry) Epsilon() float64 { return g.epsilon }

// atCore reports whether r2 is nearer the core than the well edge.
func (g *wellGeometry) atCore(r2 float64) bool {
	return 2*r2 < g.coreSq+g.wellSq
}

// coreTime is the time to core contact for a pair inside the well, or +Inf.
func (g *wellGeometry) coreTime(b, v2, r2 float64) float64 {
	return approachTime(b, v2, r2-g.coreSq, g.coreSq)
}

// insideTime is the next core contact, or failing that the exit through the
// well edge, for a pair inside the well.
func (g *wellGeometry) insideTime(b, v2, r2 float64) float64 {
	if t := g.coreTime(b, v2, r2); !math.IsInf(t, 1) {
		return t
	}
	return exitTime(b, v2, r2-g.wellSq, g.wellSq)
}

// overlapping reports whether the cores overlap beyond the tolerance band.
func (g *wellGeometry) overlapping(r2 float64) bool {
	return r2 < g.coreSq*(1-OverlapTolerance)
}

// captureSpeed returns the post-entry value of b for a pair gaining depth
// energy, and false when the pair cannot enter (repulsive step too high).
func (g *wellGeometry) captureSpeed(b, w, r2 float64) (float64, bool) {
	d := b*b + 2*g.epsilon*r2*w
	if d <= 0 {
		return 0, false
	}
	return -math.Sqrt(d), true
}

// escapeSpeed returns the post-exit value of b for a pair paying the depth
// energy, and false when it lacks the energy to leave.
func (g *wellGeometry) escapeSpeed(b, w, r2 float64) (float64, bool) {
	d := b*b - 2*g.epsilon*r2*w
	if d <= 0 {
		return 0, false
	}
	return math.Sqrt(d), true
}

// SquareWell is a hard core surrounded by a step of depth epsilon out to
// lambda times the core diameter. Negative epsilon gives a square shoulder.
type SquareWell struct {
	virialAccum
	wellGeometry
}

// NewSquareWell creates a square-well potential.
func NewSquareWell(core, lambda, epsilon float64) (*SquareWell, error) {
	g, err := newWellGeometry(KindSquareWell, core, lambda, epsilon)
	if err != nil {
		return nil, err
	}
	return &SquareWell{virialAccum: newVirialAccum(), wellGeometry: g}, nil
}

func (p *SquareWell) Kind() Kind { return KindSquareWell }

// CollisionTime returns the next core contact or well crossing.
func (p *SquareWell) CollisionTime(pr Pair, falseTime float64) float64 {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	v2 := r3.Norm2(dv)
	r2 := r3.Norm2(dr)
	if r2 < p.wellSq {
		return p.insideTime(b, v2, r2)
	}
	return approachTime(b, v2, r2-p.wellSq, p.wellSq)
}

// Bump handles core reflection, capture into the well, escape from it, or
// reflection off the inner edge when the pair lacks the energy to leave.
func (p *SquareWell) Bump(pr Pair, falseTime float64) Outcome {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	r2 := r3.Norm2(dr)
	w := invMassSum(pr)
	bNew := -b
	out := OutcomeBounce
	shift := 0.0
	switch {
	case p.atCore(r2):
	case b < 0:
		if nb, ok := p.captureSpeed(b, w, r2); ok {
			bNew, out = nb, OutcomeCapture
			shift = -NudgeFraction * p.well
		} else {
			shift = NudgeFraction * p.well
		}
	default:
		if nb, ok := p.escapeSpeed(b, w, r2); ok {
			bNew, out = nb, OutcomeEscape
			shift = NudgeFraction * p.well
		} else {
			shift = -NudgeFraction * p.well
		}
	}
	p.kick(pr, dr, b, bNew, r2, falseTime, shift)
	return out
}

// Energy is +Inf for overlapping cores, -epsilon inside the well, else 0.
func (p *SquareWell) Energy(pr Pair) float64 {
	r2 := r3.Norm2(pr.Dr)
	switch {
	case p.overlapping(r2):
		return math.Inf(1)
	case r2 < p.wellSq:
		return -p.epsilon
	}
	return 0
}
