package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Float64Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Float64Source interface {
	Float64() float64
}

// RadicalWell drives free-radical polymerization through a square well.
//
// Pairs that are not bonded bounce elastically off the well edge unless they
// react there:
//   - radical + virgin: bond with a capture impulse.
//   - radical + radical: with probability CombinationProbability bond with a
//     capture impulse, otherwise disproportionate (both become inert) with an
//     elastic bounce.
//
// Saturated particles never react. Bonds are permanent: a bonded pair is held
// between the core and the well edge like a tether.
type RadicalWell struct {
	virialAccum
	wellGeometry
	combination float64
	bonds       *BondTable
	rng         Float64Source
}

// NewRadicalWell creates a radical polymerization well over bonds. The bond
// table must have a valence of at least 2.
func NewRadicalWell(core, lambda, epsilon, combination float64, bonds *BondTable, rng Float64Source) (*RadicalWell, error) {
	g, err := newWellGeometry(KindRadicalWell, core, lambda, epsilon)
	if err != nil {
		return nil, err
	}
	if !(epsilon > 0) {
		return nil, fmt.Errorf("%s epsilon %v must be positive: %w", KindRadicalWell, epsilon, ErrInvalidParameter)
	}
	if !(combination >= 0 && combination <= 1) {
		return nil, fmt.Errorf("%s combination probability %v: %w", KindRadicalWell, combination, ErrInvalidParameter)
	}
	if bonds == nil || rng == nil {
		return nil, fmt.Errorf("%s requires a bond table and a random source: %w", KindRadicalWell, ErrInvalidParameter)
	}
	if bonds.Valence() < 2 {
		return nil, fmt.Errorf("%s valence %d below 2: %w", KindRadicalWell, bonds.Valence(), ErrInvalidValence)
	}
	return &RadicalWell{virialAccum: newVirialAccum(), wellGeometry: g, combination: combination, bonds: bonds, rng: rng}, nil
}

func (p *RadicalWell) Kind() Kind { return KindRadicalWell }

// CombinationProbability returns the chance that two radicals bond.
func (p *RadicalWell) CombinationProbability() float64 { return p.combination }

// Bonds returns the table this potential mutates.
func (p *RadicalWell) Bonds() *BondTable { return p.bonds }

// CollisionTime holds bonded pairs inside the well. A free pair inside the
// well collides at once if approaching and never otherwise; outside it hits
// the well edge.
func (p *RadicalWell) CollisionTime(pr Pair, falseTime float64) float64 {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	v2 := r3.Norm2(dv)
	r2 := r3.Norm2(dr)
	switch {
	case p.bonds.Bonded(pr.I, pr.J):
		return p.insideTime(b, v2, r2)
	case r2 < p.wellSq:
		if b < 0 {
			return 0
		}
		return math.Inf(1)
	}
	return approachTime(b, v2, r2-p.wellSq, p.wellSq)
}

// Bump resolves core contact, tether reflection or the reaction state
// machine at the well edge.
func (p *RadicalWell) Bump(pr Pair, falseTime float64) Outcome {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	r2 := r3.Norm2(dr)

	if p.atCore(r2) {
		p.kick(pr, dr, b, -b, r2, falseTime, 0)
		return OutcomeBounce
	}
	if p.bonds.Bonded(pr.I, pr.J) {
		p.kick(pr, dr, b, -b, r2, falseTime, -NudgeFraction*p.well)
		return OutcomeBounce
	}

	out := p.react(pr.I, pr.J)
	switch out {
	case OutcomeBond, OutcomeCombination:
		nb, _ := p.captureSpeed(b, invMassSum(pr), r2)
		mustBonds(p.bonds.Bond(pr.I, pr.J), pr, KindRadicalWell)
		p.kick(pr, dr, b, nb, r2, falseTime, -NudgeFraction*p.well)
		return out
	case OutcomeDisproportionation:
		p.bonds.Disproportionate(pr.I, pr.J)
	}
	p.kick(pr, dr, b, -b, r2, falseTime, NudgeFraction*p.well)
	if out == OutcomeNone {
		return OutcomeBounce
	}
	return out
}

// react decides the reaction of a free pair at the well edge. It draws from
// the random source only for radical + radical.
func (p *RadicalWell) react(i, j int) Outcome {
	t := p.bonds
	switch {
	case t.IsSaturated(i) || t.IsSaturated(j):
		return OutcomeNone
	case t.IsRadical(i) && t.IsRadical(j):
		if p.rng.Float64() < p.combination {
			return OutcomeCombination
		}
		return OutcomeDisproportionation
	case (t.IsRadical(i) && t.IsVirgin(j)) || (t.IsVirgin(i) && t.IsRadical(j)):
		return OutcomeBond
	}
	return OutcomeNone
}

// Energy is +Inf for overlapping cores or a bonded pair outside the well,
// -epsilon for a bonded pair inside it, else 0.
func (p *RadicalWell) Energy(pr Pair) float64 {
	return reactiveEnergy(&p.wellGeometry, p.bonds.Bonded(pr.I, pr.J), r3.Norm2(pr.Dr))
}
