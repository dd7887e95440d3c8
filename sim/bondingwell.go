package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BondingWell is a reversible association well. Bonds are recorded in a
// BondTable shared with the caller.
//
// A pair that is not bonded interacts through the hard core only, unless both
// particles have a free slot. Then crossing the well edge inward with normal
// kinetic energy of at least Barrier forms a bond. Slower pairs pass through
// unbonded. A bonded pair stays inside the well. It dissociates at the edge
// when it has more than epsilon of normal kinetic energy, otherwise it bounces
// back.
type BondingWell struct {
	virialAccum
	wellGeometry
	barrier float64
	bonds   *BondTable
}

// NewBondingWell creates a reversible bonding well over bonds.
func NewBondingWell(core, lambda, epsilon, barrier float64, bonds *BondTable) (*BondingWell, error) {
	g, err := newWellGeometry(KindBondingWell, core, lambda, epsilon)
	if err != nil {
		return nil, err
	}
	if !(epsilon > 0) {
		return nil, fmt.Errorf("%s epsilon %v must be positive: %w", KindBondingWell, epsilon, ErrInvalidParameter)
	}
	if !(barrier >= 0) || math.IsInf(barrier, 0) {
		return nil, fmt.Errorf("%s barrier %v: %w", KindBondingWell, barrier, ErrInvalidParameter)
	}
	if bonds == nil {
		return nil, fmt.Errorf("%s requires a bond table: %w", KindBondingWell, ErrInvalidParameter)
	}
	return &BondingWell{virialAccum: newVirialAccum(), wellGeometry: g, barrier: barrier, bonds: bonds}, nil
}

func (p *BondingWell) Kind() Kind { return KindBondingWell }

// Barrier returns the activation energy for bond formation.
func (p *BondingWell) Barrier() float64 { return p.barrier }

// Bonds returns the table this potential mutates.
func (p *BondingWell) Bonds() *BondTable { return p.bonds }

func (p *BondingWell) canBond(i, j int) bool {
	return !p.bonds.IsSaturated(i) && !p.bonds.IsSaturated(j)
}

// CollisionTime returns the next core contact, well-edge reflection or
// dissociation for a bonded pair, or the next core contact or bonding
// attempt for a free pair.
func (p *BondingWell) CollisionTime(pr Pair, falseTime float64) float64 {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	v2 := r3.Norm2(dv)
	r2 := r3.Norm2(dr)
	switch {
	case p.bonds.Bonded(pr.I, pr.J):
		return p.insideTime(b, v2, r2)
	case r2 < p.wellSq || !p.canBond(pr.I, pr.J):
		return approachTime(b, v2, r2-p.coreSq, p.coreSq)
	}
	return approachTime(b, v2, r2-p.wellSq, p.wellSq)
}

// Bump resolves the event found by CollisionTime.
func (p *BondingWell) Bump(pr Pair, falseTime float64) Outcome {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	r2 := r3.Norm2(dr)
	w := invMassSum(pr)

	if p.atCore(r2) {
		p.kick(pr, dr, b, -b, r2, falseTime, 0)
		return OutcomeBounce
	}

	if p.bonds.Bonded(pr.I, pr.J) {
		if nb, ok := p.escapeSpeed(b, w, r2); ok && b > 0 {
			mustBonds(p.bonds.Unbond(pr.I, pr.J), pr, KindBondingWell)
			p.kick(pr, dr, b, nb, r2, falseTime, NudgeFraction*p.well)
			return OutcomeDissociation
		}
		p.kick(pr, dr, b, -b, r2, falseTime, -NudgeFraction*p.well)
		return OutcomeBounce
	}

	if b < 0 && b*b >= 2*p.barrier*r2*w && p.canBond(pr.I, pr.J) {
		nb, _ := p.captureSpeed(b, w, r2)
		mustBonds(p.bonds.Bond(pr.I, pr.J), pr, KindBondingWell)
		p.kick(pr, dr, b, nb, r2, falseTime, -NudgeFraction*p.well)
		return OutcomeBond
	}

	// Below the barrier: enter the well unbonded.
	p.kick(pr, dr, b, b, r2, falseTime, -NudgeFraction*p.well)
	return OutcomeNone
}

// Energy is +Inf for overlapping cores or a bonded pair outside the well,
// -epsilon for a bonded pair inside it, else 0.
func (p *BondingWell) Energy(pr Pair) float64 {
	return reactiveEnergy(&p.wellGeometry, p.bonds.Bonded(pr.I, pr.J), r3.Norm2(pr.Dr))
}

func reactiveEnergy(g *wellGeometry, bonded bool, r2 float64) float64 {
	switch {
	case g.overlapping(r2):
		return math.Inf(1)
	case !bonded:
		return 0
	case r2 > g.wellSq*(1+OverlapTolerance):
		return math.Inf(1)
	}
	return -g.epsilon
}

// mustBonds turns a bond table error raised mid-collision into an invariant
// panic.
func mustBonds(err error, pr Pair, kind Kind) {
	if err != nil {
		panic(&InvariantError{I: pr.I, J: pr.J, Kind: kind, EventTime: math.NaN(), Reason: err.Error()})
	}
}
