package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ideal is the null interaction: particles pass through each other.
type Ideal struct {
	virialAccum
}

// NewIdeal creates the null pair potential.
func NewIdeal() *Ideal {
	return &Ideal{virialAccum: newVirialAccum()}
}

func (p *Ideal) Kind() Kind { return KindIdeal }

func (p *Ideal) Range() float64 { return 0 }

func (p *Ideal) CollisionTime(Pair, float64) float64 { return math.Inf(1) }

// Bump panics: an ideal pair is never scheduled.
func (p *Ideal) Bump(pr Pair, _ float64) Outcome {
	panic(&InvariantError{I: pr.I, J: pr.J, Kind: KindIdeal, EventTime: math.NaN(), Reason: "bump on ideal pair"})
}

func (p *Ideal) Energy(Pair) float64 { return 0 }

// HardSphere is an elastic hard core of the given contact diameter.
type HardSphere struct {
	virialAccum
	diameter float64
	sigSq    float64
}

// NewHardSphere creates a hard-sphere potential. The diameter is the contact
// distance of the pair (the mean of the two species' diameters for mixtures).
func NewHardSphere(diameter float64) (*HardSphere, error) {
	if !(diameter > 0) || math.IsInf(diameter, 0) {
		return nil, fmt.Errorf("hard-sphere diameter %v: %w", diameter, ErrInvalidParameter)
	}
	return &HardSphere{virialAccum: newVirialAccum(), diameter: diameter, sigSq: diameter * diameter}, nil
}

func (p *HardSphere) Kind() Kind { return KindHardSphere }

// Diameter returns the contact distance.
func (p *HardSphere) Diameter() float64 { return p.diameter }

func (p *HardSphere) Range() float64 { return p.diameter }

// CollisionTime returns the time to contact for an approaching pair.
func (p *HardSphere) CollisionTime(pr Pair, falseTime float64) float64 {
	dr, dv := relative(pr, falseTime)
	return approachTime(r3.Dot(dr, dv), r3.Norm2(dv), r3.Norm2(dr)-p.sigSq, p.sigSq)
}

// Bump reflects the normal relative velocity.
func (p *HardSphere) Bump(pr Pair, falseTime float64) Outcome {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	r2 := r3.Norm2(dr)
	p.kick(pr, dr, b, -b, r2, falseTime, 0)
	return OutcomeBounce
}

// Energy is +Inf for overlapping cores, else 0.
func (p *HardSphere) Energy(pr Pair) float64 {
	if r3.Norm2(pr.Dr) < p.sigSq*(1-OverlapTolerance) {
		return math.Inf(1)
	}
	return 0
}
