package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tether is a two-sided hard bond: the pair separation is confined to
// [min, max] with elastic reflection at both ends.
type Tether struct {
	virialAccum
	min, max     float64
	minSq, maxSq float64
}

// NewTether creates a hard bond with the given separation window.
func NewTether(min, max float64) (*Tether, error) {
	if !(min >= 0) || !(max > min) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("tether window [%v, %v]: %w", min, max, ErrInvalidParameter)
	}
	return &Tether{virialAccum: newVirialAccum(), min: min, max: max, minSq: min * min, maxSq: max * max}, nil
}

// NewTetherAround creates a tether of nominal length with relative
// tolerance delta: [length*(1-delta), length*(1+delta)].
func NewTetherAround(length, delta float64) (*Tether, error) {
	return NewTether(length*(1-delta), length*(1+delta))
}

func (p *Tether) Kind() Kind { return KindTether }

// Window returns the allowed separation range.
func (p *Tether) Window() (min, max float64) { return p.min, p.max }

func (p *Tether) Range() float64 { return p.max }

// CollisionTime returns the time to the inner limit when approaching and
// reaching it, otherwise the time to the outer limit.
func (p *Tether) CollisionTime(pr Pair, falseTime float64) float64 {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	v2 := r3.Norm2(dv)
	r2 := r3.Norm2(dr)
	if p.minSq > 0 {
		if t := approachTime(b, v2, r2-p.minSq, p.minSq); !math.IsInf(t, 1) {
			return t
		}
	}
	return exitTime(b, v2, r2-p.maxSq, p.maxSq)
}

// Bump reflects the pair and nudges it back inside the window.
func (p *Tether) Bump(pr Pair, falseTime float64) Outcome {
	dr, dv := relative(pr, falseTime)
	b := r3.Dot(dr, dv)
	r2 := r3.Norm2(dr)
	shift := -NudgeFraction * p.max
	if 2*r2 < p.minSq+p.maxSq {
		shift = NudgeFraction * p.min
	}
	p.kick(pr, dr, b, -b, r2, falseTime, shift)
	return OutcomeBounce
}

// Energy is +Inf outside the window, else 0.
func (p *Tether) Energy(pr Pair) float64 {
	r2 := r3.Norm2(pr.Dr)
	if r2 < p.minSq*(1-OverlapTolerance) || r2 > p.maxSq*(1+OverlapTolerance) {
		return math.Inf(1)
	}
	return 0
}
