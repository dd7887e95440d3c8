package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TypeID tags a particle with the species used to select its potentials.
type TypeID int

// Particle is a point particle owned by the simulation box. It is mutated
// only by free flight and by collision resolution.
type Particle struct {
	Type    TypeID
	Pos     r3.Vec
	Vel     r3.Vec
	InvMass float64 // 0 = stationary (infinite mass)
}

// Mobile reports whether free flight moves the particle.
func (p *Particle) Mobile() bool {
	return p.InvMass > 0
}

// Boundary supplies minimum-image displacements and box dimensions.
// PeriodicAxes reports which axes NearestImage folds.
type Boundary interface {
	NearestImage(dr r3.Vec) r3.Vec
	Dimensions() r3.Vec
	PeriodicAxes() [3]bool
}

// Box is a rectangular box with independent periodicity per axis.
type Box struct {
	Size     r3.Vec
	Periodic [3]bool
}

// NewPeriodicBox creates a box periodic along all three axes.
func NewPeriodicBox(size r3.Vec) *Box {
	return &Box{Size: size, Periodic: [3]bool{true, true, true}}
}

// NearestImage folds dr into the minimum image along periodic axes.
func (b *Box) NearestImage(dr r3.Vec) r3.Vec {
	if b.Periodic[0] && b.Size.X > 0 {
		dr.X -= b.Size.X * math.Round(dr.X/b.Size.X)
	}
	if b.Periodic[1] && b.Size.Y > 0 {
		dr.Y -= b.Size.Y * math.Round(dr.Y/b.Size.Y)
	}
	if b.Periodic[2] && b.Size.Z > 0 {
		dr.Z -= b.Size.Z * math.Round(dr.Z/b.Size.Z)
	}
	return dr
}

// Dimensions returns the box edge lengths.
func (b *Box) Dimensions() r3.Vec {
	return b.Size
}

// PeriodicAxes reports the axes with periodic images. An axis of zero size
// is never periodic.
func (b *Box) PeriodicAxes() [3]bool {
	return [3]bool{
		b.Periodic[0] && b.Size.X > 0,
		b.Periodic[1] && b.Size.Y > 0,
		b.Periodic[2] && b.Size.Z > 0,
	}
}

// KineticEnergy sums 0.5*m*v^2 over mobile particles.
func KineticEnergy(ps []Particle) float64 {
	ke := 0.0
	for i := range ps {
		if ps[i].InvMass > 0 {
			ke += 0.5 * r3.Norm2(ps[i].Vel) / ps[i].InvMass
		}
	}
	return ke
}

// Momentum sums m*v over mobile particles.
func Momentum(ps []Particle) r3.Vec {
	var p r3.Vec
	for i := range ps {
		if ps[i].InvMass > 0 {
			p = r3.Add(p, r3.Scale(1/ps[i].InvMass, ps[i].Vel))
		}
	}
	return p
}

// component returns the axis-th component of v (0=X, 1=Y, 2=Z).
func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// addComponent returns v with d added to its axis-th component.
func addComponent(v r3.Vec, axis int, d float64) r3.Vec {
	switch axis {
	case 0:
		v.X += d
	case 1:
		v.Y += d
	default:
		v.Z += d
	}
	return v
}
