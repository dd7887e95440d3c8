package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// HardWall is a planar wall normal to one axis. Particles bounce when their
// centre comes within Radius of the plane. The wall has its own position,
// velocity and inverse mass; a constant Force along the axis accelerates it.
// An inverse mass of 0 makes the wall immovable by collisions (it may still
// translate at constant velocity).
type HardWall struct {
	virialAccum
	axis    int
	radius  float64
	pos     float64
	vel     float64
	invMass float64
	force   float64
}

// WallConfig holds the parameters of a HardWall.
type WallConfig struct {
	Axis     int     // 0=X, 1=Y, 2=Z
	Radius   float64 // particle collision radius
	Position float64
	Velocity float64
	InvMass  float64 // 0 = infinite mass
	Force    float64 // constant force on the wall along the axis
}

// NewHardWall creates a wall from cfg.
func NewHardWall(cfg WallConfig) (*HardWall, error) {
	if cfg.Axis < 0 || cfg.Axis > 2 {
		return nil, fmt.Errorf("hard-wall axis %d: %w", cfg.Axis, ErrInvalidParameter)
	}
	if !(cfg.Radius >= 0) || math.IsInf(cfg.Radius, 0) {
		return nil, fmt.Errorf("hard-wall collision radius %v: %w", cfg.Radius, ErrInvalidParameter)
	}
	if !(cfg.InvMass >= 0) || math.IsInf(cfg.InvMass, 0) {
		return nil, fmt.Errorf("hard-wall inverse mass %v: %w", cfg.InvMass, ErrInvalidParameter)
	}
	for _, v := range []float64{cfg.Position, cfg.Velocity, cfg.Force} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("hard-wall kinematics %v: %w", v, ErrInvalidParameter)
		}
	}
	return &HardWall{
		virialAccum: newVirialAccum(),
		axis:        cfg.Axis,
		radius:      cfg.Radius,
		pos:         cfg.Position,
		vel:         cfg.Velocity,
		invMass:     cfg.InvMass,
		force:       cfg.Force,
	}, nil
}

func (w *HardWall) Kind() Kind { return KindHardWall }

func (w *HardWall) Axis() int { return w.axis }
func (w *HardWall) Radius() float64 { return w.radius }
func (w *HardWall) Position() float64 { return w.pos }
func (w *HardWall) Velocity() float64 { return w.vel }
func (w *HardWall) InvMass() float64 { return w.invMass }
func (w *HardWall) accel() float64 { return w.force * w.invMass }
func (w *HardWall) Dynamic() bool { return w.invMass > 0 }
func (w *HardWall) SetForce(f float64) { w.force = f }
func (w *HardWall) SetVelocity(v float64) { w.vel = v }

// Advance moves the wall by free flight under its own force.
func (w *HardWall) Advance(dt float64) {
	a := w.accel()
	w.pos += w.vel*dt + 0.5*a*dt*dt
	w.vel += a * dt
}

// Momentum returns the wall momentum along its axis, or 0 for an infinitely
// massive wall.
func (w *HardWall) Momentum() float64 {
	if w.invMass == 0 {
		return 0
	}
	return w.vel / w.invMass
}

// gap returns the signed particle-minus-wall offset, relative velocity and
// relative acceleration along the axis.
func (w *HardWall) gap(s Single, falseTime float64) (dx, dv, da float64) {
	x := component(s.A.Pos, w.axis) + component(s.A.Vel, w.axis)*falseTime
	return x - w.pos, component(s.A.Vel, w.axis) - w.vel, component(s.Accel, w.axis) - w.accel()
}

// CollisionTime solves side*(dx + dv t + da t²/2) = Radius for the earliest
// non-negative root at which the particle is moving towards the plane.
func (w *HardWall) CollisionTime(s Single, falseTime float64) float64 {
	dx, dv, da := w.gap(s, falseTime)
	side := 1.0
	if dx < 0 {
		side = -1
	}
	a := 0.5 * side * da
	b := side * dv
	c := side*dx - w.radius
	tol := OverlapTolerance * math.Max(w.radius, 1)
	if c < 0 {
		if b < 0 || (b == 0 && a < 0) {
			if c > -tol {
				return 0
			}
			// Inside the radius and closing: report the overlap as a
			// negative time so the caller can abort.
			return c / math.Max(-b, tol)
		}
	}
	return earliestClosingRoot(a, b, c)
}

// earliestClosingRoot returns the smallest t >= 0 with a t² + b t + c = 0
// and 2 a t + b < 0, or +Inf.
func earliestClosingRoot(a, b, c float64) float64 {
	if a == 0 {
		if b >= 0 {
			return math.Inf(1)
		}
		t := -c / b
		if t < 0 {
			return math.Inf(1)
		}
		return t
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)
	q := -0.5 * (b + math.Copysign(sq, b))
	if q == 0 {
		return math.Inf(1)
	}
	t1, t2 := q/a, c/q
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	for _, t := range [2]float64{t1, t2} {
		if t >= 0 && 2*a*t+b < 0 {
			return t
		}
	}
	return math.Inf(1)
}

// Bump reflects the particle off the wall, transferring momentum to the
// wall when its mass is finite.
func (w *HardWall) Bump(s Single, falseTime float64) Outcome {
	dx, dv, _ := w.gap(s, falseTime)
	side := 1.0
	if dx < 0 {
		side = -1
	}
	wSum := s.A.InvMass + w.invMass
	if wSum == 0 {
		panic(&InvariantError{I: s.I, J: s.I, Kind: KindHardWall, EventTime: math.NaN(),
			Reason: "stationary particle against immovable wall"})
	}
	j := 2 * dv / wSum
	dvA := -s.A.InvMass * j
	s.A.Vel = addComponent(s.A.Vel, w.axis, dvA)
	if falseTime != 0 {
		s.A.Pos = addComponent(s.A.Pos, w.axis, -falseTime*dvA)
	}
	w.vel += w.invMass * j

	// As a pair with the particle first and the wall second:
	// dr = -side*R along the axis and lambda = 2 b / (w R²).
	var dr r3.Vec
	dr = addComponent(dr, w.axis, -side*w.radius)
	if w.radius > 0 {
		lambda := 2 * side * w.radius * dv / (wSum * w.radius * w.radius)
		w.record(lambda, dr)
	} else {
		w.reset()
	}
	return OutcomeBounce
}

// Energy is +Inf when the particle centre is closer to the plane than Radius.
func (w *HardWall) Energy(s Single) float64 {
	dx := component(s.A.Pos, w.axis) - w.pos
	if math.Abs(dx) < w.radius*(1-OverlapTolerance) {
		return math.Inf(1)
	}
	return 0
}
