package sim

import (
	"errors"
	"fmt"
	"math"
)

// Configuration and precondition errors. All are surfaced before stepping.
var (
	// ErrMissingPotential indicates a declared type pair without a pair potential.
	ErrMissingPotential = errors.New("hardsim: no pair potential for type pair")

	// ErrInvalidValence indicates a bond table capacity below one.
	ErrInvalidValence = errors.New("hardsim: valence must be at least 1")

	// ErrInvalidParameter indicates an interaction parameter outside its valid range.
	ErrInvalidParameter = errors.New("hardsim: interaction parameter out of range")

	// ErrFieldWithImmobile indicates an external field combined with stationary particles.
	ErrFieldWithImmobile = errors.New("hardsim: external field requires every particle to be mobile")

	// ErrOverlap indicates a starting configuration inside a forbidden region.
	ErrOverlap = errors.New("hardsim: overlapping configuration")

	// ErrNotInitialized indicates stepping before Initialize.
	ErrNotInitialized = errors.New("hardsim: scheduler not initialized")

	// ErrNoEvent indicates that no agent holds a finite event time.
	ErrNoEvent = errors.New("hardsim: no pending collision")

	// ErrRefreshLimit indicates that StepEvent spent its image-refresh budget
	// without reaching a collision. The clock has advanced.
	ErrRefreshLimit = errors.New("hardsim: image refresh limit reached")

	// ErrBondTable indicates an asymmetric or otherwise inconsistent bond table.
	ErrBondTable = errors.New("hardsim: inconsistent bond table")
)

// OverlapError identifies the subjects found overlapping at initialization.
// J equals I for boundary potentials.
type OverlapError struct {
	I, J       int
	Kind       Kind
	Separation float64
}

func (e *OverlapError) Error() string {
	if e.I == e.J {
		return fmt.Sprintf("%v: particle %d overlaps %s boundary", ErrOverlap, e.I, e.Kind)
	}
	return fmt.Sprintf("%v: particles %d and %d overlap under %s (separation %.6g)", ErrOverlap, e.I, e.J, e.Kind, e.Separation)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

// InvariantError is the panic value for kernel invariant violations during a
// run. The run cannot continue once chronological order is lost.
type InvariantError struct {
	Time      float64 // simulation clock when the violation was detected
	EventTime float64 // offending relative collision time, if any
	I, J      int
	Kind      Kind
	Reason    string
}

func (e *InvariantError) Error() string {
	if math.IsNaN(e.EventTime) {
		return fmt.Sprintf("hardsim: invariant violated at t=%.9g for %d-%d (%s): %s", e.Time, e.I, e.J, e.Kind, e.Reason)
	}
	return fmt.Sprintf("hardsim: invariant violated at t=%.9g for %d-%d (%s): %s (collision time %.9g)",
		e.Time, e.I, e.J, e.Kind, e.Reason, e.EventTime)
}
