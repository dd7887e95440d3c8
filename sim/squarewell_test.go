package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well edge at 1.5 for a unit core and lambda 1.5. At the edge with unit
// masses r² = 2.25 and w = 2, so 2·ε·r²·w = 9ε.

func TestSquareWell_CollisionTimes(t *testing.T) {
	sw, err := NewSquareWell(1, 1.5, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		ps   []Particle
		want float64
	}{
		{"outside approaching hits well edge", []Particle{unit(0, 1), unit(3, 0)}, 1.5},
		{"inside approaching hits core", []Particle{unit(0, 1), unit(1.25, 0)}, 0.25},
		{"inside receding reaches edge", []Particle{unit(0, -1), unit(1.25, 0)}, 0.25},
		{"outside receding", []Particle{unit(0, -1), unit(3, 0)}, math.Inf(1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sw.CollisionTime(pairOf(tc.ps), 0)
			if math.IsInf(tc.want, 1) {
				assert.True(t, math.IsInf(got, 1))
				return
			}
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestSquareWell_Capture_GainsDepth(t *testing.T) {
	// GIVEN a pair entering a well of depth 2
	sw, _ := NewSquareWell(1, 1.5, 2)
	ps := []Particle{unit(0, 1), unit(1.5, 0)}
	ke0 := KineticEnergy(ps)

	// WHEN it bumps at the edge
	out := sw.Bump(pairOf(ps), 0)

	// THEN kinetic energy rises by exactly epsilon and the pair is inside
	assert.Equal(t, OutcomeCapture, out)
	assert.InDelta(t, ke0+2, KineticEnergy(ps), 1e-12)
	assert.InDelta(t, 2.0, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, -1.0, ps[1].Vel.X, 1e-12)
	assert.Equal(t, -2.0, sw.Energy(pairOf(ps)))
	assert.InDelta(t, 1.5, sw.LastCollisionVirial(), 1e-9)
}

func TestSquareWell_Escape_PaysDepth(t *testing.T) {
	sw, _ := NewSquareWell(1, 1.5, 2)
	ps := []Particle{unit(0, -2), unit(1.5, 1)}
	ke0 := KineticEnergy(ps)

	out := sw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeEscape, out)
	assert.InDelta(t, ke0-2, KineticEnergy(ps), 1e-12)
	assert.Equal(t, 0.0, sw.Energy(pairOf(ps)))
}

func TestSquareWell_TooSlowToEscape_ReflectsInward(t *testing.T) {
	sw, _ := NewSquareWell(1, 1.5, 2)
	ps := []Particle{unit(0, -0.5), unit(1.5, 0.5)}

	out := sw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeBounce, out)
	assert.InDelta(t, 0.5, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, -0.5, ps[1].Vel.X, 1e-12)
	assert.Equal(t, -2.0, sw.Energy(pairOf(ps)), "nudged back inside")
}

func TestSquareWell_Shoulder_ReflectsSlowPair(t *testing.T) {
	// GIVEN a repulsive step of height 2
	sw, err := NewSquareWell(1, 1.5, -2)
	require.NoError(t, err)
	ps := []Particle{unit(0, 1), unit(1.5, 0)}

	// WHEN a pair with 0.25 of normal energy reaches it
	out := sw.Bump(pairOf(ps), 0)

	// THEN it bounces and stays outside
	assert.Equal(t, OutcomeBounce, out)
	assert.InDelta(t, 0.0, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, 1.0, ps[1].Vel.X, 1e-12)
	assert.Equal(t, 0.0, sw.Energy(pairOf(ps)))
}

func TestSquareWell_Shoulder_FastPairClimbs(t *testing.T) {
	sw, _ := NewSquareWell(1, 1.5, -2)
	ps := []Particle{unit(0, 4), unit(1.5, 0)}
	ke0 := KineticEnergy(ps)

	out := sw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeCapture, out)
	assert.InDelta(t, ke0-2, KineticEnergy(ps), 1e-12)
}

func TestSquareWell_CoreContact_Elastic(t *testing.T) {
	sw, _ := NewSquareWell(1, 1.5, 2)
	ps := []Particle{unit(0, 1), unit(1, -1)}

	out := sw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeBounce, out)
	assert.Equal(t, -1.0, ps[0].Vel.X)
	assert.Equal(t, 1.0, ps[1].Vel.X)
}

func TestSquareWell_Energy_CoreOverlap(t *testing.T) {
	sw, _ := NewSquareWell(1, 1.5, 2)
	assert.True(t, math.IsInf(sw.Energy(pairOf([]Particle{unit(0, 0), unit(0.5, 0)})), 1))
}

func TestNewSquareWell_InvalidParameters(t *testing.T) {
	tests := []struct {
		name                  string
		core, lambda, epsilon float64
	}{
		{"zero core", 0, 1.5, 1},
		{"lambda at one", 1, 1, 1},
		{"infinite lambda", 1, math.Inf(1), 1},
		{"nan epsilon", 1, 1.5, math.NaN()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSquareWell(tc.core, tc.lambda, tc.epsilon)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}
