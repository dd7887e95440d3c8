package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTether_CollisionTimes(t *testing.T) {
	te, err := NewTether(1, 2)
	require.NoError(t, err)

	// separating from 1.5 reaches the outer limit at 2
	assert.InDelta(t, 0.5, te.CollisionTime(pairOf([]Particle{unit(0, -1), unit(1.5, 0)}), 0), 1e-12)
	// approaching from 1.5 reaches the inner limit at 1
	assert.InDelta(t, 0.5, te.CollisionTime(pairOf([]Particle{unit(0, 1), unit(1.5, 0)}), 0), 1e-12)
	// at rest: never
	assert.True(t, math.IsInf(te.CollisionTime(pairOf([]Particle{unit(0, 0), unit(1.5, 0)}), 0), 1))
}

func TestTether_ZeroMinimum_OnlyOuterLimit(t *testing.T) {
	te, err := NewTether(0, 2)
	require.NoError(t, err)

	// passes through zero separation and leaves at 2 on the other side
	got := te.CollisionTime(pairOf([]Particle{unit(0, 1), unit(1, 0)}), 0)
	assert.InDelta(t, 3.0, got, 1e-12)
}

func TestTether_Bump_OuterLimit_PullsBack(t *testing.T) {
	te, _ := NewTether(1, 2)
	ps := []Particle{unit(0, -1), unit(2, 0)}

	out := te.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeBounce, out)
	assert.InDelta(t, 0.0, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, -1.0, ps[1].Vel.X, 1e-12)
	assert.Less(t, ps[1].Pos.X-ps[0].Pos.X, 2.0)
	assert.Equal(t, 0.0, te.Energy(pairOf(ps)))
}

func TestTether_Bump_InnerLimit_PushesApart(t *testing.T) {
	te, _ := NewTether(1, 2)
	ps := []Particle{unit(0, 1), unit(1, 0)}

	te.Bump(pairOf(ps), 0)

	assert.InDelta(t, 0.0, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, 1.0, ps[1].Vel.X, 1e-12)
	assert.Greater(t, ps[1].Pos.X-ps[0].Pos.X, 1.0)
}

func TestTether_Energy(t *testing.T) {
	te, _ := NewTether(1, 2)
	assert.Equal(t, 0.0, te.Energy(pairOf([]Particle{unit(0, 0), unit(1.5, 0)})))
	assert.True(t, math.IsInf(te.Energy(pairOf([]Particle{unit(0, 0), unit(2.5, 0)})), 1))
	assert.True(t, math.IsInf(te.Energy(pairOf([]Particle{unit(0, 0), unit(0.5, 0)})), 1))
}

func TestNewTetherAround_Window(t *testing.T) {
	te, err := NewTetherAround(2, 0.1)
	require.NoError(t, err)
	lo, hi := te.Window()
	assert.InDelta(t, 1.8, lo, 1e-12)
	assert.InDelta(t, 2.2, hi, 1e-12)
	assert.Equal(t, KindTether, te.Kind())
}

func TestNewTether_InvalidWindow(t *testing.T) {
	for _, w := range [][2]float64{{1, 1}, {2, 1}, {-1, 2}, {0, math.Inf(1)}, {math.NaN(), 1}} {
		_, err := NewTether(w[0], w[1])
		assert.ErrorIs(t, err, ErrInvalidParameter, "window %v", w)
	}
}
