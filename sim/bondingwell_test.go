package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit core, well edge at 1.5, depth 1, barrier 1. At the edge with unit
// masses 2·barrier·r²·w = 9, so a closing speed of 3 (b = -4.5) clears the
// barrier and a closing speed of 1 does not.
func newBondingWell(t *testing.T, n, valence int) (*BondingWell, *BondTable) {
	t.Helper()
	bt, err := NewBondTable(n, valence)
	require.NoError(t, err)
	bw, err := NewBondingWell(1, 1.5, 1, 1, bt)
	require.NoError(t, err)
	return bw, bt
}

func TestBondingWell_AboveBarrier_Bonds(t *testing.T) {
	bw, bt := newBondingWell(t, 2, 1)
	ps := []Particle{unit(0, 3), unit(1.5, 0)}
	ke0 := KineticEnergy(ps)

	out := bw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeBond, out)
	assert.True(t, bt.Bonded(0, 1))
	assert.InDelta(t, ke0+1, KineticEnergy(ps), 1e-12)
	assert.Equal(t, -1.0, bw.Energy(pairOf(ps)))
}

func TestBondingWell_BelowBarrier_PassesThroughUnbonded(t *testing.T) {
	bw, bt := newBondingWell(t, 2, 1)
	ps := []Particle{unit(0, 1), unit(1.5, 0)}

	out := bw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeNone, out)
	assert.False(t, bt.Bonded(0, 1))
	assert.Equal(t, 1.0, ps[0].Vel.X)
	assert.Equal(t, 0.0, ps[1].Vel.X)
	assert.Less(t, ps[1].Pos.X-ps[0].Pos.X, 1.5)
	assert.Equal(t, 0.0, bw.LastCollisionVirial())

	// inside the well unbonded, only the core remains
	assert.InDelta(t, 0.5, bw.CollisionTime(pairOf(ps), 0), 1e-9)
}

func TestBondingWell_Bonded_Dissociates(t *testing.T) {
	bw, bt := newBondingWell(t, 2, 1)
	require.NoError(t, bt.Bond(0, 1))
	ps := []Particle{unit(0, -3), unit(1.5, 0)}
	ke0 := KineticEnergy(ps)

	out := bw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeDissociation, out)
	assert.False(t, bt.Bonded(0, 1))
	assert.InDelta(t, ke0-1, KineticEnergy(ps), 1e-12)
	assert.Equal(t, 0.0, bw.Energy(pairOf(ps)))
}

func TestBondingWell_Bonded_TooSlow_Reflects(t *testing.T) {
	bw, bt := newBondingWell(t, 2, 1)
	require.NoError(t, bt.Bond(0, 1))
	ps := []Particle{unit(0, -1), unit(1.5, 0)}

	out := bw.Bump(pairOf(ps), 0)

	assert.Equal(t, OutcomeBounce, out)
	assert.True(t, bt.Bonded(0, 1))
	assert.InDelta(t, 0.0, ps[0].Vel.X, 1e-12)
	assert.InDelta(t, -1.0, ps[1].Vel.X, 1e-12)
	assert.Equal(t, -1.0, bw.Energy(pairOf(ps)))
}

func TestBondingWell_SaturatedPair_SeesCoreOnly(t *testing.T) {
	// GIVEN particle 0 saturated by a bond to 2
	bw, bt := newBondingWell(t, 3, 1)
	require.NoError(t, bt.Bond(0, 2))

	// THEN an approaching 0-1 pair ignores the well and reaches the core
	got := bw.CollisionTime(pairOf([]Particle{unit(0, 1), unit(3, 0)}), 0)
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestBondingWell_EligiblePair_TargetsWellEdge(t *testing.T) {
	bw, _ := newBondingWell(t, 2, 1)
	got := bw.CollisionTime(pairOf([]Particle{unit(0, 1), unit(3, 0)}), 0)
	assert.InDelta(t, 1.5, got, 1e-12)
}

func TestBondingWell_Energy(t *testing.T) {
	bw, bt := newBondingWell(t, 2, 1)
	assert.Equal(t, 0.0, bw.Energy(pairOf([]Particle{unit(0, 0), unit(1.2, 0)})))
	require.NoError(t, bt.Bond(0, 1))
	assert.Equal(t, -1.0, bw.Energy(pairOf([]Particle{unit(0, 0), unit(1.2, 0)})))
	assert.True(t, math.IsInf(bw.Energy(pairOf([]Particle{unit(0, 0), unit(2, 0)})), 1))
	assert.True(t, math.IsInf(bw.Energy(pairOf([]Particle{unit(0, 0), unit(0.5, 0)})), 1))
}

func TestNewBondingWell_InvalidParameters(t *testing.T) {
	bt, _ := NewBondTable(2, 1)

	_, err := NewBondingWell(1, 1.5, 0, 1, bt)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewBondingWell(1, 1.5, 1, -1, bt)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewBondingWell(1, 1.5, 1, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
