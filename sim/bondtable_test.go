package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotFunctions(t *testing.T) {
	tests := []struct {
		name                       string
		slots                      []int
		filled                     int
		virgin, radical, saturated bool
	}{
		{"valence 2 virgin", []int{EmptySlot, EmptySlot}, 0, true, false, false},
		{"valence 2 radical", []int{EmptySlot, 4}, 1, false, true, false},
		{"valence 2 saturated", []int{3, 4}, 2, false, false, true},
		{"valence 3 one filled is neither", []int{1, EmptySlot, EmptySlot}, 1, false, false, false},
		{"valence 3 radical", []int{1, 2, EmptySlot}, 2, false, true, false},
		{"valence 1 free is never radical", []int{EmptySlot}, 0, true, false, false},
		{"valence 1 filled", []int{7}, 1, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.filled, FilledSlots(tc.slots))
			assert.Equal(t, tc.virgin, IsVirgin(tc.slots))
			assert.Equal(t, tc.radical, IsRadical(tc.slots))
			assert.Equal(t, tc.saturated, IsSaturated(tc.slots))
		})
	}
}

func TestNewBondTable(t *testing.T) {
	bt, err := NewBondTable(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, bt.Len())
	assert.Equal(t, 2, bt.Valence())
	for i := 0; i < 3; i++ {
		assert.True(t, bt.IsVirgin(i))
	}

	_, err = NewBondTable(3, 0)
	assert.ErrorIs(t, err, ErrInvalidValence)
	_, err = NewBondTable(-1, 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBondTable_Add(t *testing.T) {
	bt, _ := NewBondTable(1, 2)
	i := bt.Add()
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, bt.Len())
	assert.Equal(t, []int{EmptySlot, EmptySlot}, bt.Slots(i))
}

func TestBondTable_Cap_FillsLastFreeSlot(t *testing.T) {
	// GIVEN a virgin particle of valence 2
	bt, _ := NewBondTable(2, 2)

	// WHEN it is capped
	require.NoError(t, bt.Cap(0))

	// THEN it is a radical whose first slot stays free
	assert.Equal(t, []int{EmptySlot, 0}, bt.Slots(0))
	assert.True(t, bt.IsRadical(0))
	assert.Empty(t, bt.Partners(0))

	// AND capping twice saturates it, a third time fails
	require.NoError(t, bt.Cap(0))
	assert.True(t, bt.IsSaturated(0))
	assert.ErrorIs(t, bt.Cap(0), ErrBondTable)
}

func TestBondTable_Bond_UsesFirstFreeSlots(t *testing.T) {
	bt, _ := NewBondTable(3, 2)
	require.NoError(t, bt.Cap(0))

	require.NoError(t, bt.Bond(0, 1))

	assert.Equal(t, []int{1, 0}, bt.Slots(0))
	assert.Equal(t, []int{0, EmptySlot}, bt.Slots(1))
	assert.True(t, bt.Bonded(0, 1))
	assert.True(t, bt.Bonded(1, 0))
	assert.False(t, bt.Bonded(0, 0), "a cap is not a bond")
	assert.Equal(t, []int{1}, bt.Partners(0))
	assert.True(t, bt.IsRadical(1), "propagation moves the radical")
	assert.NoError(t, bt.Validate())
}

func TestBondTable_BondErrors(t *testing.T) {
	bt, _ := NewBondTable(3, 1)
	require.NoError(t, bt.Bond(0, 1))

	assert.ErrorIs(t, bt.Bond(0, 0), ErrBondTable, "self bond")
	assert.ErrorIs(t, bt.Bond(1, 0), ErrBondTable, "duplicate")
	assert.ErrorIs(t, bt.Bond(0, 2), ErrBondTable, "no free slot")
	assert.ErrorIs(t, bt.Unbond(0, 2), ErrBondTable, "not bonded")
	assert.ErrorIs(t, bt.Unbond(0, 0), ErrBondTable, "self")
}

func TestBondTable_Unbond_RestoresVirgins(t *testing.T) {
	bt, _ := NewBondTable(2, 1)
	require.NoError(t, bt.Bond(0, 1))

	require.NoError(t, bt.Unbond(1, 0))

	assert.True(t, bt.IsVirgin(0))
	assert.True(t, bt.IsVirgin(1))
	assert.False(t, bt.Bonded(0, 1))
}

func TestBondTable_Disproportionate_LeavesBothInert(t *testing.T) {
	bt, _ := NewBondTable(2, 2)
	require.NoError(t, bt.Cap(0))
	require.NoError(t, bt.Cap(1))

	bt.Disproportionate(0, 1)

	assert.Equal(t, []int{0, 0}, bt.Slots(0))
	assert.Equal(t, []int{1, 1}, bt.Slots(1))
	assert.True(t, bt.IsSaturated(0))
	assert.True(t, bt.IsSaturated(1))
	assert.False(t, bt.Bonded(0, 1))
	assert.NoError(t, bt.Validate())
}

func TestBondTable_Validate_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name  string
		slots []int
	}{
		{"missing back reference", []int{1, EmptySlot, EmptySlot, EmptySlot}},
		{"out of range", []int{5, EmptySlot, EmptySlot, EmptySlot}},
		{"duplicate partner", []int{1, 1, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bt, _ := NewBondTable(2, 2)
			copy(bt.slots, tc.slots)
			assert.ErrorIs(t, bt.Validate(), ErrBondTable)
		})
	}
}

func TestBondTable_Counts(t *testing.T) {
	// GIVEN a chain 0-1-2 started from a capped initiator, plus a virgin 3
	bt, _ := NewBondTable(4, 2)
	require.NoError(t, bt.Cap(0))
	require.NoError(t, bt.Bond(0, 1))
	require.NoError(t, bt.Bond(1, 2))

	// THEN 0 and 1 are saturated, 2 carries the radical, 3 is virgin
	assert.Equal(t, BondCounts{Virgin: 1, Radical: 1, Saturated: 2, Bonds: 2}, bt.Counts())
}
