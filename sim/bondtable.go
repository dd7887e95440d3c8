package sim

import (
	"fmt"
)

// EmptySlot marks an unoccupied bonding slot.
const EmptySlot = -1

// === Slot functions ===
//
// A particle's slots hold partner indices. A slot holding the particle's own
// index is capped: it counts as filled but refers to no partner. These
// functions take one particle's slots and are independent of any table.

// FilledSlots returns the number of non-empty slots.
func FilledSlots(slots []int) int {
	n := 0
	for _, s := range slots {
		if s != EmptySlot {
			n++
		}
	}
	return n
}

// IsVirgin reports whether no slot is filled.
func IsVirgin(slots []int) bool {
	return FilledSlots(slots) == 0
}

// IsRadical reports whether exactly one slot is free. A radical needs a
// valence of at least 2, otherwise it would be indistinguishable from a
// virgin particle.
func IsRadical(slots []int) bool {
	return len(slots) >= 2 && FilledSlots(slots) == len(slots)-1
}

// IsSaturated reports whether every slot is filled.
func IsSaturated(slots []int) bool {
	return FilledSlots(slots) == len(slots)
}

func freeSlot(slots []int) int {
	for k, s := range slots {
		if s == EmptySlot {
			return k
		}
	}
	return -1
}

func lastFreeSlot(slots []int) int {
	for k := len(slots) - 1; k >= 0; k-- {
		if slots[k] == EmptySlot {
			return k
		}
	}
	return -1
}

func holds(slots []int, j int) int {
	for k, s := range slots {
		if s == j {
			return k
		}
	}
	return -1
}

// === BondTable ===

// BondTable stores a fixed number of bonding slots per particle in one
// contiguous array. Every partner reference is mutual: if i holds j then j
// holds i.
//
// Thread-safety: NOT thread-safe. Mutated only while resolving a collision.
type BondTable struct {
	valence int
	slots   []int
}

// NewBondTable creates a table of n virgin particles with the given valence.
func NewBondTable(n, valence int) (*BondTable, error) {
	if valence <= 0 {
		return nil, fmt.Errorf("valence %d: %w", valence, ErrInvalidValence)
	}
	if n < 0 {
		return nil, fmt.Errorf("bond table size %d: %w", n, ErrInvalidParameter)
	}
	t := &BondTable{valence: valence, slots: make([]int, n*valence)}
	for k := range t.slots {
		t.slots[k] = EmptySlot
	}
	return t, nil
}

// Valence returns the number of slots per particle.
func (t *BondTable) Valence() int { return t.valence }

// Len returns the number of particles in the table.
func (t *BondTable) Len() int { return len(t.slots) / t.valence }

// Add appends a virgin particle and returns its index.
func (t *BondTable) Add() int {
	for k := 0; k < t.valence; k++ {
		t.slots = append(t.slots, EmptySlot)
	}
	return t.Len() - 1
}

// Slots returns particle i's slots. The returned slice aliases the table and
// must not be modified.
func (t *BondTable) Slots(i int) []int {
	return t.slots[i*t.valence : (i+1)*t.valence : (i+1)*t.valence]
}

func (t *BondTable) IsVirgin(i int) bool    { return IsVirgin(t.Slots(i)) }
func (t *BondTable) IsRadical(i int) bool   { return IsRadical(t.Slots(i)) }
func (t *BondTable) IsSaturated(i int) bool { return IsSaturated(t.Slots(i)) }

// Partners returns the particles bonded to i, in slot order.
func (t *BondTable) Partners(i int) []int {
	var out []int
	for _, s := range t.Slots(i) {
		if s != EmptySlot && s != i {
			out = append(out, s)
		}
	}
	return out
}

// Bonded reports whether i and j hold each other.
func (t *BondTable) Bonded(i, j int) bool {
	return i != j && holds(t.Slots(i), j) >= 0
}

// Bond links i and j through the first free slot of each.
func (t *BondTable) Bond(i, j int) error {
	if i == j {
		return fmt.Errorf("bond %d-%d to itself: %w", i, j, ErrBondTable)
	}
	if t.Bonded(i, j) {
		return fmt.Errorf("bond %d-%d already present: %w", i, j, ErrBondTable)
	}
	si, sj := t.Slots(i), t.Slots(j)
	ki, kj := freeSlot(si), freeSlot(sj)
	if ki < 0 || kj < 0 {
		return fmt.Errorf("bond %d-%d without free slot: %w", i, j, ErrBondTable)
	}
	si[ki] = j
	sj[kj] = i
	return nil
}

// Unbond clears the mutual references between i and j.
func (t *BondTable) Unbond(i, j int) error {
	si, sj := t.Slots(i), t.Slots(j)
	ki, kj := holds(si, j), holds(sj, i)
	if i == j || ki < 0 || kj < 0 {
		return fmt.Errorf("unbond %d-%d not bonded: %w", i, j, ErrBondTable)
	}
	si[ki] = EmptySlot
	sj[kj] = EmptySlot
	return nil
}

// Cap fills i's last free slot with a self-reference. Capping a virgin
// particle of valence 2 turns it into a radical initiator whose first slot
// stays free for propagation.
func (t *BondTable) Cap(i int) error {
	s := t.Slots(i)
	k := lastFreeSlot(s)
	if k < 0 {
		return fmt.Errorf("cap %d: saturated: %w", i, ErrBondTable)
	}
	s[k] = i
	return nil
}

// Disproportionate caps every remaining free slot of i and j, leaving both
// permanently inert.
func (t *BondTable) Disproportionate(i, j int) {
	for _, p := range [2]int{i, j} {
		s := t.Slots(p)
		for k := range s {
			if s[k] == EmptySlot {
				s[k] = p
			}
		}
	}
}

// Validate checks index ranges and the symmetry of every partner reference.
func (t *BondTable) Validate() error {
	n := t.Len()
	for i := 0; i < n; i++ {
		seen := make(map[int]bool, t.valence)
		for _, s := range t.Slots(i) {
			switch {
			case s == EmptySlot || s == i:
				continue
			case s < 0 || s >= n:
				return fmt.Errorf("particle %d holds out-of-range partner %d: %w", i, s, ErrBondTable)
			case seen[s]:
				return fmt.Errorf("particle %d holds partner %d twice: %w", i, s, ErrBondTable)
			case holds(t.Slots(s), i) < 0:
				return fmt.Errorf("particle %d holds %d without a back reference: %w", i, s, ErrBondTable)
			}
			seen[s] = true
		}
	}
	return nil
}

// BondCounts summarizes the table. A particle of valence 1 with a free slot
// counts as virgin.
type BondCounts struct {
	Virgin    int
	Radical   int
	Saturated int
	Bonds     int
}

// Counts classifies every particle and counts mutual bonds once.
func (t *BondTable) Counts() BondCounts {
	var c BondCounts
	for i := 0; i < t.Len(); i++ {
		s := t.Slots(i)
		switch {
		case IsSaturated(s):
			c.Saturated++
		case IsRadical(s):
			c.Radical++
		case IsVirgin(s):
			c.Virgin++
		}
		for _, p := range s {
			if p != EmptySlot && p > i {
				c.Bonds++
			}
		}
	}
	return c
}
