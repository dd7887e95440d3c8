package sim

import (
	"errors"
	"fmt"
	"sort"
)

type typePair struct{ a, b TypeID }

func newTypePair(a, b TypeID) typePair {
	if a > b {
		a, b = b, a
	}
	return typePair{a, b}
}

type particlePair struct{ i, j int }

func newParticlePair(i, j int) particlePair {
	if i > j {
		i, j = j, i
	}
	return particlePair{i, j}
}

// Interactions binds potentials to the particles they govern: pair
// potentials by unordered type pair or by explicit particle pair, and
// boundary potentials by type. An explicit particle pair overrides the type
// pair of its two particles.
type Interactions struct {
	byTypes  map[typePair]PairPotential
	byPair   map[particlePair]PairPotential
	boundary map[TypeID][]BoundaryPotential
}

// NewInteractions creates an empty set of bindings.
func NewInteractions() *Interactions {
	return &Interactions{
		byTypes:  make(map[typePair]PairPotential),
		byPair:   make(map[particlePair]PairPotential),
		boundary: make(map[TypeID][]BoundaryPotential),
	}
}

// SetTypes binds p to every pair with types {a, b}.
func (in *Interactions) SetTypes(a, b TypeID, p PairPotential) {
	in.byTypes[newTypePair(a, b)] = p
}

// SetPair binds p to the particles i and j.
func (in *Interactions) SetPair(i, j int, p PairPotential) {
	in.byPair[newParticlePair(i, j)] = p
}

// AddBoundary adds a boundary potential acting on every particle of type t.
func (in *Interactions) AddBoundary(t TypeID, p BoundaryPotential) {
	in.boundary[t] = append(in.boundary[t], p)
}

// Pair returns the potential governing particles i and j of types ti and tj,
// or nil.
func (in *Interactions) Pair(i, j int, ti, tj TypeID) PairPotential {
	if len(in.byPair) > 0 {
		if p, ok := in.byPair[newParticlePair(i, j)]; ok {
			return p
		}
	}
	return in.byTypes[newTypePair(ti, tj)]
}

// Boundary returns the boundary potentials acting on type t.
func (in *Interactions) Boundary(t TypeID) []BoundaryPotential {
	return in.boundary[t]
}

// Validate reports every unordered pair of the given types that has no
// potential.
func (in *Interactions) Validate(types []TypeID) error {
	uniq := make(map[TypeID]bool, len(types))
	var ts []TypeID
	for _, t := range types {
		if !uniq[t] {
			uniq[t] = true
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(x, y int) bool { return ts[x] < ts[y] })
	var errs []error
	for x := range ts {
		for y := x; y < len(ts); y++ {
			if _, ok := in.byTypes[newTypePair(ts[x], ts[y])]; !ok {
				errs = append(errs, fmt.Errorf("types %d-%d: %w", ts[x], ts[y], ErrMissingPotential))
			}
		}
	}
	return errors.Join(errs...)
}

// Potentials returns every bound potential once, pair potentials first.
func (in *Interactions) Potentials() []Potential {
	seen := make(map[Potential]bool)
	var out []Potential
	add := func(p Potential) {
		if p != nil && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	tps := make([]typePair, 0, len(in.byTypes))
	for k := range in.byTypes {
		tps = append(tps, k)
	}
	sort.Slice(tps, func(x, y int) bool {
		if tps[x].a != tps[y].a {
			return tps[x].a < tps[y].a
		}
		return tps[x].b < tps[y].b
	})
	for _, k := range tps {
		add(in.byTypes[k])
	}
	pps := make([]particlePair, 0, len(in.byPair))
	for k := range in.byPair {
		pps = append(pps, k)
	}
	sort.Slice(pps, func(x, y int) bool {
		if pps[x].i != pps[y].i {
			return pps[x].i < pps[y].i
		}
		return pps[x].j < pps[y].j
	})
	for _, k := range pps {
		add(in.byPair[k])
	}
	bts := make([]TypeID, 0, len(in.boundary))
	for t := range in.boundary {
		bts = append(bts, t)
	}
	sort.Slice(bts, func(x, y int) bool { return bts[x] < bts[y] })
	for _, t := range bts {
		for _, p := range in.boundary[t] {
			add(p)
		}
	}
	return out
}
