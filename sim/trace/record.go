// Package trace provides collision-trace recording for event-driven runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// CollisionRecord captures one resolved event. J equals I for boundary events.
type CollisionRecord struct {
	Clock   float64
	I, J    int
	Kind    string // potential kind
	Outcome string
	Virial  float64
}

// SnapshotRecord captures the macroscopic state at a sampling interval.
type SnapshotRecord struct {
	Clock           float64
	Events          int64
	KineticEnergy   float64
	PotentialEnergy float64
	Bonds           int // mutual bonds in the bond table (0 without one)
}

// TotalEnergy returns kinetic plus potential energy.
func (s SnapshotRecord) TotalEnergy() float64 {
	return s.KineticEnergy + s.PotentialEnergy
}
