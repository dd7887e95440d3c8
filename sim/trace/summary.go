package trace

import "math"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalCollisions int
	OutcomeCounts   map[string]int // outcome → count
	KindCounts      map[string]int // potential kind → count
	MeanVirial      float64
	VirialSum       float64
	MeanInterval    float64 // mean clock gap between consecutive recorded events
	Monotonic       bool    // recorded event clocks never decrease
	MaxEnergyDrift  float64 // max |E(snapshot) - E(first snapshot)|
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		OutcomeCounts: make(map[string]int),
		KindCounts:    make(map[string]int),
		Monotonic:     true,
	}
	if st == nil {
		return summary
	}

	summary.TotalCollisions = len(st.Collisions)
	for k, c := range st.Collisions {
		summary.OutcomeCounts[c.Outcome]++
		summary.KindCounts[c.Kind]++
		summary.VirialSum += c.Virial
		if k > 0 && c.Clock < st.Collisions[k-1].Clock {
			summary.Monotonic = false
		}
	}
	if n := len(st.Collisions); n > 0 {
		summary.MeanVirial = summary.VirialSum / float64(n)
		if n > 1 {
			summary.MeanInterval = (st.Collisions[n-1].Clock - st.Collisions[0].Clock) / float64(n-1)
		}
	}

	if len(st.Snapshots) > 0 {
		e0 := st.Snapshots[0].TotalEnergy()
		for _, s := range st.Snapshots[1:] {
			if d := math.Abs(s.TotalEnergy() - e0); d > summary.MaxEnergyDrift {
				summary.MaxEnergyDrift = d
			}
		}
	}

	return summary
}
