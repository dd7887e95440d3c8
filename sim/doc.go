// Package sim provides the event-driven hard-collision kernel for hardsim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - particle.go: Particle records and the Boundary collaborator
//   - potential.go: the hard-potential contract (collision time, bump, energy)
//   - scheduler.go: the event loop, free flight and up/down-list recomputation
//   - bondtable.go: bonding slots used by the reactive well potentials
//
// # Architecture
//
// The kernel advances particles by free flight between impulsive events.
// Every particle owns one collision Agent holding its earliest event against
// partners later in iteration order (its "up list") plus its boundary
// potentials. The Scheduler keeps agents in an indexed heap, fires the
// earliest one, lets the governing potential bump the subjects, then
// recomputes only the agents the event invalidated.
//
// Concrete potentials:
//   - Ideal: never collides
//   - HardSphere: elastic core
//   - SquareWell: core plus attractive (or repulsive) step
//   - Tether: two-sided hard bond between explicit particle pairs
//   - BondingWell: reversible association limited by bonding slots
//   - RadicalWell: free-radical polymerization (propagation, combination,
//     disproportionation)
//   - HardWall: planar wall, optionally moving, massive and force driven
//
// Sub-packages:
//   - sim/scenario/: YAML/TOML scenario files and the scheduler builder
//   - sim/trace/: collision trace recording and summaries
//
// # Thread Safety
//
// The Scheduler is NOT thread-safe. Free flight may fan out over worker
// goroutines internally, but event resolution is strictly sequential.
package sim
