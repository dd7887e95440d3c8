package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: same key and name produce the same reaction draws
	rng1 := NewPartitionedRNG(NewSimulationKey(7))
	rng2 := NewPartitionedRNG(NewSimulationKey(7))

	for i := 0; i < 5; i++ {
		a := rng1.ForSubsystem(SubsystemReaction).Float64()
		b := rng2.ForSubsystem(SubsystemReaction).Float64()
		if a != b {
			t.Errorf("draw %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: drawing velocities does not shift the reaction sequence
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	rngB := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemVelocities).NormFloat64()
	}

	got := rngA.ForSubsystem(SubsystemReaction).Float64()
	want := rngB.ForSubsystem(SubsystemReaction).Float64()
	if got != want {
		t.Errorf("reaction first draw = %v, want %v (isolation broken)", got, want)
	}
}

func TestPartitionedRNG_VelocitiesUseMasterSeed(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	direct := rand.New(rand.NewSource(42))

	v := rng.ForSubsystem(SubsystemVelocities)
	for i := 0; i < 10; i++ {
		if got, want := v.Float64(), direct.Float64(); got != want {
			t.Errorf("draw %d: velocities = %v, direct = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem(SubsystemReaction) != rng.ForSubsystem(SubsystemReaction) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if len(rng.subsystems) != 1 {
		t.Errorf("subsystems = %d, want 1", len(rng.subsystems))
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(12345))
	if rng.Key() != SimulationKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}
