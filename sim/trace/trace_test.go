package trace

import (
	"testing"
)

func TestSimulationTrace_RecordCollision_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for collisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelCollisions})

	// WHEN a collision record is recorded
	st.RecordCollision(CollisionRecord{Clock: 4, I: 0, J: 1, Kind: "hard-sphere", Outcome: "bounce", Virial: 1})

	// THEN the trace contains one record with correct data
	if len(st.Collisions) != 1 {
		t.Fatalf("expected 1 collision, got %d", len(st.Collisions))
	}
	if st.Collisions[0].J != 1 || st.Collisions[0].Kind != "hard-sphere" {
		t.Errorf("unexpected record %+v", st.Collisions[0])
	}
}

func TestSimulationTrace_SnapshotLevel_SkipsCollisions(t *testing.T) {
	// GIVEN a trace configured for snapshots only
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSnapshots})

	// WHEN both kinds of record arrive
	st.RecordCollision(CollisionRecord{Clock: 1})
	st.RecordSnapshot(SnapshotRecord{Clock: 1, KineticEnergy: 3})

	// THEN only the snapshot is kept
	if len(st.Collisions) != 0 {
		t.Errorf("expected no collisions, got %d", len(st.Collisions))
	}
	if len(st.Snapshots) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(st.Snapshots))
	}
}

func TestSimulationTrace_NoneLevel_RecordsNothing(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	st.RecordCollision(CollisionRecord{Clock: 1})
	st.RecordSnapshot(SnapshotRecord{Clock: 1})
	if len(st.Collisions) != 0 || len(st.Snapshots) != 0 {
		t.Error("expected an empty trace")
	}
}

func TestSimulationTrace_MaxCollisions_CountsDropped(t *testing.T) {
	// GIVEN a trace capped at two collisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelCollisions, MaxCollisions: 2})

	// WHEN three are recorded
	for i := 0; i < 3; i++ {
		st.RecordCollision(CollisionRecord{Clock: float64(i), I: i, J: i + 1})
	}

	// THEN the first two are kept in order and one is dropped
	if len(st.Collisions) != 2 {
		t.Fatalf("expected 2 collisions, got %d", len(st.Collisions))
	}
	if st.Collisions[0].I != 0 || st.Collisions[1].I != 1 {
		t.Error("collision order not preserved")
	}
	if st.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", st.Dropped)
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"snapshots", true},
		{"collisions", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"COLLISIONS", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
