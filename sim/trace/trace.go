package trace

// TraceLevel controls the verbosity of tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSnapshots captures one snapshot per sampling interval.
	TraceLevelSnapshots TraceLevel = "snapshots"
	// TraceLevelCollisions additionally captures every resolved event.
	TraceLevelCollisions TraceLevel = "collisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelSnapshots:  true,
	TraceLevelCollisions: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level         TraceLevel
	MaxCollisions int // cap on stored collision records (0 = unbounded)
}

// SimulationTrace collects records during a run.
type SimulationTrace struct {
	Config     TraceConfig
	Collisions []CollisionRecord
	Snapshots  []SnapshotRecord
	Dropped    int // collision records beyond MaxCollisions
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Collisions: make([]CollisionRecord, 0),
		Snapshots:  make([]SnapshotRecord, 0),
	}
}

// RecordCollision appends a collision record when the level asks for them.
func (st *SimulationTrace) RecordCollision(record CollisionRecord) {
	if st.Config.Level != TraceLevelCollisions {
		return
	}
	if st.Config.MaxCollisions > 0 && len(st.Collisions) >= st.Config.MaxCollisions {
		st.Dropped++
		return
	}
	st.Collisions = append(st.Collisions, record)
}

// RecordSnapshot appends a snapshot unless tracing is off.
func (st *SimulationTrace) RecordSnapshot(record SnapshotRecord) {
	if st.Config.Level == TraceLevelNone || st.Config.Level == "" {
		return
	}
	st.Snapshots = append(st.Snapshots, record)
}
