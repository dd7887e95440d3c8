package sim

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
)

// SchedulerConfig groups the kernel parameters of a Scheduler.
type SchedulerConfig struct {
	Field             r3.Vec  // constant acceleration of every mobile particle (zero = none)
	TimeTolerance     float64 // negative collision times down to -TimeTolerance are clamped to 0
	ParallelThreshold int     // particle count above which free flight runs on worker goroutines (0 = never)
	Workers           int     // goroutines for parallel free flight (0 = GOMAXPROCS)
	MaxRefreshes      int     // image refreshes one StepEvent may process without a collision (0 = unbounded)
}

// DefaultSchedulerConfig returns the configuration used when none is given.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TimeTolerance:     1e-9,
		ParallelThreshold: 4096,
		MaxRefreshes:      1 << 20,
	}
}

func (c SchedulerConfig) validate() error {
	for _, v := range []float64{c.Field.X, c.Field.Y, c.Field.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %v: %w", c.Field, ErrInvalidParameter)
		}
	}
	if !(c.TimeTolerance >= 0) || math.IsInf(c.TimeTolerance, 0) {
		return fmt.Errorf("time tolerance %v: %w", c.TimeTolerance, ErrInvalidParameter)
	}
	if c.ParallelThreshold < 0 || c.Workers < 0 {
		return fmt.Errorf("parallel threshold %d, workers %d: %w", c.ParallelThreshold, c.Workers, ErrInvalidParameter)
	}
	if c.MaxRefreshes < 0 {
		return fmt.Errorf("max refreshes %d: %w", c.MaxRefreshes, ErrInvalidParameter)
	}
	return nil
}

func (c SchedulerConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
