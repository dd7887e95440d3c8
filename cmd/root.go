package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hardsim/hardsim/sim"
	"github.com/hardsim/hardsim/sim/scenario"
	"github.com/hardsim/hardsim/sim/trace"
)

var (
	configPath    string  // Scenario file (YAML or TOML)
	seed          int64   // Overrides the scenario seed when set
	duration      float64 // Simulated time to run
	interval      float64 // Simulated time between progress snapshots
	logLevel      string  // Log verbosity level
	traceLevel    string  // Trace verbosity: none, snapshots, collisions
	maxCollisions int     // Cap on stored collision records
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hardsim",
	Short: "Event-driven hard-collision simulator",
}

// runOptions carries the run command flags into runScenario.
type runOptions struct {
	Duration      float64
	Interval      float64
	TraceLevel    trace.TraceLevel
	MaxCollisions int
}

// runResult is what runScenario reports.
type runResult struct {
	Clock         float64             `json:"clock"`
	Events        int64               `json:"events"`
	KineticEnergy float64             `json:"kinetic_energy"`
	Potential     float64             `json:"potential_energy"`
	Bonds         *sim.BondCounts     `json:"bonds,omitempty"`
	Summary       *trace.TraceSummary `json:"summary"`
}

// runScenario builds, initializes and steps the scenario, sampling a
// snapshot every interval.
func runScenario(sc *scenario.Scenario, opts runOptions) (*runResult, *trace.SimulationTrace, error) {
	built, err := sc.Build()
	if err != nil {
		return nil, nil, err
	}
	s := built.Scheduler
	cfg := s.Config()
	logrus.Infof("Simulation key %d, field %v, parallel threshold %d",
		built.RNG.Key(), cfg.Field, cfg.ParallelThreshold)
	if err := s.Initialize(); err != nil {
		return nil, nil, err
	}

	st := trace.NewSimulationTrace(trace.TraceConfig{Level: opts.TraceLevel, MaxCollisions: opts.MaxCollisions})
	s.AddListener(sim.ListenerFunc(func(ev sim.CollisionEvent) {
		st.RecordCollision(trace.CollisionRecord{
			Clock:   ev.Time,
			I:       ev.I,
			J:       ev.J,
			Kind:    string(ev.Potential.Kind()),
			Outcome: ev.Outcome.String(),
			Virial:  ev.Virial,
		})
	}))

	snapshot := func() {
		rec := trace.SnapshotRecord{
			Clock:           s.Clock(),
			Events:          s.EventCount(),
			KineticEnergy:   sim.KineticEnergy(s.Particles()),
			PotentialEnergy: s.PotentialEnergy(),
		}
		if built.Bonds != nil {
			rec.Bonds = built.Bonds.Counts().Bonds
		}
		st.RecordSnapshot(rec)
		logrus.Infof("[t=%.4f] events=%d KE=%.6f PE=%.6f bonds=%d",
			rec.Clock, rec.Events, rec.KineticEnergy, rec.PotentialEnergy, rec.Bonds)
	}

	snapshot()
	step := opts.Interval
	if step <= 0 || step > opts.Duration {
		step = opts.Duration
	}
	steps := 0
	if opts.Duration > 0 {
		steps = int(math.Ceil(opts.Duration/step - 1e-9))
	}
	for k := 0; k < steps; k++ {
		end := math.Min(float64(k+1)*step, opts.Duration)
		if k == steps-1 {
			end = opts.Duration
		}
		if err := s.Step(math.Max(0, end-s.Clock())); err != nil {
			return nil, nil, err
		}
		snapshot()
	}

	res := &runResult{
		Clock:         s.Clock(),
		Events:        s.EventCount(),
		KineticEnergy: sim.KineticEnergy(s.Particles()),
		Potential:     s.PotentialEnergy(),
		Summary:       trace.Summarize(st),
	}
	if built.Bonds != nil {
		c := built.Bonds.Counts()
		res.Bonds = &c
	}
	return res, st, nil
}

func printResult(w io.Writer, res *runResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "=== Simulation Summary ===\n%s\n", data)
	return err
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func loadScenario(cmd *cobra.Command) *scenario.Scenario {
	if configPath == "" {
		logrus.Fatalf("Scenario file not provided (--config). Exiting.")
	}
	sc, err := scenario.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load scenario: %v", err)
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = seed
	}
	return sc
}

// runCmd executes a scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a hard-collision scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		if !(duration > 0) || math.IsInf(duration, 0) {
			logrus.Fatalf("--time must be positive and finite, got %v", duration)
		}
		sc := loadScenario(cmd)

		logrus.Infof("Starting run: scenario=%s seed=%d time=%g interval=%g", configPath, sc.Seed, duration, interval)
		startTime := time.Now()
		res, _, err := runScenario(sc, runOptions{
			Duration:      duration,
			Interval:      interval,
			TraceLevel:    trace.TraceLevel(traceLevel),
			MaxCollisions: maxCollisions,
		})
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		if err := printResult(os.Stdout, res); err != nil {
			logrus.Fatalf("Writing summary: %v", err)
		}
		logrus.Infof("Run complete in %v.", time.Since(startTime))
	},
}

// validateCmd checks that a scenario builds and starts without overlaps
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario file and its starting configuration",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		sc := loadScenario(cmd)
		built, err := sc.Build()
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		if err := built.Scheduler.Initialize(); err != nil {
			logrus.Fatalf("Invalid starting configuration: %v", err)
		}
		fmt.Printf("%s: ok (%d particles)\n", configPath, len(built.Particles))
	},
}

// kindsCmd lists the potential kinds accepted in scenario files
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List potential kinds",
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range sim.KindNames() {
			fmt.Println(k)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&configPath, "config", "", "Scenario file (.yaml, .yml or .toml)")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed overriding the scenario seed")
		c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}

	runCmd.Flags().Float64Var(&duration, "time", 10, "Simulated time to run")
	runCmd.Flags().Float64Var(&interval, "interval", 1, "Simulated time between snapshots (0 = one snapshot at the end)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "snapshots", "Trace level (none, snapshots, collisions)")
	runCmd.Flags().IntVar(&maxCollisions, "max-collisions", 100000, "Cap on stored collision records (0 = unbounded)")

	rootCmd.AddCommand(runCmd, validateCmd, kindsCmd)
}
