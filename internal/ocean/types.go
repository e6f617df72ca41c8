package ocean

import (
	"context"
	"fmt"
)

// Definition is the set of lifecycle hooks a scenario supplies. The Runner
// calls them in a fixed order: Configure, SetGrid, SetCoriolis,
// SetTopography, InitializeFields, RegisterDiagnostics; then ApplyForcing
// and AfterStep once per time step.
type Definition interface {
	Configure(s *State)
	SetGrid(s *State)
	SetCoriolis(s *State)
	SetTopography(s *State)
	InitializeFields(ctx context.Context, s *State) error
	RegisterDiagnostics(s *State) error
	ApplyForcing(s *State)
	AfterStep(s *State)
}

// Stepper advances the state by one tracer time step, writing level Taup1.
type Stepper interface {
	Step(ctx context.Context, s *State, dt float64) error
}

type Metric interface {
	Name() string
	Observe(s *State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *State)
}

// Config controls one run of the time-step loop. Times are in seconds.
type Config struct {
	Dt            float64
	Runlen        float64
	SnapshotEvery float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            86400,
		Runlen:        360 * 86400,
		SnapshotEvery: 30 * 86400,
		ValidateState: true,
	}
}

func (c Config) Steps() int {
	return int(c.Runlen/c.Dt + 1e-9)
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidSettings, c.Dt)
	}
	if c.Runlen <= 0 {
		return fmt.Errorf("%w: runlen must be positive, got %f", ErrInvalidSettings, c.Runlen)
	}
	if c.Steps() < 1 {
		return fmt.Errorf("%w: runlen %f is shorter than one step of %f", ErrInvalidSettings, c.Runlen, c.Dt)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot interval must not be negative", ErrInvalidSettings)
	}
	return nil
}

type Result struct {
	Steps     int
	Time      float64
	Snapshots []Snapshot
	Metrics   map[string]float64
	// Series holds each metric's value after every step.
	Series map[string][]float64
	Times  []float64
	// Psi is the final barotropic stream function, rows indexed by y.
	Psi [][]float64
}
