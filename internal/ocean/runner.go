package ocean

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Runner drives a Definition through setup and the time-step loop.
type Runner struct {
	def       Definition
	state     *State
	stepper   Stepper
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
	ready     bool
}

type Option func(*Runner)

func WithStepper(st Stepper) Option { return func(r *Runner) { r.stepper = st } }
func WithReducer(rd Reducer) Option { return func(r *Runner) { r.state.reducer = rd } }
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l.With().Str("component", "runner").Logger() }
}
func WithMetrics(ms ...Metric) Option {
	return func(r *Runner) { r.metrics = append(r.metrics, ms...) }
}
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

func NewRunner(def Definition, opts ...Option) *Runner {
	r := &Runner{
		def:     def,
		state:   NewState(),
		stepper: NewSurfaceRestoring(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) State() *State { return r.state }

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Setup runs the one-off lifecycle hooks in order.
func (r *Runner) Setup(ctx context.Context) error {
	s := r.state
	r.ready = false

	// a repeated Setup starts from a fresh clock and diagnostics registry
	s.Diagnostics = NewDiagnostics()
	s.Itt, s.Time = 0, 0
	s.Taum1, s.Tau, s.Taup1 = 0, 1, 2

	r.def.Configure(s)
	if err := s.allocate(); err != nil {
		return fmt.Errorf("allocate state: %w", err)
	}
	r.log.Debug().Int("nx", s.NX).Int("ny", s.NY).Int("nz", s.NZ).
		Bool("cyclic_x", s.EnableCyclicX).Bool("coord_degree", s.CoordDegree).
		Msg("configured")

	r.def.SetGrid(s)
	if err := s.calcGrid(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	r.def.SetCoriolis(s)
	r.def.SetTopography(s)
	s.calcTopo()
	r.log.Debug().Msg("grid and topography ready")

	if err := r.def.InitializeFields(ctx, s); err != nil {
		return fmt.Errorf("initial conditions: %w", err)
	}
	for _, f := range []*Field{s.U, s.V, s.Temp, s.Salt} {
		s.exchangeHalo(f)
	}

	if err := r.def.RegisterDiagnostics(s); err != nil {
		return fmt.Errorf("diagnostics: %w", err)
	}
	for _, name := range s.Diagnostics.Names() {
		diag, _ := s.Diagnostics.Lookup(name)
		for _, v := range diag.OutputVariables {
			if _, err := s.Variable(v); err != nil {
				return fmt.Errorf("diagnostic %s: %w", name, err)
			}
		}
	}
	r.log.Debug().Strs("diagnostics", s.Diagnostics.Names()).Msg("setup complete")

	r.ready = true
	return nil
}

// Run executes cfg.Steps() time steps and returns the collected output.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if !r.ready {
		return nil, ErrNotSetup
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := r.state
	steps := cfg.Steps()
	result := &Result{
		Metrics: make(map[string]float64),
		Series:  make(map[string][]float64),
		Times:   make([]float64, 0, steps),
	}

	if snap, err := s.Diagnostics.Lookup("snapshot"); err == nil && cfg.SnapshotEvery > 0 {
		snap.OutputFrequency = cfg.SnapshotEvery
	}
	s.Diagnostics.reset(s.Time)

	for _, m := range r.metrics {
		m.Reset()
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		r.def.ApplyForcing(s)
		if err := r.stepper.Step(ctx, s, cfg.Dt); err != nil {
			return result, &StepError{Step: s.Itt, Time: s.Time, Wrapped: err}
		}
		if cfg.ValidateState && !s.ForcTempSurface.IsFinite() {
			return result, &StepError{Step: s.Itt, Time: s.Time, Wrapped: ErrUnstable}
		}

		s.rotateTimeLevels()
		s.Itt++
		s.Time += cfg.Dt
		result.Steps++
		result.Time = s.Time

		r.def.AfterStep(s)

		for _, m := range r.metrics {
			m.Observe(s)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}
		result.Times = append(result.Times, s.Time)
		for _, o := range r.observers {
			o.OnStep(s)
		}

		snaps, err := s.Diagnostics.collect(s)
		if err != nil {
			return result, &StepError{Step: s.Itt, Time: s.Time, Wrapped: err}
		}
		result.Snapshots = append(result.Snapshots, snaps...)
	}

	StreamFunction(s)
	psi, err := s.SliceXY(s.Psi)
	if err != nil {
		return result, err
	}
	result.Psi = psi

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.log.Info().Int("steps", result.Steps).Float64("model_days", s.Time/86400).
		Dur("elapsed", time.Since(start)).Int("snapshots", len(result.Snapshots)).
		Msg("run complete")
	return result, nil
}
