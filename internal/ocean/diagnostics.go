package ocean

import (
	"fmt"
	"math"
)

// Diagnostic is one named output stream.
type Diagnostic struct {
	Name string
	// OutputFrequency in seconds of model time; zero disables output.
	OutputFrequency float64
	OutputVariables []string

	nextOutput float64
}

// Diagnostics is the registry of output streams, keyed by name.
type Diagnostics struct {
	entries map[string]*Diagnostic
	order   []string
}

// NewDiagnostics returns a registry holding the default "snapshot" stream.
func NewDiagnostics() *Diagnostics {
	d := &Diagnostics{entries: make(map[string]*Diagnostic)}
	d.Register("snapshot", 0, "temp", "forc_temp_surface")
	return d
}

// Register adds or replaces a diagnostic.
func (d *Diagnostics) Register(name string, frequency float64, vars ...string) *Diagnostic {
	if _, ok := d.entries[name]; !ok {
		d.order = append(d.order, name)
	}
	diag := &Diagnostic{Name: name, OutputFrequency: frequency, OutputVariables: vars}
	d.entries[name] = diag
	return diag
}

func (d *Diagnostics) Lookup(name string) (*Diagnostic, error) {
	diag, ok := d.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDiagnostic, name)
	}
	return diag, nil
}

// Names returns diagnostics in registration order.
func (d *Diagnostics) Names() []string {
	return append([]string(nil), d.order...)
}

// Snapshot summarises one output variable at one output time.
type Snapshot struct {
	Diagnostic string
	Step       int
	Time       float64
	Variable   string
	Min        float64
	Max        float64
	Mean       float64
}

// reset schedules each diagnostic's first output one interval after time.
func (d *Diagnostics) reset(time float64) {
	for _, diag := range d.entries {
		diag.nextOutput = time + diag.OutputFrequency
	}
}

// collect returns snapshots for every diagnostic that is due at s.Time.
func (d *Diagnostics) collect(s *State) ([]Snapshot, error) {
	var out []Snapshot
	for _, name := range d.order {
		diag := d.entries[name]
		if diag.OutputFrequency <= 0 || s.Time+1e-9 < diag.nextOutput {
			continue
		}
		for diag.nextOutput <= s.Time+1e-9 {
			diag.nextOutput += diag.OutputFrequency
		}
		for _, v := range diag.OutputVariables {
			f, err := s.Variable(v)
			if err != nil {
				return nil, fmt.Errorf("diagnostic %s: %w", name, err)
			}
			lo, hi, mean := s.summarize(f)
			out = append(out, Snapshot{
				Diagnostic: name,
				Step:       s.Itt,
				Time:       s.Time,
				Variable:   v,
				Min:        lo,
				Max:        hi,
				Mean:       mean,
			})
		}
	}
	return out, nil
}

func (s *State) summarize(f *Field) (lo, hi, mean float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	n := 0
	sum := 0.0
	f.walk(s.interiorRanges(f), func(off int) {
		v := f.Data[off]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
		n++
	})
	if n == 0 {
		return 0, 0, 0
	}
	return lo, hi, sum / float64(n)
}
