package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/seamount/internal/ocean"
	"github.com/san-kum/seamount/internal/scenario"
)

const (
	DefaultDt            = 86400.0
	DefaultDuration      = 360.0
	DefaultSnapshotEvery = 30.0
	DefaultSeed          = 1
	DefaultWorkers       = 1
	DefaultLogLevel      = "info"

	secondsPerDay = 86400.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scenario      string     `yaml:"scenario" toml:"scenario"`
	Grid          GridConfig `yaml:"grid" toml:"grid"`
	Dt            float64    `yaml:"dt" toml:"dt"`
	Duration      float64    `yaml:"duration" toml:"duration"`
	SnapshotEvery float64    `yaml:"snapshot_every" toml:"snapshot_every"`
	Seed          int64      `yaml:"seed" toml:"seed"`
	Workers       int        `yaml:"workers" toml:"workers"`
	LogLevel      string     `yaml:"log_level" toml:"log_level"`
}

type GridConfig struct {
	NX      int     `yaml:"nx" toml:"nx"`
	NY      int     `yaml:"ny" toml:"ny"`
	NZ      int     `yaml:"nz" toml:"nz"`
	XOrigin float64 `yaml:"x_origin" toml:"x_origin"`
	YOrigin float64 `yaml:"y_origin" toml:"y_origin"`
}

func DefaultConfig() *Config {
	opts := scenario.DefaultOptions()
	return &Config{
		Scenario: scenario.Name,
		Grid: GridConfig{
			NX:      opts.NX,
			NY:      opts.NY,
			NZ:      opts.NZ,
			XOrigin: opts.XOrigin,
			YOrigin: opts.YOrigin,
		},
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		SnapshotEvery: DefaultSnapshotEvery,
		Seed:          DefaultSeed,
		Workers:       DefaultWorkers,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads a YAML or TOML file over the defaults; the format follows the extension.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a file over a copy of base, so keys absent from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := *base
	cfg := &c
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Scenario != scenario.Name {
		return fmt.Errorf("%w: unknown scenario %q", ErrInvalidConfig, c.Scenario)
	}
	_, i1, _, j1 := scenario.IslandBlock()
	if c.Grid.NX+2*ocean.Halo < i1 || c.Grid.NY+2*ocean.Halo < j1 {
		return fmt.Errorf("%w: grid %dx%d cannot hold the island", ErrInvalidConfig, c.Grid.NX, c.Grid.NY)
	}
	if c.Grid.NZ <= 0 {
		return fmt.Errorf("%w: nz must be positive", ErrInvalidConfig)
	}
	if c.Dt <= 0 || c.Duration <= 0 {
		return fmt.Errorf("%w: dt and duration must be positive", ErrInvalidConfig)
	}
	if c.Duration*secondsPerDay < c.Dt {
		return fmt.Errorf("%w: duration shorter than one time step", ErrInvalidConfig)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot_every must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) ScenarioOptions() scenario.Options {
	return scenario.Options{
		NX:      c.Grid.NX,
		NY:      c.Grid.NY,
		NZ:      c.Grid.NZ,
		XOrigin: c.Grid.XOrigin,
		YOrigin: c.Grid.YOrigin,
		Seed:    c.Seed,
	}
}

// RunConfig converts day-based durations to the runner's seconds.
func (c *Config) RunConfig() ocean.Config {
	return ocean.Config{
		Dt:            c.Dt,
		Runlen:        c.Duration * secondsPerDay,
		SnapshotEvery: c.SnapshotEvery * secondsPerDay,
		ValidateState: true,
	}
}

func (c *Config) Reducer() ocean.Reducer {
	if c.Workers > 1 {
		return ocean.NewChunkedReducer(c.Workers)
	}
	return ocean.LocalReducer{}
}
