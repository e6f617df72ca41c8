package config

import "sort"

var Presets = map[string]*Config{
	"benham": DefaultConfig(),
	"equatorial": {
		Scenario:      "seamount",
		Grid:          GridConfig{NX: 50, NY: 100, NZ: 10, YOrigin: -50},
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		SnapshotEvery: DefaultSnapshotEvery,
		Seed:          DefaultSeed,
		Workers:       4,
		LogLevel:      DefaultLogLevel,
	},
	"quick": {
		Scenario:      "seamount",
		Grid:          GridConfig{NX: 50, NY: 100, NZ: 10},
		Dt:            DefaultDt,
		Duration:      30,
		SnapshotEvery: 5,
		Seed:          DefaultSeed,
		Workers:       DefaultWorkers,
		LogLevel:      DefaultLogLevel,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
