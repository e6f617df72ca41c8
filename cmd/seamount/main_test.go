package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/seamount/internal/config"
)

// newTestRunCmd registers the run flags on a fresh command, which also
// resets the package-level flag variables to their defaults.
func newTestRunCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	return cmd
}

func TestResolveConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("duration: 90\nseed: 7\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tests := []struct {
		name     string
		flags    map[string]string
		duration float64
		yOrigin  float64
		seed     int64
		workers  int
		logLevel string
	}{
		{"defaults", nil, config.DefaultDuration, 0, config.DefaultSeed, 1, "info"},
		{"preset", map[string]string{"preset": "equatorial"}, config.DefaultDuration, -50, config.DefaultSeed, 4, "info"},
		{"file over preset", map[string]string{"preset": "equatorial", "config": path}, 90, -50, 7, 4, "info"},
		{"flags over file", map[string]string{"preset": "equatorial", "config": path, "days": "10", "workers": "2", "seed": "3"}, 10, -50, 3, 2, "info"},
		{"log level flag", map[string]string{"log-level": "debug"}, config.DefaultDuration, 0, config.DefaultSeed, 1, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestRunCmd()
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatalf("set %s: %v", k, err)
				}
			}

			cfg, err := resolveConfig(cmd)
			if err != nil {
				t.Fatalf("resolveConfig failed: %v", err)
			}
			if cfg.Duration != tt.duration {
				t.Errorf("duration: expected %f, got %f", tt.duration, cfg.Duration)
			}
			if cfg.Grid.YOrigin != tt.yOrigin {
				t.Errorf("y origin: expected %f, got %f", tt.yOrigin, cfg.Grid.YOrigin)
			}
			if cfg.Seed != tt.seed {
				t.Errorf("seed: expected %d, got %d", tt.seed, cfg.Seed)
			}
			if cfg.Workers != tt.workers {
				t.Errorf("workers: expected %d, got %d", tt.workers, cfg.Workers)
			}
			if cfg.LogLevel != tt.logLevel {
				t.Errorf("log level: expected %s, got %s", tt.logLevel, cfg.LogLevel)
			}
		})
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
	}{
		{"unknown preset", map[string]string{"preset": "arctic"}},
		{"missing file", map[string]string{"config": filepath.Join(t.TempDir(), "none.yaml")}},
		{"zero days", map[string]string{"days": "0"}},
		{"no workers", map[string]string{"workers": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestRunCmd()
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatalf("set %s: %v", k, err)
				}
			}
			if _, err := resolveConfig(cmd); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPresetsDoNotLeakBetweenRuns(t *testing.T) {
	cmd := newTestRunCmd()
	if err := cmd.Flags().Set("preset", "quick"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("days", "3"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}
	if got := config.GetPreset("quick").Duration; got != 30 {
		t.Errorf("preset was modified: duration %f", got)
	}
}
