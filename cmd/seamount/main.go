package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/seamount/internal/config"
	"github.com/san-kum/seamount/internal/export"
	"github.com/san-kum/seamount/internal/logging"
	"github.com/san-kum/seamount/internal/metrics"
	"github.com/san-kum/seamount/internal/ocean"
	"github.com/san-kum/seamount/internal/scenario"
	"github.com/san-kum/seamount/internal/storage"
	"github.com/san-kum/seamount/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	days       float64
	seed       int64
	workers    int
	showPlot   bool
	exportOut  string
	svgDir     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seamount",
		Short:         "wind-free channel flow around a seamount island",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".seamount", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the seamount scenario",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print the stream function when done")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stream function and metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and diagnostic snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON, optionally with SVG plots",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write JSON to this file instead of stdout")
	exportCmd.Flags().StringVar(&svgDir, "svg", "", "directory for SVG plots of psi and metric series")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tY0\tDAYS\tWORKERS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%dx%d\t%.1f\t%.0f\t%d\n",
					name, p.Grid.NX, p.Grid.NY, p.Grid.NZ, p.Grid.YOrigin, p.Duration, p.Workers)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the default configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, showCmd, exportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step in seconds")
	cmd.Flags().Float64Var(&days, "days", config.DefaultDuration, "run length in days")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed for the initial velocity")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "goroutines for global reductions")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("days") {
		cfg.Duration = days
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// simulation bundles a configured runner with the metrics it records.
type simulation struct {
	cfg    *config.Config
	runner *ocean.Runner
	sst    ocean.Metric
	misfit ocean.Metric
}

func newSimulation(cfg *config.Config, log zerolog.Logger) *simulation {
	def := scenario.New(cfg.ScenarioOptions())
	ms := metrics.Default(def)
	sim := &simulation{cfg: cfg}
	for _, m := range ms {
		switch m.(type) {
		case *metrics.MeanSST:
			sim.sst = m
		case *metrics.SSTMisfit:
			sim.misfit = m
		}
	}
	sim.runner = ocean.NewRunner(def,
		ocean.WithReducer(cfg.Reducer()),
		ocean.WithLogger(log),
		ocean.WithMetrics(ms...),
	)
	return sim
}

func (sim *simulation) save(result *ocean.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Scenario: sim.cfg.Scenario,
		Seed:     sim.cfg.Seed,
		Dt:       sim.cfg.Dt,
		Duration: sim.cfg.Duration,
		NX:       sim.cfg.Grid.NX,
		NY:       sim.cfg.Grid.NY,
		NZ:       sim.cfg.Grid.NZ,
		YOrigin:  sim.cfg.Grid.YOrigin,
	}, result)
}

// landMask hides dry columns of an interior (y, x) slice.
func landMask(s *ocean.State) func(i, j int) bool {
	return func(i, j int) bool { return s.IsWet(i+ocean.Halo, j+ocean.Halo) }
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sim := newSimulation(cfg, log)
	if err := sim.runner.Setup(ctx); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	fmt.Printf("running %s for %.0f days (%d steps)...\n", cfg.Scenario, cfg.Duration, cfg.RunConfig().Steps())
	start := time.Now()

	result, err := sim.runner.Run(ctx, cfg.RunConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := sim.save(result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	printMetrics(result.Metrics)

	if showPlot {
		fmt.Println()
		fmt.Println(viz.Heatmap(viz.MaskLand(result.Psi, landMask(sim.runner.State())), "barotropic stream function"))
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// the live view owns the terminal, so logs go to a file in the data dir
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log, err := logging.NewJSON(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sim := newSimulation(cfg, log)
	if err := sim.runner.Setup(ctx); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	runCfg := cfg.RunConfig()
	p := tea.NewProgram(viz.NewLiveModel(fmt.Sprintf("seamount · %s", cfg.Scenario), cancel))
	sim.runner.AddObserver(viz.NewProgressObserver(p.Send, runCfg.Steps(), sim.sst, sim.misfit))

	go func() {
		result, err := sim.runner.Run(ctx, runCfg)
		p.Send(viz.DoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, runErr := final.(viz.LiveModel).Result()
	if runErr != nil {
		return runErr
	}
	if result == nil {
		fmt.Println("canceled")
		return nil
	}

	runID, err := sim.save(result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	printMetrics(result.Metrics)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tGRID\tY0\tDAYS\tSTEPS\tMEAN SST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%d\t%.1f\t%.0f\t%d\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NX, run.NY, run.NZ,
			run.YOrigin,
			run.Duration,
			run.Steps,
			run.Metrics["mean_sst"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	psi, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s  grid: %dx%dx%d  days: %.0f\n\n", meta.Scenario, meta.NX, meta.NY, meta.NZ, meta.Duration)

	fmt.Println(viz.Heatmap(psi, "barotropic stream function"))
	fmt.Println()

	// zonal section through the middle of the island
	_, _, j0, j1 := scenario.IslandBlock()
	row := (j0+j1)/2 - ocean.Halo
	fmt.Println(viz.Transect(psi, row, fmt.Sprintf("psi along interior row %d (through the island)", row)))
	fmt.Println()

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Println(viz.SeriesPlot(series[name], fmt.Sprintf("%s over %d steps", name, len(times)), 70, 10))
		fmt.Println()
	}
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	snaps, err := st.LoadDiagnostics(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("created: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("grid: %dx%dx%d  y origin: %.1f\n", meta.NX, meta.NY, meta.NZ, meta.YOrigin)
	fmt.Printf("dt: %.0fs  days: %.0f  steps: %d  seed: %d\n", meta.Dt, meta.Duration, meta.Steps, meta.Seed)
	printMetrics(meta.Metrics)

	if len(snaps) == 0 {
		fmt.Println("\nno snapshots")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tSTEP\tVARIABLE\tMIN\tMAX\tMEAN")
	for _, sn := range snaps {
		fmt.Fprintf(w, "%.0f\t%d\t%s\t%.4g\t%.4g\t%.4g\n",
			sn.Time/86400, sn.Step, sn.Variable, sn.Min, sn.Max, sn.Mean)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	data, err := st.Export(runID)
	if err != nil {
		return err
	}

	if svgDir != "" {
		if err := writeSVGs(svgDir, data); err != nil {
			return err
		}
	}

	if exportOut != "" {
		if err := storage.ExportJSON(exportOut, data); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", runID, exportOut)
		return nil
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func writeSVGs(dir string, data *storage.ExportData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	files := map[string]string{
		data.ID + "_psi.svg": export.FieldToSVG(data.Psi, 6),
	}
	for name, values := range data.Series {
		files[data.ID+"_"+name+".svg"] = export.SeriesToSVG(data.Times, values, 600, 200, "#00ccff")
	}
	for name, svg := range files {
		if svg == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(svg), 0644); err != nil {
			return err
		}
	}
	return nil
}
