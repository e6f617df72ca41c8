package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/seamount/internal/ocean"
)

const (
	metadataFile    = "metadata.json"
	diagnosticsFile = "diagnostics.csv"
	seriesFile      = "series.csv"
	psiFile         = "psi.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration_days"`
	NX        int                `json:"nx"`
	NY        int                `json:"ny"`
	NZ        int                `json:"nz"`
	YOrigin   float64            `json:"y_origin"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id. meta.ID and meta.Timestamp
// are filled in here.
func (s *Store) Save(meta RunMetadata, result *ocean.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.Steps
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeDiagnostics(filepath.Join(runDir, diagnosticsFile), result.Snapshots); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result.Times, result.Series); err != nil {
		return "", err
	}
	if err := writeMatrix(filepath.Join(runDir, psiFile), result.Psi); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func writeDiagnostics(path string, snaps []ocean.Snapshot) error {
	rows := [][]string{{"diagnostic", "step", "time", "variable", "min", "max", "mean"}}
	for _, sn := range snaps {
		rows = append(rows, []string{
			sn.Diagnostic,
			strconv.Itoa(sn.Step),
			formatFloat(sn.Time),
			sn.Variable,
			formatFloat(sn.Min),
			formatFloat(sn.Max),
			formatFloat(sn.Mean),
		})
	}
	return writeCSV(path, rows)
}

func writeSeries(path string, times []float64, series map[string][]float64) error {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]string{append([]string{"time"}, names...)}
	for i, t := range times {
		row := []string{formatFloat(t)}
		for _, name := range names {
			vals := series[name]
			if i < len(vals) {
				row = append(row, formatFloat(vals[i]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeMatrix(path string, m [][]float64) error {
	rows := make([][]string, len(m))
	for j, r := range m {
		rows[j] = make([]string, len(r))
		for i, v := range r {
			rows[j][i] = formatFloat(v)
		}
	}
	return writeCSV(path, rows)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadDiagnostics(runID string) ([]ocean.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}

	snaps := make([]ocean.Snapshot, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 7 {
			continue
		}
		step, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", diagnosticsFile, i+1, err)
		}
		vals := make([]float64, 4)
		for k, col := range []int{2, 4, 5, 6} {
			if vals[k], err = strconv.ParseFloat(rec[col], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", diagnosticsFile, i+1, err)
			}
		}
		snaps = append(snaps, ocean.Snapshot{
			Diagnostic: rec[0],
			Step:       step,
			Time:       vals[0],
			Variable:   rec[3],
			Min:        vals[1],
			Max:        vals[2],
			Mean:       vals[3],
		})
	}
	return snaps, nil
}

// LoadSeries returns the per-step times and each metric's values.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []float64{}, map[string][]float64{}, nil
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	series := make(map[string][]float64, len(header)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for c := 1; c < len(header) && c < len(rec); c++ {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				continue
			}
			series[header[c]] = append(series[header[c]], v)
		}
	}
	return times, series, nil
}

// LoadField returns the final stream function, rows indexed by y.
func (s *Store) LoadField(runID string) ([][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, psiFile))
	if err != nil {
		return nil, err
	}
	m := make([][]float64, len(records))
	for j, rec := range records {
		m[j] = make([]float64, len(rec))
		for i, cell := range rec {
			if m[j][i], err = strconv.ParseFloat(cell, 64); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", psiFile, j, err)
			}
		}
	}
	return m, nil
}
