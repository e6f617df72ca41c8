package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/seamount/internal/ocean"
)

// ExportData is everything stored for one run, as a single document.
type ExportData struct {
	*RunMetadata
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Snapshots []ocean.Snapshot     `json:"snapshots"`
	Psi       [][]float64          `json:"psi"`
}

func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	snaps, err := s.LoadDiagnostics(runID)
	if err != nil {
		return nil, err
	}
	psi, err := s.LoadField(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{RunMetadata: meta, Times: times, Series: series, Snapshots: snaps, Psi: psi}, nil
}

func ExportJSON(path string, data *ExportData) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
