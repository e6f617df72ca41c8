package metrics

import (
	"math"

	"github.com/san-kum/seamount/internal/ocean"
)

// MeanSST is the area-mean surface temperature over wet interior cells.
type MeanSST struct {
	name  string
	value float64
}

func NewMeanSST() *MeanSST { return &MeanSST{name: "mean_sst"} }

func (m *MeanSST) Name() string { return m.name }

func (m *MeanSST) Observe(s *ocean.State) {
	sum, n := 0.0, 0
	eachWetSurface(s, func(i, j int) {
		sum += s.Temp.At(i, j, s.Top(), s.Tau)
		n++
	})
	if n > 0 {
		m.value = sum / float64(n)
	}
}

func (m *MeanSST) Value() float64 { return m.value }
func (m *MeanSST) Reset()         { m.value = 0 }

// ForcingRMS is the root-mean-square surface heat flux over wet cells.
type ForcingRMS struct {
	name  string
	value float64
}

func NewForcingRMS() *ForcingRMS { return &ForcingRMS{name: "forcing_rms"} }

func (f *ForcingRMS) Name() string { return f.name }

func (f *ForcingRMS) Observe(s *ocean.State) {
	sum, n := 0.0, 0
	eachWetSurface(s, func(i, j int) {
		q := s.ForcTempSurface.At(i, j)
		sum += q * q
		n++
	})
	if n > 0 {
		f.value = math.Sqrt(sum / float64(n))
	}
}

func (f *ForcingRMS) Value() float64 { return f.value }
func (f *ForcingRMS) Reset()         { f.value = 0 }

// TargetSource exposes the restoring profile over yt.
type TargetSource interface {
	TargetTemperature() *ocean.Field
}

// SSTMisfit is the mean absolute distance of the surface from its target.
type SSTMisfit struct {
	name   string
	target TargetSource
	value  float64
}

func NewSSTMisfit(target TargetSource) *SSTMisfit {
	return &SSTMisfit{name: "sst_misfit", target: target}
}

func (m *SSTMisfit) Name() string { return m.name }

func (m *SSTMisfit) Observe(s *ocean.State) {
	tStar := m.target.TargetTemperature()
	if tStar == nil {
		return
	}
	sum, n := 0.0, 0
	eachWetSurface(s, func(i, j int) {
		sum += math.Abs(s.Temp.At(i, j, s.Top(), s.Tau) - tStar.At(j))
		n++
	})
	if n > 0 {
		m.value = sum / float64(n)
	}
}

func (m *SSTMisfit) Value() float64 { return m.value }
func (m *SSTMisfit) Reset()         { m.value = 0 }

func eachWetSurface(s *ocean.State, fn func(i, j int)) {
	nx, ny, _ := s.PaddedShape()
	for i := ocean.Halo; i < nx-ocean.Halo; i++ {
		for j := ocean.Halo; j < ny-ocean.Halo; j++ {
			if s.IsWet(i, j) {
				fn(i, j)
			}
		}
	}
}

// Default returns the metrics a seamount run records.
func Default(target TargetSource) []ocean.Metric {
	return []ocean.Metric{
		NewMeanSST(),
		NewForcingRMS(),
		NewSSTMisfit(target),
	}
}
