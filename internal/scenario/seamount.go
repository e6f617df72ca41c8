// Package scenario defines the idealized seamount-channel experiment: a
// zonally periodic channel with a rectangular island, relaxed at the
// surface toward a latitude-dependent temperature profile.
package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/seamount/internal/ocean"
)

const (
	Name = "seamount"

	// BaselineTemperature is the restoring target inside the tropical band, °C.
	BaselineTemperature = 15.0
	// BandEdge is the latitude (degrees) poleward of which the target ramps.
	BandEdge = 20.0
	// RelaxationTime of the surface restoring, seconds.
	RelaxationTime = 30 * 86400.0
	// FullDepth is the kbot value of an open-ocean column.
	FullDepth = 100
)

// The island is the land block [islandI0:islandI1, islandJ0:islandJ1) in
// padded grid indices.
const (
	islandI0, islandI1 = 10, 20
	islandJ0, islandJ1 = 10, 20
)

// IslandBlock returns the island's half-open padded index ranges.
func IslandBlock() (i0, i1, j0, j1 int) {
	return islandI0, islandI1, islandJ0, islandJ1
}

type Options struct {
	NX, NY, NZ int
	XOrigin    float64
	YOrigin    float64
	Seed       int64
}

func DefaultOptions() Options {
	return Options{NX: 50, NY: 100, NZ: 10, Seed: 1}
}

// Seamount implements ocean.Definition.
type Seamount struct {
	opts Options
	rng  *rand.Rand

	bounds Bounds
	tStar  *ocean.Field // restoring target over yt
	tRest  *ocean.Field // restoring rate over (xt, yt), 1/s scaled by dzt
}

func New(opts Options) *Seamount {
	return &Seamount{opts: opts}
}

func (m *Seamount) Options() Options { return m.opts }
func (m *Seamount) Bounds() Bounds   { return m.bounds }

// TargetTemperature is nil until InitializeFields has run.
func (m *Seamount) TargetTemperature() *ocean.Field { return m.tStar }
func (m *Seamount) RelaxationRate() *ocean.Field    { return m.tRest }

func (m *Seamount) Configure(s *ocean.State) {
	s.NX, s.NY, s.NZ = m.opts.NX, m.opts.NY, m.opts.NZ
	s.CoordDegree = true
	s.EnableCyclicX = true
}

func (m *Seamount) SetGrid(s *ocean.State) {
	s.XOrigin, s.YOrigin = m.opts.XOrigin, m.opts.YOrigin
	s.Dxt.Fill(1)
	s.Dyt.Fill(1)
	s.Dzt.Fill(1)
}

func (m *Seamount) SetCoriolis(s *ocean.State) {
	nx, ny, _ := s.PaddedShape()
	for j := 0; j < ny; j++ {
		f := 2 * s.Omega * math.Sin(s.Yt.At(j)/180*math.Pi)
		for i := 0; i < nx; i++ {
			s.CoriolisT.Set(f, i, j)
		}
	}
}

func (m *Seamount) SetTopography(s *ocean.State) {
	nx, ny, _ := s.PaddedShape()
	s.Kbot.Fill(FullDepth)
	for i := islandI0; i < min(islandI1, nx); i++ {
		for j := islandJ0; j < min(islandJ1, ny); j++ {
			s.Kbot.Set(0, i, j)
		}
	}
}

func (m *Seamount) InitializeFields(ctx context.Context, s *ocean.State) error {
	m.rng = rand.New(rand.NewSource(m.opts.Seed))
	nx, ny, nz := s.PaddedShape()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				s.U.Set(m.rng.Float64(), i, j, k, s.Tau)
			}
		}
	}

	var err error
	if m.bounds, err = latitudeBounds(ctx, s); err != nil {
		return err
	}

	m.tStar, err = ocean.Allocate(s, []string{"yt"}, BaselineTemperature)
	if err != nil {
		return err
	}
	for j := 0; j < ny; j++ {
		m.tStar.Data[j] = targetTemperature(s.Yt.At(j), m.bounds.YtMin, m.bounds.YtMax)
	}

	m.tRest, err = ocean.Allocate(s, []string{"xt", "yt"}, 0)
	if err != nil {
		return err
	}
	rate := s.Dzt.At(s.Top()) / RelaxationTime
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			m.tRest.Set(rate*s.MaskT.At(i, j, s.Top()), i, j)
		}
	}
	return nil
}

// Bounds are the global latitude extremes of the t and u grids.
type Bounds struct {
	YtMin, YtMax float64
	YuMin, YuMax float64
}

func latitudeBounds(ctx context.Context, s *ocean.State) (Bounds, error) {
	var (
		b   Bounds
		err error
	)
	if b.YtMin, err = ocean.GlobalMin(ctx, s, s.Yt.Data); err != nil {
		return b, fmt.Errorf("yt min: %w", err)
	}
	if b.YuMin, err = ocean.GlobalMin(ctx, s, s.Yu.Data); err != nil {
		return b, fmt.Errorf("yu min: %w", err)
	}
	if b.YtMax, err = ocean.GlobalMax(ctx, s, s.Yt.Data); err != nil {
		return b, fmt.Errorf("yt max: %w", err)
	}
	if b.YuMax, err = ocean.GlobalMax(ctx, s, s.Yu.Data); err != nil {
		return b, fmt.Errorf("yu max: %w", err)
	}
	return b, nil
}

// targetTemperature is 15° inside ±20° and ramps linearly to 0 at the
// southern and northern extremes of the grid.
func targetTemperature(lat, latMin, latMax float64) float64 {
	switch {
	case lat < -BandEdge:
		return BaselineTemperature * (lat - latMin) / (-BandEdge - latMin)
	case lat > BandEdge:
		return BaselineTemperature * (1 - (lat-BandEdge)/(latMax-BandEdge))
	default:
		return BaselineTemperature
	}
}

func (m *Seamount) ApplyForcing(s *ocean.State) {
	nx, ny, _ := s.PaddedShape()
	top := s.Top()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			sst := s.Temp.At(i, j, top, s.Tau)
			s.ForcTempSurface.Set(m.tRest.At(i, j)*(m.tStar.At(j)-sst), i, j)
		}
	}
}

func (m *Seamount) RegisterDiagnostics(s *ocean.State) error {
	snap, err := s.Diagnostics.Lookup("snapshot")
	if err != nil {
		return err
	}
	snap.OutputVariables = append(snap.OutputVariables, "dsalt", "dtemp")
	return nil
}

func (m *Seamount) AfterStep(s *ocean.State) {}
