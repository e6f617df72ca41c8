package ocean

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Halo is the number of ghost cells padding each horizontal boundary.
const Halo = 2

// TimeLevels is the number of stored time levels for prognostic fields.
const TimeLevels = 3

const (
	// EarthRadius in metres.
	EarthRadius = 6370e3
	// EarthOmega is the angular velocity of the earth in 1/s.
	EarthOmega = math.Pi / 43082.0
)

type Settings struct {
	NX, NY, NZ    int
	CoordDegree   bool
	EnableCyclicX bool
	XOrigin       float64
	YOrigin       float64
	Omega         float64
}

func DefaultSettings() Settings {
	return Settings{Omega: EarthOmega}
}

func (s Settings) validate() error {
	if s.NX <= 0 || s.NY <= 0 || s.NZ <= 0 {
		if s.NX == 0 && s.NY == 0 && s.NZ == 0 {
			return ErrNotConfigured
		}
		return fmt.Errorf("%w: grid %dx%dx%d", ErrInvalidSettings, s.NX, s.NY, s.NZ)
	}
	return nil
}

// State is the mutable simulation state handed to every lifecycle hook.
type State struct {
	Settings

	// horizontal axes, padded by Halo
	Dxt, Xt, Xu *Field
	Dyt, Yt, Yu *Field

	// vertical axes, index 0 is the bottom level
	Dzt, Zt, Zw *Field

	Kbot            *Field
	MaskT           *Field
	CoriolisT       *Field
	ForcTempSurface *Field
	Psi             *Field

	// prognostic fields carry a trailing time-level axis
	U, V, Temp, Salt *Field
	DTemp, DSalt     *Field

	Tau, Taum1, Taup1 int
	Itt               int
	Time              float64

	Diagnostics *Diagnostics

	reducer   Reducer
	variables map[string]*Field
}

func NewState() *State {
	return &State{
		Settings:    DefaultSettings(),
		Diagnostics: NewDiagnostics(),
		reducer:     LocalReducer{},
		Tau:         1,
		Taum1:       0,
		Taup1:       2,
	}
}

// PaddedShape is the horizontal shape including halo cells, plus NZ.
func (s *State) PaddedShape() (nx, ny, nz int) {
	return s.NX + 2*Halo, s.NY + 2*Halo, s.NZ
}

// Top is the vertical index of the surface level.
func (s *State) Top() int { return s.NZ - 1 }

func (s *State) Reducer() Reducer { return s.reducer }

func (s *State) dimSize(name string) (int, error) {
	nx, ny, nz := s.PaddedShape()
	switch name {
	case "xt", "xu":
		return nx, nil
	case "yt", "yu":
		return ny, nil
	case "zt", "zw":
		return nz, nil
	case "timesteps":
		return TimeLevels, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// Allocate returns a field shaped by the named dimensions and pre-filled with fill.
func Allocate(s *State, dims []string, fill float64) (*Field, error) {
	if err := s.Settings.validate(); err != nil {
		return nil, err
	}
	shape := make([]int, len(dims))
	for i, d := range dims {
		n, err := s.dimSize(d)
		if err != nil {
			return nil, err
		}
		shape[i] = n
	}
	return newField(dims, shape, fill), nil
}

func (s *State) allocate() error {
	if err := s.Settings.validate(); err != nil {
		return err
	}

	var err error
	alloc := func(dims ...string) *Field {
		if err != nil {
			return nil
		}
		var f *Field
		f, err = Allocate(s, dims, 0)
		return f
	}

	s.Dxt, s.Xt, s.Xu = alloc("xt"), alloc("xt"), alloc("xu")
	s.Dyt, s.Yt, s.Yu = alloc("yt"), alloc("yt"), alloc("yu")
	s.Dzt, s.Zt, s.Zw = alloc("zt"), alloc("zt"), alloc("zw")

	s.Kbot = alloc("xt", "yt")
	s.MaskT = alloc("xt", "yt", "zt")
	s.CoriolisT = alloc("xt", "yt")
	s.ForcTempSurface = alloc("xt", "yt")
	s.Psi = alloc("xu", "yu")

	s.U = alloc("xu", "yt", "zt", "timesteps")
	s.V = alloc("xt", "yu", "zt", "timesteps")
	s.Temp = alloc("xt", "yt", "zt", "timesteps")
	s.Salt = alloc("xt", "yt", "zt", "timesteps")
	s.DTemp = alloc("xt", "yt", "zt")
	s.DSalt = alloc("xt", "yt", "zt")
	if err != nil {
		return err
	}

	s.variables = map[string]*Field{
		"dxt": s.Dxt, "dyt": s.Dyt, "dzt": s.Dzt,
		"xt": s.Xt, "xu": s.Xu, "yt": s.Yt, "yu": s.Yu, "zt": s.Zt, "zw": s.Zw,
		"kbot": s.Kbot, "maskT": s.MaskT, "coriolis_t": s.CoriolisT,
		"forc_temp_surface": s.ForcTempSurface, "psi": s.Psi,
		"u": s.U, "v": s.V, "temp": s.Temp, "salt": s.Salt,
		"dtemp": s.DTemp, "dsalt": s.DSalt,
	}
	return nil
}

// Variable returns the field registered under name.
func (s *State) Variable(name string) (*Field, error) {
	f, ok := s.variables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownVariable, name, strings.Join(s.variableNames(), ", "))
	}
	return f, nil
}

func (s *State) variableNames() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsWet reports whether surface cell (i, j) is ocean.
func (s *State) IsWet(i, j int) bool {
	return s.MaskT.At(i, j, s.Top()) > 0
}

func (s *State) rotateTimeLevels() {
	s.Taum1, s.Tau, s.Taup1 = s.Tau, s.Taup1, s.Taum1
}

// interiorRanges maps each axis of f to the range a diagnostic should see:
// interior cells for horizontal axes, the current level for the time axis.
func (s *State) interiorRanges(f *Field) [][2]int {
	ranges := make([][2]int, f.Rank())
	for d, name := range f.Dims {
		switch name {
		case "xt", "xu", "yt", "yu":
			ranges[d] = [2]int{Halo, f.Shape[d] - Halo}
		case "timesteps":
			ranges[d] = [2]int{s.Tau, s.Tau + 1}
		default:
			ranges[d] = [2]int{0, f.Shape[d]}
		}
	}
	return ranges
}

// SliceXY returns the interior of a field as rows indexed by y then x.
// Trailing indices select the z level and time level where the field has them.
func (s *State) SliceXY(f *Field, rest ...int) ([][]float64, error) {
	if f.Rank() < 2 || f.Rank() != 2+len(rest) {
		return nil, fmt.Errorf("%w: rank %d with %d trailing indices", ErrShapeMismatch, f.Rank(), len(rest))
	}
	nx, ny := f.Shape[0]-2*Halo, f.Shape[1]-2*Halo
	rows := make([][]float64, ny)
	idx := make([]int, f.Rank())
	copy(idx[2:], rest)
	for j := 0; j < ny; j++ {
		rows[j] = make([]float64, nx)
		for i := 0; i < nx; i++ {
			idx[0], idx[1] = i+Halo, j+Halo
			off, err := f.Offset(idx...)
			if err != nil {
				return nil, err
			}
			rows[j][i] = f.Data[off]
		}
	}
	return rows, nil
}
