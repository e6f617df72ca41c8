package ocean

import (
	"fmt"
	"math"
)

// calcGrid derives cell centres and faces from the spacings set by the
// scenario. The first interior u face sits at the origin, so the first
// interior t centre lies half a cell below it.
func (s *State) calcGrid() error {
	if err := faceAnchoredAxis(s.Dxt, s.Xt, s.Xu, s.XOrigin); err != nil {
		return fmt.Errorf("x axis: %w", err)
	}
	if err := faceAnchoredAxis(s.Dyt, s.Yt, s.Yu, s.YOrigin); err != nil {
		return fmt.Errorf("y axis: %w", err)
	}

	// zw is the upper face of each level, 0 at the surface.
	total := 0.0
	for _, dz := range s.Dzt.Data {
		if dz <= 0 {
			return fmt.Errorf("%w: non-positive dzt", ErrInvalidSettings)
		}
		total += dz
	}
	depth := -total
	for k := range s.Dzt.Data {
		depth += s.Dzt.Data[k]
		s.Zw.Data[k] = depth
		s.Zt.Data[k] = depth - s.Dzt.Data[k]/2
	}
	return nil
}

// faceAnchoredAxis accumulates u faces from the cell widths, then places each
// t centre so that every u face lies midway between its neighbouring centres.
func faceAnchoredAxis(dt, t, u *Field, origin float64) error {
	n := len(dt.Data)
	for _, d := range dt.Data {
		if d <= 0 {
			return fmt.Errorf("%w: non-positive grid spacing", ErrInvalidSettings)
		}
	}
	u.Data[0] = 0
	for i := 1; i < n; i++ {
		u.Data[i] = u.Data[i-1] + dt.Data[i]
	}
	t.Data[0] = u.Data[0] - dt.Data[0]/2
	for i := 1; i < n; i++ {
		t.Data[i] = 2*u.Data[i-1] - t.Data[i-1]
	}

	shift := origin - u.Data[Halo]
	for i := 0; i < n; i++ {
		u.Data[i] += shift
		t.Data[i] += shift
	}
	return nil
}

// calcTopo builds the tracer mask from kbot. kbot counts wet levels from the
// surface down; 0 marks land and values at or above NZ are full depth.
func (s *State) calcTopo() {
	s.exchangeHalo(s.Kbot)
	nx, ny, nz := s.PaddedShape()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			kb := int(s.Kbot.At(i, j))
			for k := 0; k < nz; k++ {
				wet := 0.0
				if kb > 0 && nz-1-k < kb {
					wet = 1
				}
				s.MaskT.Set(wet, i, j, k)
			}
		}
	}
}

// exchangeHalo fills x halo cells periodically when the channel is cyclic,
// and copies the nearest interior value otherwise. y halos always copy.
func (s *State) exchangeHalo(f *Field) {
	if f.Rank() < 2 {
		return
	}
	nx, ny := f.Shape[0], f.Shape[1]
	inner := f.Len() / (nx * ny)
	row := ny * inner
	copyColumn := func(dst, src int) {
		copy(f.Data[dst*row:(dst+1)*row], f.Data[src*row:(src+1)*row])
	}
	for h := 0; h < Halo; h++ {
		if s.EnableCyclicX {
			copyColumn(h, nx-2*Halo+h)
			copyColumn(nx-Halo+h, Halo+h)
		} else {
			copyColumn(h, Halo)
			copyColumn(nx-Halo+h, nx-Halo-1)
		}
	}
	for i := 0; i < nx; i++ {
		base := i * row
		for h := 0; h < Halo; h++ {
			copy(f.Data[base+h*inner:base+(h+1)*inner], f.Data[base+Halo*inner:base+(Halo+1)*inner])
			dst := base + (ny-Halo+h)*inner
			src := base + (ny-Halo-1)*inner
			copy(f.Data[dst:dst+inner], f.Data[src:src+inner])
		}
	}
}

// metresY converts a y spacing to metres.
func (s *State) metresY(j int) float64 {
	if s.CoordDegree {
		return s.Dyt.Data[j] * EarthRadius * math.Pi / 180
	}
	return s.Dyt.Data[j]
}
