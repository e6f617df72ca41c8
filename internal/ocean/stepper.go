package ocean

import (
	"context"
	"fmt"
)

// SurfaceRestoring applies the surface heat flux to the top tracer level and
// carries every other field forward unchanged. It has no momentum or
// advection terms.
type SurfaceRestoring struct{}

func NewSurfaceRestoring() *SurfaceRestoring { return &SurfaceRestoring{} }

func (SurfaceRestoring) Step(ctx context.Context, s *State, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nx, ny, nz := s.PaddedShape()
	top := s.Top()
	dzTop := s.Dzt.At(top)

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				mask := s.MaskT.At(i, j, k)
				t := s.Temp.At(i, j, k, s.Tau)
				tn := t
				if k == top && mask > 0 {
					tn = t + dt*s.ForcTempSurface.At(i, j)/dzTop
				}
				s.Temp.Set(tn*mask, i, j, k, s.Taup1)
				s.DTemp.Set((tn-t)*mask/dt, i, j, k)

				s.Salt.Set(s.Salt.At(i, j, k, s.Tau), i, j, k, s.Taup1)
				s.DSalt.Set(0, i, j, k)

				s.U.Set(s.U.At(i, j, k, s.Tau), i, j, k, s.Taup1)
				s.V.Set(s.V.At(i, j, k, s.Tau), i, j, k, s.Taup1)
			}
		}
	}
	s.exchangeHalo(s.Temp)

	if !s.Temp.IsFinite() {
		return fmt.Errorf("temp: %w", ErrUnstable)
	}
	return nil
}
