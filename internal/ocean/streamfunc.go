package ocean

// StreamFunction integrates the depth-integrated zonal transport northward
// from the southern boundary: psi[i,j] = -sum_{j'<=j} sum_k u·dzt·mask·dy.
// The result is written to s.Psi and returned in m³/s.
func StreamFunction(s *State) *Field {
	nx, ny, nz := s.PaddedShape()
	s.Psi.Fill(0)
	for i := 0; i < nx; i++ {
		acc := 0.0
		for j := Halo; j < ny-Halo; j++ {
			transport := 0.0
			for k := 0; k < nz; k++ {
				transport += s.U.At(i, j, k, s.Tau) * s.Dzt.At(k) * s.MaskT.At(i, j, k)
			}
			acc -= transport * s.metresY(j)
			s.Psi.Set(acc, i, j)
		}
	}
	return s.Psi
}
