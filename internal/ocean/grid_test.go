package ocean

import (
	"math"
	"testing"
)

func gridState(t *testing.T, nx, ny, nz int, cyclic bool) *State {
	t.Helper()
	s := configuredState(nx, ny, nz)
	s.EnableCyclicX = cyclic
	if err := s.allocate(); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	s.Dxt.Fill(1)
	s.Dyt.Fill(1)
	s.Dzt.Fill(1)
	return s
}

func TestCalcGridOrigin(t *testing.T) {
	s := gridState(t, 50, 100, 10, true)
	s.YOrigin = -50
	if err := s.calcGrid(); err != nil {
		t.Fatalf("calcGrid failed: %v", err)
	}

	if s.Yu.At(Halo) != -50 {
		t.Errorf("expected first interior yu -50, got %f", s.Yu.At(Halo))
	}
	if s.Yt.At(Halo) != -50.5 {
		t.Errorf("expected first interior yt -50.5, got %f", s.Yt.At(Halo))
	}
	if s.Yt.At(0) != -52.5 {
		t.Errorf("expected halo yt -52.5, got %f", s.Yt.At(0))
	}
	if s.Xu.At(Halo) != 0 {
		t.Errorf("expected xu origin 0, got %f", s.Xu.At(Halo))
	}
	if s.Zw.At(s.Top()) != 0 {
		t.Errorf("expected surface face at 0, got %f", s.Zw.At(s.Top()))
	}
	if s.Zt.At(0) != -9.5 {
		t.Errorf("expected bottom centre -9.5, got %f", s.Zt.At(0))
	}
}

func TestCalcGridRejectsZeroSpacing(t *testing.T) {
	s := gridState(t, 4, 4, 2, false)
	s.Dyt.Set(0, 3)
	if err := s.calcGrid(); err == nil {
		t.Error("expected error for zero spacing")
	}
}

func TestCalcGridStretchedFacesMidway(t *testing.T) {
	s := gridState(t, 4, 4, 2, false)
	for j := range s.Dyt.Data {
		s.Dyt.Data[j] = float64(j + 1)
	}
	s.YOrigin = 10
	if err := s.calcGrid(); err != nil {
		t.Fatalf("calcGrid failed: %v", err)
	}

	if s.Yu.At(Halo) != 10 {
		t.Errorf("expected yu origin 10, got %f", s.Yu.At(Halo))
	}
	for j := 1; j < len(s.Yu.Data); j++ {
		if got := s.Yu.At(j) - s.Yu.At(j-1); math.Abs(got-s.Dyt.At(j)) > 1e-12 {
			t.Errorf("j=%d: face spacing %f, expected dyt %f", j, got, s.Dyt.At(j))
		}
	}
	for j := 0; j+1 < len(s.Yt.Data); j++ {
		mid := (s.Yt.At(j) + s.Yt.At(j+1)) / 2
		if math.Abs(mid-s.Yu.At(j)) > 1e-12 {
			t.Errorf("j=%d: yu %f is not midway between centres (%f)", j, s.Yu.At(j), mid)
		}
	}
}

func TestExchangeHaloCyclic(t *testing.T) {
	s := gridState(t, 6, 4, 1, true)
	nx, ny, _ := s.PaddedShape()
	f := newField([]string{"xt", "yt"}, []int{nx, ny}, 0)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			f.Set(float64(i), i, j)
		}
	}
	s.exchangeHalo(f)

	// interior x runs 2..7; halos wrap around
	want := []float64{6, 7, 2, 3, 4, 5, 6, 7, 2, 3}
	for i, w := range want {
		if got := f.At(i, Halo); got != w {
			t.Errorf("x=%d: expected %f, got %f", i, w, got)
		}
	}
}

func TestExchangeHaloClosed(t *testing.T) {
	s := gridState(t, 6, 4, 1, false)
	nx, ny, _ := s.PaddedShape()
	f := newField([]string{"xt", "yt"}, []int{nx, ny}, 0)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			f.Set(float64(10*i+j), i, j)
		}
	}
	s.exchangeHalo(f)

	if f.At(0, Halo) != f.At(Halo, Halo) {
		t.Errorf("west halo should copy first interior column")
	}
	if f.At(nx-1, Halo) != f.At(nx-Halo-1, Halo) {
		t.Errorf("east halo should copy last interior column")
	}
	if f.At(Halo, 0) != f.At(Halo, Halo) {
		t.Errorf("south halo should copy first interior row")
	}
}

func TestCalcTopoMask(t *testing.T) {
	s := gridState(t, 4, 4, 5, false)
	s.Kbot.Fill(100)
	s.Kbot.Set(0, 3, 3)
	s.Kbot.Set(2, 4, 4)
	s.calcTopo()

	for k := 0; k < s.NZ; k++ {
		if s.MaskT.At(2, 2, k) != 1 {
			t.Errorf("full-depth column should be wet at k=%d", k)
		}
		if s.MaskT.At(3, 3, k) != 0 {
			t.Errorf("land column should be dry at k=%d", k)
		}
	}
	// two wet levels below the surface
	wantShallow := []float64{0, 0, 0, 1, 1}
	for k, w := range wantShallow {
		if got := s.MaskT.At(4, 4, k); got != w {
			t.Errorf("shallow column k=%d: expected %f, got %f", k, w, got)
		}
	}
}
