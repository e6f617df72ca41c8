package ocean

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestReducersAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 1000)
	for i := range values {
		values[i] = rng.NormFloat64() * 50
	}
	ctx := context.Background()

	local := LocalReducer{}
	lmin, _ := local.GlobalMin(ctx, values)
	lmax, _ := local.GlobalMax(ctx, values)

	for _, workers := range []int{1, 2, 3, 8, 64} {
		c := NewChunkedReducer(workers)
		cmin, err := c.GlobalMin(ctx, values)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		cmax, err := c.GlobalMax(ctx, values)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if cmin != lmin || cmax != lmax {
			t.Errorf("workers=%d: got (%f, %f), want (%f, %f)", workers, cmin, cmax, lmin, lmax)
		}
	}
}

func TestReduceEmpty(t *testing.T) {
	ctx := context.Background()
	if _, err := (LocalReducer{}).GlobalMin(ctx, nil); !errors.Is(err, ErrEmptyReduction) {
		t.Errorf("expected ErrEmptyReduction, got %v", err)
	}
	if _, err := NewChunkedReducer(4).GlobalMax(ctx, []float64{}); !errors.Is(err, ErrEmptyReduction) {
		t.Errorf("expected ErrEmptyReduction, got %v", err)
	}
}

func TestReduceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewChunkedReducer(2).GlobalMin(ctx, []float64{1, 2}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{1, 15, 16, 17, 100, 1001} {
		seen := make([]int, n)
		parallelFor(n, 4, 16, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}
