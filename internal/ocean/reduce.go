package ocean

import (
	"context"
	"math"
	"sync"
)

// Reducer computes process-wide extrema of a locally held array.
type Reducer interface {
	GlobalMin(ctx context.Context, values []float64) (float64, error)
	GlobalMax(ctx context.Context, values []float64) (float64, error)
}

// GlobalMin asks the state's reducer for the global minimum of values.
func GlobalMin(ctx context.Context, s *State, values []float64) (float64, error) {
	return s.reducer.GlobalMin(ctx, values)
}

// GlobalMax asks the state's reducer for the global maximum of values.
func GlobalMax(ctx context.Context, s *State, values []float64) (float64, error) {
	return s.reducer.GlobalMax(ctx, values)
}

// LocalReducer reduces in the calling goroutine; the whole domain is local.
type LocalReducer struct{}

func (LocalReducer) GlobalMin(ctx context.Context, values []float64) (float64, error) {
	return reduce(ctx, values, math.Min)
}

func (LocalReducer) GlobalMax(ctx context.Context, values []float64) (float64, error) {
	return reduce(ctx, values, math.Max)
}

func reduce(ctx context.Context, values []float64, op func(a, b float64) float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, ErrEmptyReduction
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = op(acc, v)
	}
	return acc, nil
}

// ChunkedReducer splits an array across Workers goroutines, each reducing
// its own slab, then combines the partial results.
type ChunkedReducer struct {
	Workers  int
	MinChunk int
}

func NewChunkedReducer(workers int) *ChunkedReducer {
	if workers < 1 {
		workers = 1
	}
	return &ChunkedReducer{Workers: workers, MinChunk: 16}
}

func (c *ChunkedReducer) GlobalMin(ctx context.Context, values []float64) (float64, error) {
	return c.reduce(ctx, values, math.Min)
}

func (c *ChunkedReducer) GlobalMax(ctx context.Context, values []float64) (float64, error) {
	return c.reduce(ctx, values, math.Max)
}

func (c *ChunkedReducer) reduce(ctx context.Context, values []float64, op func(a, b float64) float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, ErrEmptyReduction
	}

	var (
		mu       sync.Mutex
		partials []float64
	)
	parallelFor(len(values), c.Workers, c.MinChunk, func(start, end int) {
		acc := values[start]
		for _, v := range values[start+1 : end] {
			acc = op(acc, v)
		}
		mu.Lock()
		partials = append(partials, acc)
		mu.Unlock()
	})

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return reduce(ctx, partials, op)
}

// parallelFor executes fn over [0, n) split into at most workers chunks.
func parallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
