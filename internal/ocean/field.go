package ocean

import (
	"fmt"
	"math"
)

// Field is a dense row-major array with named dimensions.
type Field struct {
	Dims  []string
	Shape []int
	Data  []float64
}

func newField(dims []string, shape []int, fill float64) *Field {
	n := 1
	for _, s := range shape {
		n *= s
	}
	f := &Field{
		Dims:  append([]string(nil), dims...),
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, n),
	}
	if fill != 0 {
		f.Fill(fill)
	}
	return f
}

func (f *Field) Rank() int { return len(f.Shape) }
func (f *Field) Len() int  { return len(f.Data) }

func (f *Field) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Offset returns the flat index of idx, or ErrShapeMismatch.
func (f *Field) Offset(idx ...int) (int, error) {
	if len(idx) != len(f.Shape) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrShapeMismatch, len(idx), len(f.Shape))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= f.Shape[d] {
			return 0, fmt.Errorf("%w: index %d out of range [0,%d) on %s", ErrShapeMismatch, i, f.Shape[d], f.Dims[d])
		}
		off = off*f.Shape[d] + i
	}
	return off, nil
}

// At panics on out-of-range indices, like slice indexing.
func (f *Field) At(idx ...int) float64 {
	off, err := f.Offset(idx...)
	if err != nil {
		panic(err)
	}
	return f.Data[off]
}

func (f *Field) Set(v float64, idx ...int) {
	off, err := f.Offset(idx...)
	if err != nil {
		panic(err)
	}
	f.Data[off] = v
}

func (f *Field) IsFinite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// walk visits every element whose index lies inside ranges (half-open, one per axis).
func (f *Field) walk(ranges [][2]int, fn func(off int)) {
	if len(ranges) != len(f.Shape) {
		return
	}
	for _, r := range ranges {
		if r[0] >= r[1] {
			return
		}
	}
	idx := make([]int, len(ranges))
	for d := range ranges {
		idx[d] = ranges[d][0]
	}
	for {
		off := 0
		for d, i := range idx {
			off = off*f.Shape[d] + i
		}
		fn(off)

		d := len(idx) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < ranges[d][1] {
				break
			}
			idx[d] = ranges[d][0]
			d--
		}
		if d < 0 {
			return
		}
	}
}
