package sfvalid

import (
	"gonum.org/v1/gonum/floats"
)

// WeightAccumulator stores named multiplicative weight components, each
// aligned with the full batch. Restriction to selected events only happens
// when the product is read.
type WeightAccumulator struct {
	n          int
	names      []string
	components map[string][]float64
}

func NewWeightAccumulator(n int) *WeightAccumulator {
	return &WeightAccumulator{
		n:          n,
		components: make(map[string][]float64),
	}
}

// Add registers a component. A component with the same name is replaced.
func (w *WeightAccumulator) Add(name string, weights []float64) error {
	if len(weights) != w.n {
		return &ErrLengthMismatch{Name: name, Length: len(weights), Expected: w.n}
	}
	if _, ok := w.components[name]; !ok {
		w.names = append(w.names, name)
	}
	w.components[name] = append([]float64(nil), weights...)
	return nil
}

func (w *WeightAccumulator) Names() []string {
	return append([]string(nil), w.names...)
}

// Weight is the product of all components over the full batch.
func (w *WeightAccumulator) Weight() []float64 {
	out := make([]float64, w.n)
	for i := range out {
		out[i] = 1
	}
	for _, name := range w.names {
		floats.Mul(out, w.components[name])
	}
	return out
}

// Product returns the combined weight of the events passing mask, in event order.
func (w *WeightAccumulator) Product(mask SelectionMask) []float64 {
	full := w.Weight()
	out := make([]float64, 0, mask.Count())
	for i, pass := range mask {
		if pass {
			out = append(out, full[i])
		}
	}
	return out
}

// Where returns values where mask is set and fallback elsewhere.
func Where(mask SelectionMask, values []float64, fallback float64) []float64 {
	out := make([]float64, len(mask))
	for i, pass := range mask {
		if pass {
			out[i] = values[i]
		} else {
			out[i] = fallback
		}
	}
	return out
}
