package sfvalid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightProductLaw(t *testing.T) {
	w := NewWeightAccumulator(4)
	require.NoError(t, w.Add("genweight", []float64{1, -1, 2, 0.5}))
	require.NoError(t, w.Add("puweight", []float64{0.9, 1.1, 1, 2}))
	require.NoError(t, w.Add("lep1sf", []float64{1, 1, 0.5, 1}))

	assert.InDeltaSlice(t, []float64{0.9, -1.1, 1, 1}, w.Weight(), 1e-12)
	assert.Equal(t, []string{"genweight", "puweight", "lep1sf"}, w.Names())

	mask := SelectionMask{false, true, true, false}
	assert.InDeltaSlice(t, []float64{-1.1, 1}, w.Product(mask), 1e-12)
}

func TestWeightAddReplaces(t *testing.T) {
	w := NewWeightAccumulator(2)
	require.NoError(t, w.Add("puweight", []float64{2, 2}))
	require.NoError(t, w.Add("genweight", []float64{1, 3}))
	require.NoError(t, w.Add("puweight", []float64{0.5, 0.5}))

	assert.Equal(t, []string{"puweight", "genweight"}, w.Names())
	assert.InDeltaSlice(t, []float64{0.5, 1.5}, w.Weight(), 1e-12)
}

func TestWeightOverwriteWithOnesRestoresProduct(t *testing.T) {
	w := NewWeightAccumulator(3)
	require.NoError(t, w.Add("genweight", []float64{2, -1, 0.5}))
	mask := SelectionMask{true, false, true}
	weight := w.Weight()
	product := w.Product(mask)

	require.NoError(t, w.Add("lep1sf", []float64{0.9, 1.2, 0.7}))
	assert.InDeltaSlice(t, []float64{1.8, -1.2, 0.35}, w.Weight(), 1e-12)

	require.NoError(t, w.Add("lep1sf", []float64{1, 1, 1}))
	assert.InDeltaSlice(t, weight, w.Weight(), 1e-12)
	assert.InDeltaSlice(t, product, w.Product(mask), 1e-12)
}

func TestWeightWithoutComponents(t *testing.T) {
	w := NewWeightAccumulator(3)
	assert.Equal(t, []float64{1, 1, 1}, w.Weight())
	assert.Equal(t, []float64{1}, w.Product(SelectionMask{false, true, false}))
}

func TestWeightLengthMismatch(t *testing.T) {
	w := NewWeightAccumulator(3)
	err := w.Add("genweight", []float64{1, 2})
	var mismatch *ErrLengthMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Length)
	assert.Empty(t, w.Names())
}

func TestWhere(t *testing.T) {
	got := Where(SelectionMask{true, false, true}, []float64{0.9, 0.8, 0.7}, 1)
	assert.Equal(t, []float64{0.9, 1, 0.7}, got)
}
