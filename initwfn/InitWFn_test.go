package initwfn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestFans(t *testing.T) {
	in, out := fans(6400, 512)
	assert.Equal(t, 6400.0, in)
	assert.Equal(t, 512.0, out)

	// Filters are (out, in, kh, kw)
	in, out = fans(32, 4, 4, 4)
	assert.Equal(t, 64.0, in)
	assert.Equal(t, 512.0, out)
}

func TestGlorotUniformBoundsAndSeed(t *testing.T) {
	w, err := New(GlorotU, 1.0)
	require.NoError(t, err)

	a := w.InitWFn(3)(tensor.Float64, 64, 32, 3, 3).([]float64)
	b := w.InitWFn(3)(tensor.Float64, 64, 32, 3, 3).([]float64)
	c := w.InitWFn(4)(tensor.Float64, 64, 32, 3, 3).([]float64)

	require.Len(t, a, 64*32*3*3)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	limit := math.Sqrt(6.0 / (32*9 + 64*9))
	for _, v := range a {
		require.True(t, math.Abs(v) <= limit, "weight %v beyond %v", v, limit)
	}
}

func TestSuccessiveTensorsContinueStream(t *testing.T) {
	w, err := NewHeN(1.0)
	require.NoError(t, err)

	fn := w.InitWFn(1)
	first := fn(tensor.Float64, 8, 8).([]float64)
	second := fn(tensor.Float64, 8, 8).([]float64)
	assert.NotEqual(t, first, second)
}

func TestFloat32(t *testing.T) {
	w, err := NewGlorotN(1.0)
	require.NoError(t, err)

	out := w.InitWFn(1)(tensor.Float32, 3, 5)
	assert.Len(t, out.([]float32), 15)
}

func TestZeroesAndUnknownTypes(t *testing.T) {
	w, err := New(Zeroes, 0)
	require.NoError(t, err)
	assert.Equal(t, Zeroes, w.Type)

	_, err = New(Type("Orthogonal"), 1)
	assert.Error(t, err)

	for _, typ := range []Type{GlorotU, GlorotN, HeU, HeN} {
		w, err := New(typ, 1)
		require.NoError(t, err)
		assert.Equal(t, typ, w.Type)
	}
}
