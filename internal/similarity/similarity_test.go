package similarity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "identical vectors", a: []float64{1, 0, 0}, b: []float64{1, 0, 0}, want: 1},
		{name: "scaled copy", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, want: 1},
		{name: "orthogonal vectors", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite vectors clamp to zero", a: []float64{1, 0}, b: []float64{-1, 0}, want: 0},
		{name: "both empty", a: []float64{}, b: []float64{}, want: 0},
		{name: "one empty", a: nil, b: []float64{1, 2}, want: 0},
		{name: "zero norm", a: []float64{0, 0}, b: []float64{1, 2}, want: 0},
		{name: "nan clamps to zero", a: []float64{math.NaN(), 1}, b: []float64{1, 1}, want: 0},
		{name: "45 degrees", a: []float64{1, 0}, b: []float64{1, 1}, want: 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCompare_DimensionMismatch(t *testing.T) {
	_, err := Compare([]float64{1, 0}, []float64{1, 0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCompare_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := make([]float64, 512)
		b := make([]float64, 512)
		for j := range a {
			a[j] = rng.NormFloat64()
			b[j] = rng.NormFloat64()
		}

		self, err := Compare(a, a)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, self, 1e-9)

		ab, err := Compare(a, b)
		require.NoError(t, err)
		ba, err := Compare(b, a)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
		assert.Equal(t, ab, ba)
	}
}

func TestCompare_Magnitudes(t *testing.T) {
	tests := []struct {
		name string
		v    float64
	}{
		{"tiny components", 1e-170},
		{"subnormal components", 5e-324},
		{"huge components", 1e160},
		{"near max float64", 1e308},
		{"negative huge components", -1e200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := []float64{tt.v, tt.v, tt.v}

			self, err := Compare(a, a)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, self, 1e-9)

			mixed, err := Compare(a, []float64{1, 1, 1})
			require.NoError(t, err)
			if tt.v > 0 {
				assert.InDelta(t, 1.0, mixed, 1e-9)
			} else {
				assert.Equal(t, 0.0, mixed)
			}
		})
	}
}

func TestCompare_NonFinite(t *testing.T) {
	got, err := Compare([]float64{math.Inf(1), 1}, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = Compare([]float64{math.NaN(), 1}, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestNormalize(t *testing.T) {
	n := Normalize([]float64{3, 4})
	assert.InDelta(t, 0.6, n[0], 1e-12)
	assert.InDelta(t, 0.8, n[1], 1e-12)

	zero := []float64{0, 0}
	assert.Equal(t, zero, Normalize(zero))
	assert.Empty(t, Normalize(nil))

	huge := Normalize([]float64{3e300, 4e300})
	assert.InDelta(t, 0.6, huge[0], 1e-12)
	assert.InDelta(t, 0.8, huge[1], 1e-12)
}

func TestUsable(t *testing.T) {
	assert.True(t, Usable(make([]float64, 4), 4))
	assert.False(t, Usable(make([]float64, 3), 4))
	assert.False(t, Usable(nil, 4))
	assert.False(t, Usable([]float64{1, math.Inf(1)}, 2))
	assert.False(t, Usable([]float64{math.NaN(), 0}, 2))
	assert.False(t, Usable([]float64{1e39, 0}, 2))
	assert.False(t, Usable([]float64{-1e39, 0}, 2))
	assert.True(t, Usable([]float64{math.MaxFloat32, -math.MaxFloat32}, 2))
}
