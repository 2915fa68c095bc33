package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, -3)

	assert.Equal(t, V(5, -1), a.Add(b))
	assert.Equal(t, V(3, -5), b.Sub(a))
	assert.Equal(t, V(2, 4), a.Scale(2))
	assert.Equal(t, -2.0, a.Dot(b))
	assert.Equal(t, 34.0, a.DistSq(b))
	assert.InDelta(t, 5.0, V(3, 4).Len(), 1e-12)
}

func TestVec2_Rotate(t *testing.T) {
	tests := []struct {
		name  string
		in    Vec2
		angle float64
		want  Vec2
	}{
		{"quarter turn x", V(1, 0), math.Pi / 2, V(0, 1)},
		{"quarter turn y", V(0, 1), math.Pi / 2, V(-1, 0)},
		{"half turn", V(1, 2), math.Pi, V(-1, -2)},
		{"zero", V(0, 0), 1.234, V(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Rotate(tt.angle)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
		})
	}
}

func TestVec2_Normalize(t *testing.T) {
	n := V(3, 4).Normalize()
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)
	assert.InDelta(t, 1.0, n.Len(), 1e-12)
}

func TestVec2_NormalizeZero(t *testing.T) {
	n := Vec2{}.Normalize()
	require.True(t, n.IsValid(), "normalizing zero must not produce NaN")
	assert.Equal(t, Vec2{}, n)
}

func TestVec2_Lerp(t *testing.T) {
	a, b := V(7.5, 0), V(0, 7.5)
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, V(3.75, 3.75), a.Lerp(b, 0.5))
}

func TestVec2_IsValid(t *testing.T) {
	assert.True(t, V(1, -1).IsValid())
	assert.False(t, V(math.NaN(), 0).IsValid())
	assert.False(t, V(0, math.Inf(-1)).IsValid())
}
