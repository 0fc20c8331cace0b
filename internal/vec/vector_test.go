package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNorm(t *testing.T) {
	tests := []struct {
		v        Vector3
		expected float64
	}{
		{New(3, 4, 0), 5},
		{New(0, 0, 0), 0},
		{New(1, 2, 2), 3},
		{New(-1, -2, -2), 3},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, tt.v.Norm(), 1e-15, "norm of %v", tt.v)
	}
}

func TestDistanceAndDisplacement(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, 6, 3)

	assert.Equal(t, New(-3, -4, 0), a.Displacement(b))
	assert.Equal(t, New(3, 4, 0), b.Displacement(a))
	assert.InDelta(t, 5.0, a.Distance(b), 1e-15)
	assert.Equal(t, a.Distance(b), b.Distance(a))
	assert.Equal(t, a.Displacement(b).Norm(), a.Distance(b))
}

func TestUnit(t *testing.T) {
	u := New(0.3, -1.7, 12.5).Unit()
	assert.InDelta(t, 1.0, u.Norm(), 1e-12)

	x := New(7, 0, 0).Unit()
	assert.Equal(t, New(1, 0, 0), x)

	zero := New(0, 0, 0).Unit()
	assert.True(t, math.IsNaN(zero.X))
	assert.False(t, zero.IsFinite())
}

func TestCross(t *testing.T) {
	x := New(1, 0, 0)
	y := New(0, 1, 0)
	z := New(0, 0, 1)

	assert.Equal(t, z, x.Cross(y))
	assert.Equal(t, x, y.Cross(z))
	assert.Equal(t, y, z.Cross(x))
	assert.Equal(t, z.Scale(-1), y.Cross(x))
}

func TestArithmetic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, 5, 6)

	assert.Equal(t, New(5, 7, 9), a.Add(b))
	assert.Equal(t, New(2, 4, 6), a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, New(1, 2, 3).IsFinite())
	assert.False(t, New(math.Inf(1), 0, 0).IsFinite())
	assert.False(t, New(0, math.NaN(), 0).IsFinite())
	assert.False(t, New(0, 0, math.Inf(-1)).IsFinite())
}

func TestString(t *testing.T) {
	tests := []struct {
		v        Vector3
		expected string
	}{
		{New(0.14557183, 0, 0), "0.14557183,0,0"},
		{New(-1.5, 2, 1e-7), "-1.5,2,0.0000001"},
		{New(0.1455416056924451, 0.009491670745324678, 0.0031465260786825264), "0.1455416056924451,0.009491670745324678,0.0031465260786825264"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.v.String())
	}
}
