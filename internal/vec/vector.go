package vec

import (
	"fmt"
	"math"
	"strconv"
)

// Vector3 is an immutable point or direction in Cartesian space.
type Vector3 struct {
	X, Y, Z float64
}

func New(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) Distance(other Vector3) float64 {
	x := v.X - other.X
	y := v.Y - other.Y
	z := v.Z - other.Z
	return math.Sqrt(x*x + y*y + z*z)
}

// Displacement returns v - other.
func (v Vector3) Displacement(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Unit returns v scaled to length one. A zero vector yields NaN components;
// callers must not pass one.
func (v Vector3) Unit() Vector3 {
	norm := v.Norm()
	return Vector3{v.X / norm, v.Y / norm, v.Z / norm}
}

func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// String formats v as "x,y,z" using the shortest decimal that round-trips.
func (v Vector3) String() string {
	return fmt.Sprintf("%s,%s,%s", FormatComponent(v.X), FormatComponent(v.Y), FormatComponent(v.Z))
}

func FormatComponent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
