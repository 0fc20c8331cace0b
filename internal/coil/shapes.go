package coil

import (
	"math"

	"github.com/san-kum/solctra/internal/vec"
)

// Loop samples a closed circular coil of the given radius lying in the plane
// z = center.Z. The first point is repeated at the end.
func Loop(center vec.Vector3, radius float64, samples int) Coil {
	c := make(Coil, samples+1)
	for i := 0; i <= samples; i++ {
		theta := 2 * math.Pi * float64(i%samples) / float64(samples)
		c[i] = vec.New(
			center.X+radius*math.Cos(theta),
			center.Y+radius*math.Sin(theta),
			center.Z,
		)
	}
	return c
}

// PoloidalRing samples a closed circular coil of radius minor centred on the
// magnetic axis circle of radius major, in the vertical plane at toroidal
// angle phi.
func PoloidalRing(major, minor, phi float64, samples int) Coil {
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	c := make(Coil, samples+1)
	for i := 0; i <= samples; i++ {
		theta := 2 * math.Pi * float64(i%samples) / float64(samples)
		r := major + minor*math.Cos(theta)
		c[i] = vec.New(r*cosPhi, r*sinPhi, minor*math.Sin(theta))
	}
	return c
}

// Torus returns n poloidal rings evenly spaced in toroidal angle.
func Torus(major, minor float64, n, samples int) Set {
	s := make(Set, n)
	for i := 0; i < n; i++ {
		phi := 2 * math.Pi * float64(i) / float64(n)
		s[i] = PoloidalRing(major, minor, phi, samples)
	}
	return s
}
