package ascent

import (
	"math"

	"github.com/gonum/floats"
)

const deg2rad = math.Pi / 180

// norm returns the norm of a planar vector.
func norm(v [2]float64) float64 {
	return math.Hypot(v[0], v[1])
}

// unit returns the unit vector of a given vector.
func unit(a [2]float64) (b [2]float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return [2]float64{0, 0}
	}
	b[0] = a[0] / n
	b[1] = a[1] / n
	return
}

// dot performs the planar inner product.
func dot(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// cross returns the out-of-plane component of the planar cross product.
func cross(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Deg2rad converts degrees to radians, and enforces only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforces only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
