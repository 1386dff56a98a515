package ascent

import (
	"math"
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}

func nopComputer(cfg Config) *GuidanceComputer {
	return NewGuidanceComputer(cfg, kitlog.NewNopLogger())
}

// stateOnOrbit returns a planar state on the orbit with the given periapsis
// and apoapsis radii, at radius r, on the ascending or descending branch.
// Only valid for non-circular closed orbits.
func stateOnOrbit(rP, rA, r float64, ascending bool, body CelestialBody) (R, V [2]float64) {
	a := (rP + rA) / 2
	e := (rA - rP) / (rA + rP)
	p := a * (1 - e*e)
	v := math.Sqrt(body.μ * (2/r - 1/a))
	cosθ := clamp((p/r-1)/e, -1, 1)
	sinθ := math.Sqrt(1 - cosθ*cosθ)
	if !ascending {
		sinθ = -sinθ
	}
	sinγ := e * sinθ / math.Sqrt(1+2*e*cosθ+e*e)
	cosγ := math.Sqrt(1 - sinγ*sinγ)
	R = [2]float64{r, 0}
	V = [2]float64{v * sinγ, v * cosγ}
	return
}

// circularState returns a circular-orbit state at radius r, rotated by φ
// radians around the body.
func circularState(r, φ float64, body CelestialBody) (R, V [2]float64) {
	v := math.Sqrt(body.μ / r)
	sinφ, cosφ := math.Sincos(φ)
	R = [2]float64{r * cosφ, r * sinφ}
	V = [2]float64{-v * sinφ, v * cosφ}
	return
}
