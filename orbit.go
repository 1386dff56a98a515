package ascent

import (
	"fmt"
	"math"
)

const (
	// eccentricityε is the threshold under which an orbit is treated as circular.
	eccentricityε = 1e-6
	// acosClampε is the tolerated overshoot of an inverse-cosine argument.
	// Anything beyond it indicates stale or inconsistent orbit data.
	acosClampε = 1e-6
)

// Orbit defines the osculating planar two-body orbit of the vehicle, derived
// from its instantaneous position and velocity under a vacuum assumption:
// if the engines cut now, this is the orbit which results.
type Orbit struct {
	a, e             float64
	Escape           bool
	Body             CelestialBody
	cachedR, cachedV [2]float64
	acosExcess       float64
}

// NewOrbitFromRV returns the orbital elements from the R and V vectors,
// via the vis-viva and angular-momentum relations.
func NewOrbitFromRV(R, V [2]float64, body CelestialBody) *Orbit {
	r := norm(R)
	v := norm(V)
	ξ := v*v/2 - body.μ/r
	h := cross(R, V)
	p := h * h / body.μ
	e := math.Sqrt(math.Max(0, 1+2*ξ*p/body.μ))
	a := -body.μ / (2 * ξ) // ±Inf on a parabolic trajectory, handled below.
	return &Orbit{a, e, ξ >= 0, body, R, V, 0}
}

// SemiMajor returns the semi-major axis. It is negative or infinite on an
// escape trajectory.
func (o Orbit) SemiMajor() float64 { return o.a }

// Eccentricity returns the eccentricity, which is always non-negative.
// A near-zero angular momentum saturates it near 1 (radial trajectory).
func (o Orbit) Eccentricity() float64 { return o.e }

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	v := norm(o.cachedV)
	return v*v/2 - o.Body.μ/norm(o.cachedR)
}

// SemiParameter returns the semi-latus rectum.
func (o Orbit) SemiParameter() float64 {
	h := cross(o.cachedR, o.cachedV)
	return h * h / o.Body.μ
}

// HNorm returns the norm of the orbital angular momentum.
func (o Orbit) HNorm() float64 {
	return math.Abs(cross(o.cachedR, o.cachedV))
}

// RNorm returns the norm of the radius vector.
func (o Orbit) RNorm() float64 { return norm(o.cachedR) }

// VNorm returns the norm of the velocity vector.
func (o Orbit) VNorm() float64 { return norm(o.cachedV) }

// RV returns the position and velocity vectors this orbit was derived from.
func (o Orbit) RV() ([2]float64, [2]float64) { return o.cachedR, o.cachedV }

// Apoapsis returns the apoapsis radius, or +Inf on an escape trajectory.
func (o Orbit) Apoapsis() float64 {
	if o.Escape || o.e >= 1 {
		return math.Inf(1)
	}
	return o.SemiParameter() / (1 - o.e)
}

// Periapsis returns the periapsis radius. The semi-latus rectum form stays
// finite even for parabolic trajectories.
func (o Orbit) Periapsis() float64 {
	return o.SemiParameter() / (1 + o.e)
}

// ApoapsisAltitude returns the signed apoapsis altitude above the body
// surface, or +Inf on an escape trajectory.
func (o Orbit) ApoapsisAltitude() float64 {
	return o.Apoapsis() - o.Body.Radius
}

// PeriapsisAltitude returns the signed periapsis altitude above the body
// surface. It is negative for orbits which intersect the surface.
func (o Orbit) PeriapsisAltitude() float64 {
	return o.Periapsis() - o.Body.Radius
}

// Period returns the orbital period in seconds, or +Inf if the orbit is not
// periodic.
func (o Orbit) Period() float64 {
	if o.Escape || o.e >= 1 || o.a <= 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi * math.Sqrt(o.a*o.a*o.a/o.Body.μ)
}

// ClampExcess returns by how much the last anomaly recovery had to clamp its
// inverse-cosine argument beyond the tolerated rounding error, or 0. A
// non-zero value is a diagnostic, not an error: the solver degrades to the
// clamped value.
func (o Orbit) ClampExcess() float64 { return o.acosExcess }

// String implements the Stringer interface.
func (o Orbit) String() string {
	if o.Escape {
		return fmt.Sprintf("a=%.1f e=%.4f (escape)", o.a, o.e)
	}
	return fmt.Sprintf("a=%.1f e=%.4f rA=%.1f rP=%.1f", o.a, o.e, o.Apoapsis(), o.Periapsis())
}
