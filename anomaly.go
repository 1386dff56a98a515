package ascent

import "math"

/* Kepler time-of-flight solver. All angles in radians. */

// TimeToApoapsis returns the time in seconds until the vehicle next reaches
// apoapsis (mean anomaly π), or +Inf if the orbit is not periodic.
func (o *Orbit) TimeToApoapsis() float64 {
	return o.timeToMeanAnomaly(math.Pi)
}

// TimeToPeriapsis returns the time in seconds until the vehicle next reaches
// periapsis (mean anomaly 0 ≡ 2π), or +Inf if the orbit is not periodic.
func (o *Orbit) TimeToPeriapsis() float64 {
	return o.timeToMeanAnomaly(2 * math.Pi)
}

// timeToMeanAnomaly recovers the current true anomaly from the orbit
// equation, converts it to mean anomaly via Kepler's equation and returns the
// forward time delta to the target mean anomaly, wrapping to the next
// occurrence if the target has already passed.
func (o *Orbit) timeToMeanAnomaly(target float64) float64 {
	if o.Escape || o.e >= 1 || o.a <= 0 {
		return math.Inf(1)
	}
	T := o.Period()
	if o.e < eccentricityε {
		// Near-circular: apoapsis and periapsis are both exactly half a
		// period away regardless of the current position.
		return T / 2
	}
	// True anomaly from r = p/(1+e·cosθ).
	cosθ := (o.SemiParameter()/o.RNorm() - 1) / o.e
	if excess := math.Abs(cosθ) - 1; excess > 0 {
		if excess > acosClampε {
			o.acosExcess = excess
		}
		cosθ = clamp(cosθ, -1, 1)
	}
	θ := math.Acos(cosθ)
	// Disambiguate the branch: a negative radial velocity means the vehicle
	// is falling toward periapsis, i.e. θ ∈ [π, 2π].
	if dot(o.cachedR, o.cachedV) < 0 {
		θ = 2*math.Pi - θ
	}
	// Eccentric anomaly via tan(E/2) = √((1−e)/(1+e))·tan(θ/2).
	E := 2 * math.Atan(math.Sqrt((1-o.e)/(1+o.e))*math.Tan(θ/2))
	E = math.Mod(E+2*math.Pi, 2*math.Pi)
	// Kepler's equation.
	M := E - o.e*math.Sin(E)
	ΔM := math.Mod(target-M+2*math.Pi, 2*math.Pi)
	return ΔM * T / (2 * math.Pi)
}
