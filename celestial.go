package ascent

// CelestialBody defines the central body of an ascent in the planar model.
type CelestialBody struct {
	Name          string
	Radius        float64 // m
	μ             float64 // m^3/s^2
	AtmosphereAlt float64 // m, top of the sensible atmosphere
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (c CelestialBody) GM() float64 {
	return c.μ
}

// GravityAt returns the gravitational acceleration at a distance r from the
// body center.
func (c CelestialBody) GravityAt(r float64) float64 {
	return c.μ / (r * r)
}

// String implements the Stringer interface.
func (c CelestialBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial body is the same.
func (c CelestialBody) Equals(b CelestialBody) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ && c.AtmosphereAlt == b.AtmosphereAlt
}

// Kerbin is the stock 600 km home world.
var Kerbin = CelestialBody{"Kerbin", 600e3, 3.5316e12, 70e3}

// Earth is modeled with a 140 km sensible atmosphere for guidance purposes.
var Earth = CelestialBody{"Earth", 6378136.3, 3.986004415e14, 140e3}
