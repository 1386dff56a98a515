package ascent

import "math"

// BurnMode tags the kind of propulsive maneuver the vehicle is flying.
type BurnMode uint8

const (
	// ModePrograde points the thrust along the guidance pitch command.
	ModePrograde BurnMode = iota
	// ModeRetrograde points the thrust against the current velocity.
	ModeRetrograde
)

func (m BurnMode) String() string {
	switch m {
	case ModePrograde:
		return "prograde"
	case ModeRetrograde:
		return "retrograde"
	}
	panic("cannot stringify unknown burn mode")
}

// VehicleState is the read-only kinematic and propulsion snapshot supplied by
// the vehicle model once per tick. Positions and velocities are planar, in
// meters and meters per second, centered on the body.
type VehicleState struct {
	R, V        [2]float64
	MissionTime float64   // s since liftoff
	Stage       int       // current stage index
	Propellant  []float64 // kg remaining, by stage
	EngineOn    bool
	Mode        BurnMode
}

// Altitude returns the altitude above the body surface.
func (s VehicleState) Altitude(body CelestialBody) float64 {
	return norm(s.R) - body.Radius
}

// VerticalVelocity returns the radial component of the velocity.
func (s VehicleState) VerticalVelocity() float64 {
	r := norm(s.R)
	if r == 0 {
		return 0
	}
	return dot(s.R, s.V) / r
}

// FlightPathAngle returns the angle in degrees between the velocity vector
// and the local horizontal. It is zero for a purely horizontal velocity and
// 90 for a purely radial one.
func (s VehicleState) FlightPathAngle() float64 {
	v := norm(s.V)
	if v == 0 {
		return 90
	}
	return Rad2deg180(math.Asin(clamp(s.VerticalVelocity()/v, -1, 1)))
}

// Rad2deg180 converts radians to degrees in the [-180,180] range.
func Rad2deg180(a float64) float64 {
	return a / deg2rad
}

// PhysicsSample carries the scalar outputs of the physics model for one tick.
// The guidance core never computes these itself: atmosphere, propulsion and
// mass depletion are external collaborators.
type PhysicsSample struct {
	AirDensity   float64 // kg/m^3
	Airspeed     float64 // m/s
	Gravity      float64 // m/s^2, local gravitational acceleration
	Thrust       float64 // N, instantaneous
	Drag         float64 // N
	MassFlowRate float64 // kg/s at full throttle
	Mass         float64 // kg, total vehicle mass
}

// DynamicPressure returns 0.5·ρ·v², the structural-load proxy.
func (p PhysicsSample) DynamicPressure() float64 {
	return 0.5 * p.AirDensity * p.Airspeed * p.Airspeed
}

// DeltaVRemaining estimates the ideal-rocket-equation Δv left in the current
// propellant load, or +Inf when the mass flow rate is unknown.
func (p PhysicsSample) DeltaVRemaining(propellant float64) float64 {
	if p.MassFlowRate <= 0 || p.Thrust <= 0 || p.Mass <= 0 {
		return math.Inf(1)
	}
	ve := p.Thrust / p.MassFlowRate
	dry := p.Mass - propellant
	if dry <= 0 {
		return math.Inf(1)
	}
	return ve * math.Log(p.Mass/dry)
}
