package ascent

import "math"

// forecastHorizon bounds event forecasting so near-infinite countdowns are
// never scheduled.
const forecastHorizon = 10000.0 // s

// Event is the single next mission event surfaced to the caller.
type Event struct {
	TimeUntil float64 // s
	Name      string
}

// EventForecaster merges the burn scheduler output with constant-acceleration
// threshold-crossing and propellant-exhaustion forecasts.
type EventForecaster struct {
	cfg   Config
	sched *BurnScheduler
}

// NewEventForecaster returns a forecaster over the given scheduler.
func NewEventForecaster(cfg Config, sched *BurnScheduler) *EventForecaster {
	return &EventForecaster{cfg, sched}
}

// Next returns the mission event with the smallest nonnegative finite time
// within the forecast horizon, or false if nothing is forecast.
func (f *EventForecaster) Next(vs VehicleState, ph PhysicsSample, o *Orbit, phase Phase) (Event, bool) {
	best := Event{TimeUntil: math.Inf(1)}
	consider := func(name string, t float64) {
		if t >= 0 && t <= forecastHorizon && t < best.TimeUntil {
			best = Event{t, name}
		}
	}

	alt := vs.Altitude(f.cfg.Body)
	vv := vs.VerticalVelocity()
	mass := math.Max(ph.Mass, 1)
	aV := (ph.Thrust-ph.Drag)/mass*math.Sin(vs.FlightPathAngle()*deg2rad) - ph.Gravity

	consider("atmosphere exit", crossingTime(alt, vv, aV, f.cfg.AtmosphereAlt()))
	consider("fairing jettison", crossingTime(alt, vv, aV, f.cfg.FairingAltitude))
	consider("target altitude", crossingTime(alt, vv, aV, f.cfg.TargetAltitude))

	if vs.EngineOn && ph.MassFlowRate > 0 && vs.Stage >= 0 && vs.Stage < len(vs.Propellant) {
		t := vs.Propellant[vs.Stage] / ph.MassFlowRate
		if vs.Stage+1 < len(vs.Propellant) {
			consider("stage separation", t)
		} else {
			consider("engine cutoff", t)
		}
	}

	for _, be := range f.sched.Forecast(vs, ph, o, phase) {
		consider(be.Name, be.TimeUntil)
	}

	if math.IsInf(best.TimeUntil, 1) {
		return Event{}, false
	}
	return best, true
}

// crossingTime solves v0·t + a·t²/2 = Δh for the earliest nonnegative root,
// or +Inf if the threshold is never reached (or already passed).
func crossingTime(alt, v0, a, threshold float64) float64 {
	Δh := threshold - alt
	if Δh <= 0 {
		return math.Inf(1)
	}
	if math.Abs(a) < 1e-9 {
		if v0 <= 0 {
			return math.Inf(1)
		}
		return Δh / v0
	}
	disc := v0*v0 + 2*a*Δh
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)
	t := math.Inf(1)
	if t1 := (-v0 - sq) / a; t1 >= 0 {
		t = t1
	}
	if t2 := (-v0 + sq) / a; t2 >= 0 && t2 < t {
		t = t2
	}
	return t
}
