package ascent

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
)

// BurnType defines an enum of scheduled burn types.
type BurnType uint8

const (
	// BurnCircularization raises the periapsis at apoapsis.
	BurnCircularization BurnType = iota + 1
	// BurnRetrograde lowers the apoapsis at periapsis.
	BurnRetrograde
)

func (b BurnType) String() string {
	switch b {
	case BurnCircularization:
		return "circularization"
	case BurnRetrograde:
		return "retrograde"
	}
	panic("cannot stringify unknown burn type")
}

// Strategy defines how the periapsis is raised to the target.
type Strategy uint8

const (
	// StrategyTraditional coasts to apoapsis and flies a bracketed
	// circularization burn there.
	StrategyTraditional Strategy = iota + 1
	// StrategyDirectAscent raises the periapsis with a sustained prograde
	// burn instead of a discrete maneuver.
	StrategyDirectAscent
)

func (s Strategy) String() string {
	switch s {
	case StrategyTraditional:
		return "traditional"
	case StrategyDirectAscent:
		return "direct-ascent"
	}
	panic("cannot stringify unknown strategy")
}

const (
	// directAscentAltMargin is the target altitude above the atmosphere under
	// which a discrete circularization burn is not worth bracketing.
	directAscentAltMargin = 50e3
	// directAscentLongBurn is the predicted circularization burn duration
	// beyond which a sustained prograde burn is flown instead.
	directAscentLongBurn = 90.0
	// nearTargetFactor widens the tolerance band for the long-burn check.
	nearTargetFactor = 4.0
)

// BurnEvent forecasts one upcoming propulsive maneuver.
type BurnEvent struct {
	TimeUntil float64 // s
	Name      string
	Type      BurnType
	DeltaV    float64 // m/s
	Duration  float64 // s
}

// BurnScheduler predicts the start times of upcoming burns. The two latched
// absolute timestamps are a deliberate anti-jitter cache: the countdown is
// computed once when the trigger conditions are first met, and reading it
// back keeps the displayed countdown monotonic despite continuous orbit
// re-estimation. A latch clears when its triggering conditions are exited,
// when the countdown elapses, and on Reset.
type BurnScheduler struct {
	cfg        Config
	logger     kitlog.Logger
	circStart  float64 // absolute mission time, NaN when unlatched
	retroStart float64
}

// NewBurnScheduler returns a scheduler with both latches cleared.
func NewBurnScheduler(cfg Config, logger kitlog.Logger) *BurnScheduler {
	return &BurnScheduler{cfg: cfg, logger: logger, circStart: math.NaN(), retroStart: math.NaN()}
}

// Reset clears both latches. Tied to mission reset.
func (b *BurnScheduler) Reset() {
	b.circStart = math.NaN()
	b.retroStart = math.NaN()
}

// PickStrategy chooses between direct ascent and a bracketed circularization
// burn from the configuration and the current orbit.
func (b *BurnScheduler) PickStrategy(o *Orbit, vs VehicleState, ph PhysicsSample) Strategy {
	cfg := b.cfg
	if cfg.TargetAltitude < cfg.AtmosphereAlt()+directAscentAltMargin {
		return StrategyDirectAscent
	}
	_, dur := circularizationBurn(o, vs, ph, cfg)
	nearTarget := o.ApoapsisAltitude() > cfg.TargetAltitude-nearTargetFactor*cfg.AltTolerance
	if dur > directAscentLongBurn && nearTarget {
		return StrategyDirectAscent
	}
	return StrategyTraditional
}

// Forecast re-evaluates the latches against the current tick and returns the
// upcoming burn events. It is called once per tick by the event forecaster.
func (b *BurnScheduler) Forecast(vs VehicleState, ph PhysicsSample, o *Orbit, phase Phase) []BurnEvent {
	var events []BurnEvent
	now := vs.MissionTime
	cfg := b.cfg

	// Circularization burn, traditional strategy only: bracketed around
	// apoapsis, countdown latched on first evaluation within the phase.
	circActive := phase == PhaseCoastToCircularize && b.PickStrategy(o, vs, ph) == StrategyTraditional
	if circActive {
		Δv, dur := circularizationBurn(o, vs, ph, cfg)
		if math.IsNaN(b.circStart) {
			tta := o.TimeToApoapsis()
			if math.IsInf(tta, 1) || math.IsNaN(tta) {
				tta = kinematicTimeToApoapsis(vs, ph)
			}
			if !math.IsInf(tta, 1) {
				b.circStart = now + tta - dur/2
				b.logger.Log("level", "info", "subsys", "burns", "latched", BurnCircularization, "start(s)", b.circStart, "Δv(m/s)", Δv)
			}
		}
		if !math.IsNaN(b.circStart) {
			if until := b.circStart - now; until > 0 {
				events = append(events, BurnEvent{until, "circularization burn", BurnCircularization, Δv, dur})
			} else {
				// Countdown elapsed: the burn has begun.
				b.circStart = math.NaN()
			}
		}
	} else if !math.IsNaN(b.circStart) {
		b.circStart = math.NaN() // triggering phase exited
	}

	// Retrograde trim burn at periapsis, used when the apoapsis overshoots
	// after the periapsis has been raised.
	overshoot := o.ApoapsisAltitude() > cfg.TargetAltitude+cfg.AltTolerance &&
		o.PeriapsisAltitude() >= cfg.SafePeriapsis()
	if overshoot {
		Δv, dur := retrogradeBurn(o, vs, ph, cfg)
		if math.IsNaN(b.retroStart) {
			if ttp := o.TimeToPeriapsis(); !math.IsInf(ttp, 1) && !math.IsNaN(ttp) {
				b.retroStart = now + ttp - dur/2
				b.logger.Log("level", "info", "subsys", "burns", "latched", BurnRetrograde, "start(s)", b.retroStart, "Δv(m/s)", Δv)
			}
		}
		if !math.IsNaN(b.retroStart) {
			if until := b.retroStart - now; until > 0 {
				events = append(events, BurnEvent{until, "retrograde trim burn", BurnRetrograde, Δv, dur})
			} else {
				b.retroStart = math.NaN()
			}
		}
	} else if !math.IsNaN(b.retroStart) {
		b.retroStart = math.NaN()
	}

	return events
}

// retrogradeBurn returns the vis-viva Δv at periapsis which brings the
// apoapsis down to the target altitude, and the estimated burn duration.
func retrogradeBurn(o *Orbit, vs VehicleState, ph PhysicsSample, cfg Config) (Δv, duration float64) {
	if o.Escape {
		return 0, 0
	}
	μ := o.Body.μ
	rP := o.Periapsis()
	vPeri := math.Sqrt(μ * (2/rP - 1/o.SemiMajor()))
	aDesired := (rP + cfg.Body.Radius + cfg.TargetAltitude) / 2
	vDesired := math.Sqrt(μ * (2/rP - 1/aDesired))
	Δv = vPeri - vDesired
	mass := ph.Mass
	if mass <= 0 {
		mass = cfg.Stage(vs.Stage).Mass
	}
	thrust := cfg.Stage(vs.Stage).Thrust
	if thrust <= 0 || mass <= 0 {
		return Δv, math.Inf(1)
	}
	return Δv, Δv / (thrust / mass)
}
