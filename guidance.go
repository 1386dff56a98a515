package ascent

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
)

const (
	minPitch = -5.0
	maxPitch = 90.0
)

// Phase defines an enum of guidance phases.
type Phase uint8

const (
	PhaseVerticalAscent Phase = iota + 1
	PhasePitchKick
	PhaseMaxQ
	PhaseAtmosphericAscent
	PhaseEmergency
	PhaseRaisingApoapsis
	PhaseBuildingPeriapsis
	PhaseCoasting
	PhaseCoastToCircularize
	PhaseOrbitAchieved
)

func (p Phase) String() string {
	switch p {
	case PhaseVerticalAscent:
		return "vertical-ascent"
	case PhasePitchKick:
		return "pitch-kick"
	case PhaseMaxQ:
		return "max-q-protection"
	case PhaseAtmosphericAscent:
		return "atmospheric-ascent"
	case PhaseEmergency:
		return "emergency-raise-periapsis"
	case PhaseRaisingApoapsis:
		return "raising-apoapsis"
	case PhaseBuildingPeriapsis:
		return "building-periapsis"
	case PhaseCoasting:
		return "coasting"
	case PhaseCoastToCircularize:
		return "coast-to-circularize"
	case PhaseOrbitAchieved:
		return "orbit-achieved"
	}
	panic("cannot stringify unknown phase")
}

// Atmospheric returns whether this phase belongs to the atmospheric ladder.
func (p Phase) Atmospheric() bool {
	return p >= PhaseVerticalAscent && p <= PhaseAtmosphericAscent
}

// GuidanceState is the persistent controller state, mutated only by the
// guidance computer once per tick and cleared on mission reset.
type GuidanceState struct {
	Phase            Phase
	Pitch            float64 // deg, last commanded
	Throttle         float64
	FPA              float64 // deg, last observed flight-path angle
	Periapsis        float64 // m, last periapsis altitude
	Retrograde       bool
	CircBurnStarted  bool
	RetroBurnStarted bool
	lastTime         float64
	hasTick          bool
}

func (s *GuidanceState) reset() {
	*s = GuidanceState{Phase: PhaseVerticalAscent, Pitch: 90}
}

// Command is the per-tick guidance result.
type Command struct {
	Pitch     float64 // deg, ∈ [-5, 90]
	Throttle  float64 // ∈ [0, 1]
	Direction [2]float64
	Phase     Phase
	Orbit     Orbit
	DeltaV    float64 // m/s remaining in the current propellant load
	Diag      Diagnostics
}

// GuidanceComputer is the stateful per-tick ascent control law: a priority
// ladder of Height, then Max-Q, then orbit-shaping. Aside from GuidanceState
// and the scheduler latches, every tick is a pure function of its inputs.
type GuidanceComputer struct {
	cfg    Config
	state  GuidanceState
	sched  *BurnScheduler
	logger kitlog.Logger
}

// NewGuidanceComputer returns a guidance computer for the given configuration.
func NewGuidanceComputer(cfg Config, logger kitlog.Logger) *GuidanceComputer {
	g := &GuidanceComputer{cfg: cfg, logger: logger, sched: NewBurnScheduler(cfg, logger)}
	g.state.reset()
	return g
}

// Reset clears the guidance state and both scheduler latches. It must be
// called when a mission is reset or replayed, or stale predictions leak into
// the new run.
func (g *GuidanceComputer) Reset() {
	g.state.reset()
	g.sched.Reset()
	g.logger.Log("level", "info", "subsys", "guidance", "status", "reset")
}

// State returns a copy of the persistent guidance state.
func (g *GuidanceComputer) State() GuidanceState { return g.state }

// Scheduler returns the burn scheduler owned by this computer.
func (g *GuidanceComputer) Scheduler() *BurnScheduler { return g.sched }

// tickContext bundles the per-tick inputs of the orbit-shaping rules.
type tickContext struct {
	cfg       Config
	state     GuidanceState
	vs        VehicleState
	ph        PhysicsSample
	orbit     *Orbit
	dt        float64
	fpa       float64 // deg
	apo, peri float64 // m, signed altitudes
	targetFPA float64
	errFPA    float64 // fpa - targetFPA
	predBias  float64
	diag      *VacuumDiag
}

// Update runs one guidance tick. Identical inputs and prior state yield
// identical outputs.
func (g *GuidanceComputer) Update(vs VehicleState, ph PhysicsSample) Command {
	orbit := NewOrbitFromRV(vs.R, vs.V, g.cfg.Body)
	fpa := vs.FlightPathAngle()
	alt := vs.Altitude(g.cfg.Body)
	dt := vs.MissionTime - g.state.lastTime
	if !g.state.hasTick || dt < 0 {
		dt = 0
	}

	diag := Diagnostics{Version: DiagVersion}
	var phase Phase
	var pitch, throttle float64
	if alt < g.cfg.AtmosphereAlt() {
		phase, pitch, throttle = g.atmospheric(vs, ph, alt, fpa, dt, &diag)
	} else {
		phase, pitch, throttle = g.vacuum(vs, ph, orbit, alt, fpa, dt, &diag)
	}
	if excess := orbit.ClampExcess(); excess > 0 {
		diag.Solver = &SolverDiag{ClampExcess: excess}
		g.logger.Log("level", "warning", "subsys", "anomaly", "clampExcess", excess, "orbit", orbit)
	}

	// Final steps, all phases.
	pitch = clamp(pitch, minPitch, maxPitch)
	if dt > 0 {
		maxΔ := g.cfg.MaxPitchRate * dt
		pitch = clamp(pitch, g.state.Pitch-maxΔ, g.state.Pitch+maxΔ)
	}
	retro := vs.Mode == ModeRetrograde
	dir := thrustDirection(vs, pitch, retro)

	if phase != g.state.Phase {
		g.logger.Log("level", "info", "subsys", "guidance", "phase", phase, "alt(m)", alt, "orbit", orbit)
	}
	g.state.Phase = phase
	g.state.Pitch = pitch
	g.state.Throttle = throttle
	g.state.FPA = fpa
	g.state.Periapsis = orbit.PeriapsisAltitude()
	g.state.Retrograde = retro
	if retro && vs.EngineOn {
		g.state.RetroBurnStarted = true
	}
	g.state.lastTime = vs.MissionTime
	g.state.hasTick = true
	diag.Phase = phase

	var prop float64
	if vs.Stage >= 0 && vs.Stage < len(vs.Propellant) {
		prop = vs.Propellant[vs.Stage]
	}
	return Command{pitch, throttle, dir, phase, *orbit, ph.DeltaVRemaining(prop), diag}
}

// atmospheric implements the below-atmosphere-limit ladder: vertical ascent,
// pitch kick, max-Q protection, then the corrected gravity turn.
func (g *GuidanceComputer) atmospheric(vs VehicleState, ph PhysicsSample, alt, fpa, dt float64, diag *Diagnostics) (Phase, float64, float64) {
	cfg := g.cfg
	t := vs.MissionTime
	if t < cfg.KickStart {
		return PhaseVerticalAscent, 90, 1
	}
	if t < cfg.KickEnd {
		// Smooth cosine interpolation from vertical to the kick pitch.
		f := (t - cfg.KickStart) / (cfg.KickEnd - cfg.KickStart)
		pitch := cfg.KickPitch + (90-cfg.KickPitch)*(1+math.Cos(math.Pi*f))/2
		return PhasePitchKick, pitch, 1
	}

	q := ph.DynamicPressure()
	ad := &AtmosphericDiag{DynamicPressure: q}
	diag.Atmospheric = ad
	if q > 0.8*cfg.MaxQ {
		// Zero angle of attack: pitch exactly along the velocity.
		return PhaseMaxQ, fpa, 1
	}

	tun := cfg.Tuning
	// a. Turn-rate limiter: resist pitching over faster than the natural
	// gravity-turn rate g·cosγ/v.
	var corrA float64
	if dt > 0 && ph.Airspeed > 1 {
		naturalRate := Rad2deg180(ph.Gravity * math.Cos(fpa*deg2rad) / ph.Airspeed) // deg/s
		measuredRate := (g.state.FPA - fpa) / dt                                    // positive when pitching over
		if excess := measuredRate - naturalRate; excess > 0 {
			corrA = math.Min(excess, tun.TurnRateCap)
		}
	}
	// b. Altitude-scaled pitch floor.
	frac := alt / cfg.AtmosphereAlt()
	floor := 90 - frac*frac*80
	var corrB float64
	if projected := fpa + corrA; projected < floor {
		corrB = tun.FloorGain * (floor - projected)
	}
	// c. Minimum-vertical-velocity guard, ramping in near the top of the
	// atmosphere.
	var corrC float64
	ramp := clamp((alt-tun.VertVelRampStart)/(tun.VertVelRampEnd-tun.VertVelRampStart), 0, 1)
	if ramp > 0 {
		minVV := tun.VertVelScale * (cfg.TargetAltitude - cfg.AtmosphereAlt()) / 1e3
		if deficit := minVV - vs.VerticalVelocity(); deficit > 0 {
			c := ramp * math.Min(tun.VertVelPer100*deficit/100, tun.VertVelCap)
			if c > tun.VertVelThreshold {
				corrC = c
			}
		}
	}
	pitch := math.Max(floor, fpa+corrA+corrB+corrC)
	ad.PitchFloor = floor
	ad.TurnRateCorrection = corrA
	ad.FloorCorrection = corrB
	ad.VertVelCorrection = corrC
	return PhaseAtmosphericAscent, pitch, 1
}

// vacuum computes the biased target flight-path angle and runs the ordered
// orbit-shaping rules.
func (g *GuidanceComputer) vacuum(vs VehicleState, ph PhysicsSample, orbit *Orbit, alt, fpa, dt float64, diag *Diagnostics) (Phase, float64, float64) {
	cfg := g.cfg
	vd := &VacuumDiag{}
	diag.Vacuum = vd
	apo := orbit.ApoapsisAltitude()
	peri := orbit.PeriapsisAltitude()

	// Power-law decay of the target FPA from the atmosphere boundary to zero
	// at the target altitude. Higher targets start steeper and retain pitch
	// longer (smaller exponent).
	above := cfg.TargetAltitude - cfg.AtmosphereAlt()
	startAngle := clamp(10+above/15e3, 10, 50)
	expn := clamp(1.5-above/1.5e6, 0.5, 1.5)
	frac := clamp((cfg.TargetAltitude-alt)/above, 0, 1)
	base := startAngle * math.Pow(frac, expn)

	// Periapsis-safety bias, keyed on the measured periapsis rise rate.
	var safety float64
	if peri < cfg.SafePeriapsis() {
		var rate float64
		if dt > 0 {
			rate = (peri - g.state.Periapsis) / dt
		}
		switch {
		case rate > 500: // rising fast
			safety = 0
		case rate > 100: // rising slowly
			safety = 2
		case rate > -100: // stable
			safety = 5
		default: // falling
			safety = math.Min(5+math.Abs(rate)/200, 15)
		}
		if peri < -200e3 {
			safety += 5
		}
	}

	// Prediction bias: forecast the burnout periapsis from the mean of the
	// remaining FPA profile and the cotangent apoapsis-to-periapsis gain
	// ratio.
	var pred float64
	remaining := cfg.TargetAltitude - apo
	if !orbit.Escape && remaining > 5e3 {
		if avg := base / (expn + 1); avg > 0.5 {
			forecast := peri + remaining/math.Tan(avg*deg2rad)
			vd.ForecastPeriapsis = forecast
			if forecast < cfg.SafePeriapsis() {
				pred = -math.Min((cfg.SafePeriapsis()-forecast)/10e3, 15)
			} else if forecast > 1.1*cfg.TargetAltitude {
				pred = math.Min((forecast-1.1*cfg.TargetAltitude)/10e3, 5)
			}
		}
	}

	targetFPA := math.Max(0, base+safety+pred)
	vd.BaseFPA = base
	vd.SafetyBias = safety
	vd.PredictionBias = pred
	vd.TargetFPA = targetFPA
	vd.Error = fpa - targetFPA

	ctx := &tickContext{
		cfg: cfg, state: g.state, vs: vs, ph: ph, orbit: orbit,
		dt: dt, fpa: fpa, apo: apo, peri: peri,
		targetFPA: targetFPA, errFPA: fpa - targetFPA, predBias: pred, diag: vd,
	}
	for _, rule := range vacuumRules {
		out, ok := rule.apply(ctx)
		if !ok {
			continue
		}
		vd.Rule = rule.name
		if out.circStarted && !g.state.CircBurnStarted {
			g.state.CircBurnStarted = true
			g.logger.Log("level", "notice", "subsys", "burns", "status", "circularization burn started", "Δv(m/s)", vd.DeltaV)
		}
		return out.phase, out.pitch, out.throttle
	}
	panic("no guidance rule matched") // the last rule always matches
}

// ruleOutcome is the decision of a matched orbit-shaping rule.
type ruleOutcome struct {
	phase       Phase
	pitch       float64
	throttle    float64
	circStarted bool
}

// guidanceRule is one guarded entry of the vacuum ladder. Rules are evaluated
// in order; the first match wins, which makes the priority auditable and each
// rule independently testable. The apply functions are pure.
type guidanceRule struct {
	name  string
	apply func(ctx *tickContext) (ruleOutcome, bool)
}

// vacuumRules is the orbit-shaping priority ladder.
var vacuumRules = []guidanceRule{
	{"emergency-raise-periapsis", ruleEmergency},
	{"raising-apoapsis", ruleRaiseApoapsis},
	{"building-periapsis", ruleBuildPeriapsis},
	{"coasting", ruleCoastOvershoot},
	{"coast-to-circularize", ruleCircularize},
	{"orbit-achieved", ruleOrbitAchieved},
}

// ruleEmergency fires when the periapsis is below ground level while the
// apoapsis is already at target: pitch sharply more horizontal, full throttle.
func ruleEmergency(ctx *tickContext) (ruleOutcome, bool) {
	if ctx.peri >= 0 || ctx.apo < ctx.cfg.TargetAltitude-ctx.cfg.AltTolerance {
		return ruleOutcome{}, false
	}
	return ruleOutcome{PhaseEmergency, ctx.fpa - ctx.cfg.Tuning.EmergencyOffset, 1, false}, true
}

// correctionGain implements the shared error-correction scheme: full
// correction under a strong prediction bias, otherwise a partial correction
// outside the deadband (steeper errors corrected harder than shallow ones).
func correctionGain(errFPA, predBias, deadband float64) float64 {
	switch {
	case math.Abs(predBias) > 5:
		return 1
	case errFPA > deadband:
		return 0.5
	case errFPA < -deadband:
		return 0.3
	}
	return 0
}

func ruleRaiseApoapsis(ctx *tickContext) (ruleOutcome, bool) {
	cfg := ctx.cfg
	deficit := cfg.TargetAltitude - ctx.apo
	if deficit <= cfg.AltTolerance {
		return ruleOutcome{}, false
	}
	gain := correctionGain(ctx.errFPA, ctx.predBias, cfg.Tuning.WideDeadband)
	pitch := ctx.fpa - gain*ctx.errFPA
	throttle := 1.0
	if ctx.peri >= cfg.SafePeriapsis() {
		tun := cfg.Tuning
		throttle = clamp(tun.ThrottleFloor+(1-tun.ThrottleFloor)*deficit/tun.ThrottleRampWindow, tun.ThrottleFloor, 1)
	}
	return ruleOutcome{PhaseRaisingApoapsis, pitch, throttle, false}, true
}

func ruleBuildPeriapsis(ctx *tickContext) (ruleOutcome, bool) {
	cfg := ctx.cfg
	if ctx.apo > cfg.TargetAltitude+cfg.AltTolerance || ctx.peri >= cfg.SafePeriapsis() {
		return ruleOutcome{}, false
	}
	gain := correctionGain(ctx.errFPA, ctx.predBias, cfg.Tuning.TightDeadband)
	return ruleOutcome{PhaseBuildingPeriapsis, ctx.fpa - gain*ctx.errFPA, 1, false}, true
}

// ruleCoastOvershoot coasts prograde when the apoapsis has overshot; the burn
// scheduler may latch a retrograde trim burn at periapsis in this regime.
func ruleCoastOvershoot(ctx *tickContext) (ruleOutcome, bool) {
	if ctx.apo <= ctx.cfg.TargetAltitude+ctx.cfg.AltTolerance {
		return ruleOutcome{}, false
	}
	return ruleOutcome{PhaseCoasting, ctx.fpa, 0, false}, true
}

// ruleCircularize coasts to apoapsis and flies the symmetric
// throttle-modulated circularization burn.
func ruleCircularize(ctx *tickContext) (ruleOutcome, bool) {
	cfg := ctx.cfg
	if ctx.peri >= cfg.TargetAltitude-cfg.AltTolerance {
		return ruleOutcome{}, false
	}
	Δv, dur := circularizationBurn(ctx.orbit, ctx.vs, ctx.ph, cfg)
	tta := ctx.orbit.TimeToApoapsis()
	if math.IsInf(tta, 1) || math.IsNaN(tta) {
		tta = kinematicTimeToApoapsis(ctx.vs, ctx.ph)
	}
	ctx.diag.DeltaV = Δv
	ctx.diag.BurnDuration = dur
	ctx.diag.TimeToApoapsis = tta
	started := ctx.state.CircBurnStarted || tta <= dur/2
	var throttle float64
	if started {
		// Taper down over the final stretch of periapsis deficit.
		throttle = clamp((cfg.TargetAltitude-ctx.peri)/cfg.Tuning.TaperWindow, 0, 1)
	}
	return ruleOutcome{PhaseCoastToCircularize, ctx.fpa, throttle, started}, true
}

func ruleOrbitAchieved(ctx *tickContext) (ruleOutcome, bool) {
	return ruleOutcome{PhaseOrbitAchieved, ctx.fpa, 0, false}, true
}

// circularizationBurn returns the vis-viva Δv to circularize at apoapsis and
// the estimated burn duration from the current stage thrust and vehicle mass.
func circularizationBurn(o *Orbit, vs VehicleState, ph PhysicsSample, cfg Config) (Δv, duration float64) {
	if o.Escape {
		return 0, 0
	}
	rA := o.Apoapsis()
	vApo := math.Sqrt(o.Body.μ * (2/rA - 1/o.SemiMajor()))
	vCirc := math.Sqrt(o.Body.μ / rA)
	Δv = vCirc - vApo
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

// kinematicTimeToApoapsis approximates the coast time to apoapsis from the
// current net vertical acceleration of gravity, thrust and drag. This is the
// documented fallback when the closed-form solver returns a non-finite time.
func kinematicTimeToApoapsis(vs VehicleState, ph PhysicsSample) float64 {
	vv := vs.VerticalVelocity()
	if vv <= 0 {
		return 0
	}
	mass := math.Max(ph.Mass, 1)
	sinγ := math.Sin(vs.FlightPathAngle() * deg2rad)
	aV := (ph.Thrust-ph.Drag)/mass*sinγ - ph.Gravity
	if aV >= 0 {
		return math.Inf(1)
	}
	return vv / -aV
}

// thrustDirection returns the unit thrust direction in the local horizon
// frame (radially-outward up, perpendicular east along the motion), or the
// anti-velocity unit vector in retrograde burn mode.
func thrustDirection(vs VehicleState, pitch float64, retrograde bool) [2]float64 {
	if retrograde {
		d := unit(vs.V)
		return [2]float64{-d[0], -d[1]}
	}
	up := unit(vs.R)
	east := [2]float64{-up[1], up[0]}
	// Flip east to follow the horizontal component of the motion.
	horiz := [2]float64{vs.V[0] - dot(vs.V, up)*up[0], vs.V[1] - dot(vs.V, up)*up[1]}
	if dot(horiz, east) < 0 {
		east[0], east[1] = -east[0], -east[1]
	}
	sinp, cosp := math.Sincos(pitch * deg2rad)
	return unit([2]float64{cosp*east[0] + sinp*up[0], cosp*east[1] + sinp*up[1]})
}
