package ascent

import (
	"fmt"

	"github.com/spf13/viper"
)

// StageConfig holds the static per-stage propulsion figures.
type StageConfig struct {
	Thrust       float64 // N, at full throttle
	Mass         float64 // kg, total vehicle mass at stage ignition
	Propellant   float64 // kg
	MassFlowRate float64 // kg/s at full throttle
}

// Tuning gathers the empirically tuned guidance constants. They are
// configuration, not law: preserved exactly for behavioral parity.
type Tuning struct {
	TurnRateCap        float64 // deg, cap of the turn-rate limiter correction
	FloorGain          float64 // share of the pitch-floor deficit applied
	VertVelRampStart   float64 // m, start of the vertical-velocity guard ramp
	VertVelRampEnd     float64 // m, full-strength altitude of the guard
	VertVelScale       float64 // m/s of minimum climb per km of target above atmosphere
	VertVelPer100      float64 // deg added per 100 m/s of climb deficit
	VertVelCap         float64 // deg, cap of the guard correction
	VertVelThreshold   float64 // deg, significance threshold of the guard
	SafetyMargin       float64 // m, safe periapsis margin above the atmosphere
	WideDeadband       float64 // deg, raise-apoapsis error deadband
	TightDeadband      float64 // deg, build-periapsis error deadband
	ThrottleRampWindow float64 // m, apoapsis deficit below which throttle ramps
	ThrottleFloor      float64 // minimum throttle of the apoapsis ramp
	TaperWindow        float64 // m, periapsis deficit of the circularization taper
	EmergencyOffset    float64 // deg, pitch-down offset of the emergency rule
}

// Config is the static configuration of an ascent.
type Config struct {
	Body            CelestialBody
	TargetAltitude  float64 // m
	AltTolerance    float64 // m, tolerance band around the target apsides
	MaxQ            float64 // Pa, structural dynamic-pressure limit
	MaxPitchRate    float64 // deg/s
	KickStart       float64 // s, start of the pitch kick
	KickEnd         float64 // s
	KickPitch       float64 // deg, pitch at the end of the kick
	FairingAltitude float64 // m, fairing jettison altitude
	Stages          []StageConfig
	Tuning          Tuning
}

// AtmosphereAlt returns the altitude of the guidance atmosphere boundary.
func (c Config) AtmosphereAlt() float64 { return c.Body.AtmosphereAlt }

// SafePeriapsis returns the periapsis altitude under which the orbit-shaping
// rules treat the periapsis as unsafe.
func (c Config) SafePeriapsis() float64 {
	return c.Body.AtmosphereAlt + c.Tuning.SafetyMargin
}

// Stage returns the propulsion figures of the given stage, falling back to
// the last configured stage.
func (c Config) Stage(i int) StageConfig {
	if len(c.Stages) == 0 {
		return StageConfig{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.Stages) {
		i = len(c.Stages) - 1
	}
	return c.Stages[i]
}

// DefaultConfig returns a Kerbin-scale two-stage configuration. Tests and the
// demo driver start from these values.
func DefaultConfig() Config {
	return Config{
		Body:            Kerbin,
		TargetAltitude:  700e3,
		AltTolerance:    5e3,
		MaxQ:            40e3,
		MaxPitchRate:    15,
		KickStart:       8,
		KickEnd:         35,
		KickPitch:       75,
		FairingAltitude: 60e3,
		Stages: []StageConfig{
			{Thrust: 1600e3, Mass: 95e3, Propellant: 60e3, MassFlowRate: 520},
			{Thrust: 250e3, Mass: 18e3, Propellant: 9e3, MassFlowRate: 72},
		},
		Tuning: defaultTuning(),
	}
}

func defaultTuning() Tuning {
	return Tuning{
		TurnRateCap:        5,
		FloorGain:          0.3,
		VertVelRampStart:   50e3,
		VertVelRampEnd:     70e3,
		VertVelScale:       0.25,
		VertVelPer100:      5,
		VertVelCap:         15,
		VertVelThreshold:   2,
		SafetyMargin:       30e3,
		WideDeadband:       5,
		TightDeadband:      3,
		ThrottleRampWindow: 50e3,
		ThrottleFloor:      0.2,
		TaperWindow:        30e3,
		EmergencyOffset:    15,
	}
}

// LoadConfig reads an ascent configuration file (TOML) and overlays it on the
// defaults. Only the keys present in the file are overridden.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if name := v.GetString("body.name"); name != "" {
		switch name {
		case Kerbin.Name:
			cfg.Body = Kerbin
		case Earth.Name:
			cfg.Body = Earth
		default:
			return Config{}, fmt.Errorf("unknown body %q", name)
		}
	}
	if v.IsSet("body.radius") {
		cfg.Body.Radius = v.GetFloat64("body.radius")
	}
	if v.IsSet("body.gm") {
		cfg.Body.μ = v.GetFloat64("body.gm")
	}
	if v.IsSet("body.atmosphere_alt") {
		cfg.Body.AtmosphereAlt = v.GetFloat64("body.atmosphere_alt")
	}
	if v.IsSet("guidance.target_altitude") {
		cfg.TargetAltitude = v.GetFloat64("guidance.target_altitude")
	}
	if v.IsSet("guidance.alt_tolerance") {
		cfg.AltTolerance = v.GetFloat64("guidance.alt_tolerance")
	}
	if v.IsSet("guidance.max_q") {
		cfg.MaxQ = v.GetFloat64("guidance.max_q")
	}
	if v.IsSet("guidance.max_pitch_rate") {
		cfg.MaxPitchRate = v.GetFloat64("guidance.max_pitch_rate")
	}
	if v.IsSet("guidance.kick_start") {
		cfg.KickStart = v.GetFloat64("guidance.kick_start")
	}
	if v.IsSet("guidance.kick_end") {
		cfg.KickEnd = v.GetFloat64("guidance.kick_end")
	}
	if v.IsSet("guidance.kick_pitch") {
		cfg.KickPitch = v.GetFloat64("guidance.kick_pitch")
	}
	if v.IsSet("guidance.fairing_altitude") {
		cfg.FairingAltitude = v.GetFloat64("guidance.fairing_altitude")
	}
	if raw, ok := v.Get("stages").([]interface{}); ok && len(raw) > 0 {
		var stages []StageConfig
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return Config{}, fmt.Errorf("stage %d is not a table", i)
			}
			stages = append(stages, StageConfig{
				Thrust:       toFloat(m["thrust"]),
				Mass:         toFloat(m["mass"]),
				Propellant:   toFloat(m["propellant"]),
				MassFlowRate: toFloat(m["mass_flow_rate"]),
			})
		}
		cfg.Stages = stages
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return 0
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.TargetAltitude <= c.Body.AtmosphereAlt {
		return fmt.Errorf("target altitude %.0f m is inside the atmosphere (%.0f m)", c.TargetAltitude, c.Body.AtmosphereAlt)
	}
	if c.KickEnd <= c.KickStart {
		return fmt.Errorf("pitch kick must end after it starts (%.1f..%.1f)", c.KickStart, c.KickEnd)
	}
	if c.MaxPitchRate <= 0 {
		return fmt.Errorf("max pitch rate must be positive")
	}
	if len(c.Stages) == 0 {
		return fmt.Errorf("at least one stage is required")
	}
	return nil
}
