package ascent

// DiagVersion identifies the layout of the Diagnostics record.
const DiagVersion = 1

// Diagnostics is a structured, versioned record of the intermediate values of
// one guidance tick, keyed by phase: at most one of the member records is
// non-nil. Consumers assert on fields, never on rendered strings.
type Diagnostics struct {
	Version int
	Phase   Phase

	Atmospheric *AtmosphericDiag
	Vacuum      *VacuumDiag
	Solver      *SolverDiag
}

// AtmosphericDiag carries the intermediate values of the atmospheric-ascent
// correction terms.
type AtmosphericDiag struct {
	DynamicPressure    float64 // Pa
	PitchFloor         float64 // deg, altitude-scaled quadratic floor
	TurnRateCorrection float64 // deg
	FloorCorrection    float64 // deg
	VertVelCorrection  float64 // deg
}

// VacuumDiag carries the intermediate values of the vacuum-guidance profile
// and of the matched orbit-shaping rule.
type VacuumDiag struct {
	BaseFPA           float64 // deg, power-law profile before biasing
	SafetyBias        float64 // deg
	PredictionBias    float64 // deg
	TargetFPA         float64 // deg
	Error             float64 // deg, current FPA minus target FPA
	ForecastPeriapsis float64 // m, burnout periapsis forecast
	TimeToApoapsis    float64 // s
	BurnDuration      float64 // s, estimated circularization burn
	DeltaV            float64 // m/s, estimated circularization Δv
	Rule              string  // name of the matched guidance rule
}

// SolverDiag reports an anomaly-solver inverse-cosine clamp beyond tolerance,
// which indicates stale or inconsistent orbit data.
type SolverDiag struct {
	ClampExcess float64
}
