package ascent

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pitchGauge        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_pitch_degrees"})
	throttleGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_throttle"})
	apoapsisGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_apoapsis_meters"})
	periapsisGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_periapsis_meters"})
	eccentricityGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_eccentricity"})
	phaseGauge        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_phase"})
	deltaVGauge       = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ascent_delta_v_remaining_mps"})
)

func init() {
	prometheus.MustRegister(
		pitchGauge, throttleGauge, apoapsisGauge, periapsisGauge,
		eccentricityGauge, phaseGauge, deltaVGauge,
	)
}

// PublishMetrics exports one guidance tick to the prometheus registry.
func PublishMetrics(cmd Command) {
	pitchGauge.Set(cmd.Pitch)
	throttleGauge.Set(cmd.Throttle)
	eccentricityGauge.Set(cmd.Orbit.Eccentricity())
	phaseGauge.Set(float64(cmd.Phase))
	if apo := cmd.Orbit.ApoapsisAltitude(); !math.IsInf(apo, 0) {
		apoapsisGauge.Set(apo)
	}
	periapsisGauge.Set(cmd.Orbit.PeriapsisAltitude())
	if !math.IsInf(cmd.DeltaV, 0) {
		deltaVGauge.Set(cmd.DeltaV)
	}
}
