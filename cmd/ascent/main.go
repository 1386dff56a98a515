// Command ascent flies a point-mass two-stage vehicle to orbit with the
// guidance core in the loop and serves the telemetry gauges over HTTP.
// The physics here is deliberately crude: the core only ever consumes the
// scalar samples, exactly as it would from a real vehicle model.
package main

import (
	"flag"
	"math"
	"net/http"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ascent "github.com/donutTheJedi/Rocket-MIT-PORTFOLIO"
)

const (
	seaLevelDensity = 1.225  // kg/m^3
	scaleHeight     = 5600.0 // m
	dragArea        = 5.0    // m^2, Cd·A
)

func main() {
	confPath := flag.String("config", "", "ascent configuration file (TOML), defaults used when empty")
	metricsAddr := flag.String("metrics", ":8086", "telemetry listen address")
	dt := flag.Float64("dt", 0.1, "simulation step (s)")
	maxTime := flag.Float64("max-time", 3600, "abort after this much mission time (s)")
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	cfg := ascent.DefaultConfig()
	if *confPath != "" {
		var err error
		if cfg, err = ascent.LoadConfig(*confPath); err != nil {
			logger.Log("level", "critical", "subsys", "driver", "err", err)
			os.Exit(1)
		}
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			logger.Log("level", "critical", "subsys", "driver", "err", err)
		}
	}()

	g := ascent.NewGuidanceComputer(cfg, logger)
	forecaster := ascent.NewEventForecaster(cfg, g.Scheduler())

	propellant := make([]float64, len(cfg.Stages))
	for i, st := range cfg.Stages {
		propellant[i] = st.Propellant
	}
	vs := ascent.VehicleState{
		R:          [2]float64{cfg.Body.Radius, 0},
		V:          [2]float64{0, 0.1},
		Propellant: propellant,
	}
	mass := cfg.Stage(0).Mass
	throttle := 1.0
	nextLog := 0.0

	for vs.MissionTime < *maxTime {
		alt := vs.Altitude(cfg.Body)
		if alt < -1 {
			logger.Log("level", "critical", "subsys", "driver", "status", "impact", "t(s)", vs.MissionTime)
			os.Exit(1)
		}
		st := cfg.Stage(vs.Stage)
		airspeed := math.Hypot(vs.V[0], vs.V[1])
		ρ := seaLevelDensity * math.Exp(-math.Max(alt, 0)/scaleHeight)
		if alt > cfg.Body.AtmosphereAlt {
			ρ = 0
		}
		ph := ascent.PhysicsSample{
			AirDensity:   ρ,
			Airspeed:     airspeed,
			Gravity:      cfg.Body.GravityAt(cfg.Body.Radius + alt),
			Thrust:       throttle * st.Thrust,
			Drag:         0.5 * ρ * airspeed * airspeed * dragArea,
			MassFlowRate: st.MassFlowRate,
			Mass:         mass,
		}
		vs.EngineOn = throttle > 0 && vs.Propellant[vs.Stage] > 0

		cmd := g.Update(vs, ph)
		ascent.PublishMetrics(cmd)
		throttle = cmd.Throttle
		if vs.Propellant[vs.Stage] <= 0 {
			if vs.Stage+1 < len(cfg.Stages) {
				vs.Stage++
				mass = cfg.Stage(vs.Stage).Mass
				logger.Log("level", "notice", "subsys", "driver", "status", "stage separation", "stage", vs.Stage, "t(s)", vs.MissionTime)
			} else {
				throttle = 0
			}
		}

		if vs.MissionTime >= nextLog {
			nextLog += 10
			if ev, ok := forecaster.Next(vs, ph, &cmd.Orbit, cmd.Phase); ok {
				logger.Log("level", "info", "subsys", "driver", "t(s)", vs.MissionTime, "phase", cmd.Phase,
					"alt(m)", alt, "orbit", cmd.Orbit, "next", ev.Name, "in(s)", ev.TimeUntil)
			} else {
				logger.Log("level", "info", "subsys", "driver", "t(s)", vs.MissionTime, "phase", cmd.Phase,
					"alt(m)", alt, "orbit", cmd.Orbit)
			}
		}
		if cmd.Phase == ascent.PhaseOrbitAchieved && throttle == 0 {
			logger.Log("level", "notice", "subsys", "driver", "status", "orbit achieved", "t(s)", vs.MissionTime, "orbit", cmd.Orbit)
			return
		}

		// Euler step of the point mass.
		burn := 0.0
		if vs.EngineOn {
			burn = throttle * st.MassFlowRate * *dt
			if burn > vs.Propellant[vs.Stage] {
				burn = vs.Propellant[vs.Stage]
			}
		}
		thrust := 0.0
		if burn > 0 {
			thrust = throttle * st.Thrust
		}
		r := math.Hypot(vs.R[0], vs.R[1])
		gAcc := cfg.Body.GM() / (r * r * r)
		var acc [2]float64
		for i := 0; i < 2; i++ {
			acc[i] = -gAcc*vs.R[i] + thrust/mass*cmd.Direction[i]
		}
		if airspeed > 0 && ph.Drag > 0 {
			for i := 0; i < 2; i++ {
				acc[i] -= ph.Drag / mass * vs.V[i] / airspeed
			}
		}
		for i := 0; i < 2; i++ {
			vs.V[i] += acc[i] * *dt
			vs.R[i] += vs.V[i] * *dt
		}
		vs.Propellant[vs.Stage] -= burn
		mass -= burn
		vs.MissionTime += *dt
	}
	logger.Log("level", "warning", "subsys", "driver", "status", "timed out", "t(s)", vs.MissionTime)
}
