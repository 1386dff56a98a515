package ascent

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestFlightPathAngle(t *testing.T) {
	r := Kerbin.Radius + 100e3
	horizontal := VehicleState{R: [2]float64{r, 0}, V: [2]float64{0, 2000}}
	if got := horizontal.FlightPathAngle(); !floats.EqualWithinAbs(got, 0, 1e-9) {
		t.Fatalf("horizontal FPA=%f", got)
	}
	radial := VehicleState{R: [2]float64{r, 0}, V: [2]float64{500, 0}}
	if got := radial.FlightPathAngle(); !floats.EqualWithinAbs(got, 90, 1e-9) {
		t.Fatalf("radial FPA=%f", got)
	}
	falling := VehicleState{R: [2]float64{r, 0}, V: [2]float64{-500, 500}}
	if got := falling.FlightPathAngle(); !floats.EqualWithinAbs(got, -45, 1e-9) {
		t.Fatalf("falling FPA=%f", got)
	}
	// On the pad, convention is straight up.
	if got := (VehicleState{R: [2]float64{r, 0}}).FlightPathAngle(); got != 90 {
		t.Fatalf("zero-velocity FPA=%f", got)
	}
	if got := falling.VerticalVelocity(); !floats.EqualWithinAbs(got, -500, 1e-9) {
		t.Fatalf("vertical velocity=%f", got)
	}
	if got := falling.Altitude(Kerbin); !floats.EqualWithinAbs(got, 100e3, 1e-6) {
		t.Fatalf("altitude=%f", got)
	}
}

func TestDynamicPressure(t *testing.T) {
	p := PhysicsSample{AirDensity: 1.2, Airspeed: 100}
	if got := p.DynamicPressure(); !floats.EqualWithinAbs(got, 6000, 1e-9) {
		t.Fatalf("q=%f", got)
	}
}

func TestDeltaVRemaining(t *testing.T) {
	p := PhysicsSample{Thrust: 250e3, MassFlowRate: 72, Mass: 14e3}
	// Tsiolkovsky with ve = thrust / mass flow rate.
	ve := 250e3 / 72.0
	want := ve * math.Log(14e3/(14e3-6e3))
	if got := p.DeltaVRemaining(6e3); !floats.EqualWithinAbs(got, want, 1e-6) {
		t.Fatalf("Δv=%f want %f", got, want)
	}
	if got := p.DeltaVRemaining(0); !floats.EqualWithinAbs(got, 0, 1e-9) {
		t.Fatalf("empty tank Δv=%f", got)
	}
	if got := (PhysicsSample{}).DeltaVRemaining(1e3); !math.IsInf(got, 1) {
		t.Fatalf("unknown engine Δv=%f", got)
	}
	// A propellant load exceeding the vehicle mass is inconsistent input.
	if got := p.DeltaVRemaining(20e3); !math.IsInf(got, 1) {
		t.Fatalf("inconsistent load Δv=%f", got)
	}
}

func TestBurnModeStrings(t *testing.T) {
	if ModePrograde.String() != "prograde" || ModeRetrograde.String() != "retrograde" {
		t.Fatal("burn mode names changed")
	}
	assertPanic(t, func() { _ = BurnMode(200).String() })
}
