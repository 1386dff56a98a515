package ascent

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestVectorHelpers(t *testing.T) {
	a := [2]float64{3, 4}
	if !floats.EqualWithinAbs(norm(a), 5, 1e-12) {
		t.Fatalf("norm=%f", norm(a))
	}
	u := unit(a)
	if !floats.EqualWithinAbs(norm(u), 1, 1e-12) {
		t.Fatalf("unit norm=%f", norm(u))
	}
	if z := unit([2]float64{0, 0}); z[0] != 0 || z[1] != 0 {
		t.Fatalf("unit of zero vector: %+v", z)
	}
	if got := dot(a, [2]float64{-4, 3}); !floats.EqualWithinAbs(got, 0, 1e-12) {
		t.Fatalf("dot of perpendicular vectors: %f", got)
	}
	if got := cross([2]float64{1, 0}, [2]float64{0, 1}); got != 1 {
		t.Fatalf("cross=%f", got)
	}
	if got := cross([2]float64{0, 1}, [2]float64{1, 0}); got != -1 {
		t.Fatalf("reversed cross=%f", got)
	}
}

func TestSignAndClamp(t *testing.T) {
	if sign(-3) != -1 || sign(3) != 1 || sign(0) != 1 {
		t.Fatal("sign convention changed")
	}
	if clamp(5, 0, 1) != 1 || clamp(-5, 0, 1) != 0 || clamp(0.5, 0, 1) != 0.5 {
		t.Fatal("clamp broken")
	}
}

func TestAngleConversions(t *testing.T) {
	if !floats.EqualWithinAbs(Deg2rad(180), math.Pi, 1e-12) {
		t.Fatalf("Deg2rad(180)=%f", Deg2rad(180))
	}
	// Both converters normalize negatives into the positive range.
	if !floats.EqualWithinAbs(Deg2rad(-90), 3*math.Pi/2, 1e-12) {
		t.Fatalf("Deg2rad(-90)=%f", Deg2rad(-90))
	}
	if !floats.EqualWithinAbs(Rad2deg(-math.Pi/2), 270, 1e-9) {
		t.Fatalf("Rad2deg(-π/2)=%f", Rad2deg(-math.Pi/2))
	}
	// The signed converter does not.
	if !floats.EqualWithinAbs(Rad2deg180(-math.Pi/2), -90, 1e-9) {
		t.Fatalf("Rad2deg180(-π/2)=%f", Rad2deg180(-math.Pi/2))
	}
}
