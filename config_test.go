package ascent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/floats"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Body.Equals(Kerbin) {
		t.Fatalf("default body %s", cfg.Body)
	}
	if cfg.SafePeriapsis() != cfg.Body.AtmosphereAlt+cfg.Tuning.SafetyMargin {
		t.Fatal("safe periapsis moved off the atmosphere margin")
	}
}

func TestConfigValidate(t *testing.T) {
	for name, breakIt := range map[string]func(*Config){
		"target inside atmosphere": func(c *Config) { c.TargetAltitude = c.Body.AtmosphereAlt - 1 },
		"kick ends before start":   func(c *Config) { c.KickEnd = c.KickStart },
		"nonpositive pitch rate":   func(c *Config) { c.MaxPitchRate = 0 },
		"no stages":                func(c *Config) { c.Stages = nil },
	} {
		cfg := DefaultConfig()
		breakIt(&cfg)
		if cfg.Validate() == nil {
			t.Fatalf("%s not rejected", name)
		}
	}
}

func TestConfigStageClamped(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Stage(0).Thrust != cfg.Stages[0].Thrust {
		t.Fatal("stage 0 mismatched")
	}
	last := cfg.Stages[len(cfg.Stages)-1]
	if cfg.Stage(10) != last {
		t.Fatal("out-of-range stage should fall back to the last stage")
	}
	if cfg.Stage(-1) != cfg.Stages[0] {
		t.Fatal("negative stage should fall back to the first stage")
	}
	if (Config{}).Stage(0) != (StageConfig{}) {
		t.Fatal("stageless config should return a zero stage")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ascent.toml")
	toml := `
[body]
name = "Earth"

[guidance]
target_altitude = 250e3
max_q = 35e3

[[stages]]
thrust = 7600e3
mass = 550e3
propellant = 410e3
mass_flow_rate = 2500

[[stages]]
thrust = 930e3
mass = 120e3
propellant = 92e3
mass_flow_rate = 270
`
	if err := os.WriteFile(path, []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Body.Equals(Earth) {
		t.Fatalf("body %s", cfg.Body)
	}
	if cfg.TargetAltitude != 250e3 || cfg.MaxQ != 35e3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Keys absent from the file keep their defaults.
	if cfg.KickPitch != DefaultConfig().KickPitch {
		t.Fatalf("kick pitch %f", cfg.KickPitch)
	}
	if len(cfg.Stages) != 2 || cfg.Stages[0].Thrust != 7600e3 || cfg.Stages[1].MassFlowRate != 270 {
		t.Fatalf("stages %+v", cfg.Stages)
	}
}

func TestLoadConfigRejectsUnknownBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ascent.toml")
	if err := os.WriteFile(path, []byte("[body]\nname = \"Duna\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("unknown body accepted")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ascent.toml")
	if err := os.WriteFile(path, []byte("[guidance]\ntarget_altitude = 50e3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// 50 km is inside Kerbin's atmosphere.
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("in-atmosphere target accepted")
	}
}

func TestCelestialBody(t *testing.T) {
	if !floats.EqualWithinAbs(Kerbin.GravityAt(Kerbin.Radius), 9.81, 0.01) {
		t.Fatalf("surface gravity %f", Kerbin.GravityAt(Kerbin.Radius))
	}
	if Kerbin.GM() != Kerbin.μ {
		t.Fatal("GM accessor broken")
	}
	if Kerbin.Equals(Earth) || !Kerbin.Equals(Kerbin) {
		t.Fatal("body equality broken")
	}
	if Kerbin.String() != "Kerbin body" {
		t.Fatalf("stringer %q", Kerbin.String())
	}
}
