package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constel.toml")
	content := `
[camera]
radius_max = 2000

[budget]
max_lights = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tun, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tun.Camera.RadiusMax != 2000 {
		t.Errorf("radius_max = %v, want 2000", tun.Camera.RadiusMax)
	}
	if tun.Budget.MaxLights != 3 {
		t.Errorf("max_lights = %d, want 3", tun.Budget.MaxLights)
	}
	// Untouched keys keep defaults.
	if tun.Camera.RadiusMin != Default().Camera.RadiusMin {
		t.Errorf("radius_min = %v, want default %v", tun.Camera.RadiusMin, Default().Camera.RadiusMin)
	}
	if tun.Sim.PresettleTicks != Default().Sim.PresettleTicks {
		t.Errorf("presettle_ticks = %d, want default", tun.Sim.PresettleTicks)
	}
}

func TestLoadFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[sim]\nalpha_decay = 2.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for alpha_decay out of range")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
