// Package config exposes the engine's tuning constants as configuration.
//
// Every easing factor, force strength, and budget in the engine is a product
// tuning choice rather than a physical constant, so all of them load from an
// optional TOML file and fall back to the shipped defaults. A partial file
// overrides only the keys it names.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Tuning aggregates every tunable constant in the engine.
type Tuning struct {
	Sim        SimTuning        `toml:"sim"`
	Camera     CameraTuning     `toml:"camera"`
	Projection ProjectionTuning `toml:"projection"`
	Style      StyleTuning      `toml:"style"`
	Budget     BudgetTuning     `toml:"budget"`
	Idle       IdleTuning       `toml:"idle"`
}

// SimTuning controls the force simulation.
type SimTuning struct {
	LinkStrength       float64 `toml:"link_strength"`        // modest pull along edges
	LinkBaseDistance   float64 `toml:"link_base_distance"`   // separation at weight 0
	LinkWeightShrink   float64 `toml:"link_weight_shrink"`   // distance removed per unit weight
	LinkMinDistance    float64 `toml:"link_min_distance"`    // floor for heavy edges
	ChargeCategory     float64 `toml:"charge_category"`      // base repulsion, category nodes
	ChargeCategoryPerW float64 `toml:"charge_category_perw"` // extra repulsion per unit weight
	ChargeEntity       float64 `toml:"charge_entity"`
	ChargeEntityPerW   float64 `toml:"charge_entity_perw"`
	CenterStrength     float64 `toml:"center_strength"`
	ZStrength          float64 `toml:"z_strength"` // shallow-dish pull toward z=0
	CollidePadCategory float64 `toml:"collide_pad_category"`
	CollidePadEntity   float64 `toml:"collide_pad_entity"`
	AlphaDecay         float64 `toml:"alpha_decay"`    // energy lost per tick
	AlphaMin           float64 `toml:"alpha_min"`      // below this the simulation rests
	VelocityDecay      float64 `toml:"velocity_decay"` // per-tick damping fraction
	PresettleTicks     int     `toml:"presettle_ticks"`
	StarLayerSpacing   float64 `toml:"star_layer_spacing"` // z gap between star layers
	RadialDepthSpread  float64 `toml:"radial_depth_spread"`
	SeedRadius         float64 `toml:"seed_radius"` // phyllotaxis placement radius
}

// CameraTuning controls the spherical orbit camera.
type CameraTuning struct {
	LerpAngles      float64 `toml:"lerp_angles"` // per-frame easing for phi/theta/radius
	LerpTarget      float64 `toml:"lerp_target"` // per-frame easing for the look-at point
	SnapMillis      int     `toml:"snap_millis"` // focus/reset animation duration
	DragSensitivity float64 `toml:"drag_sensitivity"`
	PhiMargin       float64 `toml:"phi_margin"` // keeps phi strictly inside (0, pi)
	RadiusMin       float64 `toml:"radius_min"`
	RadiusMax       float64 `toml:"radius_max"`
	RadiusDefault   float64 `toml:"radius_default"`
	RadiusMobile    float64 `toml:"radius_mobile"` // larger overview on small surfaces
	RadiusFocus     float64 `toml:"radius_focus"`  // close-focus distance
	WheelStep       float64 `toml:"wheel_step"`    // multiplicative zoom per wheel notch
	FOVDegrees      float64 `toml:"fov_degrees"`
	AutoFitMargin   float64 `toml:"auto_fit_margin"`
	FlashMillis     int     `toml:"flash_millis"` // focus pulse duration
}

// ProjectionTuning controls the 3D to 2D projection.
type ProjectionTuning struct {
	SceneScale     float64 `toml:"scene_scale"`     // world units to pixels
	FocalDistance  float64 `toml:"focal_distance"`  // perspective strength
	MinRadius      float64 `toml:"min_radius"`      // px floor so distant nodes stay tappable
	DepthWindow    float64 `toml:"depth_window"`    // z range normalized for alpha
	AlphaFloor     float64 `toml:"alpha_floor"`     // nothing fully disappears
	DriftAmplitude float64 `toml:"drift_amplitude"` // idle breathing offset in px
	DriftSpeed     float64 `toml:"drift_speed"`     // radians per second
	EdgeAlphaScale float64 `toml:"edge_alpha_scale"`
	EdgeBaseBright float64 `toml:"edge_base_bright"` // brightness at weight 0
	EdgeBrightPerW float64 `toml:"edge_bright_perw"` // extra brightness per unit weight
}

// StyleTuning controls glow tiers and node sizing.
type StyleTuning struct {
	TierOneActivity   float64 `toml:"tier_one_activity"`
	TierTwoActivity   float64 `toml:"tier_two_activity"`
	TierThreeActivity float64 `toml:"tier_three_activity"`
	EntityBaseRadius  float64 `toml:"entity_base_radius"`
	CategoryBase      float64 `toml:"category_base_radius"`
	RadiusPerWeight   float64 `toml:"radius_per_weight"` // applied to sqrt(weight)
	EntityMaxRadius   float64 `toml:"entity_max_radius"`
	CategoryMaxRadius float64 `toml:"category_max_radius"`
}

// BudgetTuning controls expensive resource caps.
type BudgetTuning struct {
	MaxLights   int `toml:"max_lights"`
	PulseMillis int `toml:"pulse_millis"` // tier-1 glow oscillation period
}

// IdleTuning controls render suspension.
type IdleTuning struct {
	ThresholdMillis int `toml:"threshold_millis"`
}

// Default returns the shipped tuning values.
func Default() Tuning {
	return Tuning{
		Sim: SimTuning{
			LinkStrength:       0.15,
			LinkBaseDistance:   120,
			LinkWeightShrink:   6,
			LinkMinDistance:    30,
			ChargeCategory:     -300,
			ChargeCategoryPerW: 12,
			ChargeEntity:       -150,
			ChargeEntityPerW:   10,
			CenterStrength:     0.05,
			ZStrength:          0.05,
			CollidePadCategory: 16,
			CollidePadEntity:   6,
			AlphaDecay:         0.015,
			AlphaMin:           0.003,
			VelocityDecay:      0.35,
			PresettleTicks:     300,
			StarLayerSpacing:   60,
			RadialDepthSpread:  90,
			SeedRadius:         40,
		},
		Camera: CameraTuning{
			LerpAngles:      0.08,
			LerpTarget:      0.06,
			SnapMillis:      400,
			DragSensitivity: 0.005,
			PhiMargin:       0.15,
			RadiusMin:       50,
			RadiusMax:       1500,
			RadiusDefault:   420,
			RadiusMobile:    560,
			RadiusFocus:     160,
			WheelStep:       1.1,
			FOVDegrees:      50,
			AutoFitMargin:   1.15,
			FlashMillis:     200,
		},
		Projection: ProjectionTuning{
			SceneScale:     1.0,
			FocalDistance:  600,
			MinRadius:      2,
			DepthWindow:    200,
			AlphaFloor:     0.3,
			DriftAmplitude: 2.2,
			DriftSpeed:     0.9,
			EdgeAlphaScale: 0.4,
			EdgeBaseBright: 0.45,
			EdgeBrightPerW: 0.06,
		},
		Style: StyleTuning{
			TierOneActivity:   0.75,
			TierTwoActivity:   0.50,
			TierThreeActivity: 0.30,
			EntityBaseRadius:  8,
			CategoryBase:      16,
			RadiusPerWeight:   2,
			EntityMaxRadius:   26,
			CategoryMaxRadius: 40,
		},
		Budget: BudgetTuning{
			MaxLights:   6,
			PulseMillis: 2500,
		},
		Idle: IdleTuning{
			ThresholdMillis: 2000,
		},
	}
}

// LoadFile reads a TOML tuning file and overlays it on the defaults.
// Keys absent from the file keep their default values.
func LoadFile(path string) (Tuning, error) {
	t := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, t.Validate()
}

// Validate rejects values that would produce a degenerate engine.
func (t Tuning) Validate() error {
	switch {
	case t.Camera.RadiusMin <= 0 || t.Camera.RadiusMax <= t.Camera.RadiusMin:
		return fmt.Errorf("camera radius range [%v, %v] invalid", t.Camera.RadiusMin, t.Camera.RadiusMax)
	case t.Sim.AlphaDecay <= 0 || t.Sim.AlphaDecay >= 1:
		return fmt.Errorf("sim alpha_decay %v must be in (0, 1)", t.Sim.AlphaDecay)
	case t.Sim.VelocityDecay < 0 || t.Sim.VelocityDecay >= 1:
		return fmt.Errorf("sim velocity_decay %v must be in [0, 1)", t.Sim.VelocityDecay)
	case t.Budget.MaxLights < 0:
		return fmt.Errorf("budget max_lights %d must be non-negative", t.Budget.MaxLights)
	case t.Projection.FocalDistance <= 0:
		return fmt.Errorf("projection focal_distance %v must be positive", t.Projection.FocalDistance)
	}
	return nil
}
