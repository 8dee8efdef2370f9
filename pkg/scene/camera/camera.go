// Package camera implements the spherical orbit camera: current and target
// view state, exponential easing for ordinary drag/zoom, a timed snap
// animation for focus/reset operations, and the only-grow auto-fit rule.
package camera

import (
	"math"
	"time"

	"github.com/constelviz/constel/pkg/config"
)

// Vec3 is a point in simulation space.
type Vec3 struct{ X, Y, Z float64 }

// Spherical holds orbit coordinates around a look-at target.
type Spherical struct {
	Radius float64
	Phi    float64 // polar angle, clamped strictly inside (0, pi)
	Theta  float64 // azimuthal angle
}

// Camera owns current and target view transforms plus the selection state
// that interaction handlers write and the render step reads each frame.
type Camera struct {
	cfg config.CameraTuning

	current Spherical
	target  Spherical

	lookAt       Vec3
	lookAtTarget Vec3

	width, height float64
	aspect        float64

	selectedID string
	hoveredID  string
	neighbors  map[string]struct{}
	second     map[string]struct{}

	manualZoom bool

	// snap animation state; a new snap cancels an in-flight one.
	snapping  bool
	snapStart time.Time
	snapFromS Spherical
	snapFromL Vec3

	// focus flash pulse, transient and non-blocking.
	flashID    string
	flashStart time.Time
}

// New creates a camera at the default overview distance. isMobile selects a
// single larger default distance for small display surfaces; nothing else
// changes.
func New(cfg config.CameraTuning, width, height float64, isMobile bool) *Camera {
	radius := cfg.RadiusDefault
	if isMobile {
		radius = cfg.RadiusMobile
	}
	start := Spherical{Radius: radius, Phi: math.Pi / 2.5, Theta: 0}
	c := &Camera{
		cfg:       cfg,
		current:   start,
		target:    start,
		neighbors: map[string]struct{}{},
		second:    map[string]struct{}{},
	}
	c.Resize(width, height)
	return c
}

// Resize updates the projection aspect ratio only; spherical state is
// untouched, so in-flight snap animations survive a resize.
func (c *Camera) Resize(width, height float64) {
	c.width, c.height = width, height
	if height <= 0 || width <= 0 {
		c.aspect = 1.0
		return
	}
	c.aspect = width / height
}

// Aspect returns the current aspect ratio (1.0 for degenerate surfaces).
func (c *Camera) Aspect() float64 { return c.aspect }

// Drag moves the target angles proportionally to the pointer delta. Phi is
// clamped inside (0, pi) to avoid gimbal flip.
func (c *Camera) Drag(dx, dy float64) {
	c.target.Theta -= dx * c.cfg.DragSensitivity
	c.target.Phi = clamp(
		c.target.Phi-dy*c.cfg.DragSensitivity,
		c.cfg.PhiMargin,
		math.Pi-c.cfg.PhiMargin,
	)
}

// Wheel zooms by a fixed multiplicative step per notch, clamped to the
// configured range. Manual zoom disables auto-fit until selection is
// cleared.
func (c *Camera) Wheel(deltaY float64) {
	if deltaY == 0 {
		return
	}
	step := c.cfg.WheelStep
	if deltaY < 0 {
		step = 1 / step
	}
	c.target.Radius = clamp(c.target.Radius*step, c.cfg.RadiusMin, c.cfg.RadiusMax)
	c.manualZoom = true
}

// Focus aims the camera at a node position: look-at moves to the node, the
// radius shrinks to the close-focus distance, and a snap animation carries
// the transition. The caller resolves the id to a position and the neighbor
// sets; unknown ids never reach this method.
func (c *Camera) Focus(id string, pos Vec3, first, second map[string]struct{}, now time.Time) {
	c.selectedID = id
	c.SetNeighborSets(first, second)

	c.lookAtTarget = pos
	c.target.Radius = c.cfg.RadiusFocus

	c.beginSnap(now)
	c.flashID = id
	c.flashStart = now
}

// ClearSelection resets selection state, recenters the look-at on the
// origin, and snaps back to the overview distance. Auto-fit re-arms.
func (c *Camera) ClearSelection(now time.Time) {
	c.selectedID = ""
	c.neighbors = map[string]struct{}{}
	c.second = map[string]struct{}{}
	c.lookAtTarget = Vec3{}
	c.target.Radius = c.cfg.RadiusDefault
	c.manualZoom = false
	c.beginSnap(now)
}

// SetHovered records the hovered node id ("" for none).
func (c *Camera) SetHovered(id string) { c.hoveredID = id }

// SetNeighborSets replaces the neighbor classification sets. Used when
// hover (not selection) drives the focus.
func (c *Camera) SetNeighborSets(first, second map[string]struct{}) {
	if first == nil {
		first = map[string]struct{}{}
	}
	if second == nil {
		second = map[string]struct{}{}
	}
	c.neighbors = first
	c.second = second
}

// SelectedID returns the selected node id, or "".
func (c *Camera) SelectedID() string { return c.selectedID }

// HoveredID returns the hovered node id, or "".
func (c *Camera) HoveredID() string { return c.hoveredID }

// FocusID returns the id driving neighbor styling: selection wins over hover.
func (c *Camera) FocusID() string {
	if c.selectedID != "" {
		return c.selectedID
	}
	return c.hoveredID
}

// Neighbors returns the first- and second-degree neighbor sets.
func (c *Camera) Neighbors() (first, second map[string]struct{}) {
	return c.neighbors, c.second
}

// FlashIntensity returns the focus pulse strength for a node at now, in
// [0,1]; zero once the pulse has expired or for other nodes.
func (c *Camera) FlashIntensity(id string, now time.Time) float64 {
	if id == "" || id != c.flashID {
		return 0
	}
	elapsed := now.Sub(c.flashStart)
	total := time.Duration(c.cfg.FlashMillis) * time.Millisecond
	if elapsed < 0 || elapsed >= total {
		return 0
	}
	return 1 - float64(elapsed)/float64(total)
}

// AutoFit grows the target radius until the farthest node stays inside the
// field of view with the configured margin. It never shrinks the radius (no
// jittery auto-zoom-in) and stands down entirely after a manual zoom or
// while a node is selected. Zero nodes is a no-op.
func (c *Camera) AutoFit(positions []Vec3) {
	if c.manualZoom || c.selectedID != "" || len(positions) == 0 {
		return
	}
	far := 0.0
	for _, p := range positions {
		dx, dy, dz := p.X-c.lookAtTarget.X, p.Y-c.lookAtTarget.Y, p.Z-c.lookAtTarget.Z
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > far {
			far = d
		}
	}
	halfFOV := c.cfg.FOVDegrees * math.Pi / 180 / 2
	needed := far * c.cfg.AutoFitMargin / math.Tan(halfFOV)
	needed = clamp(needed, c.cfg.RadiusMin, c.cfg.RadiusMax)
	if needed > c.target.Radius {
		c.target.Radius = needed
	}
}

// Step advances the camera one frame: a running snap animation interpolates
// current toward target on a quadratic ease curve; otherwise current state
// exponentially approaches the target (idle-lerp).
func (c *Camera) Step(now time.Time) {
	if c.snapping {
		d := time.Duration(c.cfg.SnapMillis) * time.Millisecond
		t := float64(now.Sub(c.snapStart)) / float64(d)
		if t >= 1 {
			c.current = c.target
			c.lookAt = c.lookAtTarget
			c.snapping = false
			return
		}
		if t < 0 {
			t = 0
		}
		e := easeInOutQuad(t)
		c.current = Spherical{
			Radius: lerp(c.snapFromS.Radius, c.target.Radius, e),
			Phi:    lerp(c.snapFromS.Phi, c.target.Phi, e),
			Theta:  lerp(c.snapFromS.Theta, c.target.Theta, e),
		}
		c.lookAt = Vec3{
			X: lerp(c.snapFromL.X, c.lookAtTarget.X, e),
			Y: lerp(c.snapFromL.Y, c.lookAtTarget.Y, e),
			Z: lerp(c.snapFromL.Z, c.lookAtTarget.Z, e),
		}
		return
	}

	ka, kt := c.cfg.LerpAngles, c.cfg.LerpTarget
	c.current.Radius += (c.target.Radius - c.current.Radius) * ka
	c.current.Phi += (c.target.Phi - c.current.Phi) * ka
	c.current.Theta += (c.target.Theta - c.current.Theta) * ka
	c.lookAt.X += (c.lookAtTarget.X - c.lookAt.X) * kt
	c.lookAt.Y += (c.lookAtTarget.Y - c.lookAt.Y) * kt
	c.lookAt.Z += (c.lookAtTarget.Z - c.lookAt.Z) * kt
}

func (c *Camera) beginSnap(now time.Time) {
	c.snapping = true
	c.snapStart = now
	c.snapFromS = c.current
	c.snapFromL = c.lookAt
}

// Current returns the current spherical coordinates.
func (c *Camera) Current() Spherical { return c.current }

// TargetRadius returns the target orbit radius.
func (c *Camera) TargetRadius() float64 { return c.target.Radius }

// LookAt returns the current look-at point.
func (c *Camera) LookAt() Vec3 { return c.lookAt }

// Eye returns the camera position derived from the spherical coordinates.
func (c *Camera) Eye() Vec3 {
	s := c.current
	return Vec3{
		X: c.lookAt.X + s.Radius*math.Sin(s.Phi)*math.Cos(s.Theta),
		Y: c.lookAt.Y + s.Radius*math.Cos(s.Phi),
		Z: c.lookAt.Z + s.Radius*math.Sin(s.Phi)*math.Sin(s.Theta),
	}
}

// DefaultRadius returns the configured overview distance.
func (c *Camera) DefaultRadius() float64 { return c.cfg.RadiusDefault }

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
