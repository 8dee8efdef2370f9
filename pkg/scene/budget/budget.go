// Package budget caps the expensive visual resources a scene may hold:
// glow textures are rasterized once per type/color key and reused, and only
// a fixed number of nodes receive a dedicated dynamic light. Nodes beyond
// the budget silently degrade to the cheaper flat sprite glow.
package budget

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/observability"
)

// lightTierMax is the highest tier number still eligible for a dedicated
// light: only tier 1 and tier 2 nodes qualify.
const lightTierMax = 2

// Budget tracks texture and light allocations for one scene.
type Budget struct {
	cfg config.BudgetTuning

	mu       sync.Mutex
	textures map[string]image.Image
	lights   map[string]int // node id -> glow tier at acquisition
	disposed bool
}

// New creates an empty budget.
func New(cfg config.BudgetTuning) *Budget {
	return &Budget{
		cfg:      cfg,
		textures: make(map[string]image.Image),
		lights:   make(map[string]int),
	}
}

// GlowTexture returns the cached glow sprite for the given key, rasterizing
// it on first use. Keys are type names or category color strings, never
// per-node values, so a graph allocates a handful of sprites total.
func (b *Budget) GlowTexture(key, hexColor string, size int) image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return nil
	}
	if img, ok := b.textures[key]; ok {
		return img
	}
	img := renderGlowSprite(hexColor, size)
	b.textures[key] = img
	observability.Resource().OnTextureBuild(context.Background(), key)
	return img
}

// TextureCount returns the number of cached sprites.
func (b *Budget) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// AcquireLight grants a dedicated dynamic light to the node if its glow
// tier qualifies (1 or 2) and a slot is free. Nodes keep their slot until
// released; re-acquiring is a cheap no-op.
func (b *Budget) AcquireLight(nodeID string, tier int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed || tier < 1 || tier > lightTierMax {
		return false
	}
	if _, ok := b.lights[nodeID]; ok {
		return true
	}
	if len(b.lights) >= b.cfg.MaxLights {
		observability.Resource().OnLightAcquire(context.Background(), nodeID, false)
		return false
	}
	b.lights[nodeID] = tier
	observability.Resource().OnLightAcquire(context.Background(), nodeID, true)
	return true
}

// HasLight reports whether the node currently holds a light slot.
func (b *Budget) HasLight(nodeID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.lights[nodeID]
	return ok
}

// ActiveLights returns the number of occupied light slots.
func (b *Budget) ActiveLights() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lights)
}

// ReleaseNode frees any light the node held so the slot can be reused by
// subsequent graphs. Releasing an unknown node is a no-op.
func (b *Budget) ReleaseNode(nodeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.lights[nodeID]; !ok {
		return
	}
	delete(b.lights, nodeID)
	observability.Resource().OnLightRelease(context.Background(), nodeID)
}

// PulseIntensity returns the slow sinusoidal glow oscillation for a node at
// now. Only tier-1 nodes holding a budgeted light pulse; everything else
// renders at steady intensity 1.
func (b *Budget) PulseIntensity(nodeID string, now time.Time) float64 {
	b.mu.Lock()
	tier, ok := b.lights[nodeID]
	b.mu.Unlock()
	if !ok || tier != 1 {
		return 1
	}
	period := float64(b.cfg.PulseMillis)
	if period <= 0 {
		return 1
	}
	t := float64(now.UnixMilli())
	return 0.75 + 0.25*math.Sin(2*math.Pi*t/period)
}

// Dispose releases every cached texture and light slot. Safe to call twice.
func (b *Budget) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.disposed = true
	b.textures = map[string]image.Image{}
	b.lights = map[string]int{}
}

// renderGlowSprite rasterizes a radial-gradient disc fading from the node
// color at the center to fully transparent at the rim.
func renderGlowSprite(hexColor string, size int) image.Image {
	if size <= 0 {
		size = 64
	}
	r, g, bl := ParseHexColor(hexColor)
	c := float64(size) / 2

	dc := gg.NewContext(size, size)
	grad := gg.NewRadialGradient(c, c, 0, c, c, c)
	grad.AddColorStop(0, color.NRGBA{R: r, G: g, B: bl, A: 255})
	grad.AddColorStop(0.55, color.NRGBA{R: r, G: g, B: bl, A: 90})
	grad.AddColorStop(1, color.NRGBA{R: r, G: g, B: bl, A: 0})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()
	return dc.Image()
}

// ParseHexColor parses "#rrggbb" (or "#rgb") into 8-bit channels, falling
// back to a neutral grey for malformed input.
func ParseHexColor(s string) (r, g, b uint8) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 6:
		return hexByte(s[0:2]), hexByte(s[2:4]), hexByte(s[4:6])
	case 3:
		return hexDigit(s[0]) * 17, hexDigit(s[1]) * 17, hexDigit(s[2]) * 17
	default:
		return 0xe5, 0xe7, 0xeb
	}
}

func hexByte(s string) uint8 {
	return hexDigit(s[0])<<4 | hexDigit(s[1])
}

func hexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
