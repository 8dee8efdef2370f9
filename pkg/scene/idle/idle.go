// Package idle detects interaction lulls and swaps the live scene for a
// static snapshot so an embedding surface can stop burning frames while the
// user reads something else.
package idle

import (
	"context"
	"image"
	"time"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/observability"
)

// CaptureFunc renders the current scene into a still image. A nil image or
// an error leaves the detector idle without a snapshot; the caller keeps
// rendering live frames in that case.
type CaptureFunc func() (image.Image, error)

// Detector tracks the time since the last interaction and captures a
// snapshot once the configured threshold passes.
type Detector struct {
	cfg      config.IdleTuning
	capture  CaptureFunc
	engineID string

	lastInteraction time.Time
	idle            bool
	snapshot        image.Image
}

// New creates a detector owned by the engine identified by engineID (used
// to tag hook events). now seeds the interaction clock so a freshly created
// scene does not go idle immediately.
func New(cfg config.IdleTuning, engineID string, capture CaptureFunc, now time.Time) *Detector {
	return &Detector{cfg: cfg, capture: capture, engineID: engineID, lastInteraction: now}
}

// Touch records an interaction, leaving idle mode and discarding any held
// snapshot.
func (d *Detector) Touch(now time.Time) {
	d.lastInteraction = now
	if d.idle {
		d.idle = false
		d.snapshot = nil
		observability.Engine().OnIdleExit(context.Background(), d.engineID)
	}
}

// Update advances the detector. When the quiet period crosses the threshold
// it enters idle mode once and attempts a single snapshot capture. Returns
// true while idle.
func (d *Detector) Update(now time.Time) bool {
	if d.idle {
		return true
	}
	threshold := time.Duration(d.cfg.ThresholdMillis) * time.Millisecond
	if now.Sub(d.lastInteraction) < threshold {
		return false
	}
	d.idle = true
	observability.Engine().OnIdleEnter(context.Background(), d.engineID)
	if d.capture != nil {
		img, err := d.capture()
		if err == nil && img != nil {
			d.snapshot = img
			observability.Engine().OnSnapshot(context.Background(), d.engineID, true)
		} else {
			observability.Engine().OnSnapshot(context.Background(), d.engineID, false)
		}
	}
	return true
}

// IsIdle reports whether the detector is currently idle.
func (d *Detector) IsIdle() bool { return d.idle }

// Snapshot returns the captured still, or nil when capture failed or the
// detector is live.
func (d *Detector) Snapshot() image.Image {
	if !d.idle {
		return nil
	}
	return d.snapshot
}
