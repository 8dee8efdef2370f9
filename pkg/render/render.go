package render

import (
	"image"
	"sort"
	"sync"

	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/scene/project"
)

// Node is one node draw operation: the projected geometry plus the resolved
// visual attributes for this frame.
type Node struct {
	project.Node

	Glow      float64 // emissive intensity after pulse and focus dimming
	Label     string
	ShowLabel bool
	Locked    bool
	GlowKey   string // texture cache key for the node's glow sprite
}

// Edge is one edge draw operation.
type Edge = project.Edge

// Backend receives one frame of draw operations. Calls arrive in order:
// BeginFrame, every edge, every node back-to-front, EndFrame. Backends are
// not safe for concurrent frames.
type Backend interface {
	BeginFrame(width, height int)
	DrawEdge(e Edge)
	DrawNode(n Node)
	EndFrame() error
	Dispose()
}

// Snapshotter is implemented by backends that can read back their last
// completed frame as a still image.
type Snapshotter interface {
	Snapshot() (image.Image, error)
}

// Options carries backend construction parameters.
type Options struct {
	Width, Height int
	Tuning        config.Tuning
}

// Factory constructs a backend instance.
type Factory func(opts Options) (Backend, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a named backend factory. Later registrations with the same
// name win, which lets tests install fakes.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// Open constructs the named backend.
func Open(name string, opts Options) (Backend, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeBackendUnsupported, "unknown render backend: %s", name)
	}
	return f(opts)
}

// Names lists the registered backend names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
