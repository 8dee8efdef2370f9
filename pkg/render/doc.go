// Package render defines the backend contract the engine draws through and
// a registry of named backends.
//
// # Overview
//
// The engine is backend-agnostic: each frame it projects the scene into 2D
// draw operations and hands them to whatever [Backend] it was opened with.
// Backends differ only in where the pixels go:
//
//   - [imagesink]: offscreen raster frames and PNG files
//   - [termsink]: a terminal cell grid for the TUI viewer
//   - [ebitensink]: a live window
//   - [dotsink]: Graphviz DOT / SVG export of the graph structure
//
// # Registry
//
// Backends self-register by name in an init function. Callers open one with
// [Open]:
//
//	b, err := render.Open("image", render.Options{Width: 1280, Height: 800})
//
// Unknown names return an error carrying ErrCodeBackendUnsupported so the
// CLI can list what is available via [Names].
//
// # Snapshots
//
// A backend that can read its pixels back implements [Snapshotter]; the
// engine uses it for idle snapshots. Backends that cannot (the terminal
// grid) simply don't, and idle mode proceeds without a still.
//
// [imagesink]: github.com/constelviz/constel/pkg/render/imagesink
// [termsink]: github.com/constelviz/constel/pkg/render/termsink
// [ebitensink]: github.com/constelviz/constel/pkg/render/ebitensink
// [dotsink]: github.com/constelviz/constel/pkg/render/dotsink
package render
