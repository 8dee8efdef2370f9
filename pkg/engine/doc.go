// Package engine is the facade tying the constellation together: it owns
// the simulation, camera, projection, resource budget and idle detector for
// one scene and drives a render backend frame by frame.
//
// # Lifecycle
//
//	eng, _ := engine.New(cfg, backend, engine.Options{Width: 1280, Height: 800})
//	eng.SetData(g)                  // settle a new graph synchronously
//	for { eng.Step(time.Now()) }    // once per display frame
//	eng.Dispose()
//
// Interaction arrives through Drag, Wheel, Hover, FocusNode, ClearSelection
// and Resize; every one of them counts as user activity and resets the idle
// clock. Step is safe to call at any display cadence: the simulation cools
// to rest on its own, and once the user goes quiet the engine captures a
// still and stops handing frames to the backend until the next interaction.
package engine
