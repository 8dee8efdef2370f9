// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine emits events about layout settling, idle transitions, snapshot
// capture, cache operations, and GPU-resource allocation without depending
// on any observability backend. Consumers register hook implementations at
// startup; libraries call the accessors to emit events.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries emit events through the accessors:
//
//	observability.Engine().OnSettleStart(ctx, mode, nodeCount)
//	// ... pre-settle ticks ...
//	observability.Engine().OnSettleComplete(ctx, mode, ticks, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the layout/render engine.
type EngineHooks interface {
	// Settle events bracket the synchronous pre-settle run.
	OnSettleStart(ctx context.Context, mode string, nodeCount int)
	OnSettleComplete(ctx context.Context, mode string, ticks int, duration time.Duration)

	// Idle events fire when rendering suspends and resumes.
	OnIdleEnter(ctx context.Context, engineID string)
	OnIdleExit(ctx context.Context, engineID string)

	// OnSnapshot records an idle snapshot capture attempt.
	// ok is false when the backend cannot capture.
	OnSnapshot(ctx context.Context, engineID string, ok bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from layout-cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Resource Hooks
// =============================================================================

// ResourceHooks receives events from the render resource budget.
type ResourceHooks interface {
	// OnLightAcquire records a dynamic light allocation. granted is false
	// when the budget is exhausted and the node degraded to sprite glow.
	OnLightAcquire(ctx context.Context, nodeID string, granted bool)

	// OnLightRelease records a light slot being returned to the budget.
	OnLightRelease(ctx context.Context, nodeID string)

	// OnTextureBuild records a glow texture being rasterized (cache fill).
	OnTextureBuild(ctx context.Context, key string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnSettleStart(context.Context, string, int)                   {}
func (NoopEngineHooks) OnSettleComplete(context.Context, string, int, time.Duration) {}
func (NoopEngineHooks) OnIdleEnter(context.Context, string)                          {}
func (NoopEngineHooks) OnIdleExit(context.Context, string)                           {}
func (NoopEngineHooks) OnSnapshot(context.Context, string, bool)                     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopResourceHooks is a no-op implementation of ResourceHooks.
type NoopResourceHooks struct{}

func (NoopResourceHooks) OnLightAcquire(context.Context, string, bool) {}
func (NoopResourceHooks) OnLightRelease(context.Context, string)       {}
func (NoopResourceHooks) OnTextureBuild(context.Context, string)       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks   EngineHooks   = NoopEngineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	resourceHooks ResourceHooks = NoopResourceHooks{}
	hooksMu       sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine runs.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetResourceHooks registers custom resource hooks.
// This should be called once at application startup before any engine runs.
func SetResourceHooks(h ResourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resourceHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Resource returns the registered resource hooks.
func Resource() ResourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resourceHooks
}

// Reset restores all hooks to their no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	resourceHooks = NoopResourceHooks{}
}
