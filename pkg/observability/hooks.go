// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about element builds, frame updates, cache operations,
// and HTTP requests served by the frame feed.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so there are no import
// cycles and the core packages stay free of metrics frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetFrameHooks(&myFrameHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, "stack", seed)
//	// ... build elements ...
//	observability.Build().OnBuildComplete(ctx, "stack", count, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from layout element builds.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, layout string, seed uint32)
	OnBuildComplete(ctx context.Context, layout string, count int, duration time.Duration, err error)
}

// =============================================================================
// Frame Hooks
// =============================================================================

// FrameHooks receives events from the per-frame renderer update.
type FrameHooks interface {
	// OnFrameScheduled records a transform evaluation fanned out over count instances.
	OnFrameScheduled(ctx context.Context, renderer string, count int)

	// OnFrameCompleted records the join of a frame's evaluation.
	OnFrameCompleted(ctx context.Context, renderer string, count int, duration time.Duration)

	// OnPoolResize records an instance pool capacity change.
	OnPoolResize(ctx context.Context, renderer string, from, to int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP frame feed.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, uint32)                       {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}

// NoopFrameHooks is a no-op implementation of FrameHooks.
type NoopFrameHooks struct{}

func (NoopFrameHooks) OnFrameScheduled(context.Context, string, int)                {}
func (NoopFrameHooks) OnFrameCompleted(context.Context, string, int, time.Duration) {}
func (NoopFrameHooks) OnPoolResize(context.Context, string, int, int)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	frameHooks FrameHooks = NoopFrameHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any builds.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetFrameHooks registers custom frame hooks.
func SetFrameHooks(h FrameHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		frameHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Frame returns the registered frame hooks.
func Frame() FrameHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return frameHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	frameHooks = NoopFrameHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
