// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional: libraries emit events through small hook
// interfaces and binaries decide where those events go. Every hook has a
// no-op default, so packages that never register anything pay almost
// nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    observability.SetMatchHooks(m)
//	    observability.SetBuildHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, buildID, records)
//	// ... build the graph ...
//	observability.Build().OnBuildComplete(ctx, buildID, stats, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Match Hooks
// =============================================================================

// MatchHooks receives events from the equivalence matcher. Match calls are
// pure and have no context, so neither do these hooks.
type MatchHooks interface {
	// OnPrefilterReject records a pair rejected by head distance alone.
	OnPrefilterReject()

	// OnAlignmentSolve records one rigid alignment attempt.
	OnAlignmentSolve(accepted bool)
}

// =============================================================================
// Build Hooks
// =============================================================================

// BuildStats summarizes a finished graph build.
type BuildStats struct {
	Nodes   int
	Edges   int
	Skipped int
}

// BuildHooks receives events from the move graph builder.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, buildID string, records int)
	OnBuildComplete(ctx context.Context, buildID string, stats BuildStats, duration time.Duration, err error)

	// OnResolve records the outcome of one find-or-insert.
	OnResolve(ctx context.Context, created bool)
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

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnResponse records a served request. Route is the matched pattern,
	// not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMatchHooks is a no-op implementation of MatchHooks.
type NoopMatchHooks struct{}

func (NoopMatchHooks) OnPrefilterReject()    {}
func (NoopMatchHooks) OnAlignmentSolve(bool) {}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, int) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, BuildStats, time.Duration, error) {
}
func (NoopBuildHooks) OnResolve(context.Context, bool) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	matchHooks MatchHooks = NoopMatchHooks{}
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetMatchHooks registers custom match hooks.
func SetMatchHooks(h MatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		matchHooks = h
	}
}

// SetBuildHooks registers custom build hooks.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
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

// Match returns the registered match hooks.
func Match() MatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return matchHooks
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
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
	matchHooks = NoopMatchHooks{}
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
