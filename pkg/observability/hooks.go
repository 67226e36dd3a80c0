// Package observability provides hooks for metrics, tracing, and logging.
//
// The converter reports each stage of an SVG to ICO conversion through
// [ConversionHooks]. The default hooks do nothing; a program that wants
// metrics or traces registers its own implementation once at startup:
//
//	func main() {
//	    observability.SetConversionHooks(&myHooks{})
//	    // ... run application
//	}
//
// The converter emits events as it runs:
//
//	observability.Conversion().OnConvertStart(ctx, src)
//	// ... rasterize, decode, encode ...
//	observability.Conversion().OnConvertComplete(ctx, src, out, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Conversion Hooks
// =============================================================================

// ConversionHooks receives events from the SVG to ICO converter.
type ConversionHooks interface {
	OnConvertStart(ctx context.Context, src string)
	OnConvertComplete(ctx context.Context, src, out string, duration time.Duration, err error)

	// Stage events
	OnRasterize(ctx context.Context, backend string, duration time.Duration, err error)
	OnDecode(ctx context.Context, width, height int, duration time.Duration, err error)
	OnEncode(ctx context.Context, frames int, duration time.Duration, err error)
}

// NoopConversionHooks is a no-op implementation of ConversionHooks.
type NoopConversionHooks struct{}

func (NoopConversionHooks) OnConvertStart(context.Context, string) {}
func (NoopConversionHooks) OnConvertComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopConversionHooks) OnRasterize(context.Context, string, time.Duration, error) {}
func (NoopConversionHooks) OnDecode(context.Context, int, int, time.Duration, error)  {}
func (NoopConversionHooks) OnEncode(context.Context, int, time.Duration, error)       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	conversionHooks ConversionHooks = NoopConversionHooks{}
	hooksMu         sync.RWMutex
)

// SetConversionHooks registers custom conversion hooks.
// A nil argument leaves the current hooks in place.
func SetConversionHooks(h ConversionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		conversionHooks = h
	}
}

// Conversion returns the registered conversion hooks.
func Conversion() ConversionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return conversionHooks
}

// Reset restores the hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	conversionHooks = NoopConversionHooks{}
}
