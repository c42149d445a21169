// Package layout exposes the stack and scatter generators behind one
// per-frame contract.
//
// A rendering front-end drives any [Layouter] the same way each frame:
//
//	if err := l.Prepare(ctx); err != nil {
//	    // keep drawing the previous elements
//	}
//	pool.SetCapacity(l.InstanceCount())
//	pool.SetSeed(l.Seed())
//	h := l.Schedule(parent, now, pool.Transforms())
//	h.Complete() // join before reading or resizing the transforms
//
// [Stack] owns an element sequence that is built once per configuration and
// shared read-only by every scheduled evaluation. [Scatter] has no elements;
// it recomputes everything from (seed, index, time).
package layout

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacksketch/pkg/cache"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Kinds name the layout variants in scene files and logs.
const (
	KindStack   = "stack"
	KindScatter = "scatter"
)

// Layouter is the contract shared by both generators.
type Layouter interface {
	// Kind returns KindStack or KindScatter.
	Kind() string

	// Prepare brings derived state up to date with the configuration. A
	// failed preparation leaves the previous state in place.
	Prepare(ctx context.Context) error

	// InstanceCount returns how many transforms a frame produces.
	InstanceCount() int

	// Seed returns the configuration seed.
	Seed() uint32

	// Schedule evaluates transforms into the first
	// min(len(target), InstanceCount()) slots of target. The caller must
	// complete the handle before touching target. Concurrent calls with
	// distinct targets are safe.
	Schedule(parent xform.Affine, time float32, target []xform.Local) *jobs.Handle
}

// Options configures the shared collaborators of a layouter.
type Options struct {
	// Scheduler runs transform evaluations. Defaults to jobs.Default().
	Scheduler *jobs.Scheduler

	// Cache stores built element sequences. Defaults to a NullCache.
	Cache cache.Cache

	// Keyer derives element cache keys. Defaults to a DefaultKeyer.
	Keyer cache.Keyer

	// Logger receives build and cache events. Defaults to a discarding logger.
	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Scheduler == nil {
		o.Scheduler = jobs.Default()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
