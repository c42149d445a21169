// Package renderer drives a layout and an instance pool once per frame.
//
// It is the glue a rendering front-end would otherwise write itself: keep
// the pool sized to the layout, push mesh/material/seed/layer changes into
// the pool, schedule the transform evaluation and join it. Draw submission
// stays with the caller, which reads [Renderer.Instances] after Update.
package renderer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/observability"
	"github.com/matzehuels/stacksketch/pkg/pool"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Options configures a Renderer.
type Options struct {
	Layer  int
	Logger *log.Logger
}

// Frame summarizes one Update.
type Frame struct {
	Number   int
	Time     float32
	Count    int
	Duration time.Duration
}

// Renderer owns an instance pool fed by one layouter.
type Renderer[M, T comparable] struct {
	// ID identifies the renderer in logs and HTTP responses.
	ID string

	mu        sync.Mutex
	layout    layout.Layouter
	pool      *pool.Pool[M, T]
	meshes    []M
	materials []T
	layer     int
	frame     int
	logger    *log.Logger
}

// New returns a renderer for l. Mesh and material lists must be non-empty.
func New[M, T comparable](l layout.Layouter, meshes []M, materials []T, opts Options) (*Renderer[M, T], error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "renderer requires a layout")
	}
	if len(meshes) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyResource, "mesh list is empty")
	}
	if len(materials) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyResource, "material list is empty")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	id := uuid.NewString()
	return &Renderer[M, T]{
		ID:        id,
		layout:    l,
		pool:      pool.New[M, T](),
		meshes:    meshes,
		materials: materials,
		layer:     opts.Layer,
		logger:    opts.Logger.With("renderer", id[:8]),
	}, nil
}

// Layout returns the driven layouter.
func (r *Renderer[M, T]) Layout() layout.Layouter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// SetResources replaces the candidate lists used from the next Update.
func (r *Renderer[M, T]) SetResources(meshes []M, materials []T) error {
	if len(meshes) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "mesh list is empty")
	}
	if len(materials) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "material list is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meshes, r.materials = meshes, materials
	return nil
}

// SetLayer changes the layer tag applied from the next Update.
func (r *Renderer[M, T]) SetLayer(layer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layer = layer
}

// Update runs one frame: prepare the layout, resize the pool, sync visual
// resources, seed and layer, then evaluate transforms for time under parent
// and wait for them.
//
// If the layout fails to prepare, nothing is scheduled and the pool keeps
// the previous frame. A capacity above the pool ceiling is clamped, the
// frame still runs, and the RESOURCE_EXHAUSTED error is returned.
func (r *Renderer[M, T]) Update(ctx context.Context, t float32, parent xform.Affine) (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	if err := r.layout.Prepare(ctx); err != nil {
		r.logger.Warn("layout prepare failed", "err", err)
		return Frame{}, err
	}

	count := r.layout.InstanceCount()
	prev := r.pool.Len()
	capErr := r.pool.SetCapacity(count)
	if capErr != nil {
		r.logger.Warn("instance count clamped", "requested", count, "ceiling", pool.Ceiling)
	}
	if n := r.pool.Len(); n != prev {
		observability.Frame().OnPoolResize(ctx, r.ID, prev, n)
		r.logger.Debug("resized pool", "from", prev, "to", n)
	}

	if err := r.pool.SetVisualResources(r.meshes, r.materials); err != nil {
		return Frame{}, err
	}
	r.pool.SetSeed(r.layout.Seed())
	r.pool.SetLayer(r.layer)

	target := r.pool.Transforms()
	observability.Frame().OnFrameScheduled(ctx, r.ID, len(target))
	h := r.layout.Schedule(parent, t, target)
	r.pool.Track(h)
	r.pool.Wait()

	r.frame++
	f := Frame{
		Number:   r.frame,
		Time:     t,
		Count:    len(target),
		Duration: time.Since(start),
	}
	observability.Frame().OnFrameCompleted(ctx, r.ID, f.Count, f.Duration)
	return f, capErr
}

// Instances returns a snapshot of every pooled instance after the last Update.
func (r *Renderer[M, T]) Instances() []pool.Instance[M, T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.pool.Len()
	out := make([]pool.Instance[M, T], n)
	for i := range out {
		out[i] = r.pool.Instance(i)
	}
	return out
}

// Stats returns the pool counters.
func (r *Renderer[M, T]) Stats() pool.Stats {
	return r.pool.Stats()
}

// Close waits for in-flight work and destroys all instances.
func (r *Renderer[M, T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool.Close()
}
