// Package pool keeps a variable-size set of renderable instances in step
// with a layout's instance count.
//
// Instances are not objects. The pool is a struct of arrays indexed by a
// dense integer handle: mesh choice, material choice, layer and transform
// slot live in parallel slices. Growing appends, shrinking truncates from
// the end, and visual reassignment rewrites the choice slices in place.
//
// Mesh and material choices are pure functions of (seed, index), so a pool
// shrunk to zero and grown back to n is indistinguishable from a fresh pool
// of capacity n.
package pool

import (
	"slices"
	"sync"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/random"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Ceiling is the largest capacity a pool accepts.
const Ceiling = 131072

// Seed salts that decorrelate mesh and material choices for one index.
const (
	MeshSalt     uint32 = 0xcbd
	MaterialSalt uint32 = 0x5a3
)

// TransformArray is the dense, index-aligned view of every instance's
// transform slot. Evaluators write into it; renderers read from it.
type TransformArray []xform.Local

// Instance is a snapshot of one pooled instance.
type Instance[M, T comparable] struct {
	Index         int
	Mesh          M
	MeshIndex     int
	Material      T
	MaterialIndex int
	Layer         int
	Transform     xform.Local
}

// Stats are instrumentation counters.
type Stats struct {
	// Created and Destroyed count instance handles.
	Created   int
	Destroyed int

	// Reassignments counts per-instance mesh/material reassignments caused
	// by seed or resource list changes. Growth does not count.
	Reassignments int

	// ViewRebuilds counts lazy TransformArray rebuilds.
	ViewRebuilds int
}

// Pool holds instances with mesh type M and material type T.
//
// Callers that schedule evaluations into Transforms() must Track the
// returned handle; structural changes wait for it before touching storage.
type Pool[M, T comparable] struct {
	mu sync.Mutex

	meshes    []M
	materials []T
	seed      uint32
	layer     int

	meshIdx    []int
	matIdx     []int
	layers     []int
	transforms []xform.Local

	view      TransformArray
	viewValid bool
	inflight  *jobs.Handle

	stats Stats
}

// New returns an empty pool. Until resources are set, every instance uses
// the zero mesh and zero material.
func New[M, T comparable]() *Pool[M, T] {
	var m M
	var t T
	return &Pool[M, T]{
		meshes:    []M{m},
		materials: []T{t},
	}
}

// Len returns the number of live instances.
func (p *Pool[M, T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.transforms)
}

// SetCapacity grows or shrinks the pool to n instances. Negative n means
// zero. Requests above Ceiling are clamped and reported as
// RESOURCE_EXHAUSTED; the clamped capacity is still applied.
func (p *Pool[M, T]) SetCapacity(n int) error {
	var err error
	if n < 0 {
		n = 0
	}
	if n > Ceiling {
		err = errors.New(errors.ErrCodeResourceExhausted, "pool capacity %d exceeds ceiling %d", n, Ceiling)
		n = Ceiling
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cur := len(p.transforms)
	if n == cur {
		return err
	}
	p.waitLocked()

	if n < cur {
		clear(p.transforms[n:])
		p.transforms = p.transforms[:n]
		p.meshIdx = p.meshIdx[:n]
		p.matIdx = p.matIdx[:n]
		p.layers = p.layers[:n]
		p.stats.Destroyed += cur - n
	} else {
		p.transforms = append(p.transforms, make([]xform.Local, n-cur)...)
		p.meshIdx = append(p.meshIdx, make([]int, n-cur)...)
		p.matIdx = append(p.matIdx, make([]int, n-cur)...)
		p.layers = append(p.layers, make([]int, n-cur)...)
		for i := cur; i < n; i++ {
			p.assignLocked(i)
			p.layers[i] = p.layer
		}
		p.stats.Created += n - cur
	}
	p.viewValid = false
	return err
}

// SetVisualResources replaces both candidate lists. Lists equal by value to
// the current ones are a no-op. Empty lists are rejected with
// EMPTY_RESOURCE_LIST before anything changes.
func (p *Pool[M, T]) SetVisualResources(meshes []M, materials []T) error {
	if len(meshes) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "mesh list is empty")
	}
	if len(materials) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "material list is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	changed := false
	if !slices.Equal(p.meshes, meshes) {
		p.meshes = slices.Clone(meshes)
		changed = true
	}
	if !slices.Equal(p.materials, materials) {
		p.materials = slices.Clone(materials)
		changed = true
	}
	if changed {
		p.reassignLocked()
	}
	return nil
}

// SetMeshes replaces the mesh list only.
func (p *Pool[M, T]) SetMeshes(meshes []M) error {
	if len(meshes) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "mesh list is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Equal(p.meshes, meshes) {
		return nil
	}
	p.meshes = slices.Clone(meshes)
	p.reassignLocked()
	return nil
}

// SetMaterials replaces the material list only.
func (p *Pool[M, T]) SetMaterials(materials []T) error {
	if len(materials) == 0 {
		return errors.New(errors.ErrCodeEmptyResource, "material list is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Equal(p.materials, materials) {
		return nil
	}
	p.materials = slices.Clone(materials)
	p.reassignLocked()
	return nil
}

// SetSeed reassigns every instance when seed differs from the current one.
func (p *Pool[M, T]) SetSeed(seed uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seed == p.seed {
		return
	}
	p.seed = seed
	p.reassignLocked()
}

// SetLayer tags every instance with layer.
func (p *Pool[M, T]) SetLayer(layer int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if layer == p.layer {
		return
	}
	p.layer = layer
	for i := range p.layers {
		p.layers[i] = layer
	}
}

// Seed returns the current seed.
func (p *Pool[M, T]) Seed() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seed
}

// Transforms returns the transform view, rebuilding it if the pool was
// resized since the last call. The view stays valid until the next
// capacity change.
func (p *Pool[M, T]) Transforms() TransformArray {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.viewValid {
		n := len(p.transforms)
		p.view = TransformArray(p.transforms[:n:n])
		p.viewValid = true
		p.stats.ViewRebuilds++
	}
	return p.view
}

// Track records h as the evaluation currently writing into Transforms().
// A previously tracked handle is completed first.
func (p *Pool[M, T]) Track(h *jobs.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitLocked()
	p.inflight = h
}

// Wait blocks until the tracked evaluation, if any, has completed.
func (p *Pool[M, T]) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitLocked()
}

// Instance returns a snapshot of instance i.
func (p *Pool[M, T]) Instance(i int) Instance[M, T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	mi, ti := p.meshIdx[i], p.matIdx[i]
	return Instance[M, T]{
		Index:         i,
		Mesh:          p.meshes[mi],
		MeshIndex:     mi,
		Material:      p.materials[ti],
		MaterialIndex: ti,
		Layer:         p.layers[i],
		Transform:     p.transforms[i],
	}
}

// Stats returns a copy of the instrumentation counters.
func (p *Pool[M, T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close waits for in-flight work and destroys every instance.
func (p *Pool[M, T]) Close() error {
	p.Wait()
	return p.SetCapacity(0)
}

func (p *Pool[M, T]) waitLocked() {
	if p.inflight != nil {
		p.inflight.Complete()
		p.inflight = nil
	}
}

func (p *Pool[M, T]) reassignLocked() {
	for i := range p.meshIdx {
		p.assignLocked(i)
	}
	p.stats.Reassignments += len(p.meshIdx)
}

func (p *Pool[M, T]) assignLocked(i int) {
	ms := random.Derive(p.seed^MeshSalt, uint32(i))
	p.meshIdx[i] = ms.IntRange(0, len(p.meshes))
	ts := random.Derive(p.seed^MaterialSalt, uint32(i))
	p.matIdx[i] = ts.IntRange(0, len(p.materials))
}
