// Package pkg provides the libraries behind stacksketch, a generator of
// procedural block stacks and random scatters for instanced rendering.
//
// # Overview
//
// A scene is laid out once and then evaluated every frame:
//
//	scene.toml
//	     ↓
//	[scene] (parse, validate, pick a layouter)
//	     ↓
//	[layout] Stack or Scatter  ──  [stack] recursive subdivision (cached)
//	     ↓
//	[renderer] per-frame update  ──  [pool] instances, [jobs] parallel evaluation
//	     ↓
//	[export] frame / elements JSON
//
// # Main Packages
//
// [stack] - Recursive subdivision of a root grid into non-uniform boxes, and
// the per-element transform evaluator with its fade animation.
//
// [scatter] - Seeded random placement of a fixed number of instances inside
// an extent.
//
// [layout] - The Layouter interface shared by both generators. Stack builds
// lazily, reuses cached element lists and rebuilds when its configuration
// changes.
//
// [pool] - Dense instance storage with deterministic mesh and material
// assignment per index.
//
// [renderer] - Drives a layouter into a pool once per frame.
//
// [scene] - TOML scene files.
//
// [export] - JSON formats for frames and built elements.
//
// ## Building Blocks
//
// [xform] vectors, quaternions and placements. [random] indexed deterministic
// streams. [fade] in/stay/out transitions. [jobs] batched parallel-for.
//
// ## Infrastructure
//
// [cache] - Element cache backends: file, Redis and a null cache.
//
// [observability] - Hooks for builds, frames, cache and HTTP traffic.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information set at link time.
//
// # Quick Start
//
//	cfg := stack.DefaultConfig()
//	cfg.RootGrid = xform.I2(4, 4)
//
//	l, _ := layout.NewStack(cfg, layout.Options{})
//	r, _ := renderer.New(l, []string{"cube"}, []string{"stone", "brick"}, renderer.Options{})
//	defer r.Close()
//
//	f, _ := r.Update(ctx, 1.5, xform.Identity())
//	export.WriteFrame(os.Stdout, export.NewFrame(f, l.Seed(), r.Instances()))
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis tests
//
// [stack]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/stack
// [scatter]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/scatter
// [layout]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/layout
// [pool]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/pool
// [renderer]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/renderer
// [scene]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/scene
// [export]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/export
// [xform]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/xform
// [random]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/random
// [fade]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/fade
// [jobs]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/jobs
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stacksketch/pkg/buildinfo
package pkg
