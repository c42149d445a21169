// Package stack builds nested stacked-box structures by randomized recursive
// subdivision and evaluates their instance transforms.
//
// Building is a two-phase pipeline. [Build] runs once per configuration,
// single-threaded, and returns an immutable element slice. [Job] then turns
// those elements into per-instance transforms and is safe to evaluate in
// parallel, one index per task.
//
// Elements use the builder convention: the footprint lies in the XY plane
// and boxes stack along Z. [Job] converts to the renderer convention (XZ
// ground plane, Y up).
package stack

import (
	"github.com/chewxy/math32"

	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Element is one generated box. Position is its center, Size its full extent.
type Element struct {
	Position xform.Float3 `json:"position"`
	Size     xform.Float3 `json:"size"`
}

// Min returns the minimum corner of the box.
func (e Element) Min() xform.Float3 { return e.Position.Sub(e.Size.Scale(0.5)) }

// Max returns the maximum corner of the box.
func (e Element) Max() xform.Float3 { return e.Position.Add(e.Size.Scale(0.5)) }

// Bounds returns the axis-aligned bounds of all elements. Both corners are
// zero for an empty slice.
func Bounds(elements []Element) (lo, hi xform.Float3) {
	if len(elements) == 0 {
		return lo, hi
	}
	lo, hi = elements[0].Min(), elements[0].Max()
	for _, e := range elements[1:] {
		a, b := e.Min(), e.Max()
		lo = xform.F3(math32.Min(lo.X, a.X), math32.Min(lo.Y, a.Y), math32.Min(lo.Z, a.Z))
		hi = xform.F3(math32.Max(hi.X, b.X), math32.Max(hi.Y, b.Y), math32.Max(hi.Z, b.Z))
	}
	return lo, hi
}
