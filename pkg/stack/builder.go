package stack

import (
	"github.com/chewxy/math32"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/random"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Quadrant ratios of the non-uniform branch are drawn from this range.
const (
	minRatio = 0.2
	maxRatio = 0.8
)

// Build runs the recursive subdivision for cfg and returns the elements in
// depth-first pre-order.
//
// One stream seeded from cfg.Seed feeds every decision. For each footprint
// the draws are taken in this order: height, decimation, terminal depth,
// branch choice, then the branch draws (two cell counts and a margin for the
// uniform branch, three ratios and a margin for the quadrant branch).
// Changing that order changes all output for a seed.
//
// Build is single-threaded. It fails with INVALID_CONFIG for a bad
// configuration and RESOURCE_EXHAUSTED when the node or level cap is hit;
// no partial output is returned in either case.
func Build(cfg Config) ([]Element, error) {
	return build(cfg, MaxNodes)
}

func build(cfg Config, maxNodes int) ([]Element, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{cfg: cfg, rand: random.New(cfg.Seed), maxNodes: maxNodes}
	nx, ny := cfg.RootGrid.X, cfg.RootGrid.Y
	cell := cfg.CellExtent
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			center := xform.F3(
				(float32(i)+0.5-float32(nx)*0.5)*cell,
				(float32(j)+0.5-float32(ny)*0.5)*cell,
				0,
			)
			b.node(center, xform.F2(cell, cell), 0, true)
			if b.err != nil {
				return nil, b.err
			}
		}
	}
	return b.out, nil
}

type builder struct {
	cfg      Config
	rand     random.Stream
	out      []Element
	nodes    int
	maxNodes int
	err      error
}

func (b *builder) node(center xform.Float3, extent xform.Float2, level int, root bool) {
	if b.err != nil {
		return
	}
	if !root {
		if m := extent.Min(); m < b.cfg.Cutoff || m <= 0 {
			return
		}
	}
	if b.nodes++; b.nodes > b.maxNodes {
		b.err = errors.New(errors.ErrCodeResourceExhausted, "subdivision visited more than %d footprints", b.maxNodes)
		return
	}
	if level >= MaxLevels {
		b.err = errors.New(errors.ErrCodeResourceExhausted, "subdivision exceeded %d levels", MaxLevels)
		return
	}

	h := b.rand.RangePow3(b.cfg.Height)

	if b.rand.UNorm() >= b.cfg.Decimation {
		b.out = append(b.out, Element{
			Position: center.Add(xform.F3(0, 0, h*0.5)),
			Size:     xform.F3(extent.X, extent.Y, h),
		})
	}

	if level+1 >= b.rand.IntRange(b.cfg.Depth.X, b.cfg.Depth.Y) {
		return
	}

	center.Z += h

	if b.rand.UNorm() < b.cfg.UniformSplit {
		b.uniform(center, extent, level+1)
	} else {
		b.quadrants(center, extent, level+1)
	}
}

// uniform divides the footprint into an equal grid and recurses into every cell.
func (b *builder) uniform(center xform.Float3, extent xform.Float2, level int) {
	nx := b.subdivisions()
	ny := b.subdivisions()
	margin := b.rand.RangePow3(b.cfg.Margin)

	cell := xform.F2(extent.X/float32(nx), extent.Y/float32(ny))
	child := cell.SubScalar(margin)
	minX := center.X - extent.X*0.5
	minY := center.Y - extent.Y*0.5

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			c := xform.F3(minX+cell.X*(float32(i)+0.5), minY+cell.Y*(float32(j)+0.5), center.Z)
			b.node(c, child, level, false)
		}
	}
}

// quadrants splits the footprint into four unequal pieces and recurses into each.
func (b *builder) quadrants(center xform.Float3, extent xform.Float2, level int) {
	r1 := b.rand.Range(minRatio, maxRatio)
	r2a := b.rand.Range(minRatio, maxRatio)
	r2b := b.rand.Range(minRatio, maxRatio)
	margin := b.rand.RangePow3(b.cfg.Margin)

	minX := center.X - extent.X*0.5
	minY := center.Y - extent.Y*0.5
	for _, q := range Split(extent, r1, r2a, r2b) {
		c := xform.F3(minX+q.Center.X, minY+q.Center.Y, center.Z)
		b.node(c, q.Extent.SubScalar(margin), level, false)
	}
}

func (b *builder) subdivisions() int {
	s := b.cfg.Subdivision
	u := math32.Pow(b.rand.UNorm(), float32(s.Z))
	n := int(math32.Floor(xform.Lerp(float32(s.X), float32(s.Y), u)))
	return max(s.X, min(n, s.Y))
}

// Cell is one piece of a split footprint. Center is relative to the
// footprint's minimum corner.
type Cell struct {
	Center xform.Float2
	Extent xform.Float2
}

// Split partitions a footprint into four quadrants: r1 splits X into a left
// and right column, r2a splits the left column along Y, r2b the right one.
// The four pieces tile the footprint exactly.
func Split(extent xform.Float2, r1, r2a, r2b float32) [4]Cell {
	e1 := extent.Mul(xform.F2(r1, r2a))
	e2 := extent.Mul(xform.F2(r1, 1-r2a))
	e3 := extent.Mul(xform.F2(1-r1, r2b))
	e4 := extent.Mul(xform.F2(1-r1, 1-r2b))
	return [4]Cell{
		{xform.F2(e1.X*0.5, e1.Y*0.5), e1},
		{xform.F2(e2.X*0.5, e1.Y+e2.Y*0.5), e2},
		{xform.F2(e1.X+e3.X*0.5, e3.Y*0.5), e3},
		{xform.F2(e1.X+e4.X*0.5, e3.Y+e4.Y*0.5), e4},
	}
}
