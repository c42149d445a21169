package stack

import (
	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/fade"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Limits enforced by [Config.Validate] and [Build].
const (
	// MaxLevels caps recursion depth.
	MaxLevels = 64

	// MaxNodes caps the number of footprints visited in one build.
	MaxNodes = 1 << 22

	// MaxSubdivision caps the per-axis cell count of the uniform branch.
	MaxSubdivision = 64

	// MaxRootCells caps RootGrid.X * RootGrid.Y.
	MaxRootCells = 1 << 16
)

// AlgorithmVersion identifies the draw order and geometry rules of [Build].
// It is part of element cache keys and must change whenever output for a
// given configuration changes.
const AlgorithmVersion = 1

// Config drives every randomized decision of the subdivision builder.
//
// Ranges packed into Float3 are (min, max, exponent) and are sampled with a
// power-shaped uniform. Depth is a [lo, hi) integer range for the terminal
// level drawn at each node.
type Config struct {
	Seed uint32 `json:"seed"`

	// Depth is the [lo, hi) range of the random terminal level.
	Depth xform.Int2 `json:"depth"`

	// Height is the box height range (min, max, exponent).
	Height xform.Float3 `json:"height"`

	// Margin is subtracted from both axes of every child footprint
	// (min, max, exponent), in world units.
	Margin xform.Float3 `json:"margin"`

	// Cutoff stops recursion into child footprints narrower than this.
	Cutoff float32 `json:"cutoff"`

	// Decimation is the probability of skipping a box. Skipped boxes still
	// consume their draws and still recurse.
	Decimation float32 `json:"decimation"`

	// UniformSplit is the probability of the uniform grid branch over the
	// four-quadrant branch.
	UniformSplit float32 `json:"uniform_split"`

	// Subdivision is the per-axis cell count range of the uniform branch
	// (min, max, exponent).
	Subdivision xform.Int3 `json:"subdivision"`

	// RootGrid is the number of root cells along X and Y.
	RootGrid xform.Int2 `json:"root_grid"`

	// CellExtent is the side length of each square root cell.
	CellExtent float32 `json:"cell_extent"`

	// Animate enables the fade envelope in the transform job.
	Animate    bool            `json:"animate"`
	Transition fade.Transition `json:"transition"`
}

// DefaultConfig returns the stock tower configuration: one 3x3 root cell,
// 4 to 8 levels of 0.2 to 0.4 high boxes with thin margins.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		Depth:        xform.I2(4, 8),
		Height:       xform.F3(0.2, 0.4, 2),
		Margin:       xform.F3(0.001, 0.002, 2),
		Cutoff:       0.01,
		Decimation:   0,
		UniformSplit: 0.5,
		Subdivision:  xform.I3(1, 8, 4),
		RootGrid:     xform.I2(1, 1),
		CellExtent:   3,
		Transition:   fade.Default(),
	}
}

// Validate reports every invalid field as one joined INVALID_CONFIG error.
func (c Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(errors.ValidateIntRange("depth", c.Depth.X, c.Depth.Y))
	if c.Depth.Y > MaxLevels {
		add(errors.New(errors.ErrCodeInvalidConfig, "depth: max %d exceeds limit %d", c.Depth.Y, MaxLevels))
	}
	add(errors.ValidateRange("height", c.Height.X, c.Height.Y))
	add(errors.ValidateNonNegative("height exponent", c.Height.Z))
	add(errors.ValidateRange("margin", c.Margin.X, c.Margin.Y))
	add(errors.ValidateNonNegative("margin exponent", c.Margin.Z))
	add(errors.ValidateNonNegative("cutoff", c.Cutoff))
	add(errors.ValidateProbability("decimation", c.Decimation))
	add(errors.ValidateProbability("uniform_split", c.UniformSplit))

	add(errors.ValidateIntRange("subdivision", c.Subdivision.X, c.Subdivision.Y))
	if c.Subdivision.X < 1 {
		add(errors.New(errors.ErrCodeInvalidConfig, "subdivision: min must be at least 1 (got %d)", c.Subdivision.X))
	}
	if c.Subdivision.Y > MaxSubdivision {
		add(errors.New(errors.ErrCodeInvalidConfig, "subdivision: max %d exceeds limit %d", c.Subdivision.Y, MaxSubdivision))
	}
	if c.Subdivision.Z < 0 {
		add(errors.New(errors.ErrCodeInvalidConfig, "subdivision exponent must be non-negative (got %d)", c.Subdivision.Z))
	}

	if c.RootGrid.X < 0 || c.RootGrid.Y < 0 {
		add(errors.New(errors.ErrCodeInvalidConfig, "root_grid: must be non-negative (got %dx%d)", c.RootGrid.X, c.RootGrid.Y))
	} else if c.RootGrid.X*c.RootGrid.Y > MaxRootCells {
		add(errors.New(errors.ErrCodeInvalidConfig, "root_grid: %d cells exceeds limit %d", c.RootGrid.X*c.RootGrid.Y, MaxRootCells))
	}
	add(errors.ValidatePositive("cell_extent", c.CellExtent))

	if !c.Transition.Valid() {
		add(errors.New(errors.ErrCodeInvalidConfig, "transition: durations must be non-negative"))
	}

	return errors.Join(errs...)
}
