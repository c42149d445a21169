// Package scatter places randomly scattered, time-animated instances.
//
// Scatter has no persistent element data. Every evaluation recomputes an
// instance's position and fade from (seed, index, time), so a [Job] is a
// plain value that any number of goroutines may evaluate.
package scatter

import (
	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/fade"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/random"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// MaxInstances bounds InstanceCount.
const MaxInstances = 1 << 20

// Config describes a scatter population.
type Config struct {
	Seed          uint32 `json:"seed"`
	InstanceCount int    `json:"instance_count"`

	// Extent is the size of the centered box instances are placed in.
	Extent xform.Float3 `json:"extent"`

	// Scale is the fully grown instance scale.
	Scale xform.Float3 `json:"scale"`

	Transition fade.Transition `json:"transition"`
}

// DefaultConfig returns ten small instances in a unit box.
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		InstanceCount: 10,
		Extent:        xform.Splat(1),
		Scale:         xform.Splat(0.1),
		Transition:    fade.Default(),
	}
}

// Validate checks counts, extents and durations.
func (c Config) Validate() error {
	var errs []error
	if c.InstanceCount < 0 || c.InstanceCount > MaxInstances {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig,
			"instance_count: must be in [0, %d] (got %d)", MaxInstances, c.InstanceCount))
	}
	for _, v := range c.Extent.Array() {
		if err := errors.ValidateRange("extent", 0, v); err != nil {
			errs = append(errs, err)
			break
		}
	}
	for _, v := range c.Scale.Array() {
		if err := errors.ValidateRange("scale", 0, v); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if !c.Transition.Valid() {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "transition: durations must be non-negative"))
	}
	return errors.Join(errs...)
}

// Job evaluates scatter transforms for one frame.
type Job struct {
	Config Config
	Parent xform.Affine
	Time   float32
}

// Evaluate returns the transform of instance index.
//
// The index stream yields the fade delay first and then the position. The
// instance grows upward out of its base plane while fading in and sinks back
// while fading out; its scale is Scale * (fadeIn - fadeOut), which is zero or
// negative before birth and after death.
func (j Job) Evaluate(index int) xform.Local {
	cfg := j.Config
	s := random.Derive(cfg.Seed, uint32(index))

	in, out := cfg.Transition.FadeInOut(j.Time, s.UNorm())

	pos := s.Float3().AddScalar(-0.5).Mul(cfg.Extent)
	pos.Y += cfg.Scale.Y * (in + out - 1)

	return xform.Local{
		Position: j.Parent.TransformPoint(pos),
		Rotation: j.Parent.Rotation,
		Scale:    cfg.Scale.Scale(in - out).Mul(j.Parent.Scale),
	}
}

// Run schedules Evaluate for the first min(len(target), InstanceCount)
// slots of target.
func (j Job) Run(s *jobs.Scheduler, target []xform.Local) *jobs.Handle {
	n := min(len(target), max(j.Config.InstanceCount, 0))
	return s.For(n, func(i int) {
		target[i] = j.Evaluate(i)
	})
}
