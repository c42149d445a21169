package stack

import (
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/random"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Job evaluates element transforms for one frame. It holds only values and a
// read-only element slice, so any number of goroutines may call Evaluate.
type Job struct {
	Config   Config
	Elements []Element
	Parent   xform.Affine
	Time     float32
}

// Evaluate returns the transform of element index. Positions and sizes are
// swizzled into the Y-up convention and placed in parent space; rotation is
// the parent's. With Config.Animate set, each element fades in from its base
// after a per-index random delay and fades back out.
func (j Job) Evaluate(index int) xform.Local {
	e := j.Elements[index]
	pos := e.Position.XZY()
	size := e.Size.XZY()

	if j.Config.Animate {
		s := random.Derive(j.Config.Seed, uint32(index))
		in, out := j.Config.Transition.FadeInOut(j.Time, s.UNorm())
		pos.Y += size.Y * 0.5 * (in + out - 1)
		size = size.Scale(in - out)
	}

	return xform.Local{
		Position: j.Parent.TransformPoint(pos),
		Rotation: j.Parent.Rotation,
		Scale:    size.Mul(j.Parent.Scale),
	}
}

// Run schedules Evaluate over target. Only the first min(len(target),
// len(Elements)) slots are written.
func (j Job) Run(s *jobs.Scheduler, target []xform.Local) *jobs.Handle {
	n := min(len(target), len(j.Elements))
	return s.For(n, func(i int) {
		target[i] = j.Evaluate(i)
	})
}
