package stack

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/matzehuels/stacksketch/pkg/fade"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

func TestJobSwizzlesAxes(t *testing.T) {
	job := Job{
		Config: DefaultConfig(),
		Elements: []Element{
			{Position: xform.F3(1, 2, 3), Size: xform.F3(4, 5, 6)},
		},
		Parent: xform.Identity(),
	}

	got := job.Evaluate(0)
	if got.Position != xform.F3(1, 3, 2) {
		t.Errorf("Position = %v, want (1, 3, 2)", got.Position)
	}
	if got.Scale != xform.F3(4, 6, 5) {
		t.Errorf("Scale = %v, want (4, 6, 5)", got.Scale)
	}
	if got.Rotation != xform.IdentityQuat() {
		t.Errorf("Rotation = %v, want identity", got.Rotation)
	}
}

func TestJobAppliesParent(t *testing.T) {
	parent := xform.NewAffine(xform.F3(10, 0, -5), xform.IdentityQuat(), xform.Splat(2))
	job := Job{
		Config:   DefaultConfig(),
		Elements: []Element{{Position: xform.F3(1, 0, 0.5), Size: xform.F3(1, 1, 1)}},
		Parent:   parent,
	}

	got := job.Evaluate(0)
	if got.Position != xform.F3(12, 1, -5) {
		t.Errorf("Position = %v, want (12, 1, -5)", got.Position)
	}
	if got.Scale != xform.Splat(2) {
		t.Errorf("Scale = %v, want parent scale applied", got.Scale)
	}

	parent.Rotation = xform.EulerDegrees(0, 90, 0)
	job.Parent = parent
	if got := job.Evaluate(0); got.Rotation != parent.Rotation {
		t.Errorf("Rotation = %v, want parent rotation %v", got.Rotation, parent.Rotation)
	}
}

func TestJobAnimatedEnvelope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Animate = true
	cfg.Transition = fade.Transition{In: 1, Stay: 2, Out: 1}
	elems := []Element{{Position: xform.F3(0, 0, 0.5), Size: xform.F3(1, 1, 1)}}

	tests := []struct {
		name      string
		time      float32
		wantScale float32
		wantY     float32
	}{
		{"pre-roll", -10, 0, 0},
		{"start", 0, 0, 0},
		{"hold", 2, 1, 0.5},
		{"after", 10, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Job{Config: cfg, Elements: elems, Parent: xform.Identity(), Time: tt.time}
			got := job.Evaluate(0)
			if got.Scale.Y != tt.wantScale {
				t.Errorf("Scale.Y = %g, want %g", got.Scale.Y, tt.wantScale)
			}
			if math32.Abs(got.Position.Y-tt.wantY) > 1e-6 {
				t.Errorf("Position.Y = %g, want %g", got.Position.Y, tt.wantY)
			}
		})
	}
}

func TestJobSerialMatchesParallel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Animate = true
	elems, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	job := Job{
		Config:   cfg,
		Elements: elems,
		Parent:   xform.NewAffine(xform.F3(1, 2, 3), xform.EulerDegrees(10, 20, 30), xform.F3(1, 2, 0.5)),
		Time:     1.3,
	}

	serial := make([]xform.Local, len(elems))
	parallel := make([]xform.Local, len(elems))
	job.Run(jobs.Serial(), serial).Complete()
	job.Run(&jobs.Scheduler{Workers: 8, BatchSize: 3}, parallel).Complete()

	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("index %d: serial %v != parallel %v", i, serial[i], parallel[i])
		}
	}
}

func TestJobRunShortTarget(t *testing.T) {
	job := Job{
		Config:   DefaultConfig(),
		Elements: make([]Element, 10),
		Parent:   xform.Identity(),
	}
	target := make([]xform.Local, 4)
	h := job.Run(jobs.Default(), target)
	h.Complete()
	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}

	h = Job{Parent: xform.Identity()}.Run(jobs.Default(), target)
	if !h.Done() || h.Len() != 0 {
		t.Error("empty job should complete immediately")
	}
}
