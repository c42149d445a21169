package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chewxy/math32"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/scatter"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

func TestParseKeepsDefaults(t *testing.T) {
	s, err := Parse([]byte(`
kind = "stack"
meshes = ["cube", "slab"]
materials = ["concrete"]

[stack]
seed = 7
depth = [2, 3]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := stack.DefaultConfig()
	want.Seed = 7
	want.Depth = xform.I2(2, 3)
	if !reflect.DeepEqual(s.Stack, want) {
		t.Errorf("Stack = %+v\nwant %+v", s.Stack, want)
	}
	if !reflect.DeepEqual(s.Scatter, scatter.DefaultConfig()) {
		t.Errorf("Scatter = %+v, want defaults", s.Scatter)
	}
	if s.Parent != xform.Identity() {
		t.Errorf("Parent = %+v, want identity", s.Parent)
	}
	if len(s.Meshes) != 2 || s.Materials[0] != "concrete" {
		t.Errorf("resources = %v %v", s.Meshes, s.Materials)
	}
}

func TestParseInfiniteCutoff(t *testing.T) {
	s, err := Parse([]byte(`
kind = "stack"
meshes = ["cube"]
materials = ["m"]

[stack]
cutoff = inf
root_grid = [2, 3]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !math32.IsInf(s.Stack.Cutoff, 1) {
		t.Errorf("Cutoff = %g, want +Inf", s.Stack.Cutoff)
	}
	elems, err := stack.Build(s.Stack)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 6 {
		t.Errorf("got %d elements, want one per root cell", len(elems))
	}
}

func TestParseScatter(t *testing.T) {
	s, err := Parse([]byte(`
kind = "scatter"
meshes = ["rock"]
materials = ["moss"]

[parent]
position = [1, 2, 3]
rotation = [0, 90, 0]
scale = [2, 2, 2]

[scatter]
instance_count = 500
extent = [10, 0, 10]

[scatter.transition]
in = 0.5
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Scatter.InstanceCount != 500 || s.Scatter.Extent != xform.F3(10, 0, 10) {
		t.Errorf("Scatter = %+v", s.Scatter)
	}
	if s.Scatter.Transition.In != 0.5 || s.Scatter.Transition.Out != 2 {
		t.Errorf("Transition = %+v, want in overridden and out default", s.Scatter.Transition)
	}
	if s.Parent.Position != xform.F3(1, 2, 3) || s.Parent.Scale != xform.Splat(2) {
		t.Errorf("Parent = %+v", s.Parent)
	}
	if s.ParentEuler != xform.F3(0, 90, 0) {
		t.Errorf("ParentEuler = %v", s.ParentEuler)
	}
	got := s.Parent.Rotation.Rotate(xform.F3(1, 0, 0))
	if math32.Abs(got.Z+1) > 1e-5 && math32.Abs(got.Z-1) > 1e-5 {
		t.Errorf("90 degree yaw moved x axis to %v", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"syntax", `kind = `, errors.ErrCodeInvalidScene},
		{"unknown key", "kind = \"stack\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\ncolour = 1", errors.ErrCodeInvalidScene},
		{"unknown nested key", "kind = \"stack\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\n[stack]\nlevels = 3", errors.ErrCodeInvalidScene},
		{"bad kind", "kind = \"spiral\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]", errors.ErrCodeInvalidScene},
		{"no meshes", "kind = \"stack\"\nmeshes = []\nmaterials = [\"b\"]", errors.ErrCodeEmptyResource},
		{"no materials", "kind = \"scatter\"\nmeshes = [\"a\"]\nmaterials = []", errors.ErrCodeEmptyResource},
		{"short vector", "kind = \"stack\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\n[stack]\nheight = [1, 2]", errors.ErrCodeInvalidScene},
		{"bad config", "kind = \"stack\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\n[stack]\ndepth = [5, 2]", errors.ErrCodeInvalidConfig},
		{"flat parent", "kind = \"stack\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\n[parent]\nscale = [1, 0, 1]", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, kind := range []string{layout.KindStack, layout.KindScatter} {
		t.Run(kind, func(t *testing.T) {
			s := Default(kind)
			s.Layer = 3
			s.ParentEuler = xform.F3(10, 20, 30)
			s.Parent = xform.NewAffine(xform.F3(1, 0, -1), xform.EulerDegrees(10, 20, 30), xform.F3(1, 2, 1))
			s.Stack.Cutoff = math32.Inf(1)
			s.Stack.Height = xform.F3(0.1, 0.3, 1.5)
			s.Scatter.InstanceCount = 42

			var buf bytes.Buffer
			if err := s.Encode(&buf); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			other := layout.KindScatter
			if kind == layout.KindScatter {
				other = layout.KindStack
			}
			if strings.Contains(buf.String(), "["+other+"]") {
				t.Errorf("inactive table %q written:\n%s", other, buf.String())
			}

			got, err := Parse(buf.Bytes())
			if err != nil {
				t.Fatalf("Parse(Encode()): %v\n%s", err, buf.String())
			}
			if got.Name != s.Name || got.Layer != 3 || got.Parent != s.Parent || got.ParentEuler != s.ParentEuler {
				t.Errorf("header changed: %+v", got)
			}
			switch kind {
			case layout.KindStack:
				if !reflect.DeepEqual(got.Stack, s.Stack) {
					t.Errorf("Stack = %+v\nwant %+v", got.Stack, s.Stack)
				}
			case layout.KindScatter:
				if !reflect.DeepEqual(got.Scatter, s.Scatter) {
					t.Errorf("Scatter = %+v\nwant %+v", got.Scatter, s.Scatter)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plaza.toml")
	if err := os.WriteFile(path, []byte("kind = \"scatter\"\nmeshes = [\"a\"]\nmaterials = [\"b\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "plaza" {
		t.Errorf("Name = %q, want file basename", s.Name)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestNewLayouter(t *testing.T) {
	for _, kind := range []string{layout.KindStack, layout.KindScatter} {
		l, err := Default(kind).NewLayouter(layout.Options{})
		if err != nil {
			t.Fatalf("NewLayouter(%s): %v", kind, err)
		}
		if l.Kind() != kind {
			t.Errorf("Kind() = %q, want %q", l.Kind(), kind)
		}
	}

	s := Default("spiral")
	if _, err := s.NewLayouter(layout.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("NewLayouter(spiral) error = %v, want UNSUPPORTED", err)
	}
}
