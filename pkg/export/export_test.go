package export

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/pool"
	"github.com/matzehuels/stacksketch/pkg/renderer"
	"github.com/matzehuels/stacksketch/pkg/scatter"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

func TestFrameRoundTrip(t *testing.T) {
	cfg := scatter.DefaultConfig()
	cfg.InstanceCount = 25
	l, err := layout.NewScatter(cfg, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	r, err := renderer.New(l, []string{"rock", "log"}, []string{"moss"}, renderer.Options{Layer: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	f, err := r.Update(context.Background(), 1.5, xform.Identity())
	if err != nil {
		t.Fatal(err)
	}
	out := NewFrame(f, l.Seed(), r.Instances())
	out.Renderer = r.ID

	var buf bytes.Buffer
	if err := WriteFrame(&buf, out); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !reflect.DeepEqual(got, out) {
		t.Errorf("round trip changed the frame")
	}
	if got.Count != 25 || got.Time != 1.5 || got.Number != 1 {
		t.Errorf("header = %+v", got)
	}
	for _, in := range got.Instances {
		if in.Layer != 4 || in.Material != "moss" {
			t.Fatalf("instance %+v", in)
		}
		if in.Mesh != "rock" && in.Mesh != "log" {
			t.Fatalf("mesh %q not from the candidate list", in.Mesh)
		}
	}
}

func TestNewFrameFormatsNonStringResources(t *testing.T) {
	inst := []pool.Instance[int, int]{{Index: 0, Mesh: 7, Material: 3, Transform: xform.Local{Scale: xform.Splat(1)}}}
	f := NewFrame(renderer.Frame{Number: 2}, 9, inst)
	if f.Instances[0].Mesh != "7" || f.Instances[0].Material != "3" {
		t.Errorf("instance = %+v", f.Instances[0])
	}
	if !f.Instances[0].Visible() {
		t.Error("unit scale instance should be visible")
	}
}

func TestElementsRoundTrip(t *testing.T) {
	cfg := stack.DefaultConfig()
	elems, err := stack.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "elements.json")
	if err := ExportElements(path, NewElements(cfg.Seed, elems)); err != nil {
		t.Fatalf("ExportElements: %v", err)
	}
	got, err := ImportElements(path)
	if err != nil {
		t.Fatalf("ImportElements: %v", err)
	}
	if !reflect.DeepEqual(got.Stack(), elems) {
		t.Error("decoded elements differ from the build")
	}
	lo, hi := stack.Bounds(elems)
	if got.Bounds == nil || got.Bounds.Min != lo.Array() || got.Bounds.Max != hi.Array() {
		t.Errorf("Bounds = %+v", got.Bounds)
	}
}

func TestNewElementsEmpty(t *testing.T) {
	e := NewElements(1, nil)
	if e.Bounds != nil || e.Count != 0 || e.Elements == nil {
		t.Errorf("NewElements(nil) = %+v", e)
	}
	var buf bytes.Buffer
	if err := WriteElements(&buf, e); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"elements": []`) {
		t.Errorf("empty build should encode an empty array:\n%s", buf.String())
	}
}

func TestReadRejectsCountMismatch(t *testing.T) {
	tests := []struct {
		name string
		read func(string) error
		doc  string
	}{
		{"frame", func(s string) error { _, err := ReadFrame(strings.NewReader(s)); return err },
			`{"count": 2, "instances": [{"index": 0}]}`},
		{"elements", func(s string) error { _, err := ReadElements(strings.NewReader(s)); return err },
			`{"count": 0, "elements": [{"position": [0,0,0], "size": [1,1,1]}]}`},
		{"malformed", func(s string) error { _, err := ReadFrame(strings.NewReader(s)); return err },
			`{"count": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(tt.doc); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
