package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stacksketch/pkg/pool"
	"github.com/matzehuels/stacksketch/pkg/renderer"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Frame is the exported form of one renderer update.
type Frame struct {
	Renderer  string     `json:"renderer,omitempty"`
	Scene     string     `json:"scene,omitempty"`
	Number    int        `json:"frame"`
	Time      float32    `json:"time"`
	Seed      uint32     `json:"seed"`
	Count     int        `json:"count"`
	Instances []Instance `json:"instances"`
}

// Instance is one exported pool entry.
type Instance struct {
	Index         int        `json:"index"`
	Mesh          string     `json:"mesh"`
	MeshIndex     int        `json:"mesh_index"`
	Material      string     `json:"material"`
	MaterialIndex int        `json:"material_index"`
	Layer         int        `json:"layer"`
	Position      [3]float32 `json:"position"`
	Rotation      [4]float32 `json:"rotation"`
	Scale         [3]float32 `json:"scale"`
}

// Visible reports whether the instance has a positive scale on every axis.
func (i Instance) Visible() bool {
	return i.Scale[0] > 0 && i.Scale[1] > 0 && i.Scale[2] > 0
}

// Elements is the exported form of a stack build.
type Elements struct {
	Scene    string    `json:"scene,omitempty"`
	Seed     uint32    `json:"seed"`
	Count    int       `json:"count"`
	Bounds   *Bounds   `json:"bounds,omitempty"`
	Elements []Element `json:"elements"`
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// Element is one exported stack box.
type Element struct {
	Position [3]float32 `json:"position"`
	Size     [3]float32 `json:"size"`
}

// NewFrame converts a renderer frame and its instance snapshot. Mesh and
// material values are rendered with fmt's %v verb.
func NewFrame[M, T comparable](f renderer.Frame, seed uint32, instances []pool.Instance[M, T]) Frame {
	out := Frame{
		Number:    f.Number,
		Time:      f.Time,
		Seed:      seed,
		Count:     len(instances),
		Instances: make([]Instance, len(instances)),
	}
	for i, in := range instances {
		out.Instances[i] = Instance{
			Index:         in.Index,
			Mesh:          fmt.Sprint(in.Mesh),
			MeshIndex:     in.MeshIndex,
			Material:      fmt.Sprint(in.Material),
			MaterialIndex: in.MaterialIndex,
			Layer:         in.Layer,
			Position:      in.Transform.Position.Array(),
			Rotation:      in.Transform.Rotation.Array(),
			Scale:         in.Transform.Scale.Array(),
		}
	}
	return out
}

// NewElements converts a stack build. Bounds is omitted for an empty build.
func NewElements(seed uint32, elements []stack.Element) Elements {
	out := Elements{
		Seed:     seed,
		Count:    len(elements),
		Elements: make([]Element, len(elements)),
	}
	for i, e := range elements {
		out.Elements[i] = Element{Position: e.Position.Array(), Size: e.Size.Array()}
	}
	if len(elements) > 0 {
		lo, hi := stack.Bounds(elements)
		out.Bounds = &Bounds{Min: lo.Array(), Max: hi.Array()}
	}
	return out
}

// Stack returns the decoded elements as builder values.
func (e Elements) Stack() []stack.Element {
	out := make([]stack.Element, len(e.Elements))
	for i, el := range e.Elements {
		out[i] = stack.Element{
			Position: xform.F3(el.Position[0], el.Position[1], el.Position[2]),
			Size:     xform.F3(el.Size[0], el.Size[1], el.Size[2]),
		}
	}
	return out
}

// WriteFrame encodes f as indented JSON.
func WriteFrame(w io.Writer, f Frame) error {
	return write(w, f)
}

// WriteElements encodes e as indented JSON.
func WriteElements(w io.Writer, e Elements) error {
	return write(w, e)
}

// ExportFrame writes f to a JSON file at path.
func ExportFrame(path string, f Frame) error {
	return export(path, f)
}

// ExportElements writes e to a JSON file at path.
func ExportElements(path string, e Elements) error {
	return export(path, e)
}

func write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func export(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
