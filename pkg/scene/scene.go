// Package scene loads layout scenes from TOML files.
//
// A scene names the generator kind, its configuration, the parent placement
// and the candidate meshes and materials handed to the instance pool:
//
//	name = "tower"
//	kind = "stack"
//	meshes = ["cube"]
//	materials = ["concrete", "glass"]
//
//	[parent]
//	position = [0, 0, 0]
//	rotation = [0, 45, 0]   # euler degrees
//	scale = [1, 1, 1]
//
//	[stack]
//	seed = 1
//	depth = [4, 8]
//	height = [0.2, 0.4, 2]
//	cutoff = 0.01
//
// Every omitted key keeps its default from [stack.DefaultConfig] or
// [scatter.DefaultConfig]. Unknown keys are rejected.
package scene

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/scatter"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Scene is a decoded, validated scene file.
type Scene struct {
	Name      string
	Kind      string
	Meshes    []string
	Materials []string
	Layer     int

	// Parent places every instance. Rotation is kept in Euler degrees
	// alongside the quaternion so scenes re-encode as written.
	Parent      xform.Affine
	ParentEuler xform.Float3

	Stack   stack.Config
	Scatter scatter.Config
}

// Default returns a scene of the given kind with stock configuration.
func Default(kind string) *Scene {
	return &Scene{
		Name:      kind,
		Kind:      kind,
		Meshes:    []string{"cube"},
		Materials: []string{"default"},
		Parent:    xform.Identity(),
		Stack:     stack.DefaultConfig(),
		Scatter:   scatter.DefaultConfig(),
	}
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scene %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and validates scene TOML.
func Parse(data []byte) (*Scene, error) {
	f := newFile(Default(layout.KindStack))
	f.Name = ""

	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene keys: %s", strings.Join(keys, ", "))
	}

	s, err := f.scene()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the kind, resource lists and the active configuration.
func (s *Scene) Validate() error {
	var errs []error
	switch s.Kind {
	case layout.KindStack:
		if err := s.Stack.Validate(); err != nil {
			errs = append(errs, err)
		}
	case layout.KindScatter:
		if err := s.Scatter.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, errors.New(errors.ErrCodeInvalidScene, "kind must be %q or %q (got %q)",
			layout.KindStack, layout.KindScatter, s.Kind))
	}
	if len(s.Meshes) == 0 {
		errs = append(errs, errors.New(errors.ErrCodeEmptyResource, "meshes: at least one mesh is required"))
	}
	if len(s.Materials) == 0 {
		errs = append(errs, errors.New(errors.ErrCodeEmptyResource, "materials: at least one material is required"))
	}
	for _, v := range s.Parent.Scale.Array() {
		if err := errors.ValidatePositive("parent.scale", v); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errors.Join(errs...)
}

// NewLayouter builds the layouter for the scene's kind.
func (s *Scene) NewLayouter(opts layout.Options) (layout.Layouter, error) {
	switch s.Kind {
	case layout.KindStack:
		l, err := layout.NewStack(s.Stack, opts)
		if err != nil {
			return nil, err
		}
		return l, nil
	case layout.KindScatter:
		l, err := layout.NewScatter(s.Scatter, opts)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported layout kind %q", s.Kind)
}

// Encode writes the scene as TOML. Only the active generator table is written.
func (s *Scene) Encode(w io.Writer) error {
	f := newFile(s)
	out := output{header: f.header}
	switch s.Kind {
	case layout.KindStack:
		out.Stack = &f.Stack
	case layout.KindScatter:
		out.Scatter = &f.Scatter
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	_, err := w.Write(buf.Bytes())
	return err
}
