package scene

import (
	"strconv"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/fade"
	"github.com/matzehuels/stacksketch/pkg/scatter"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// file mirrors the TOML layout. Vectors are arrays and scalars float64 so
// inf and nan decode without float32 range errors; conversion to the typed
// configs happens in scene().
//
// Both generator tables are values: the decoder fills them in place, so keys
// a scene omits keep the defaults newFile seeded.
type file struct {
	header
	Stack   stackTable   `toml:"stack"`
	Scatter scatterTable `toml:"scatter"`
}

type header struct {
	Name      string         `toml:"name,omitempty"`
	Kind      string         `toml:"kind"`
	Meshes    []string       `toml:"meshes"`
	Materials []string       `toml:"materials"`
	Layer     int            `toml:"layer"`
	Parent    placementTable `toml:"parent"`
}

// output is the encoded form; the inactive generator table stays nil.
type output struct {
	header
	Stack   *stackTable   `toml:"stack,omitempty"`
	Scatter *scatterTable `toml:"scatter,omitempty"`
}

type placementTable struct {
	Position []float64 `toml:"position"`
	Rotation []float64 `toml:"rotation"`
	Scale    []float64 `toml:"scale"`
}

type stackTable struct {
	Seed         uint32          `toml:"seed"`
	Depth        []int           `toml:"depth"`
	Height       []float64       `toml:"height"`
	Margin       []float64       `toml:"margin"`
	Cutoff       float64         `toml:"cutoff"`
	Decimation   float64         `toml:"decimation"`
	UniformSplit float64         `toml:"uniform_split"`
	Subdivision  []int           `toml:"subdivision"`
	RootGrid     []int           `toml:"root_grid"`
	CellExtent   float64         `toml:"cell_extent"`
	Animate      bool            `toml:"animate"`
	Transition   fade.Transition `toml:"transition"`
}

type scatterTable struct {
	Seed          uint32          `toml:"seed"`
	InstanceCount int             `toml:"instance_count"`
	Extent        []float64       `toml:"extent"`
	Scale         []float64       `toml:"scale"`
	Transition    fade.Transition `toml:"transition"`
}

func newFile(s *Scene) file {
	c, sc := s.Stack, s.Scatter
	return file{
		header: header{
			Name:      s.Name,
			Kind:      s.Kind,
			Meshes:    s.Meshes,
			Materials: s.Materials,
			Layer:     s.Layer,
			Parent: placementTable{
				Position: vec3(s.Parent.Position),
				Rotation: vec3(s.ParentEuler),
				Scale:    vec3(s.Parent.Scale),
			},
		},
		Stack: stackTable{
			Seed:         c.Seed,
			Depth:        []int{c.Depth.X, c.Depth.Y},
			Height:       vec3(c.Height),
			Margin:       vec3(c.Margin),
			Cutoff:       f64(c.Cutoff),
			Decimation:   f64(c.Decimation),
			UniformSplit: f64(c.UniformSplit),
			Subdivision:  []int{c.Subdivision.X, c.Subdivision.Y, c.Subdivision.Z},
			RootGrid:     []int{c.RootGrid.X, c.RootGrid.Y},
			CellExtent:   f64(c.CellExtent),
			Animate:      c.Animate,
			Transition:   c.Transition,
		},
		Scatter: scatterTable{
			Seed:          sc.Seed,
			InstanceCount: sc.InstanceCount,
			Extent:        vec3(sc.Extent),
			Scale:         vec3(sc.Scale),
			Transition:    sc.Transition,
		},
	}
}

func (f file) scene() (*Scene, error) {
	s := &Scene{
		Name:      f.Name,
		Kind:      f.Kind,
		Meshes:    f.Meshes,
		Materials: f.Materials,
		Layer:     f.Layer,
	}
	var err error
	var pos, euler, scale xform.Float3
	if pos, err = toFloat3("parent.position", f.Parent.Position); err != nil {
		return nil, err
	}
	if euler, err = toFloat3("parent.rotation", f.Parent.Rotation); err != nil {
		return nil, err
	}
	if scale, err = toFloat3("parent.scale", f.Parent.Scale); err != nil {
		return nil, err
	}
	s.ParentEuler = euler
	s.Parent = xform.NewAffine(pos, xform.EulerDegrees(euler.X, euler.Y, euler.Z), scale)

	if s.Stack, err = f.Stack.config(); err != nil {
		return nil, err
	}
	if s.Scatter, err = f.Scatter.config(); err != nil {
		return nil, err
	}
	return s, nil
}

func (t *stackTable) config() (stack.Config, error) {
	c := stack.Config{
		Seed:         t.Seed,
		Cutoff:       float32(t.Cutoff),
		Decimation:   float32(t.Decimation),
		UniformSplit: float32(t.UniformSplit),
		CellExtent:   float32(t.CellExtent),
		Animate:      t.Animate,
		Transition:   t.Transition,
	}
	var err error
	if c.Depth, err = toInt2("stack.depth", t.Depth); err != nil {
		return c, err
	}
	if c.Height, err = toFloat3("stack.height", t.Height); err != nil {
		return c, err
	}
	if c.Margin, err = toFloat3("stack.margin", t.Margin); err != nil {
		return c, err
	}
	if c.Subdivision, err = toInt3("stack.subdivision", t.Subdivision); err != nil {
		return c, err
	}
	if c.RootGrid, err = toInt2("stack.root_grid", t.RootGrid); err != nil {
		return c, err
	}
	return c, nil
}

func (t *scatterTable) config() (scatter.Config, error) {
	c := scatter.Config{
		Seed:          t.Seed,
		InstanceCount: t.InstanceCount,
		Transition:    t.Transition,
	}
	var err error
	if c.Extent, err = toFloat3("scatter.extent", t.Extent); err != nil {
		return c, err
	}
	if c.Scale, err = toFloat3("scatter.scale", t.Scale); err != nil {
		return c, err
	}
	return c, nil
}

func toFloat3(key string, v []float64) (xform.Float3, error) {
	if len(v) != 3 {
		return xform.Float3{}, errors.New(errors.ErrCodeInvalidScene, "%s: want 3 values, got %d", key, len(v))
	}
	return xform.F3(float32(v[0]), float32(v[1]), float32(v[2])), nil
}

func toInt2(key string, v []int) (xform.Int2, error) {
	if len(v) != 2 {
		return xform.Int2{}, errors.New(errors.ErrCodeInvalidScene, "%s: want 2 values, got %d", key, len(v))
	}
	return xform.I2(v[0], v[1]), nil
}

func toInt3(key string, v []int) (xform.Int3, error) {
	if len(v) != 3 {
		return xform.Int3{}, errors.New(errors.ErrCodeInvalidScene, "%s: want 3 values, got %d", key, len(v))
	}
	return xform.I3(v[0], v[1], v[2]), nil
}

func vec3(v xform.Float3) []float64 {
	return []float64{f64(v.X), f64(v.Y), f64(v.Z)}
}

// f64 widens v to the shortest float64 that prints like v, so 0.01 encodes
// as 0.01 rather than 0.009999999776482582.
func f64(v float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
	if err != nil {
		return float64(v)
	}
	return f
}
