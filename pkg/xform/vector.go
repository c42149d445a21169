// Package xform provides the small float32 vector, quaternion and affine
// types shared by the layout builders, evaluators and the instance pool.
//
// All types are plain values with JSON tags so configurations and frames can
// be serialized without adapters. Math is float32 throughout and delegates to
// github.com/chewxy/math32 for transcendental functions.
package xform

import "github.com/chewxy/math32"

// Float2 is a 2D float vector.
type Float2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// F2 returns a Float2.
func F2(x, y float32) Float2 { return Float2{x, y} }

func (v Float2) Add(o Float2) Float2        { return Float2{v.X + o.X, v.Y + o.Y} }
func (v Float2) Sub(o Float2) Float2        { return Float2{v.X - o.X, v.Y - o.Y} }
func (v Float2) Mul(o Float2) Float2        { return Float2{v.X * o.X, v.Y * o.Y} }
func (v Float2) Scale(s float32) Float2     { return Float2{v.X * s, v.Y * s} }
func (v Float2) SubScalar(s float32) Float2 { return Float2{v.X - s, v.Y - s} }

// Min returns the smaller component.
func (v Float2) Min() float32 { return math32.Min(v.X, v.Y) }

// Area returns X*Y.
func (v Float2) Area() float32 { return v.X * v.Y }

// Float3 is a 3D float vector.
type Float3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// F3 returns a Float3.
func F3(x, y, z float32) Float3 { return Float3{x, y, z} }

// Splat returns a Float3 with all components set to s.
func Splat(s float32) Float3 { return Float3{s, s, s} }

func (v Float3) Add(o Float3) Float3        { return Float3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Float3) Sub(o Float3) Float3        { return Float3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Float3) Mul(o Float3) Float3        { return Float3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Float3) Scale(s float32) Float3     { return Float3{v.X * s, v.Y * s, v.Z * s} }
func (v Float3) AddScalar(s float32) Float3 { return Float3{v.X + s, v.Y + s, v.Z + s} }

// Cross returns the cross product v × o.
func (v Float3) Cross(o Float3) Float3 {
	return Float3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Dot returns the dot product.
func (v Float3) Dot(o Float3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Length returns the Euclidean length.
func (v Float3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// XY drops the Z component.
func (v Float3) XY() Float2 { return Float2{v.X, v.Y} }

// XZY swaps the Y and Z axes. Builders work with an XY footprint and a Z
// stacking axis; the renderer convention is an XZ ground plane with Y up.
func (v Float3) XZY() Float3 { return Float3{v.X, v.Z, v.Y} }

// Array returns the components as a fixed array.
func (v Float3) Array() [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// Int2 is a 2D integer vector, also used for [lo, hi) ranges.
type Int2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// I2 returns an Int2.
func I2(x, y int) Int2 { return Int2{x, y} }

// Int3 is a 3D integer vector, used for (min, max, exponent) ranges.
type Int3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// I3 returns an Int3.
func I3(x, y, z int) Int3 { return Int3{x, y, z} }

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Saturate clamps x to [0, 1]. NaN maps to 0.
func Saturate(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
