package xform

import "github.com/chewxy/math32"

// Quat is a rotation quaternion (X, Y, Z vector part, W scalar part).
type Quat struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() Quat { return Quat{W: 1} }

// AxisAngle returns the rotation of angle radians about a unit axis.
func AxisAngle(axis Float3, angle float32) Quat {
	s, c := math32.Sincos(angle * 0.5)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// Euler returns the rotation for Euler angles in radians, applied in
// Z, then X, then Y order (the common Y-up engine convention).
func Euler(x, y, z float32) Quat {
	qx := AxisAngle(F3(1, 0, 0), x)
	qy := AxisAngle(F3(0, 1, 0), y)
	qz := AxisAngle(F3(0, 0, 1), z)
	return qy.Mul(qx).Mul(qz)
}

// EulerDegrees is Euler with angles in degrees.
func EulerDegrees(x, y, z float32) Quat {
	const k = math32.Pi / 180
	return Euler(x*k, y*k, z*k)
}

// Mul returns the Hamilton product q*o (apply o first, then q).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Float3) Float3 {
	u := Float3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Array returns the components as (x, y, z, w).
func (q Quat) Array() [4]float32 { return [4]float32{q.X, q.Y, q.Z, q.W} }

// Affine is a position + rotation + scale placement. Points are scaled,
// then rotated, then translated.
type Affine struct {
	Position Float3 `json:"position"`
	Rotation Quat   `json:"rotation"`
	Scale    Float3 `json:"scale"`
}

// Identity returns the identity placement.
func Identity() Affine {
	return Affine{Rotation: IdentityQuat(), Scale: Splat(1)}
}

// NewAffine returns a placement from its parts.
func NewAffine(position Float3, rotation Quat, scale Float3) Affine {
	return Affine{Position: position, Rotation: rotation, Scale: scale}
}

// TransformPoint maps a point from local space into the placement's space.
func (a Affine) TransformPoint(p Float3) Float3 {
	return a.Rotation.Rotate(p.Mul(a.Scale)).Add(a.Position)
}

// Local is the per-instance output of a transform evaluation.
type Local struct {
	Position Float3 `json:"position"`
	Rotation Quat   `json:"rotation"`
	Scale    Float3 `json:"scale"`
}
