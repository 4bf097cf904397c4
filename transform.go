package vertex

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"
)

// TransformSize is the byte size of a Transform uploaded as a uniform.
const TransformSize = 64

// Transform is a 4x4 homogeneous matrix shared by every vertex of a draw call.
// It usually holds model, view and projection already composed by the host.
//
// Storage is column-major, the same order as mgl32.Mat4 and a WGSL
// mat4x4<f32> uniform. The zero value is the all-zero matrix.
type Transform mgl32.Mat4

// Identity returns the identity transform.
func Identity() Transform {
	return Transform(mgl32.Ident4())
}

// Scale returns the diagonal transform diag(sx, sy, sz, sw).
func Scale(sx, sy, sz, sw float32) Transform {
	return Transform(mgl32.Diag4(mgl32.Vec4{sx, sy, sz, sw}))
}

// Translate returns a transform that moves points by (tx, ty).
func Translate(tx, ty float32) Transform {
	return Transform(mgl32.Translate3D(tx, ty, 0))
}

// Rotate returns a rotation about the z axis (angle in radians).
func Rotate(angle float32) Transform {
	return Transform(mgl32.HomogRotate3DZ(angle))
}

// FromMat4 wraps an mgl32 matrix.
func FromMat4(m mgl32.Mat4) Transform {
	return Transform(m)
}

// Mat4 returns the transform as an mgl32 matrix.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Mat4(t)
}

// Ortho returns an OpenGL orthographic projection.
//
//	// left, right, bottom, top, near, far
//	proj := vertex.Ortho(0, 1280, 0, 720, 0, 1)
//
// The y axis goes up. Swap bottom and top for a y-down screen space:
//
//	proj := vertex.Ortho(0, 1280, 720, 0, 0, 1)
//
// Entries are computed in float64 and narrowed. The z translation is
// near/(near-far); z is zero for 2D input, so it only matters to 3D hosts.
// Equal left/right, bottom/top or near/far yield non-finite entries.
func Ortho(left, right, bottom, top, near, far float32) Transform {
	l, r := float64(left), float64(right)
	b, tp := float64(bottom), float64(top)
	n, f := float64(near), float64(far)

	return Transform{
		float32(2 / (r - l)), 0, 0, 0,
		0, float32(2 / (tp - b)), 0, 0,
		0, 0, float32(-2 / (f - n)), 0,
		float32(-(r + l) / (r - l)), float32(-(tp + b) / (tp - b)), float32(n / (n - f)), 1,
	}
}

// Mul returns t * other. Applied to a point, other acts first.
func (t Transform) Mul(other Transform) Transform {
	return Transform(mgl32.Mat4(t).Mul4(mgl32.Mat4(other)))
}

// Compose multiplies the transforms left to right, so the last one is
// applied to a point first. Compose() is the identity.
func Compose(ts ...Transform) Transform {
	out := Identity()
	for _, t := range ts {
		out = out.Mul(t)
	}
	return out
}

// Apply multiplies a homogeneous point by t.
func (t Transform) Apply(p mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Mat4(t).Mul4x1(p)
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// FromRowMajor converts a row-major matrix into a Transform.
func FromRowMajor(m f32.Mat4) Transform {
	var t Transform
	for row := range 4 {
		for col := range 4 {
			t[col*4+row] = m[row*4+col]
		}
	}
	return t
}

// RowMajor returns t in row-major order.
func (t Transform) RowMajor() f32.Mat4 {
	var m f32.Mat4
	for row := range 4 {
		for col := range 4 {
			m[row*4+col] = t[col*4+row]
		}
	}
	return m
}

// AppendBytes appends the 64-byte little-endian, column-major uniform
// payload of t to dst.
func (t Transform) AppendBytes(dst []byte) []byte {
	for _, v := range t {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
