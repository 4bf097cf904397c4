package vertex

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one input record of a draw call.
//
// Attributes map to fixed shader locations:
//
//	location 0: Position (2 floats, object space)
//	location 1: TexCoord (2 floats, nominally [0,1]x[0,1])
//	location 2: Color    (4 floats, nominally [0,1] each)
//
// Values outside the nominal ranges are legal and pass through untouched.
type Vertex struct {
	Position mgl32.Vec2
	TexCoord mgl32.Vec2
	Color    mgl32.Vec4
}

// Output is what the stage produces for one vertex.
//
// ClipPosition is the homogeneous clip-space coordinate consumed by the
// rasterizer. Color and TexCoord are the interpolants handed to the fragment
// stage.
type Output struct {
	ClipPosition mgl32.Vec4
	Color        mgl32.Vec4
	TexCoord     mgl32.Vec2
}

// Stage transforms a single vertex.
//
// The position is lifted to (x, y, 0, 1) and multiplied by t. Color and
// texture coordinate are copied unchanged. A non-positive w is emitted as is;
// perspective divide and clipping happen downstream.
//
// Stage has no state and does not allocate, so it may be called from any
// number of goroutines at once.
func Stage(v Vertex, t Transform) Output {
	return Output{
		ClipPosition: mgl32.Mat4(t).Mul4x1(Lift(v.Position)),
		Color:        v.Color,
		TexCoord:     v.TexCoord,
	}
}

// Lift returns the homogeneous form (x, y, 0, 1) of a 2D object-space position.
func Lift(p mgl32.Vec2) mgl32.Vec4 {
	return mgl32.Vec4{p[0], p[1], 0, 1}
}

// NDC performs the perspective divide on the clip position.
// It reports false when w <= 0, in which case the point lies behind the
// projection and a rasterizer would clip it.
//
// Stage never calls NDC; it exists for hosts that rasterize on the CPU.
func (o Output) NDC() (mgl32.Vec3, bool) {
	w := o.ClipPosition[3]
	if w <= 0 {
		return mgl32.Vec3{}, false
	}
	inv := 1 / w
	return mgl32.Vec3{
		o.ClipPosition[0] * inv,
		o.ClipPosition[1] * inv,
		o.ClipPosition[2] * inv,
	}, true
}
