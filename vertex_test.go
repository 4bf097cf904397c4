package vertex

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"
)

// assertVec4 compares each component within an absolute delta.
func assertVec4(t *testing.T, want, got mgl32.Vec4, delta float64, msgAndArgs ...any) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}

func sampleVertices() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec2{1, 2}, TexCoord: mgl32.Vec2{0.5, 0.5}, Color: mgl32.Vec4{1, 0, 0, 1}},
		{Position: mgl32.Vec2{0, 0}, TexCoord: mgl32.Vec2{0, 0}, Color: mgl32.Vec4{0, 0, 0, 0}},
		{Position: mgl32.Vec2{-3.25, 1e6}, TexCoord: mgl32.Vec2{1, 1}, Color: mgl32.Vec4{0.1, 0.2, 0.3, 0.4}},
		{Position: mgl32.Vec2{1280, 720}, TexCoord: mgl32.Vec2{-2, 7.5}, Color: mgl32.Vec4{2, -1, 300, -0.5}},
		{Position: mgl32.Vec2{1e-30, -1e-30}, TexCoord: mgl32.Vec2{0.25, 0.75}, Color: mgl32.Vec4{1, 1, 1, 1}},
	}
}

func sampleTransforms() []Transform {
	return []Transform{
		Identity(),
		Scale(2, 2, 1, 1),
		Translate(10, -20),
		Rotate(0.7),
		Ortho(0, 1280, 720, 0, 0, 1),
		{},
	}
}

func TestStageScenarioIdentity(t *testing.T) {
	v := Vertex{
		Position: mgl32.Vec2{1, 2},
		TexCoord: mgl32.Vec2{0.5, 0.5},
		Color:    mgl32.Vec4{1, 0, 0, 1},
	}

	out := Stage(v, Identity())

	assert.Equal(t, mgl32.Vec4{1, 2, 0, 1}, out.ClipPosition)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, out.Color)
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, out.TexCoord)
}

func TestStageScenarioScale(t *testing.T) {
	v := Vertex{Position: mgl32.Vec2{3, 4}}

	out := Stage(v, Scale(2, 2, 1, 1))

	assert.Equal(t, mgl32.Vec4{6, 8, 0, 1}, out.ClipPosition)
}

func TestStageIdentityLaw(t *testing.T) {
	for _, v := range sampleVertices() {
		out := Stage(v, Identity())
		assert.Equal(t, mgl32.Vec4{v.Position[0], v.Position[1], 0, 1}, out.ClipPosition, "vertex %+v", v)
	}
}

func TestStagePassthroughLaw(t *testing.T) {
	for _, tr := range sampleTransforms() {
		for _, v := range sampleVertices() {
			out := Stage(v, tr)
			assert.Equal(t, v.Color, out.Color)
			assert.Equal(t, v.TexCoord, out.TexCoord)
		}
	}
}

func TestStageLinearity(t *testing.T) {
	a := Compose(Translate(5, -3), Rotate(0.3))
	b := Ortho(0, 800, 600, 0, 0, 1)

	for _, v := range sampleVertices()[:2] {
		direct := Stage(v, b.Mul(a)).ClipPosition
		chained := b.Apply(Stage(v, a).ClipPosition)
		assertVec4(t, direct, chained, 1e-5, "direct %v, chained %v", direct, chained)
	}
}

func TestStageDeterministic(t *testing.T) {
	for _, tr := range sampleTransforms() {
		for _, v := range sampleVertices() {
			first := Stage(v, tr)
			for range 100 {
				require.Equal(t, first, Stage(v, tr))
			}
		}
	}
}

func TestStageNonPositiveW(t *testing.T) {
	// Fourth row (0, 0, 0, -1) makes w = -1 for every vertex.
	flip := FromRowMajor(f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	})

	out := Stage(Vertex{Position: mgl32.Vec2{3, 4}}, flip)
	assert.Equal(t, mgl32.Vec4{3, 4, 0, -1}, out.ClipPosition)

	out = Stage(Vertex{Position: mgl32.Vec2{3, 4}}, Transform{})
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 0}, out.ClipPosition)
}

func TestStageDoesNotAllocate(t *testing.T) {
	v := sampleVertices()[0]
	tr := Ortho(0, 100, 100, 0, 0, 1)

	allocs := testing.AllocsPerRun(100, func() {
		_ = Stage(v, tr)
	})
	assert.Zero(t, allocs)
}

func TestLift(t *testing.T) {
	assert.Equal(t, mgl32.Vec4{7, -2, 0, 1}, Lift(mgl32.Vec2{7, -2}))
}

func TestOutputNDC(t *testing.T) {
	tests := []struct {
		name string
		clip mgl32.Vec4
		want mgl32.Vec3
		ok   bool
	}{
		{"unit w", mgl32.Vec4{0.5, -0.5, 0, 1}, mgl32.Vec3{0.5, -0.5, 0}, true},
		{"w two", mgl32.Vec4{2, 4, 1, 2}, mgl32.Vec3{1, 2, 0.5}, true},
		{"zero w", mgl32.Vec4{1, 1, 1, 0}, mgl32.Vec3{}, false},
		{"negative w", mgl32.Vec4{1, 1, 1, -1}, mgl32.Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Output{ClipPosition: tt.clip}.NDC()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func BenchmarkStage(b *testing.B) {
	v := sampleVertices()[2]
	tr := Ortho(0, 1280, 720, 0, 0, 1)
	var sink Output
	b.ReportAllocs()
	for b.Loop() {
		sink = Stage(v, tr)
	}
	if math.IsNaN(float64(sink.ClipPosition[0])) {
		b.Fatal("NaN")
	}
}
