// Package vertex implements the vertex stage of a 2D rasterization pipeline.
//
// # Overview
//
// The stage maps one vertex (object-space position, texture coordinate,
// color) and one shared 4x4 transform to a clip-space position plus two
// interpolants for the fragment stage. It is a pure function: no state
// survives an invocation and no invocation sees another, so hosts may run
// it from any number of goroutines.
//
// # Quick Start
//
//	import "github.com/gogpu/vertex"
//
//	v := vertex.Vertex{
//	    Position: mgl32.Vec2{1, 2},
//	    TexCoord: mgl32.Vec2{0.5, 0.5},
//	    Color:    mgl32.Vec4{1, 0, 0, 1},
//	}
//	out := vertex.Stage(v, vertex.Identity())
//	// out.ClipPosition == (1, 2, 0, 1)
//
// Whole draw calls go through a Processor:
//
//	p := vertex.NewProcessor()
//	defer p.Close()
//
//	outs, err := p.Process(ctx, vertex.NewBatch(proj, vertices))
//
// # Architecture
//
//   - Stage: the per-vertex transform (Stage, Lift, Transform)
//   - Host side: Batch, Processor, DrawData and DrawParams
//   - Link contract: Layout, StageInputs, StageOutputs, LinkFragment
//   - Buffers: Layout codecs, VertexBuffer, IndexBuffer
//   - GPU: package gpu builds the same stage as a WGSL render pipeline
//
// # Coordinate System
//
// Positions are lifted to (x, y, 0, 1). Depth and perspective come only from
// the transform. Perspective divide and clipping are left to the rasterizer;
// Output.NDC is provided for CPU hosts.
//
// # Errors
//
// The stage itself cannot fail. Layout and interpolant mismatches are
// reported once, when a pipeline is built, as *LinkError values wrapping
// ErrLink.
package vertex

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
