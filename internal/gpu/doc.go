//go:build !nogpu

// Package gpu runs the vertex stage on a GPU through gogpu/wgpu's HAL.
//
// The stage is a WGSL vertex shader (vs_main) that lifts each position to
// (x, y, 0, 1), multiplies it by a per-draw uniform matrix and forwards
// color and texture coordinate. A passthrough fragment shader (fs_main)
// exists so the render pipeline links.
//
// StagePipeline owns the shader module, bind group layout, pipeline layout
// and render pipeline. Each draw uploads its vertices and transform as
// FrameResources, records into a caller-owned render pass and is released
// afterwards:
//
//	p := gpu.NewStagePipeline(device, queue, vertex.PackedLayout(), format)
//	if err := p.Build(); err != nil { ... }
//	res, err := p.Upload(batch)
//	p.RecordDraw(rp, res)
//	p.Release(res)
//
// Build validates the vertex layout against the stage's inputs before any
// GPU object is created.
package gpu
