//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vertex"
)

// ErrNotBuilt is returned when a pipeline is used before Build.
var ErrNotBuilt = errors.New("gpu: pipeline not built")

// StagePipeline runs the vertex stage on the GPU. It owns the shader module,
// the uniform bind group layout, the pipeline layout and the render pipeline.
//
// The pipeline is not safe for concurrent use. Per-frame buffers are handed
// out as FrameResources and released with Release.
type StagePipeline struct {
	device hal.Device
	queue  hal.Queue
	layout vertex.Layout
	format gputypes.TextureFormat

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
}

// FrameResources holds the buffers and bind group of one uploaded draw.
type FrameResources struct {
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	vertCount  uint32
	indexCount uint32
}

// VertexCount returns the number of uploaded vertices.
func (r *FrameResources) VertexCount() uint32 { return r.vertCount }

// IndexCount returns the number of uploaded indices. Zero means the draw is
// not indexed.
func (r *FrameResources) IndexCount() uint32 { return r.indexCount }

// NewStagePipeline creates a pipeline for vertices stored with layout and
// rendered into targets of the given format. GPU objects are not created
// until Build is called.
func NewStagePipeline(device hal.Device, queue hal.Queue, layout vertex.Layout, format gputypes.TextureFormat) *StagePipeline {
	return &StagePipeline{
		device: device,
		queue:  queue,
		layout: layout,
		format: format,
	}
}

// Layout returns the vertex layout the pipeline reads.
func (p *StagePipeline) Layout() vertex.Layout { return p.layout }

// Built reports whether Build has succeeded.
func (p *StagePipeline) Built() bool { return p.pipeline != nil }

// Build checks the vertex layout and fragment inputs against the stage
// interface and creates the GPU objects. A contract violation is reported
// here, before anything is created, as an error wrapping vertex.ErrLink.
// Build is a no-op once it has succeeded.
func (p *StagePipeline) Build() error {
	if p.pipeline != nil {
		return nil
	}
	if err := p.layout.Validate(); err != nil {
		return fmt.Errorf("vertex layout: %w", err)
	}
	if err := vertex.LinkFragment(fragmentInputs); err != nil {
		return fmt.Errorf("fragment inputs: %w", err)
	}
	if err := p.createPipeline(); err != nil {
		p.destroyPipeline()
		return err
	}
	slogger().Debug("gpu: stage pipeline built",
		"stride", p.layout.Stride,
		"format", p.format,
	)
	return nil
}

func (p *StagePipeline) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "vertex_stage_shader",
		Source: hal.ShaderSource{WGSL: stageShaderSource},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompile, err)
	}
	p.shader = shader

	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "vertex_stage_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "vertex_stage_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "vertex_stage_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: vertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{p.layout.BufferLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// Upload encodes the vertices and transform of b into GPU buffers.
// An empty batch yields nil resources and no error.
func (p *StagePipeline) Upload(b *vertex.Batch) (*FrameResources, error) {
	if b == nil || b.Len() == 0 {
		return nil, nil
	}
	return p.upload(b.Transform, b.Vertices, nil)
}

// UploadList uploads one draw list with its indices under transform t,
// usually DrawData.Projection.
func (p *StagePipeline) UploadList(t vertex.Transform, list *vertex.DrawList) (*FrameResources, error) {
	if list == nil || len(list.Vertices) == 0 {
		return nil, nil
	}
	return p.upload(t, list.Vertices, list.Indices)
}

func (p *StagePipeline) upload(t vertex.Transform, vs []vertex.Vertex, indices []uint16) (*FrameResources, error) {
	if p.pipeline == nil {
		return nil, ErrNotBuilt
	}

	vertData, err := p.layout.AppendVertices(nil, vs)
	if err != nil {
		return nil, fmt.Errorf("encode vertices: %w", err)
	}

	res := &FrameResources{vertCount: uint32(len(vs))} //nolint:gosec // vertex count fits uint32
	ok := false
	defer func() {
		if !ok {
			p.Release(res)
		}
	}()

	res.vertBuf, err = p.createAndUploadBuffer("vertex_stage_verts", vertData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	if len(indices) > 0 {
		res.idxBuf, err = p.createAndUploadBuffer("vertex_stage_indices", indexBytes(indices),
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, fmt.Errorf("create index buffer: %w", err)
		}
		res.indexCount = uint32(len(indices)) //nolint:gosec // index count fits uint32
	}

	res.uniformBuf, err = p.createAndUploadBuffer("vertex_stage_uniform", t.AppendBytes(nil),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}

	res.bindGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "vertex_stage_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: res.uniformBuf.NativeHandle(), Offset: 0, Size: vertex.TransformSize,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	ok = true
	return res, nil
}

// indexBytes encodes indices little-endian, padded to a 4-byte multiple as
// buffer writes require.
func indexBytes(indices []uint16) []byte {
	out := make([]byte, 0, (len(indices)*2+3)&^3)
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

func (p *StagePipeline) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	p.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// RecordDraw draws every uploaded vertex, indexed when indices were uploaded.
// Nil resources record nothing.
func (p *StagePipeline) RecordDraw(rp hal.RenderPassEncoder, res *FrameResources) {
	if res == nil || p.pipeline == nil {
		return
	}
	p.bind(rp, res)
	if res.idxBuf != nil {
		rp.DrawIndexed(res.indexCount, 1, 0, 0, 0)
		return
	}
	rp.Draw(res.vertCount, 1, 0, 0)
}

// scissorSetter is implemented by render pass encoders that support
// scissor rectangles.
type scissorSetter interface {
	SetScissorRect(x, y, width, height uint32)
}

// RecordDrawParams issues one indexed draw per entry of draws. The
// resources must come from UploadList for the same draw list. When the
// render pass supports it, each draw sets its scissor rectangle first.
//
// Scissor rectangles are given with a bottom-left origin; framebufferHeight
// converts them to the top-left origin render passes use.
func (p *StagePipeline) RecordDrawParams(rp hal.RenderPassEncoder, res *FrameResources, draws []vertex.DrawParams, framebufferHeight float32) {
	if res == nil || res.idxBuf == nil || p.pipeline == nil {
		return
	}
	p.bind(rp, res)

	ss, hasScissor := rp.(scissorSetter)
	for _, d := range draws {
		if hasScissor {
			x, y, w, h := scissorRect(d.Scissor, framebufferHeight)
			ss.SetScissorRect(x, y, w, h)
		}
		rp.DrawIndexed(uint32(d.Count), 1, uint32(d.IdxOffset), int32(d.VtxOffset), 0) //nolint:gosec // draw offsets fit 32 bits
	}
}

func (p *StagePipeline) bind(rp hal.RenderPassEncoder, res *FrameResources) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	rp.SetVertexBuffer(0, res.vertBuf, 0)
	if res.idxBuf != nil {
		rp.SetIndexBuffer(res.idxBuf, gputypes.IndexFormatUint16, 0)
	}
}

// scissorRect flips s to a top-left origin and clamps it to non-negative
// integer pixels.
func scissorRect(s vertex.Scissor, fbHeight float32) (x, y, w, h uint32) {
	x0 := max(s.X, 0)
	y0 := max(fbHeight-(s.Y+s.Height), 0)
	x1 := max(s.X+s.Width, 0)
	y1 := max(fbHeight-s.Y, 0)
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(max(y1-y0, 0))
}

// Release destroys the buffers and bind group of res. It is safe to call
// with nil or twice.
func (p *StagePipeline) Release(res *FrameResources) {
	if res == nil || p.device == nil {
		return
	}
	if res.bindGroup != nil {
		p.device.DestroyBindGroup(res.bindGroup)
		res.bindGroup = nil
	}
	for _, b := range []*hal.Buffer{&res.uniformBuf, &res.idxBuf, &res.vertBuf} {
		if *b != nil {
			p.device.DestroyBuffer(*b)
			*b = nil
		}
	}
}

// Destroy releases all GPU objects held by the pipeline. Safe to call
// multiple times.
func (p *StagePipeline) Destroy() {
	p.destroyPipeline()
}

// destroyPipeline releases pipeline objects in reverse creation order.
func (p *StagePipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
