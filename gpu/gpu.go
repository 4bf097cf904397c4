//go:build !nogpu

// Package gpu builds the vertex stage's render pipeline on a device shared
// by a host application.
//
// The host passes a gpucontext.DeviceProvider (gogpu's App, or any provider
// that also exposes HalDevice() and HalQueue()). The pipeline renders into
// targets of the provider's surface format.
//
// Usage:
//
//	p, err := gpu.New(app, vertex.PackedLayout())
//	if err != nil { ... }
//	defer p.Destroy()
//
//	res, err := p.Upload(vertex.NewBatch(proj, vertices))
//	if err != nil { ... }
//	p.RecordDraw(renderPass, res)
//	p.Release(res)
package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vertex"
	gpuimpl "github.com/gogpu/vertex/internal/gpu"
)

// Pipeline is the GPU rendition of the vertex stage.
type Pipeline = gpuimpl.StagePipeline

// FrameResources holds the GPU buffers of one uploaded draw.
type FrameResources = gpuimpl.FrameResources

// Errors returned by New.
var (
	// ErrNoHAL is returned when the provider does not expose HAL objects.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrCompile is wrapped by shader compilation failures.
	ErrCompile = gpuimpl.ErrCompile
)

// halProvider is implemented by device providers that give direct HAL
// access.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// New builds a stage pipeline on the provider's device for vertices stored
// with layout. A layout that does not satisfy the stage's inputs is
// reported as an error wrapping vertex.ErrLink.
func New(provider gpucontext.DeviceProvider, layout vertex.Layout) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("gpu: nil provider")
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}

	p := gpuimpl.NewStagePipeline(device, queue, layout, provider.SurfaceFormat())
	if err := p.Build(); err != nil {
		return nil, err
	}
	gpuimpl.Logger().Debug("gpu: pipeline ready", "format", provider.SurfaceFormat())
	return p, nil
}

// CompileStage compiles the stage shader to SPIR-V words.
func CompileStage() ([]uint32, error) {
	return gpuimpl.CompileStage()
}

// StageSource returns the WGSL source of the stage shader.
func StageSource() string {
	return gpuimpl.StageSource()
}

// SetLogger sets the logger used by New and the GPU pipeline. Pass nil to
// silence it again. vertex.SetLogger does not reach this package.
func SetLogger(l *slog.Logger) {
	gpuimpl.SetLogger(l)
}
