//go:build !nogpu

package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/vertex"
)

//go:embed shaders/stage.wgsl
var stageShaderSource string

// ErrCompile is wrapped by every shader compilation failure.
var ErrCompile = errors.New("gpu: shader compilation failed")

const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// fragmentInputs are the interpolants fs_main reads.
var fragmentInputs = []vertex.Interpolant{
	{Location: 0, Name: "color", Components: 4},
}

// StageSource returns the WGSL source of the stage shader.
func StageSource() string { return stageShaderSource }

// CompileStage compiles the stage shader to SPIR-V words.
func CompileStage() ([]uint32, error) {
	return compileSPIRV(stageShaderSource)
}

func compileSPIRV(src string) ([]uint32, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty source", ErrCompile)
	}
	b, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V size %d is not a multiple of 4", ErrCompile, len(b))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}
