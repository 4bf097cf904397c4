package vertex

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// Semantic names what a vertex attribute carries.
type Semantic uint8

const (
	SemanticPosition Semantic = iota
	SemanticTexCoord
	SemanticColor
)

func (s Semantic) String() string {
	switch s {
	case SemanticPosition:
		return "position"
	case SemanticTexCoord:
		return "texcoord"
	case SemanticColor:
		return "color"
	default:
		return fmt.Sprintf("Semantic(%d)", uint8(s))
	}
}

// StageInput is one attribute the stage reads.
type StageInput struct {
	Location   uint32
	Semantic   Semantic
	Components int
}

// Interpolant is one value passed from the stage to the fragment stage.
type Interpolant struct {
	Location   uint32
	Name       string
	Components int
}

var stageInputs = [...]StageInput{
	{Location: 0, Semantic: SemanticPosition, Components: 2},
	{Location: 1, Semantic: SemanticTexCoord, Components: 2},
	{Location: 2, Semantic: SemanticColor, Components: 4},
}

var stageOutputs = [...]Interpolant{
	{Location: 0, Name: "color", Components: 4},
	{Location: 1, Name: "texcoord", Components: 2},
}

// StageInputs returns the attributes the stage consumes, ordered by location.
func StageInputs() []StageInput { return stageInputs[:] }

// StageOutputs returns the interpolants the stage produces, ordered by location.
// The clip position is a builtin and is not listed.
func StageOutputs() []Interpolant { return stageOutputs[:] }

// Attribute places one stage input inside a vertex buffer element.
type Attribute struct {
	Semantic Semantic
	Location uint32
	Format   gputypes.VertexFormat
	Offset   uint64
}

// Layout describes how vertices are stored in a buffer.
type Layout struct {
	Stride     uint64
	Attributes []Attribute
}

// StandardLayout stores every attribute as float32: 32 bytes per vertex.
func StandardLayout() Layout {
	return Layout{
		Stride: 32,
		Attributes: []Attribute{
			{Semantic: SemanticPosition, Location: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
			{Semantic: SemanticTexCoord, Location: 1, Format: gputypes.VertexFormatFloat32x2, Offset: 8},
			{Semantic: SemanticColor, Location: 2, Format: gputypes.VertexFormatFloat32x4, Offset: 16},
		},
	}
}

// PackedLayout stores color as four normalized bytes: 20 bytes per vertex.
// This is the usual layout of immediate-mode UI vertex buffers.
func PackedLayout() Layout {
	return Layout{
		Stride: 20,
		Attributes: []Attribute{
			{Semantic: SemanticPosition, Location: 0, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
			{Semantic: SemanticTexCoord, Location: 1, Format: gputypes.VertexFormatFloat32x2, Offset: 8},
			{Semantic: SemanticColor, Location: 2, Format: gputypes.VertexFormatUnorm8x4, Offset: 16},
		},
	}
}

// formatSize returns the byte size of the formats a layout may use, or 0.
func formatSize(f gputypes.VertexFormat) uint64 {
	switch f {
	case gputypes.VertexFormatFloat32x2:
		return 8
	case gputypes.VertexFormatFloat32x4:
		return 16
	case gputypes.VertexFormatUnorm8x4:
		return 4
	default:
		return 0
	}
}

// accepts reports whether format f may feed semantic s.
func accepts(s Semantic, f gputypes.VertexFormat) bool {
	switch s {
	case SemanticPosition, SemanticTexCoord:
		return f == gputypes.VertexFormatFloat32x2
	case SemanticColor:
		return f == gputypes.VertexFormatFloat32x4 || f == gputypes.VertexFormatUnorm8x4
	default:
		return false
	}
}

// Validate checks l against the stage's input interface. Every stage input
// must appear exactly once at its location with a compatible format, inside
// the stride and without overlapping another attribute.
//
// The returned error is a *LinkError wrapping ErrLink.
func (l Layout) Validate() error {
	if l.Stride == 0 || l.Stride%4 != 0 {
		return &LinkError{Name: "layout", Reason: fmt.Sprintf("stride %d is not a positive multiple of 4", l.Stride)}
	}

	var seen [len(stageInputs)]bool
	for _, a := range l.Attributes {
		if int(a.Semantic) >= len(stageInputs) {
			return &LinkError{Location: a.Location, Name: a.Semantic.String(), Reason: "unknown semantic"}
		}
		want := stageInputs[a.Semantic]
		if a.Location != want.Location {
			return &LinkError{Location: a.Location, Name: a.Semantic.String(),
				Reason: fmt.Sprintf("stage reads %s at location %d", a.Semantic, want.Location)}
		}
		if seen[a.Semantic] {
			return &LinkError{Location: a.Location, Name: a.Semantic.String(), Reason: "bound more than once"}
		}
		seen[a.Semantic] = true

		if !accepts(a.Semantic, a.Format) {
			return &LinkError{Location: a.Location, Name: a.Semantic.String(),
				Reason: fmt.Sprintf("format %v does not provide %d components", a.Format, want.Components)}
		}
		if a.Offset%4 != 0 || a.Offset+formatSize(a.Format) > l.Stride {
			return &LinkError{Location: a.Location, Name: a.Semantic.String(),
				Reason: fmt.Sprintf("offset %d does not fit stride %d", a.Offset, l.Stride)}
		}
	}
	for _, in := range stageInputs {
		if !seen[in.Semantic] {
			return &LinkError{Location: in.Location, Name: in.Semantic.String(), Reason: "not bound"}
		}
	}

	sorted := slices.Clone(l.Attributes)
	slices.SortFunc(sorted, func(a, b Attribute) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Offset+formatSize(prev.Format) > cur.Offset {
			return &LinkError{Location: cur.Location, Name: cur.Semantic.String(),
				Reason: fmt.Sprintf("overlaps %s", prev.Semantic)}
		}
	}
	return nil
}

// BufferLayout returns l as a GPU vertex buffer layout.
func (l Layout) BufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// LinkFragment checks the inputs declared by a fragment stage against the
// stage's outputs. A fragment stage may read a subset of the interpolants,
// but each one it reads must exist at the same location with the same
// number of components.
func LinkFragment(inputs []Interpolant) error {
	seen := make(map[uint32]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Location] {
			return &LinkError{Location: in.Location, Name: in.Name, Reason: "declared more than once"}
		}
		seen[in.Location] = true

		i := slices.IndexFunc(stageOutputs[:], func(o Interpolant) bool { return o.Location == in.Location })
		if i < 0 {
			return &LinkError{Location: in.Location, Name: in.Name, Reason: "no interpolant at this location"}
		}
		if out := stageOutputs[i]; out.Components != in.Components {
			return &LinkError{Location: in.Location, Name: in.Name,
				Reason: fmt.Sprintf("expects %d components, stage writes %s with %d", in.Components, out.Name, out.Components)}
		}
	}
	return nil
}
