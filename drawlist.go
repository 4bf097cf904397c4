package vertex

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
)

// CmdKind tells how a DrawCmd is handled.
type CmdKind uint8

const (
	// CmdElements draws Count indices.
	CmdElements CmdKind = iota
	// CmdResetRenderState asks the renderer to restore its state.
	// It is not supported and is skipped with a warning.
	CmdResetRenderState
	// CmdCallback runs Callback instead of drawing.
	CmdCallback
)

// DrawData is one frame of geometry handed over by the host.
type DrawData struct {
	// DisplayPos is the top-left of the display in vertex coordinates.
	DisplayPos mgl32.Vec2
	// DisplaySize is the display extent in vertex coordinates.
	DisplaySize mgl32.Vec2
	// FramebufferScale converts display units to framebuffer pixels.
	FramebufferScale mgl32.Vec2

	Lists []DrawList
}

// DrawList owns the vertices and indices referenced by its commands.
type DrawList struct {
	Vertices []Vertex
	Indices  []uint16
	Commands []DrawCmd
}

// DrawCmd is one command of a DrawList.
type DrawCmd struct {
	Kind CmdKind
	// Count is the number of indices to draw.
	Count int
	// ClipRect is (x0, y0, x1, y1) in display coordinates.
	ClipRect  mgl32.Vec4
	VtxOffset int
	IdxOffset int
	TextureID uint64
	Callback  func(*DrawList, *DrawCmd)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 {
	if r.Right < r.Left {
		return r.Left - r.Right
	}
	return r.Right - r.Left
}

// Height returns the vertical extent.
func (r Rect) Height() float32 {
	if r.Bottom < r.Top {
		return r.Top - r.Bottom
	}
	return r.Bottom - r.Top
}

// Scissor is a framebuffer rectangle with its origin at the bottom-left,
// as OpenGL's glScissor expects.
type Scissor struct {
	X, Y, Width, Height float32
}

// DrawParams is everything needed to issue one indexed draw.
type DrawParams struct {
	Display   Rect
	List      *DrawList
	VtxOffset int
	IdxOffset int
	Count     int
	TextureID uint64
	Scissor   Scissor
}

// Framebuffer returns the framebuffer size in pixels.
func (d *DrawData) Framebuffer() (w, h float32) {
	return d.DisplaySize[0] * d.FramebufferScale[0], d.DisplaySize[1] * d.FramebufferScale[1]
}

// Display returns the display rectangle (y down).
func (d *DrawData) Display() Rect {
	return Rect{
		Left:   d.DisplayPos[0],
		Top:    d.DisplayPos[1],
		Right:  d.DisplayPos[0] + d.DisplaySize[0],
		Bottom: d.DisplayPos[1] + d.DisplaySize[1],
	}
}

// Projection maps the display rectangle to clip space with y pointing down:
// the top-left corner goes to (-1, 1) and the bottom-right to (1, -1).
func (d *DrawData) Projection() Transform {
	r := d.Display()
	return Ortho(r.Left, r.Right, r.Bottom, r.Top, 0, 1)
}

// Params yields the draw parameters of every element command, paired with
// the index of its draw list, in list and command order.
//
// Nothing is yielded when the framebuffer is empty. Commands whose clip
// rectangle lies entirely outside the framebuffer are skipped. Reset
// commands are skipped with a warning; callback commands run their callback
// and yield nothing.
func (d *DrawData) Params() iter.Seq2[int, DrawParams] {
	return func(yield func(int, DrawParams) bool) {
		fbW, fbH := d.Framebuffer()
		if fbW <= 0 || fbH <= 0 {
			return
		}
		off, scale := d.DisplayPos, d.FramebufferScale
		display := d.Display()

		for li := range d.Lists {
			list := &d.Lists[li]
			for ci := range list.Commands {
				cmd := &list.Commands[ci]

				switch cmd.Kind {
				case CmdResetRenderState:
					Logger().Warn("vertex: reset render state is not supported", "list", li, "cmd", ci)
					continue
				case CmdCallback:
					if cmd.Callback != nil {
						cmd.Callback(list, cmd)
					}
					continue
				}

				x0 := (cmd.ClipRect[0] - off[0]) * scale[0]
				y0 := (cmd.ClipRect[1] - off[1]) * scale[1]
				x1 := (cmd.ClipRect[2] - off[0]) * scale[0]
				y1 := (cmd.ClipRect[3] - off[1]) * scale[1]
				if x0 >= fbW || y0 >= fbH || x1 < 0 || y1 < 0 {
					continue
				}

				p := DrawParams{
					Display:   display,
					List:      list,
					VtxOffset: cmd.VtxOffset,
					IdxOffset: cmd.IdxOffset,
					Count:     cmd.Count,
					TextureID: cmd.TextureID,
					Scissor: Scissor{
						X:      x0,
						Y:      fbH - y1,
						Width:  x1 - x0,
						Height: y1 - y0,
					},
				}
				if !yield(li, p) {
					return
				}
			}
		}
	}
}
