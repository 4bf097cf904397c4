package vertex

import (
	"encoding/binary"
	"fmt"
)

// DefaultQuadCapacity is the number of quads the default buffers hold.
// Each quad is 4 vertices and 6 indices.
const DefaultQuadCapacity = 2048

// VertexBuffer accumulates encoded vertices up to a fixed capacity.
// It is filled once per frame and rewound with Reset.
type VertexBuffer struct {
	layout   Layout
	data     []byte
	capacity int
}

// NewVertexBuffer allocates room for capacity vertices of the given layout.
// A negative capacity is treated as zero. The layout is checked on Append.
func NewVertexBuffer(layout Layout, capacity int) *VertexBuffer {
	capacity = max(capacity, 0)
	return &VertexBuffer{
		layout:   layout,
		data:     make([]byte, 0, uint64(capacity)*layout.Stride),
		capacity: capacity,
	}
}

// Append encodes vs at the end of the buffer. If they do not fit, nothing
// is written and the error wraps ErrBufferFull. An invalid layout is
// reported as a *LinkError.
func (b *VertexBuffer) Append(vs []Vertex) error {
	if b.Len()+len(vs) > b.capacity {
		return fmt.Errorf("append %d vertices to %d/%d: %w", len(vs), b.Len(), b.capacity, ErrBufferFull)
	}
	data, err := b.layout.AppendVertices(b.data, vs)
	if err != nil {
		return err
	}
	b.data = data
	return nil
}

// Reset empties the buffer without releasing its storage.
func (b *VertexBuffer) Reset() { b.data = b.data[:0] }

// Len returns the number of vertices in the buffer.
func (b *VertexBuffer) Len() int {
	if b.layout.Stride == 0 {
		return 0
	}
	return int(uint64(len(b.data)) / b.layout.Stride)
}

// Cap returns the vertex capacity.
func (b *VertexBuffer) Cap() int { return b.capacity }

// Layout returns the layout vertices are encoded with.
func (b *VertexBuffer) Layout() Layout { return b.layout }

// Bytes returns the encoded vertices. The slice aliases the buffer and is
// only valid until the next Append or Reset.
func (b *VertexBuffer) Bytes() []byte { return b.data }

// IndexBuffer accumulates 16-bit indices up to a fixed capacity.
type IndexBuffer struct {
	data     []uint16
	capacity int
}

// NewIndexBuffer allocates room for capacity indices. A negative capacity
// is treated as zero.
func NewIndexBuffer(capacity int) *IndexBuffer {
	capacity = max(capacity, 0)
	return &IndexBuffer{data: make([]uint16, 0, capacity), capacity: capacity}
}

// Append adds indices. If they do not fit, nothing is written and the error
// wraps ErrBufferFull.
func (b *IndexBuffer) Append(idx []uint16) error {
	if len(b.data)+len(idx) > b.capacity {
		return fmt.Errorf("append %d indices to %d/%d: %w", len(idx), len(b.data), b.capacity, ErrBufferFull)
	}
	b.data = append(b.data, idx...)
	return nil
}

// Reset empties the buffer without releasing its storage.
func (b *IndexBuffer) Reset() { b.data = b.data[:0] }

// Len returns the number of indices in the buffer.
func (b *IndexBuffer) Len() int { return len(b.data) }

// Cap returns the index capacity.
func (b *IndexBuffer) Cap() int { return b.capacity }

// Indices returns the stored indices.
func (b *IndexBuffer) Indices() []uint16 { return b.data }

// Bytes returns the indices as little-endian uint16 values.
func (b *IndexBuffer) Bytes() []byte {
	out := make([]byte, 0, len(b.data)*2)
	for _, i := range b.data {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

// NewQuadBuffers returns vertex and index buffers sized for quads quads.
func NewQuadBuffers(layout Layout, quads int) (*VertexBuffer, *IndexBuffer) {
	return NewVertexBuffer(layout, 4*quads), NewIndexBuffer(6 * quads)
}
