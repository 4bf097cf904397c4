package vertex

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Encode writes v into the first l.Stride bytes of dst.
// Bytes of dst not covered by an attribute are left as they are.
// A layout that fails Validate is reported as a *LinkError.
func (l Layout) Encode(dst []byte, v Vertex) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if uint64(len(dst)) < l.Stride {
		return fmt.Errorf("encode: %d bytes, need %d: %w", len(dst), l.Stride, ErrShortBuffer)
	}
	l.encode(dst, v)
	return nil
}

// encode writes v with a layout that passed Validate into a buffer of at
// least l.Stride bytes.
func (l Layout) encode(dst []byte, v Vertex) {
	for _, a := range l.Attributes {
		b := dst[a.Offset:]
		switch a.Semantic {
		case SemanticPosition:
			putFloats(b, v.Position[:])
		case SemanticTexCoord:
			putFloats(b, v.TexCoord[:])
		case SemanticColor:
			if a.Format == gputypes.VertexFormatUnorm8x4 {
				for i, c := range v.Color {
					b[i] = unorm8(c)
				}
			} else {
				putFloats(b, v.Color[:])
			}
		}
	}
}

// Decode reads one vertex from the first l.Stride bytes of src.
// A layout that fails Validate is reported as a *LinkError.
func (l Layout) Decode(src []byte) (Vertex, error) {
	if err := l.Validate(); err != nil {
		return Vertex{}, err
	}
	if uint64(len(src)) < l.Stride {
		return Vertex{}, fmt.Errorf("decode: %d bytes, need %d: %w", len(src), l.Stride, ErrShortBuffer)
	}
	return l.decode(src), nil
}

func (l Layout) decode(src []byte) Vertex {
	var v Vertex
	for _, a := range l.Attributes {
		b := src[a.Offset:]
		switch a.Semantic {
		case SemanticPosition:
			getFloats(v.Position[:], b)
		case SemanticTexCoord:
			getFloats(v.TexCoord[:], b)
		case SemanticColor:
			if a.Format == gputypes.VertexFormatUnorm8x4 {
				for i := range v.Color {
					v.Color[i] = float32(b[i]) / 255
				}
			} else {
				getFloats(v.Color[:], b)
			}
		}
	}
	return v
}

// AppendVertices encodes vs and appends them to dst. The layout is
// validated once; on error dst is returned unchanged.
func (l Layout) AppendVertices(dst []byte, vs []Vertex) ([]byte, error) {
	if err := l.Validate(); err != nil {
		return dst, err
	}
	start := uint64(len(dst))
	dst = append(dst, make([]byte, uint64(len(vs))*l.Stride)...)
	for i, v := range vs {
		l.encode(dst[start+uint64(i)*l.Stride:], v)
	}
	return dst, nil
}

// DecodeVertices decodes a buffer holding a whole number of vertices.
func (l Layout) DecodeVertices(src []byte) ([]Vertex, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(src))%l.Stride != 0 {
		return nil, fmt.Errorf("decode: %d bytes is not a multiple of stride %d: %w", len(src), l.Stride, ErrShortBuffer)
	}
	out := make([]Vertex, uint64(len(src))/l.Stride)
	for i := range out {
		out[i] = l.decode(src[uint64(i)*l.Stride:])
	}
	return out, nil
}

func putFloats(dst []byte, vs []float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}

// unorm8 quantizes a color channel for the packed wire format.
func unorm8(c float32) uint8 {
	return uint8(mgl32.Clamp(c, 0, 1)*255 + 0.5)
}
