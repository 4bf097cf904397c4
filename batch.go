package vertex

import "github.com/google/uuid"

// Batch is one draw call: a set of vertices processed under one Transform.
//
// The host must not modify Transform or Vertices while the batch is being
// processed. Between draw calls it may replace either.
type Batch struct {
	// ID identifies the batch in logs.
	ID        uuid.UUID
	Transform Transform
	Vertices  []Vertex
}

// NewBatch returns a batch with a fresh ID.
func NewBatch(t Transform, vertices []Vertex) *Batch {
	return &Batch{
		ID:        uuid.New(),
		Transform: t,
		Vertices:  vertices,
	}
}

// Len returns the number of vertices.
func (b *Batch) Len() int { return len(b.Vertices) }

// Run transforms every vertex on the calling goroutine and appends the
// outputs to dst, in vertex order.
func (b *Batch) Run(dst []Output) []Output {
	t := b.Transform
	for _, v := range b.Vertices {
		dst = append(dst, Stage(v, t))
	}
	return dst
}
