package vertex

import (
	"errors"
	"fmt"
)

var (
	// ErrLink is wrapped by every layout or interpolant contract violation.
	// These are detected once, when a pipeline is built, never per vertex.
	ErrLink = errors.New("vertex: link contract violated")

	// ErrShortBuffer is returned when a byte slice cannot hold or does not
	// contain a whole number of encoded vertices.
	ErrShortBuffer = errors.New("vertex: short buffer")

	// ErrBufferFull is returned when an append would exceed a buffer's
	// fixed capacity. Nothing is written in that case.
	ErrBufferFull = errors.New("vertex: buffer full")
)

// LinkError describes a mismatch between the stage's interface and a vertex
// layout or a fragment stage's inputs.
type LinkError struct {
	Location uint32
	Name     string
	Reason   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("vertex: link: location %d (%s): %s", e.Location, e.Name, e.Reason)
}

// Unwrap makes errors.Is(err, ErrLink) hold for every LinkError.
func (e *LinkError) Unwrap() error { return ErrLink }
