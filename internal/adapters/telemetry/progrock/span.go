package progrock

import (
	"fmt"

	"github.com/vito/progrock"
)

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write captures output on the vertex's stdout stream.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError records an error for the span. The last recorded error is
// reported when the span ends.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute adds a key-value pair to the span's output stream.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// End completes the vertex, reporting any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}
