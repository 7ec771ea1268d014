package provider

import (
	"fmt"
)

// UnsupportedModelError is returned when a model identifier matches neither
// backend. It is the only error Dispatch returns.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model %q", e.Model)
}

// TransportError is a connection, status, or protocol failure that aborted a
// stream. It is reported to the Sink, not returned to Dispatch callers.
type TransportError struct {
	Backend    Backend
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Backend, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedChunkError is a local stream line that failed to decode.
// The line is skipped and the stream continues.
type MalformedChunkError struct {
	Line int
	Err  error
}

func (e *MalformedChunkError) Error() string {
	return fmt.Sprintf("malformed chunk on line %d: %v", e.Line, e.Err)
}

func (e *MalformedChunkError) Unwrap() error { return e.Err }
