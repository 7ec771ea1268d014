package provider

// Sink receives incremental display updates for one request.
// Calls happen on the streaming goroutine between reads, so implementations
// must return promptly.
type Sink interface {
	// Update receives the accumulated text so far. In-flight snapshots end
	// with Cursor; the final snapshot does not.
	Update(snapshot string)
	// Fail receives a terminal error message. No Update follows it.
	Fail(message string)
}

// SinkFuncs adapts plain functions to Sink. Nil funcs are no-ops.
type SinkFuncs struct {
	OnUpdate func(snapshot string)
	OnFail   func(message string)
}

func (s SinkFuncs) Update(snapshot string) {
	if s.OnUpdate != nil {
		s.OnUpdate(snapshot)
	}
}

func (s SinkFuncs) Fail(message string) {
	if s.OnFail != nil {
		s.OnFail(message)
	}
}

// Discard is a Sink that ignores everything.
var Discard Sink = SinkFuncs{}
