// Package provider bridges a model request to one of two streaming backends:
// an OpenAI-compatible hosted endpoint or a locally reachable NDJSON chat
// endpoint. Streaming failures are reported through a Sink and never returned
// as errors; only an unsupported model identifier crosses the Dispatch boundary.
package provider

import (
	"github.com/hpkotak/lexbud/internal/sections"
)

// Cursor is appended to in-flight snapshots pushed to a Sink.
const Cursor = "▌"

// Role is the speaker of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
// Decoupled from any specific LLM API (Ollama, OpenAI, etc.) so callers
// don't import backend-specific types.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Backend identifies the serving target and its wire protocol.
type Backend int

const (
	Hosted Backend = iota + 1
	Local
)

func (b Backend) String() string {
	switch b {
	case Hosted:
		return "hosted"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// BackendConfig is the connection target derived from a model identifier.
type BackendConfig struct {
	Backend    Backend
	Endpoint   string
	Credential string // empty for Local
}

// Request is a single-shot model request.
type Request struct {
	// ID correlates logs and surface responses. Generated when empty.
	ID       string
	Model    string
	Messages []Message
	// Layout drives post-processing of hosted responses.
	Layout sections.Layout
}

// Result is a finished stream.
type Result struct {
	Backend Backend
	// Text is the full accumulated response.
	Text string
	// Sections is non-empty only when post-processing matched a heading.
	// Always empty for Local responses.
	Sections sections.Result
}

// Structured reports whether the result carries named sections.
// Callers fall back to Text when it returns false.
func (r *Result) Structured() bool {
	return r != nil && len(r.Sections) > 0
}
