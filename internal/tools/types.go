package tools

import "context"

// Meta provides execution context to tools.
type Meta struct {
	WorkspaceRoot string
}

// Result is a structured tool execution result.
type Result struct {
	ToolName   string
	Payload    any
	Truncated  bool
	DurationMs int64
}

// Tool describes a callable tool.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Execute(ctx context.Context, input map[string]any, meta Meta) (Result, error)
}

// Descriptor is the catalog entry for a tool.
type Descriptor struct {
	Name        string         `json:"name"`
	Purpose     string         `json:"purpose"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Envelope is the uniform result returned to callers.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`

	// Kind is set on failures only; transports decide how to expose it.
	Kind Kind `json:"-"`
}

// Success wraps a payload.
func Success(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

// Failure wraps a classified error.
func Failure(err error) Envelope {
	return Envelope{OK: false, Error: err.Error(), Kind: KindOf(err)}
}
