package render

import "ws-tools/internal/tools"

// Renderer writes tool output to a target.
type Renderer interface {
	Catalog(catalog []tools.Descriptor) error
	Envelope(toolName string, env tools.Envelope) error
}
