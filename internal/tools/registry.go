package tools

import (
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
)

// Registry stores available tools in registration order. It is not
// modified after construction.
type Registry struct {
	order []Tool
	tools map[string]Tool
}

// NewRegistry builds a registry from tools. Tool names must be unique.
func NewRegistry(items ...Tool) *Registry {
	reg := &Registry{tools: make(map[string]Tool, len(items))}
	for _, item := range items {
		name := item.Name()
		if _, dup := reg.tools[name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool name %q", name))
		}
		reg.tools[name] = item
		reg.order = append(reg.order, item)
	}
	return reg
}

// DefaultRegistry registers the workspace file tools.
func DefaultRegistry() *Registry {
	return NewRegistry(NewSearchFilesTool(), NewReadFileTool(), NewWriteFileTool())
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Catalog describes every tool without exposing handlers.
func (r *Registry) Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, tool := range r.order {
		out = append(out, Descriptor{Name: tool.Name(), Purpose: tool.Description(), InputSchema: tool.Schema()})
	}
	return out
}

// OpenAIToolsFor converts catalog entries, local or fetched from a server,
// to OpenAI tool schema.
func OpenAIToolsFor(catalog []Descriptor) []openai.ChatCompletionToolUnionParam {
	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(catalog))
	for _, desc := range catalog {
		defs = append(defs, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        desc.Name,
					Description: param.NewOpt(desc.Purpose),
					Parameters:  desc.InputSchema,
				},
			},
		})
	}
	return defs
}
