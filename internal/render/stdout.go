package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"ws-tools/internal/tools"
)

// StdoutRenderer writes catalog and envelopes as plain text or JSON.
type StdoutRenderer struct {
	w    io.Writer
	json bool
}

// NewStdoutRenderer creates a renderer. With jsonOutput set every value is
// written as indented JSON.
func NewStdoutRenderer(w io.Writer, jsonOutput bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, json: jsonOutput}
}

func (r *StdoutRenderer) Catalog(catalog []tools.Descriptor) error {
	if r.json {
		return r.writeJSON(tools.Success(catalog))
	}
	for _, desc := range catalog {
		fmt.Fprintf(r.w, "%s - %s\n", desc.Name, desc.Purpose)
		props, _ := desc.InputSchema["properties"].(map[string]any)
		required := requiredSet(desc.InputSchema["required"])
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			marker := ""
			if required[name] {
				marker = " (required)"
			}
			fmt.Fprintf(r.w, "  %s%s\n", name, marker)
		}
	}
	return nil
}

func (r *StdoutRenderer) Envelope(toolName string, env tools.Envelope) error {
	if r.json {
		return r.writeJSON(env)
	}
	if !env.OK {
		fmt.Fprintf(r.w, "Error (%s): %s\n", env.Kind, env.Error)
		return nil
	}
	switch toolName {
	case "search_files":
		var out tools.SearchOutput
		if err := convert(env.Data, &out); err != nil {
			return err
		}
		for _, m := range out.Results {
			fmt.Fprintf(r.w, "%s:%d: %s\n", m.Path, m.Line, m.Snippet)
		}
		fmt.Fprintf(r.w, "%d result(s)%s\n", len(out.Results), truncatedSuffix(out.Truncated))
	case "read_file":
		var out tools.ReadOutput
		if err := convert(env.Data, &out); err != nil {
			return err
		}
		fmt.Fprint(r.w, out.Content)
		if !strings.HasSuffix(out.Content, "\n") {
			fmt.Fprintln(r.w)
		}
		if out.Truncated {
			fmt.Fprintf(r.w, "-- %s truncated --\n", out.Path)
		}
	case "write_file":
		var out tools.WriteOutput
		if err := convert(env.Data, &out); err != nil {
			return err
		}
		fmt.Fprintf(r.w, "wrote %d bytes to %s (%s)\n", out.BytesWritten, out.Path, out.Mode)
	default:
		return r.writeJSON(env.Data)
	}
	return nil
}

func (r *StdoutRenderer) writeJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.w, string(payload))
	return err
}

// convert re-decodes data into out so local payloads and remote JSON
// payloads render the same way.
func convert(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func requiredSet(v any) map[string]bool {
	set := map[string]bool{}
	switch list := v.(type) {
	case []string:
		for _, name := range list {
			set[name] = true
		}
	case []any:
		for _, name := range list {
			if s, ok := name.(string); ok {
				set[s] = true
			}
		}
	}
	return set
}

func truncatedSuffix(truncated bool) string {
	if truncated {
		return ", truncated"
	}
	return ""
}
