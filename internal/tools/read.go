package tools

import (
	"bytes"
	"context"
	"os"
	"time"

	"ws-tools/internal/util"
)

const (
	defaultMaxChars = 40_000
	maxCharsLimit   = 500_000
)

// ReadFileTool returns the text content of one workspace file.
type ReadFileTool struct{}

// NewReadFileTool constructs the read_file tool.
func NewReadFileTool() *ReadFileTool { return &ReadFileTool{} }

func (r *ReadFileTool) Name() string { return "read_file" }

func (r *ReadFileTool) Description() string {
	return "Read a text file from the workspace."
}

func (r *ReadFileTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":      map[string]any{"type": "string", "description": "Relative path within workspace"},
			"max_chars": map[string]any{"type": "integer", "description": "Max chars to return (default 40000)", "default": defaultMaxChars},
		},
		"required": []string{"path"},
	}
}

type readInput struct {
	Path     string `mapstructure:"path"`
	MaxChars any    `mapstructure:"max_chars"`
}

// ReadOutput is the read_file payload.
type ReadOutput struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}

func (r *ReadFileTool) Execute(ctx context.Context, input map[string]any, meta Meta) (Result, error) {
	var args readInput
	if err := decodeArgs(input, &args); err != nil {
		return Result{}, err
	}
	guard := NewGuard(meta.WorkspaceRoot)
	rel, abs, err := guard.Resolve(args.Path)
	if err != nil {
		return Result{}, err
	}
	maxChars := clampInt(args.MaxChars, defaultMaxChars, 1, maxCharsLimit)

	start := time.Now()
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, NotFoundf("file not found: %s", rel)
	}
	if !info.Mode().IsRegular() {
		return Result{}, InvalidInputf("path is not a file: %s", rel)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, Wrap(err, "read cancelled: %s", rel)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, Wrap(err, "failed to read file: %s", rel)
	}
	if bytes.IndexByte(raw, 0) != -1 {
		return Result{}, InvalidInputf("file appears to be binary and cannot be returned as text")
	}

	content, truncated := util.TruncateRunes(string(raw), maxChars)
	output := ReadOutput{Path: rel, Content: content, Truncated: truncated}
	return Result{ToolName: r.Name(), Payload: output, Truncated: truncated, DurationMs: time.Since(start).Milliseconds()}, nil
}
