package tools

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
)

// WriteFileTool writes or appends text to a workspace file.
type WriteFileTool struct{}

// NewWriteFileTool constructs the write_file tool.
func NewWriteFileTool() *WriteFileTool { return &WriteFileTool{} }

func (w *WriteFileTool) Name() string { return "write_file" }

func (w *WriteFileTool) Description() string {
	return "Write or append text content to a file in the workspace."
}

func (w *WriteFileTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":        map[string]any{"type": "string", "description": "Relative path within workspace"},
			"content":     map[string]any{"type": "string", "description": "Full file content to write"},
			"mode":        map[string]any{"type": "string", "enum": []string{ModeOverwrite, ModeAppend}, "default": ModeOverwrite},
			"create_dirs": map[string]any{"type": "boolean", "default": true},
		},
		"required": []string{"path", "content"},
	}
}

type writeInput struct {
	Path string `mapstructure:"path"`
}

// WriteOutput is the write_file payload.
type WriteOutput struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytesWritten"`
	Mode         string `json:"mode"`
}

func (w *WriteFileTool) Execute(ctx context.Context, input map[string]any, meta Meta) (Result, error) {
	var args writeInput
	if err := decodeArgs(input, &args); err != nil {
		return Result{}, err
	}
	guard := NewGuard(meta.WorkspaceRoot)
	rel, abs, err := guard.Resolve(args.Path)
	if err != nil {
		return Result{}, err
	}
	content, ok := input["content"].(string)
	if !ok {
		return Result{}, InvalidInputf("content must be a string")
	}
	// Unknown modes fall back to overwrite.
	mode := ModeOverwrite
	if m, ok := input["mode"].(string); ok && m == ModeAppend {
		mode = ModeAppend
	}
	createDirs := true
	if b, ok := input["create_dirs"].(bool); ok && !b {
		createDirs = false
	}

	start := time.Now()
	parent := filepath.Dir(abs)
	parentRel := path.Dir(rel)
	if createDirs {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return Result{}, Wrap(err, "failed to create parent directories: %s", parentRel)
		}
	} else {
		info, err := os.Stat(parent)
		if err != nil {
			return Result{}, InvalidInputf("parent directory does not exist: %s", parentRel)
		}
		if !info.IsDir() {
			return Result{}, InvalidInputf("parent path is not a directory: %s", parentRel)
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, Wrap(err, "write cancelled: %s", rel)
	}

	if err := writeContent(abs, content, mode); err != nil {
		return Result{}, Wrap(err, "failed to write file: %s", rel)
	}

	output := WriteOutput{Path: rel, BytesWritten: len(content), Mode: mode}
	return Result{ToolName: w.Name(), Payload: output, DurationMs: time.Since(start).Milliseconds()}, nil
}

func writeContent(abs, content, mode string) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == ModeAppend {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	file, err := os.OpenFile(abs, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
