package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func search(t *testing.T, root string, input map[string]any) SearchOutput {
	t.Helper()
	res, err := runTool(t, NewSearchFilesTool(), root, input)
	require.NoError(t, err)
	return res.Payload.(SearchOutput)
}

func TestSearchFilesScenario(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "notes/todo.txt", "buy milk\nfix bug\n")

	out := search(t, root, map[string]any{"query": "bug"})
	assert.Equal(t, "bug", out.Query)
	assert.False(t, out.Truncated)
	assert.Equal(t, []Match{{Path: "notes/todo.txt", Line: 2, Snippet: "fix bug"}}, out.Results)
}

func TestSearchFilesCaseInsensitiveAndCRLF(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.txt", "first\r\n   Hello World   \r\nlast")

	out := search(t, root, map[string]any{"query": "  hello  "})
	assert.Equal(t, "hello", out.Query)
	require.Len(t, out.Results, 1)
	assert.Equal(t, Match{Path: "a.txt", Line: 2, Snippet: "Hello World"}, out.Results[0])
}

func TestSearchFilesCap(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFixture(t, root, fmt.Sprintf("dir%d/f.txt", i), "needle\nneedle\nneedle\n")
	}

	out := search(t, root, map[string]any{"query": "needle", "max_results": 7})
	assert.Len(t, out.Results, 7)
	assert.True(t, out.Truncated)

	out = search(t, root, map[string]any{"query": "needle", "max_results": 200})
	assert.Len(t, out.Results, 15)
	assert.False(t, out.Truncated)
}

func TestSearchFilesCapClamped(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "many.txt", strings.Repeat("hit\n", 300))

	out := search(t, root, map[string]any{"query": "hit", "max_results": 1000})
	assert.Len(t, out.Results, maxResultsLimit)
	assert.True(t, out.Truncated)

	out = search(t, root, map[string]any{"query": "hit", "max_results": -3})
	assert.Len(t, out.Results, 1)
	assert.True(t, out.Truncated)

	out = search(t, root, map[string]any{"query": "hit"})
	assert.Len(t, out.Results, defaultMaxResults)
}

func TestSearchFilesSkipsBinaryAndLarge(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "bin.dat", "needle\x00needle")
	writeFixture(t, root, "big.txt", "needle\n"+strings.Repeat("x", 4096))
	writeFixture(t, root, "small.txt", "needle")

	out := search(t, root, map[string]any{"query": "needle", "max_file_size_bytes": 1024})
	assert.Equal(t, []Match{{Path: "small.txt", Line: 1, Snippet: "needle"}}, out.Results)
	assert.False(t, out.Truncated)
}

func TestSearchFilesSkipsDeniedDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{".git", "node_modules", "dist", ".angular", "src/node_modules"} {
		writeFixture(t, root, dir+"/x.txt", "needle")
	}
	writeFixture(t, root, "src/keep.txt", "needle")

	out := search(t, root, map[string]any{"query": "needle"})
	assert.Equal(t, []Match{{Path: "src/keep.txt", Line: 1, Snippet: "needle"}}, out.Results)
}

func TestSearchFilesGlobFilters(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "src/app.ts", "const needle = 1")
	writeFixture(t, root, "src/app.go", "var needle = 1")
	writeFixture(t, root, "top.ts", "needle")

	out := search(t, root, map[string]any{"query": "needle", "glob": "**/*.ts", "max_results": 50})
	paths := map[string]bool{}
	for _, m := range out.Results {
		paths[m.Path] = true
	}
	assert.Equal(t, map[string]bool{"src/app.ts": true, "top.ts": true}, paths)
}

func TestSearchFilesPathMatch(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "docs/Needle-guide.md", "nothing here")
	writeFixture(t, root, "lib/needle.go", "package lib")

	// Path matches are reported even when the glob excludes the file.
	out := search(t, root, map[string]any{"query": "needle", "glob": "**/*.md"})
	require.Len(t, out.Results, 2)
	for _, m := range out.Results {
		assert.Equal(t, 1, m.Line)
		assert.Equal(t, pathMatchSnippet, m.Snippet)
	}
}

func TestSearchFilesSnippetLimit(t *testing.T) {
	root := t.TempDir()
	long := "needle" + strings.Repeat("é", 1000)
	writeFixture(t, root, "long.txt", long)

	out := search(t, root, map[string]any{"query": "needle"})
	require.Len(t, out.Results, 1)
	assert.Equal(t, maxSnippetChars, len([]rune(out.Results[0].Snippet)))
}

func TestSearchFilesRequiresQuery(t *testing.T) {
	root := t.TempDir()
	for _, q := range []any{nil, "", "   "} {
		_, err := runTool(t, NewSearchFilesTool(), root, map[string]any{"query": q})
		requireKind(t, err, KindInvalidInput)
	}
}

func TestSearchFilesEmptyResultsNotNil(t *testing.T) {
	out := search(t, t.TempDir(), map[string]any{"query": "absent"})
	assert.NotNil(t, out.Results)
	assert.Empty(t, out.Results)
	assert.False(t, out.Truncated)
}

func TestSearchFilesCancelled(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.txt", "needle")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSearchFilesTool().Execute(ctx, map[string]any{"query": "needle"}, Meta{WorkspaceRoot: root})
	requireKind(t, err, KindInternal)
	assert.Equal(t, "search cancelled", err.Error())
}
