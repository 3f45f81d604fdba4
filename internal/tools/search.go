package tools

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ws-tools/internal/util"
	"ws-tools/internal/workspace"
)

const (
	defaultMaxResults       = 20
	maxResultsLimit         = 200
	defaultMaxFileSizeBytes = 2_000_000
	minFileSizeBytes        = 1024
	maxFileSizeLimit        = 10_000_000
	maxSnippetChars         = 500
	pathMatchSnippet        = "[path match]"
)

// SearchFilesTool scans workspace files for a plain-text query.
type SearchFilesTool struct{}

// NewSearchFilesTool constructs the search_files tool.
func NewSearchFilesTool() *SearchFilesTool { return &SearchFilesTool{} }

func (s *SearchFilesTool) Name() string { return "search_files" }

func (s *SearchFilesTool) Description() string {
	return "Search text in files under workspace with size and result limits."
}

func (s *SearchFilesTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":               map[string]any{"type": "string", "description": "Search string (plain text)"},
			"glob":                map[string]any{"type": "string", "description": "Optional glob like **/*.ts", "default": defaultGlob},
			"max_results":         map[string]any{"type": "integer", "default": defaultMaxResults},
			"max_file_size_bytes": map[string]any{"type": "integer", "default": defaultMaxFileSizeBytes},
		},
		"required": []string{"query"},
	}
}

type searchInput struct {
	Query            string `mapstructure:"query"`
	Glob             string `mapstructure:"glob"`
	MaxResults       any    `mapstructure:"max_results"`
	MaxFileSizeBytes any    `mapstructure:"max_file_size_bytes"`
}

// Match is a single search hit.
type Match struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

// SearchOutput is the search_files payload.
type SearchOutput struct {
	Query     string  `json:"query"`
	Results   []Match `json:"results"`
	Truncated bool    `json:"truncated"`
}

type searchOptions struct {
	root             string
	queryLower       string
	glob             *regexp.Regexp
	maxResults       int
	maxFileSizeBytes int64
}

type searchState struct {
	results   []Match
	truncated bool
}

// push records m and reports whether the cap has been reached.
func (st *searchState) push(m Match, maxResults int) bool {
	st.results = append(st.results, m)
	if len(st.results) >= maxResults {
		st.truncated = true
		return true
	}
	return false
}

var errStopSearch = errors.New("stop-search")

func (s *SearchFilesTool) Execute(ctx context.Context, input map[string]any, meta Meta) (Result, error) {
	var args searchInput
	if err := decodeArgs(input, &args); err != nil {
		return Result{}, err
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return Result{}, InvalidInputf("query is required")
	}
	glob := strings.TrimSpace(args.Glob)
	if glob == "" {
		glob = defaultGlob
	}
	globRegex, err := compileGlob(glob)
	if err != nil {
		return Result{}, InvalidInputf("invalid glob: %s", glob)
	}

	opts := searchOptions{
		root:             filepath.Clean(meta.WorkspaceRoot),
		queryLower:       strings.ToLower(query),
		glob:             globRegex,
		maxResults:       clampInt(args.MaxResults, defaultMaxResults, 1, maxResultsLimit),
		maxFileSizeBytes: int64(clampInt(args.MaxFileSizeBytes, defaultMaxFileSizeBytes, minFileSizeBytes, maxFileSizeLimit)),
	}

	start := time.Now()
	state := &searchState{results: []Match{}}
	if err := searchDir(ctx, opts.root, state, opts); err != nil && !errors.Is(err, errStopSearch) {
		if ctx.Err() != nil {
			return Result{}, Wrap(err, "search cancelled")
		}
		return Result{}, Wrap(err, "failed to search workspace")
	}

	output := SearchOutput{Query: query, Results: state.results, Truncated: state.truncated}
	return Result{ToolName: s.Name(), Payload: output, Truncated: state.truncated, DurationMs: time.Since(start).Milliseconds()}, nil
}

// searchDir walks dir depth-first in directory order. Returning
// errStopSearch unwinds the whole walk once the cap is hit.
func searchDir(ctx context.Context, dir string, state *searchState, opts searchOptions) error {
	entries, err := readDirUnsorted(dir)
	if err != nil {
		if dir == opts.root {
			return err
		}
		// Vanished or unreadable subdirectory.
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(state.results) >= opts.maxResults {
			state.truncated = true
			return errStopSearch
		}

		abs := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if workspace.IsSkippedDir(entry.Name()) {
				continue
			}
			if err := searchDir(ctx, abs, state, opts); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if searchFile(abs, entry, state, opts) {
			return errStopSearch
		}
	}
	return nil
}

// searchFile scans one file and reports whether the cap was reached.
func searchFile(abs string, entry os.DirEntry, state *searchState, opts searchOptions) bool {
	rel, err := filepath.Rel(opts.root, abs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if strings.Contains(strings.ToLower(rel), opts.queryLower) {
		if state.push(Match{Path: rel, Line: 1, Snippet: pathMatchSnippet}, opts.maxResults) {
			return true
		}
	}
	if !opts.glob.MatchString(rel) {
		return false
	}

	info, err := entry.Info()
	if err != nil || info.Size() > opts.maxFileSizeBytes {
		return false
	}
	raw, err := os.ReadFile(abs)
	if err != nil || bytes.IndexByte(raw, 0) != -1 {
		return false
	}

	for index, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.Contains(strings.ToLower(line), opts.queryLower) {
			continue
		}
		snippet, _ := util.TruncateRunes(strings.TrimSpace(line), maxSnippetChars)
		if state.push(Match{Path: rel, Line: index + 1, Snippet: snippet}, opts.maxResults) {
			return true
		}
	}
	return false
}

// readDirUnsorted lists dir in the order the filesystem returns entries.
func readDirUnsorted(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}
