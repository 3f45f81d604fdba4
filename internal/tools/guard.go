package tools

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Guard keeps caller-supplied paths inside a workspace root.
type Guard struct {
	root string
}

// NewGuard returns a guard for root. root should already be absolute; it is
// canonicalized when it exists.
func NewGuard(root string) Guard {
	root = filepath.Clean(root)
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return Guard{root: root}
}

// Validate checks raw and returns its normalized workspace-relative form
// with forward slashes. It does not touch the filesystem.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", InvalidInputf("path is required")
	}
	if filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", InvalidInputf("path must be relative to workspace")
	}
	slashed := strings.ReplaceAll(trimmed, "\\", "/")
	if path.IsAbs(slashed) {
		return "", InvalidInputf("path must be relative to workspace")
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", InvalidInputf("path must stay within workspace")
	}
	return clean, nil
}

// Resolve validates raw and joins it to the root. The join is resolved
// twice: scoped to the root, and the way the host would follow it. A path
// whose symlinks lead anywhere else than the scoped join is rejected, which
// covers links out of the workspace and dangling links.
func (g Guard) Resolve(raw string) (rel string, abs string, err error) {
	rel, err = Validate(raw)
	if err != nil {
		return "", "", err
	}
	scoped, err := securejoin.SecureJoin(g.root, filepath.FromSlash(rel))
	if err != nil {
		return "", "", InvalidInputf("path must stay within workspace")
	}
	if !g.Contains(scoped) || g.hostPath(rel) != scoped {
		return "", "", InvalidInputf("path must stay within workspace")
	}
	return rel, scoped, nil
}

// hostPath resolves the longest existing prefix of rel with the host's
// symlink rules and appends the remaining components unchanged.
func (g Guard) hostPath(rel string) string {
	parts := strings.Split(rel, "/")
	for i := len(parts); i > 0; i-- {
		prefix := filepath.Join(g.root, filepath.FromSlash(path.Join(parts[:i]...)))
		resolved, err := filepath.EvalSymlinks(prefix)
		if err != nil {
			continue
		}
		return filepath.Join(append([]string{resolved}, parts[i:]...)...)
	}
	return filepath.Join(append([]string{g.root}, parts...)...)
}

// Contains reports whether abs is the root or strictly below it.
func (g Guard) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == g.root {
		return true
	}
	prefix := g.root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(abs, prefix)
}
