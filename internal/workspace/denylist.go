package workspace

// skipDirs are directory names never descended into during a search:
// version-control metadata, dependency caches and build output.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"dist":         {},
	".angular":     {},
}

// IsSkippedDir reports whether a directory with this base name is excluded
// from traversal.
func IsSkippedDir(name string) bool {
	_, ok := skipDirs[name]
	return ok
}
