// Package fileutil holds small filesystem helpers, used by the frontier's
// save-file handling.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Exists reports whether path exists on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Extension returns the lowercase file extension of a URL path, without the
// leading dot. Returns "" when the path has no extension.
func Extension(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
