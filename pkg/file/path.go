package file

import (
	"path/filepath"
	"strings"
)

// ReplaceExt swaps the last extension of path for ext, adding a leading dot
// when ext lacks one. Dot files and names without extension get ext appended.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	name := filepath.Base(path)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return filepath.Join(filepath.Dir(path), name+ext)
}
