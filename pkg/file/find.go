package file

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FindRecentAfter lists the files below dir modified after startTime.
// A nil match accepts every file.
func FindRecentAfter(dir string, startTime time.Time, match func(path string) bool) ([]string, error) {
	var recentFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (match != nil && !match(path)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(startTime) {
			recentFiles = append(recentFiles, path)
		}
		return nil
	})

	return recentFiles, err
}

// FindAll lists the files below dir accepted by match, in lexical order.
func FindAll(dir string, match func(path string) bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (match == nil || match(path)) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
