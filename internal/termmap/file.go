package termmap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
)

// DefaultFilename is the dictionary file looked up next to the working directory.
const DefaultFilename = "translations.xml"

//go:embed default_terms.xml
var defaultTerms []byte

// DefaultCatalog returns the built-in dictionary document.
func DefaultCatalog() []byte {
	out := make([]byte, len(defaultTerms))
	copy(out, defaultTerms)
	return out
}

// FindInAncestors walks up from startDir looking for a dictionary file.
// Returns the first found path or empty string.
func FindInAncestors(startDir string) string {
	currentDir := startDir

	for {
		candidate := filepath.Join(currentDir, DefaultFilename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LoadDictionary reads a dictionary catalog. An empty path loads the
// built-in dictionary.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		terms, err := catalog.Parse(defaultTerms)
		if err != nil {
			return nil, fmt.Errorf("failed to parse built-in dictionary: %w", err)
		}
		return NewDictionary(terms), nil
	}

	terms, err := catalog.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	return NewDictionary(terms), nil
}

// EnsureFile writes the built-in dictionary to path unless a file is
// already there. It reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("failed to create dictionary directory: %w", err)
		}
	}
	if err := os.WriteFile(path, defaultTerms, 0644); err != nil {
		return false, fmt.Errorf("failed to write dictionary: %w", err)
	}
	return true, nil
}
