package merge

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NameMatcher decides whether a file's base name is the requested one.
type NameMatcher interface {
	Match(baseName, fileName string) bool
}

// LocaleMatcher compares names case-insensitively using the lower-casing
// rules of a locale. Width, control characters and compatibility forms stay
// significant.
type LocaleMatcher struct {
	mu     sync.Mutex
	lower  cases.Caser
	locale language.Tag
}

func NewLocaleMatcher(locale language.Tag) *LocaleMatcher {
	return &LocaleMatcher{
		lower:  cases.Lower(locale),
		locale: locale,
	}
}

func (m *LocaleMatcher) Locale() language.Tag {
	return m.locale
}

func (m *LocaleMatcher) Match(baseName, fileName string) bool {
	// Caser keeps internal state
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fold(baseName) == m.fold(fileName)
}

func (m *LocaleMatcher) fold(name string) string {
	return m.lower.String(norm.NFC.String(name))
}
