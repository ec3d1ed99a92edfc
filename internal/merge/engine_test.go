package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func termXML(terms ...catalog.Term) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?><terms>`)
	for _, t := range terms {
		sb.WriteString("<term><name>" + t.Name + "</name><englishValue>" + t.EnglishValue +
			"</englishValue><frenchValue>" + t.FrenchValue + "</frenchValue></term>")
	}
	sb.WriteString("</terms>")
	return sb.String()
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_DeduplicatesFullTriple(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/target.xml", termXML(
		catalog.Term{Name: "X", EnglishValue: "a", FrenchValue: "b"},
	))
	writeFile(t, root, "b/target.xml", termXML(
		catalog.Term{Name: "X", EnglishValue: "a", FrenchValue: "b"},
		catalog.Term{Name: "X", EnglishValue: "a", FrenchValue: "c"},
	))

	result, err := NewEngine(WithLineBreak("\n")).Run(context.Background(), root, "target.xml", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MatchedCount)
	assert.Equal(t, []catalog.Term{
		{Name: "X", EnglishValue: "a", FrenchValue: "b"},
		{Name: "X", EnglishValue: "a", FrenchValue: "c"},
	}, result.Terms)
	assert.Equal(t, catalog.Render(result.Terms, catalog.WithLineBreak("\n")), result.Document)
}

func TestRun_PreservesFirstSeenOrderAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one/terms.xml", termXML(
		catalog.Term{Name: "B", EnglishValue: "2", FrenchValue: "deux"},
		catalog.Term{Name: "A", EnglishValue: "1", FrenchValue: "un"},
	))
	writeFile(t, root, "two/terms.xml", termXML(
		catalog.Term{Name: "C", EnglishValue: "3", FrenchValue: "trois"},
		catalog.Term{Name: "A", EnglishValue: "1", FrenchValue: "un"},
		catalog.Term{Name: "B", EnglishValue: "2", FrenchValue: "deux"},
	))

	result, err := Run(context.Background(), root, "terms.xml", nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Terms))
	for _, term := range result.Terms {
		names = append(names, term.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestRun_MatchesBaseNameCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	term := catalog.Term{Name: "X", EnglishValue: "a", FrenchValue: "b"}
	writeFile(t, root, "target.xml", termXML(term))
	writeFile(t, root, "upper/TARGET.XML", termXML(term))
	writeFile(t, root, "deep/er/still/Target.Xml", termXML(term))
	writeFile(t, root, "other.xml", termXML(term))
	writeFile(t, root, "targets.xml", termXML(term))
	writeFile(t, root, "target.xml.bak", termXML(term))
	writeFile(t, root, "target/readme.txt", "not a catalog")

	result, err := Run(context.Background(), root, "target.xml", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.MatchedCount)
	assert.Equal(t, []string{
		filepath.Join(root, "deep", "er", "still", "Target.Xml"),
		filepath.Join(root, "target.xml"),
		filepath.Join(root, "upper", "TARGET.XML"),
	}, result.MatchedFiles)
	assert.Equal(t, 5, result.CandidateCount)
	assert.Len(t, result.Terms, 1)
}

func TestRun_ProgressCountsEveryCandidate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.xml", termXML())
	writeFile(t, root, "sub/b.XML", termXML())
	writeFile(t, root, "sub/target.xml", termXML(catalog.Term{Name: "X"}))
	writeFile(t, root, "notes.txt", "ignored")

	type tick struct{ current, total int }
	var ticks []tick
	result, err := Run(context.Background(), root, "target.xml", func(current, total int) {
		ticks = append(ticks, tick{current, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []tick{{1, 3}, {2, 3}, {3, 3}}, ticks)
	assert.Equal(t, 1, result.MatchedCount)
}

func TestRun_ZeroMatches(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		result, err := NewEngine(WithLineBreak("\n")).Run(context.Background(), t.TempDir(), "target.xml", nil)
		require.NoError(t, err)

		assert.Equal(t, 0, result.MatchedCount)
		assert.Empty(t, result.Terms)
		assert.Equal(t, `<?xml version="1.0" encoding="utf-8"?>`+"\n<terms></terms>\n", result.Document)
	})

	t.Run("no file with that name", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "other.xml", termXML(catalog.Term{Name: "X"}))

		result, err := NewEngine(WithLineBreak("\n")).Run(context.Background(), root, "target.xml", nil)
		require.NoError(t, err)

		assert.Equal(t, 0, result.MatchedCount)
		assert.Equal(t, 1, result.CandidateCount)
		assert.Equal(t, `<?xml version="1.0" encoding="utf-8"?>`+"\n<terms></terms>\n", result.Document)
	})
}

func TestRun_Validation(t *testing.T) {
	root := t.TempDir()
	regularFile := writeFile(t, root, "file.xml", termXML())

	tests := []struct {
		name      string
		directory string
		fileName  string
		reason    Reason
		category  string
	}{
		{"empty directory", "", "x.xml", ReasonEmptyDirectory, CategoryDirectory},
		{"missing directory", filepath.Join(root, "does", "not", "exist"), "x.xml", ReasonDirectoryNotFound, CategoryDirectory},
		{"directory is a file", regularFile, "x.xml", ReasonDirectoryNotFound, CategoryDirectory},
		{"empty file name", root, "", ReasonEmptyFileName, CategoryFileName},
		{"empty directory checked first", "", "", ReasonEmptyDirectory, CategoryDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			result, err := Run(context.Background(), tt.directory, tt.fileName, func(int, int) { called = true })

			require.Error(t, err)
			assert.Nil(t, result)
			assert.False(t, called, "no traversal may happen before validation passes")
			assert.True(t, IsErrorType(err, ErrValidation))
			assert.Equal(t, tt.reason, ReasonOf(err))

			var mergeErr *Error
			require.True(t, errors.As(err, &mergeErr))
			assert.Equal(t, tt.category, mergeErr.Category())
		})
	}
}

func TestValidateRequest_OK(t *testing.T) {
	assert.NoError(t, ValidateRequest(t.TempDir(), "x.xml"))
}

func TestRun_ParseFailureAbortsWithoutOutput(t *testing.T) {
	root := t.TempDir()
	term := catalog.Term{Name: "X", EnglishValue: "a", FrenchValue: "b"}
	writeFile(t, root, "a/target.xml", termXML(term))
	bad := writeFile(t, root, "b/target.xml", "<terms><<broken</terms>")
	writeFile(t, root, "c/target.xml", termXML(term))

	var states []State
	engine := NewEngine(WithStateHook(func(s State) { states = append(states, s) }))

	result, err := engine.Run(context.Background(), root, "target.xml", nil)
	require.Error(t, err)
	assert.Nil(t, result)

	assert.True(t, IsErrorType(err, ErrParse))
	assert.ErrorIs(t, err, catalog.ErrMalformed)

	var mergeErr *Error
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, bad, mergeErr.Path)
	assert.Equal(t, CategoryParse, mergeErr.Category())

	assert.Equal(t, []State{StateValidating, StateScanning, StateFailed}, states)
}

func TestRun_StateTransitions(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var states []State
		engine := NewEngine(WithStateHook(func(s State) { states = append(states, s) }))

		_, err := engine.Run(context.Background(), t.TempDir(), "target.xml", nil)
		require.NoError(t, err)
		assert.Equal(t, []State{StateValidating, StateScanning, StateSerializing, StateDone}, states)
		assert.True(t, states[len(states)-1].Terminal())
	})

	t.Run("validation failure", func(t *testing.T) {
		var states []State
		engine := NewEngine(WithStateHook(func(s State) { states = append(states, s) }))

		_, err := engine.Run(context.Background(), "", "target.xml", nil)
		require.Error(t, err)
		assert.Equal(t, []State{StateValidating, StateFailed}, states)
	})
}

func TestRun_CancelledBetweenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/target.xml", termXML(catalog.Term{Name: "A"}))
	writeFile(t, root, "b/target.xml", termXML(catalog.Term{Name: "B"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	result, err := Run(ctx, root, "target.xml", func(current, total int) {
		calls++
		cancel()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, 1, calls)
}

func TestRunFS_InMemoryTree(t *testing.T) {
	fsys := fstest.MapFS{
		"fr/app/Terms.xml": {Data: []byte(termXML(catalog.Term{Name: "Save", EnglishValue: "Save", FrenchValue: "Enregistrer"}))},
		"en/app/terms.xml": {Data: []byte(termXML(catalog.Term{Name: "Quit", EnglishValue: "Quit", FrenchValue: "Quitter"}))},
		"en/app/other.xml": {Data: []byte(termXML(catalog.Term{Name: "Nope"}))},
	}

	result, err := NewEngine().RunFS(context.Background(), fsys, "terms.xml", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MatchedCount)
	assert.Equal(t, []string{
		filepath.FromSlash("en/app/terms.xml"),
		filepath.FromSlash("fr/app/Terms.xml"),
	}, result.MatchedFiles)
	assert.Equal(t, "Quit", result.Terms[0].Name)
	assert.Equal(t, "Save", result.Terms[1].Name)
}

func TestRunFS_EmptyFileName(t *testing.T) {
	_, err := NewEngine().RunFS(context.Background(), fstest.MapFS{}, "", nil)
	assert.Equal(t, ReasonEmptyFileName, ReasonOf(err))
}

type stubMatcher struct{ names []string }

func (m *stubMatcher) Match(baseName, fileName string) bool {
	m.names = append(m.names, baseName)
	return baseName == fileName
}

func TestEngine_UsesInjectedMatcher(t *testing.T) {
	fsys := fstest.MapFS{
		"terms.xml": {Data: []byte(termXML(catalog.Term{Name: "A"}))},
		"TERMS.xml": {Data: []byte(termXML(catalog.Term{Name: "B"}))},
	}
	matcher := &stubMatcher{}

	result, err := NewEngine(WithMatcher(matcher)).RunFS(context.Background(), fsys, "terms.xml", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MatchedCount)
	assert.ElementsMatch(t, []string{"terms.xml", "TERMS.xml"}, matcher.names)
}
