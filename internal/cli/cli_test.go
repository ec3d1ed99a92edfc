package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MimeLyc/term-catalog-merger/internal/config"
	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
)

const termsDoc = `<?xml version="1.0" encoding="utf-8"?>
<terms>
  <term><name>X</name><englishValue>a</englishValue><frenchValue>b</frenchValue></term>
</terms>`

const otherTermsDoc = `<?xml version="1.0" encoding="utf-8"?>
<terms>
  <term><name>X</name><englishValue>a</englishValue><frenchValue>b</frenchValue></term>
  <term><name>X</name><englishValue>a</englishValue><frenchValue>c</frenchValue></term>
</terms>`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	dict, err := termmap.LoadDictionary("")
	require.NoError(t, err)

	settings, err := config.NewRuntimeSettingsStore(filepath.Join(t.TempDir(), "settings.json"), config.RuntimeSettings{})
	require.NoError(t, err)

	cfg := &config.Config{
		UI:       config.UIConfig{Language: termmap.English},
		Merge:    config.MergeConfig{Locale: language.English},
		Schedule: config.ScheduleConfig{CronExpr: "0 * * * *"},
		Lint:     config.LintConfig{MinLength: 24},
	}
	return &App{
		Config:     cfg,
		Dictionary: dict,
		Settings:   settings,
		In:         strings.NewReader(""),
		language:   cfg.UI.Language,
	}
}

func execute(app *App, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"a/terms.xml": termsDoc,
		"b/TERMS.XML": otherTermsDoc,
		"c/other.xml": termsDoc,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(newTestApp(t), "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "termmerge")
	assert.Contains(t, stdout, "merge")
	assert.Contains(t, stdout, "lint")
	assert.Contains(t, stdout, "schedule")
}

func TestMerge_ToStdout(t *testing.T) {
	root := writeTree(t)
	app := newTestApp(t)

	stdout, stderr, err := execute(app, "merge", "--dir", root, "--name", "terms.xml")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(stdout, "<frenchValue>b</frenchValue>"))
	assert.Equal(t, 1, strings.Count(stdout, "<frenchValue>c</frenchValue>"))
	assert.Contains(t, stderr, "The search is over")
	assert.Contains(t, stderr, "Matched files: 2")
	assert.Contains(t, stderr, "Merged terms: 2")

	settings, err := app.Settings.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, config.RuntimeSettings{LastDirectory: root, LastFileName: "terms.xml", Language: "en"}, settings)
}

func TestMerge_ValidationErrorIsTranslated(t *testing.T) {
	app := newTestApp(t)

	_, stderr, err := execute(app, "merge", "--language", "fr", "--name", "terms.xml")
	require.Error(t, err)

	assert.True(t, Reported(err))
	assert.True(t, merge.IsErrorType(err, merge.ErrValidation))
	assert.Contains(t, stderr, "Répertoire: Le répertoire de départ ne peut pas être vide")
}

func TestMerge_ParseErrorNamesFile(t *testing.T) {
	root := writeTree(t)
	bad := filepath.Join(root, "d", "terms.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0o755))
	require.NoError(t, os.WriteFile(bad, []byte("<terms><<"), 0o644))

	stdout, stderr, err := execute(newTestApp(t), "merge", "-d", root, "-n", "terms.xml")
	require.Error(t, err)

	assert.Empty(t, stdout, "no partial document")
	assert.Contains(t, stderr, "Unreadable file: The file is not a valid term catalog: "+bad)
}

func TestMerge_Output(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		input       string
		force       bool
		wantErr     bool
		wantData    string
		wantStderr  string
	}{
		{"declined without terminal", false, "", false, true, "old", "The existing file has been kept"},
		{"forced", false, "", true, false, "new", "Saved to"},
		{"confirmed on terminal", true, "oui\n", false, false, "new", "[y/N]"},
		{"refused on terminal", true, "n\n", false, true, "old", "The existing file has been kept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t)
			output := filepath.Join(t.TempDir(), "merged.xml")
			require.NoError(t, os.WriteFile(output, []byte("old"), 0o644))

			app := newTestApp(t)
			app.Interactive = tt.interactive
			app.In = strings.NewReader(tt.input)

			args := []string{"merge", "-d", root, "-n", "terms.xml", "-o", output}
			if tt.force {
				args = append(args, "--force")
			}
			_, stderr, err := execute(app, args...)

			data, readErr := os.ReadFile(output)
			require.NoError(t, readErr)
			remembered, settingsErr := app.Settings.GetRuntimeSettings()
			require.NoError(t, settingsErr)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, merge.ReasonOverwriteDeclined, merge.ReasonOf(err))
				assert.Equal(t, tt.wantData, string(data))
				assert.Empty(t, remembered.LastDirectory, "a declined save is not remembered")
			} else {
				require.NoError(t, err)
				assert.Contains(t, string(data), "<terms>")
				assert.Equal(t, root, remembered.LastDirectory)
				assert.Equal(t, "terms.xml", remembered.LastFileName)
			}
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestMerge_NewOutputFile(t *testing.T) {
	root := writeTree(t)
	output := filepath.Join(t.TempDir(), "nested", "merged.xml")

	_, _, err := execute(newTestApp(t), "merge", "-d", root, "-n", "terms.xml", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<name>X</name>")
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.xml")
	conflicting := filepath.Join(dir, "conflicting.xml")
	require.NoError(t, os.WriteFile(clean, []byte(termsDoc), 0o644))
	require.NoError(t, os.WriteFile(conflicting, []byte(otherTermsDoc), 0o644))

	t.Run("clean", func(t *testing.T) {
		stdout, _, err := execute(newTestApp(t), "lint", clean)
		require.NoError(t, err)
		assert.Contains(t, stdout, "No issue found")
	})

	t.Run("conflicting", func(t *testing.T) {
		stdout, stderr, err := execute(newTestApp(t), "lint", clean, conflicting)
		require.Error(t, err)
		assert.True(t, Reported(err))
		assert.Contains(t, stdout, "conflicting-values: X: 2 different translations")
		assert.Contains(t, stderr, "Issues found: 1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, stderr, err := execute(newTestApp(t), "lint", filepath.Join(dir, "missing.xml"))
		require.Error(t, err)
		assert.Contains(t, stderr, "The file could not be read")
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.xml")
		require.NoError(t, os.WriteFile(bad, []byte("<terms><<"), 0o644))

		_, stderr, err := execute(newTestApp(t), "lint", bad)
		require.Error(t, err)
		assert.Contains(t, stderr, "The file is not a valid term catalog")
	})
}

func TestSchedule_Once(t *testing.T) {
	root := writeTree(t)

	_, stderr, err := execute(newTestApp(t), "schedule", "--once", "-d", root, "-n", "terms.xml")
	require.NoError(t, err)

	output := filepath.Join(root, "terms.merged.xml")
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<frenchValue>c</frenchValue>")
	assert.Contains(t, stderr, "Matched files: 2")
	assert.Contains(t, stderr, output)
}

func TestSchedule_InvalidJob(t *testing.T) {
	_, stderr, err := execute(newTestApp(t), "schedule", "--once", "-n", "terms.xml")
	require.Error(t, err)
	assert.Contains(t, stderr, "The start directory cannot be empty")
}

func TestFormatError(t *testing.T) {
	app := newTestApp(t)

	title, message := app.FormatError(errors.New("plain failure"))
	assert.Empty(t, title)
	assert.Equal(t, "plain failure", message)

	title, message = app.FormatError(merge.NewError(merge.ErrIO, merge.ReasonWriteFailed, "failed").WithPath("/out.xml"))
	assert.Equal(t, "Save", title)
	assert.Equal(t, "The file could not be saved: /out.xml", message)
}

func TestUnknownLanguage(t *testing.T) {
	_, _, err := execute(newTestApp(t), "--language", "de", "merge")
	assert.Error(t, err)
}
