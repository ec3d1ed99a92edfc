// Package cli is the termmerge command line front end.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/MimeLyc/term-catalog-merger/internal/config"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
)

// App carries what every command needs.
type App struct {
	Config     *config.Config
	Dictionary *termmap.Dictionary
	// Settings remembers the last merge; nil disables it.
	Settings *config.RuntimeSettingsStore
	In       io.Reader
	// Interactive enables progress output and overwrite prompts.
	Interactive bool

	language language.Tag
}

func NewApp(cfg *config.Config, dict *termmap.Dictionary, settings *config.RuntimeSettingsStore) *App {
	return &App{
		Config:      cfg,
		Dictionary:  dict,
		Settings:    settings,
		In:          os.Stdin,
		Interactive: IsInteractive(os.Stdin, os.Stderr),
		language:    cfg.UI.Language,
	}
}

// IsInteractive reports whether both files are terminals.
func IsInteractive(in, out *os.File) bool {
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *App) Language() language.Tag {
	return a.language
}

func (a *App) setLanguage(lang string) error {
	if lang == "" {
		return nil
	}
	tag, err := termmap.ParseLanguage(lang)
	if err != nil {
		return err
	}
	a.language = tag
	return nil
}

func (a *App) translate(key string) string {
	return a.Dictionary.Translate(a.language, key)
}

// remember stores the last merge request. Failures are only logged.
func (a *App) remember(directory, fileName string) {
	if a.Settings == nil {
		return
	}
	base, _ := a.language.Base()
	_, err := a.Settings.UpdateRuntimeSettings(config.RuntimeSettings{
		LastDirectory: directory,
		LastFileName:  fileName,
		Language:      base.String(),
	})
	if err != nil {
		log.Warn("Failed to save settings to %s: %v", a.Settings.Path(), err)
	}
}

// reportedError has already been shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

// Reported reports whether err was already printed by a command.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
