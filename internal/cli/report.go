package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/fatih/color"
)

var (
	errorTitle   = color.New(color.FgRed, color.Bold)
	warningTitle = color.New(color.FgYellow, color.Bold)
	successTitle = color.New(color.FgGreen, color.Bold)
)

var categoryKeys = map[string]string{
	merge.CategoryDirectory: termmap.KeyTitleDirectory,
	merge.CategoryFileName:  termmap.KeyTitleFileName,
	merge.CategoryParse:     termmap.KeyTitleParse,
	merge.CategorySave:      termmap.KeyTitleSave,
}

var reasonKeys = map[merge.Reason]string{
	merge.ReasonEmptyDirectory:    termmap.KeyEmptyDirectory,
	merge.ReasonDirectoryNotFound: termmap.KeyDirectoryNotFound,
	merge.ReasonEmptyFileName:     termmap.KeyEmptyFileName,
	merge.ReasonMalformedDocument: termmap.KeyParseFailed,
	merge.ReasonReadFailed:        termmap.KeyReadFailed,
	merge.ReasonWriteFailed:       termmap.KeySaveFailed,
	merge.ReasonOverwriteDeclined: termmap.KeyOverwriteDeclined,
}

// FormatError returns the translated title and message for err. Errors
// that are not merge errors get an empty title.
func (a *App) FormatError(err error) (string, string) {
	var mergeErr *merge.Error
	if !errors.As(err, &mergeErr) {
		return "", err.Error()
	}

	title := a.translate(categoryKeys[mergeErr.Category()])
	message := mergeErr.Message
	if key, ok := reasonKeys[mergeErr.Reason]; ok {
		message = a.translate(key)
	}
	if mergeErr.Path != "" {
		message = fmt.Sprintf("%s: %s", message, mergeErr.Path)
	}
	return title, message
}

// reportError prints err and marks it as reported.
func (a *App) reportError(w io.Writer, err error) error {
	title, message := a.FormatError(err)
	if title == "" {
		errorTitle.Fprint(w, "Error")
	} else {
		errorTitle.Fprint(w, title)
	}
	fmt.Fprintf(w, ": %s\n", message)
	return &reportedError{err: err}
}
