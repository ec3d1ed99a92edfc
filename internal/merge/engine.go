// Package merge finds every catalog file with a given name below a directory,
// folds their terms into one deduplicated collection and renders the result.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"golang.org/x/text/language"
)

// ProgressFunc is called once per candidate file with current in 1..total.
type ProgressFunc func(current, total int)

// Result of a successful merge run.
type Result struct {
	Document       string
	MatchedCount   int
	MatchedFiles   []string
	CandidateCount int
	Terms          []catalog.Term
}

type engineOptions struct {
	reader     catalog.Reader
	matcher    NameMatcher
	writerOpts []catalog.WriterOption
	stateHook  func(State)
}

type Option func(*engineOptions)

func WithReader(reader catalog.Reader) Option {
	return func(o *engineOptions) {
		o.reader = reader
	}
}

func WithMatcher(matcher NameMatcher) Option {
	return func(o *engineOptions) {
		o.matcher = matcher
	}
}

// WithLocale matches file names with the casing rules of locale.
func WithLocale(locale language.Tag) Option {
	return func(o *engineOptions) {
		o.matcher = NewLocaleMatcher(locale)
	}
}

func WithLineBreak(lineBreak string) Option {
	return func(o *engineOptions) {
		o.writerOpts = append(o.writerOpts, catalog.WithLineBreak(lineBreak))
	}
}

// WithStateHook observes run state transitions.
func WithStateHook(hook func(State)) Option {
	return func(o *engineOptions) {
		o.stateHook = hook
	}
}

// Engine runs merges. Runs are sequential; an Engine may be reused.
type Engine struct {
	reader    catalog.Reader
	matcher   NameMatcher
	writer    catalog.Writer
	stateHook func(State)
}

func NewEngine(opts ...Option) *Engine {
	options := engineOptions{
		reader:    catalog.NewReader(),
		stateHook: func(State) {},
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.matcher == nil {
		options.matcher = NewLocaleMatcher(language.Und)
	}

	return &Engine{
		reader:    options.reader,
		matcher:   options.matcher,
		writer:    catalog.NewWriter(options.writerOpts...),
		stateHook: options.stateHook,
	}
}

// ValidateRequest checks the merge preconditions. Nothing beyond the
// existence of directory is touched.
func ValidateRequest(directory, fileName string) error {
	if directory == "" {
		return NewError(ErrValidation, ReasonEmptyDirectory, "the start directory cannot be empty")
	}

	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		e := NewError(ErrValidation, ReasonDirectoryNotFound, "the directory doesn't exist").WithPath(directory)
		e.Cause = err
		return e
	}

	if fileName == "" {
		return NewError(ErrValidation, ReasonEmptyFileName, "the xml file name cannot be empty")
	}
	return nil
}

// Run merges every catalog named fileName below directory.
func Run(ctx context.Context, directory, fileName string, onProgress ProgressFunc) (*Result, error) {
	return NewEngine().Run(ctx, directory, fileName, onProgress)
}

func (e *Engine) Run(ctx context.Context, directory, fileName string, onProgress ProgressFunc) (*Result, error) {
	e.stateHook(StateValidating)
	if err := ValidateRequest(directory, fileName); err != nil {
		e.stateHook(StateFailed)
		return nil, err
	}

	return e.scan(ctx, os.DirFS(directory), directory, fileName, onProgress)
}

// RunFS merges from fsys. Only the file name is validated.
func (e *Engine) RunFS(ctx context.Context, fsys fs.FS, fileName string, onProgress ProgressFunc) (*Result, error) {
	e.stateHook(StateValidating)
	if fileName == "" {
		e.stateHook(StateFailed)
		return nil, NewError(ErrValidation, ReasonEmptyFileName, "the xml file name cannot be empty")
	}

	return e.scan(ctx, fsys, "", fileName, onProgress)
}

func (e *Engine) scan(ctx context.Context, fsys fs.FS, root, fileName string, onProgress ProgressFunc) (result *Result, err error) {
	defer func() {
		if err != nil {
			e.stateHook(StateFailed)
			return
		}
		e.stateHook(StateDone)
	}()

	if onProgress == nil {
		onProgress = func(int, int) {}
	}

	e.stateHook(StateScanning)
	log.Info("Scanning %s for %q", displayRoot(root), fileName)

	candidates, err := findCandidates(fsys)
	if err != nil {
		return nil, NewErrorWithCause(ErrIO, ReasonReadFailed, "failed to enumerate catalog files", err).
			WithPath(displayRoot(root))
	}

	collection := NewCollection()
	matched := make([]string, 0)
	total := len(candidates)

	for i, candidate := range candidates {
		if e.matcher.Match(path.Base(candidate), fileName) {
			fullPath := joinRoot(root, candidate)

			terms, err := e.readCandidate(fsys, candidate)
			if err != nil {
				var mergeErr *Error
				if errors.As(err, &mergeErr) {
					mergeErr.WithPath(fullPath)
				}
				log.Error("Failed to read catalog %s: %v", fullPath, err)
				return nil, err
			}

			added := collection.AddAll(terms)
			matched = append(matched, fullPath)
			log.Debug("Matched %s: %d term(s), %d new", fullPath, len(terms), added)
		}

		onProgress(i+1, total)

		// the only safe point to abandon a run
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	e.stateHook(StateSerializing)
	terms := collection.Terms()

	var sb strings.Builder
	if err := e.writer.Write(&sb, terms); err != nil {
		return nil, NewErrorWithCause(ErrIO, ReasonWriteFailed, "failed to render merged catalog", err)
	}

	log.Info("Merged %d file(s) out of %d candidate(s) into %d term(s)", len(matched), total, len(terms))

	return &Result{
		Document:       sb.String(),
		MatchedCount:   len(matched),
		MatchedFiles:   matched,
		CandidateCount: total,
		Terms:          terms,
	}, nil
}

// readCandidate reads the whole file before parsing, so no handle stays
// open across iterations.
func (e *Engine) readCandidate(fsys fs.FS, name string) ([]catalog.Term, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, NewErrorWithCause(ErrIO, ReasonReadFailed, "failed to read catalog file", err)
	}

	terms, err := e.reader.Read(bytes.NewReader(data))
	if err != nil {
		return nil, NewErrorWithCause(ErrParse, ReasonMalformedDocument,
			fmt.Sprintf("failed to parse %s", path.Base(name)), err)
	}
	return terms, nil
}

// findCandidates lists every file with the catalog extension in lexical walk order.
func findCandidates(fsys fs.FS) ([]string, error) {
	ret := make([]string, 0)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(path.Ext(p), catalog.Extension) {
			ret = append(ret, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func joinRoot(root, name string) string {
	if root == "" {
		return filepath.FromSlash(name)
	}
	return filepath.Join(root, filepath.FromSlash(name))
}

func displayRoot(root string) string {
	if root == "" {
		return "."
	}
	return root
}
