// Package persistence saves rendered catalogs.
package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/gofrs/flock"
	"github.com/viant/afs"
)

const documentMode = 0o644

// ConfirmFunc is asked before an existing document is replaced.
// Returning false keeps the existing file.
type ConfirmFunc func(path string) bool

type Option func(*DocumentStore)

// WithConfirm sets the overwrite confirmation. Without one, existing
// documents are replaced.
func WithConfirm(confirm ConfirmFunc) Option {
	return func(s *DocumentStore) {
		s.confirm = confirm
	}
}

func WithFileSystem(fs afs.Service) Option {
	return func(s *DocumentStore) {
		s.fs = fs
	}
}

// DocumentStore reads and writes catalog documents. Writes to the same path,
// including the overwrite check, are serialized with an advisory lock on
// <path>.lock, which is left in place.
type DocumentStore struct {
	fs      afs.Service
	confirm ConfirmFunc
}

func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{fs: afs.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether a document is present at path.
func (s *DocumentStore) Exists(ctx context.Context, path string) (bool, error) {
	return s.fs.Exists(ctx, path)
}

// ReadDocument returns the content of the document at path.
func (s *DocumentStore) ReadDocument(ctx context.Context, path string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, merge.NewErrorWithCause(merge.ErrIO, merge.ReasonReadFailed, "failed to read document", err).
			WithPath(path)
	}
	return data, nil
}

// WriteDocument persists text at path. It fails with an IO error when the
// path is unwritable or the overwrite is declined.
func (s *DocumentStore) WriteDocument(ctx context.Context, path, text string) error {
	if strings.TrimSpace(path) == "" {
		return merge.NewError(merge.ErrIO, merge.ReasonWriteFailed, "the output path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return writeFailed(path, err)
	}

	// the lock file outlives the write so every writer locks the same inode
	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return writeFailed(path, fmt.Errorf("failed to acquire lock on %s: %w", lockPath, err))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("Failed to release lock on %s: %v", lockPath, err)
		}
	}()

	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return writeFailed(path, err)
	}
	if exists && s.confirm != nil && !s.confirm(path) {
		log.Info("Kept existing document %s", path)
		return merge.NewError(merge.ErrIO, merge.ReasonOverwriteDeclined, "overwrite declined").WithPath(path)
	}

	if err := s.fs.Upload(ctx, path, documentMode, strings.NewReader(text)); err != nil {
		return writeFailed(path, err)
	}

	log.Info("Saved %d byte(s) to %s", len(text), path)
	return nil
}

func writeFailed(path string, cause error) error {
	return merge.NewErrorWithCause(merge.ErrIO, merge.ReasonWriteFailed, "failed to write document", cause).
		WithPath(path)
}
