package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MimeLyc/term-catalog-merger/internal/config"
	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/pkg/file"
)

// MergedSuffix replaces the catalog extension in default output names.
const MergedSuffix = ".merged.xml"

// Merger runs one merge.
type Merger interface {
	Run(ctx context.Context, directory, fileName string, onProgress merge.ProgressFunc) (*merge.Result, error)
}

// DocumentWriter persists merged documents.
type DocumentWriter interface {
	Exists(ctx context.Context, path string) (bool, error)
	WriteDocument(ctx context.Context, path, text string) error
}

// Job describes the scheduled merge.
type Job struct {
	Directory string
	FileName  string
	Output    string
}

// JobFromConfig builds the scheduled job. Output defaults to
// <directory>/<name>.merged.xml.
func JobFromConfig(cfg config.Config) (Job, error) {
	job := Job{
		Directory: strings.TrimSpace(cfg.Merge.Directory),
		FileName:  strings.TrimSpace(cfg.Merge.FileName),
		Output:    strings.TrimSpace(cfg.Merge.Output),
	}
	if err := merge.ValidateRequest(job.Directory, job.FileName); err != nil {
		return Job{}, fmt.Errorf("invalid scheduled merge: %w", err)
	}
	if job.Output == "" {
		job.Output = DefaultOutput(job.Directory, job.FileName)
	}
	return job, nil
}

func DefaultOutput(directory, fileName string) string {
	return filepath.Join(directory, file.ReplaceExt(fileName, MergedSuffix))
}

// RunReport summarizes one scheduled run.
type RunReport struct {
	// Skipped: no catalog changed, nothing was merged.
	Skipped bool

	// Unchanged: merged, but the output already held the same document.
	Unchanged bool

	MatchedCount int
	TermCount    int
	Output       string
}
