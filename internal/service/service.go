package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"github.com/MimeLyc/term-catalog-merger/internal/config"
	"github.com/MimeLyc/term-catalog-merger/internal/merge"
	"github.com/MimeLyc/term-catalog-merger/pkg/file"
	"github.com/MimeLyc/term-catalog-merger/pkg/icron"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/robfig/cron/v3"
)

// MergeService re-runs one merge on a cron schedule.
type MergeService struct {
	job      Job
	cronExpr string
	merger   Merger
	store    DocumentWriter
	matcher  merge.NameMatcher
	cron     *cron.Cron
	now      func() time.Time

	group singleflight.Group

	mu             sync.Mutex
	lastTrigerTime time.Time
	lastDigest     uint64
	// catalogs read by the last successful run, sorted
	lastMatched []string
}

func NewRunnableMergeService(
	cfg config.Config,
	merger Merger,
	store DocumentWriter,
	cron *cron.Cron,
) (*MergeService, error) {
	job, err := JobFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &MergeService{
		job:      job,
		cronExpr: cfg.Schedule.CronExpr,
		merger:   merger,
		store:    store,
		matcher:  merge.NewLocaleMatcher(cfg.Merge.Locale),
		cron:     cron,
		now:      time.Now,
	}, nil
}

func (s *MergeService) Job() Job {
	return s.job
}

// Schedule registers the merge with the cron runner. Overlapping triggers
// share the run in progress.
func (s *MergeService) Schedule(ctx context.Context) error {
	log.Info("Schedule merge of %q in %s (%s)", s.job.FileName, s.job.Directory, s.cronExpr)

	runFunc := func() {
		_, _, _ = s.group.Do("run", func() (any, error) {
			report, err := s.RunOnce(ctx)
			if err != nil {
				log.Error("Scheduled merge failed: %v", err)
				return nil, err
			}
			return report, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

// NextTrigger reports the schedule around now.
func (s *MergeService) NextTrigger() (*icron.TriggerInfo, error) {
	return icron.GetTriggerInfo(s.cronExpr, s.now())
}

// RunOnce merges and saves the output. The merge is skipped when the output
// exists, the set of matching catalogs is the one last merged and none of
// them changed since the previous run.
func (s *MergeService) RunOnce(ctx context.Context) (*RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := s.now()

	if !s.lastTrigerTime.IsZero() {
		changed, err := s.changedSince(ctx, s.lastTrigerTime)
		if err != nil {
			return nil, err
		}
		if !changed {
			log.Info("No catalog changed since %v, keeping %s", s.lastTrigerTime, s.job.Output)
			return &RunReport{Skipped: true, Output: s.job.Output}, nil
		}
	}

	result, err := s.merger.Run(ctx, s.job.Directory, s.job.FileName, nil)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		MatchedCount: result.MatchedCount,
		TermCount:    len(result.Terms),
		Output:       s.job.Output,
	}

	digest, err := documentDigest(result.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to hash merged catalog: %w", err)
	}
	if digest == s.lastDigest {
		exists, err := s.store.Exists(ctx, s.job.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to check output %s: %w", s.job.Output, err)
		}
		if exists {
			log.Info("Merged catalog unchanged, keeping %s", s.job.Output)
			s.lastTrigerTime = startTime
			s.lastMatched = sortedPaths(result.MatchedFiles)
			report.Unchanged = true
			return report, nil
		}
	}

	if err := s.store.WriteDocument(ctx, s.job.Output, result.Document); err != nil {
		return nil, err
	}
	s.lastTrigerTime = startTime
	s.lastDigest = digest
	s.lastMatched = sortedPaths(result.MatchedFiles)

	log.Info("Merged %d file(s) into %s", result.MatchedCount, s.job.Output)
	return report, nil
}

func (s *MergeService) changedSince(ctx context.Context, since time.Time) (bool, error) {
	exists, err := s.store.Exists(ctx, s.job.Output)
	if err != nil {
		return false, fmt.Errorf("failed to check output %s: %w", s.job.Output, err)
	}
	if !exists {
		return true, nil
	}

	current, err := file.FindAll(s.job.Directory, s.isCatalog)
	if err != nil {
		return false, fmt.Errorf("failed to list catalogs: %w", err)
	}
	// a catalog was added, removed or renamed
	if !slices.Equal(sortedPaths(current), s.lastMatched) {
		return true, nil
	}

	recentFiles, err := file.FindRecentAfter(s.job.Directory, since, s.isCatalog)
	if err != nil {
		return false, fmt.Errorf("failed to find recent files: %w", err)
	}
	return len(recentFiles) > 0, nil
}

func (s *MergeService) isCatalog(path string) bool {
	base := filepath.Base(path)
	return strings.EqualFold(filepath.Ext(base), catalog.Extension) && s.matcher.Match(base, s.job.FileName)
}

func sortedPaths(paths []string) []string {
	out := slices.Clone(paths)
	slices.Sort(out)
	return out
}
