package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"dyscraper/internal/downloader"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/models"
)

// Phase selects which part of the pipeline a run executes
type Phase int

const (
	// PhaseAll scans every creator then downloads its pending posts
	PhaseAll Phase = iota
	// PhaseScan only records new posts
	PhaseScan
	// PhaseDownload only drains posts recorded by earlier scans
	PhaseDownload
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseDownload:
		return "download"
	default:
		return "all"
	}
}

// Options configures the orchestrator
type Options struct {
	OutputDir   string
	Concurrency int
	// Images downloads pictures of image-set posts found during the scan
	Images bool
}

// Scraper runs the resolve, scan and fetch pipeline for a worklist
type Scraper struct {
	resolver IdentityResolver
	walker   *Walker
	recorder *Recorder
	pending  PendingStore
	fetcher  *Fetcher
	opts     Options
	logger   logger.Logger
}

// New creates a Scraper from its stages
func New(resolver IdentityResolver, walker *Walker, recorder *Recorder, pending PendingStore, fetcher *Fetcher, opts Options, log logger.Logger) *Scraper {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		resolver: resolver,
		walker:   walker,
		recorder: recorder,
		pending:  pending,
		fetcher:  fetcher,
		opts:     opts,
		logger:   log,
	}
}

// CreatorReport is the outcome of one creator
type CreatorReport struct {
	Creator  models.Creator
	SecUID   string
	Nickname string
	Scan     *ScanResult
	Recorded RecordTally
	Fetch    *FetchResult
	Err      error
	Duration time.Duration
}

// Summary flattens the report into log fields
func (r *CreatorReport) Summary() logger.CreatorSummary {
	s := logger.CreatorSummary{
		Creator:    r.Creator.Name,
		Inserted:   r.Recorded.Inserted,
		Duplicates: r.Recorded.Duplicates,
		Failed:     r.Recorded.Failed,
	}
	if r.Fetch != nil {
		s.Downloaded = r.Fetch.Downloaded
		s.Skipped = r.Fetch.Skipped
		s.Pictures = r.Fetch.Pictures
	}
	return s
}

// RunReport collects per-creator outcomes in worklist order
type RunReport struct {
	Phase    Phase
	Creators []CreatorReport
	Duration time.Duration
}

// Failed returns the reports of creators that did not complete
func (r *RunReport) Failed() []CreatorReport {
	var failed []CreatorReport
	for _, c := range r.Creators {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run processes every creator. A failing creator is logged and recorded
// in the report; the others still run. The returned error is only set
// when the run was cancelled.
func (s *Scraper) Run(ctx context.Context, creators []models.Creator, phase Phase) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{Phase: phase, Creators: make([]CreatorReport, len(creators))}
	for i, c := range creators {
		report.Creators[i].Creator = c
	}

	reports := report.Creators
	pool := downloader.NewWorkerPool(ctx, s.opts.Concurrency, func(ctx context.Context, job downloader.CreatorJob) error {
		r := &reports[job.Index]
		s.processCreator(ctx, job.Creator, phase, r)
		return r.Err
	}, s.logger)

	pool.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range pool.Results() {
			r := &reports[res.Job.Index]
			r.Duration = res.Duration
			if res.Error == nil {
				logger.LogCreatorSummary(s.logger, r.Summary())
				continue
			}
			r.Err = res.Error
			s.logger.WithError(res.Error).ErrorWithFields("Creator failed", map[string]interface{}{
				"creator": res.Job.Creator.Name,
				"phase":   phase.String(),
			})
		}
	}()

	for i, c := range creators {
		if err := pool.Submit(downloader.CreatorJob{Index: i, Creator: c}); err != nil {
			for j := i; j < len(creators); j++ {
				reports[j].Err = ctx.Err()
			}
			break
		}
	}
	s.logger.DebugWithFields("Creators submitted", map[string]interface{}{
		"queued":  pool.GetQueueSize(),
		"workers": pool.GetActiveWorkers(),
	})
	pool.Stop()
	<-done

	report.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

// processCreator fills r for one creator
func (s *Scraper) processCreator(ctx context.Context, c models.Creator, phase Phase, r *CreatorReport) {
	log := s.logger.WithField("creator", c.Name)

	secUID, err := s.resolver.Resolve(ctx, c.ProfileURL)
	if err != nil {
		r.Err = err
		return
	}
	r.SecUID = secUID
	r.Nickname = c.Name

	var pictures []string
	if phase != PhaseDownload {
		scan, err := s.walker.Walk(ctx, secUID, func(rec *models.MediaRecord) {
			r.Recorded.add(s.recorder.Record(ctx, rec))
		})
		r.Scan = scan
		if scan != nil && scan.Nickname != "" {
			r.Nickname = scan.Nickname
		}
		if err != nil {
			r.Err = err
			return
		}
		log.InfoWithFields("Scan complete", map[string]interface{}{
			"pages":      scan.Pages,
			"videos":     scan.Videos,
			"pictures":   len(scan.PictureURLs),
			"inserted":   r.Recorded.Inserted,
			"duplicates": r.Recorded.Duplicates,
		})
		if s.opts.Images {
			pictures = scan.PictureURLs
		}
	}
	if phase == PhaseScan {
		return
	}

	items, err := s.pending.LoadPending(ctx, r.Nickname)
	if err != nil {
		r.Err = err
		return
	}
	if len(items) == 0 && phase == PhaseDownload {
		// without a scan the worklist name must match the recorded nickname
		log.WarnWithFields("No pending posts recorded under this name", map[string]interface{}{
			"nickname": r.Nickname,
		})
	}
	log.InfoWithFields("Downloading pending posts", map[string]interface{}{
		"pending":  len(items),
		"pictures": len(pictures),
	})

	dir := filepath.Join(s.opts.OutputDir, secUID)
	fetch, err := s.fetcher.Fetch(ctx, dir, r.Nickname, items, pictures)
	r.Fetch = fetch
	if err != nil {
		r.Err = err
	}
}
