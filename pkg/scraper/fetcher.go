package scraper

import (
	"context"
	"fmt"
	"io"

	"dyscraper/pkg/archive"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metadata"
	"dyscraper/pkg/models"
	"dyscraper/pkg/ratelimit"
	"dyscraper/pkg/storage"
	"dyscraper/pkg/ui"
)

// FetchResult tallies one creator's download phase
type FetchResult struct {
	Downloaded     int
	Skipped        int
	Pictures       int
	PictureSkipped int
}

// Fetcher drains a creator's pending work: each video is downloaded,
// archived, marked done and then removed locally. Pictures are only
// saved locally.
type Fetcher struct {
	client   MediaClient
	archiver archive.Archiver
	store    PendingStore
	layout   archive.Layout
	limiter  ratelimit.Limiter
	progress io.Writer
	logger   logger.Logger
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Layout  archive.Layout
	Limiter ratelimit.Limiter
	// Progress receives the progress line; nil keeps it quiet
	Progress io.Writer
}

// NewFetcher creates a fetcher
func NewFetcher(client MediaClient, archiver archive.Archiver, store PendingStore, opts FetcherOptions, log logger.Logger) *Fetcher {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Noop{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		client:   client,
		archiver: archiver,
		store:    store,
		layout:   opts.Layout,
		limiter:  opts.Limiter,
		progress: opts.Progress,
		logger:   log,
	}
}

// Fetch processes items and pictures into dir. Individual failures are
// logged and skipped; only context cancellation ends the phase early.
func (f *Fetcher) Fetch(ctx context.Context, dir, label string, items []models.WorkItem, pictures []string) (*FetchResult, error) {
	if len(items)+len(pictures) == 0 {
		return &FetchResult{}, nil
	}
	files, err := storage.NewManager(dir)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{}
	bar := ui.NewProgress(f.progress, label, len(items)+len(pictures))
	defer bar.Finish()

	for _, item := range items {
		if err := f.limiter.Wait(ctx); err != nil {
			return result, err
		}
		size, err := f.fetchVideo(ctx, files, item)
		bar.Advance(size, err)
		logger.LogDownload(f.logger, item.Nickname, item.PostID, "video", err)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Skipped++
			continue
		}
		result.Downloaded++
	}

	for i, url := range pictures {
		if err := f.limiter.Wait(ctx); err != nil {
			return result, err
		}
		size, err := f.fetchPicture(ctx, files, url)
		bar.Advance(size, err)
		logger.LogDownload(f.logger, label, fmt.Sprintf("picture-%d", i), "image", err)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.PictureSkipped++
			continue
		}
		result.Pictures++
	}

	f.logger.DebugWithFields("Fetch complete", map[string]interface{}{
		"dir":   files.OutputDir(),
		"saved": files.SavedCount(),
	})
	return result, nil
}

func (f *Fetcher) fetchVideo(ctx context.Context, files *storage.Manager, item models.WorkItem) (int64, error) {
	var size int64
	path, err := files.Save(metadata.LocalFilename(item.Description, item.PostID)+".mp4", func(w io.Writer) error {
		n, err := f.client.Download(ctx, item.SourceURL, w)
		size = n
		return err
	})
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeTransientFetch, fmt.Sprintf("failed to download post %s", item.PostID), err)
	}

	// the local file stays put on upload failure so the next run can retry
	key := f.layout.ObjectKey(item.Nickname, metadata.ObjectName(item.Description, item.PostID))
	if err := f.archiver.Upload(ctx, key, path); err != nil {
		return size, err
	}

	changed, markErr := f.store.MarkDone(ctx, item.PostID)
	if markErr == nil && !changed {
		f.logger.DebugWithFields("Post was not pending", map[string]interface{}{
			"post_id": item.PostID,
		})
	}

	if err := files.Remove(path); err != nil {
		f.logger.WithError(err).Warn("Failed to remove archived file")
	}
	// the object is archived but the row is still pending; the next run
	// uploads it again
	return size, markErr
}

func (f *Fetcher) fetchPicture(ctx context.Context, files *storage.Manager, url string) (int64, error) {
	var size int64
	_, err := files.Save(storage.UniqueName(".jpg"), func(w io.Writer) error {
		n, err := f.client.Download(ctx, url, w)
		size = n
		return err
	})
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeTransientFetch, "failed to download picture", err)
	}
	return size, nil
}
