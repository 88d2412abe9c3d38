package scraper

import (
	"context"
	"fmt"
	"time"

	"dyscraper/pkg/archive"
	"dyscraper/pkg/douyin"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metadata"
	"dyscraper/pkg/models"
	"dyscraper/pkg/ratelimit"
)

// ScanResult summarises one listing walk
type ScanResult struct {
	SecUID      string
	Nickname    string
	Pages       int
	Videos      int
	PictureURLs []string
}

// Walker pages through a creator's listing from cursor 0 until the API
// reports no more pages. Video posts are handed to emit as they are
// decoded; image sets only contribute picture URLs.
type Walker struct {
	client   ListingClient
	signer   URLSigner
	throttle ratelimit.Limiter
	layout   archive.Layout
	baseURL  string
	pageSize int
	loc      *time.Location
	logger   logger.Logger
}

// WalkerOptions configures a Walker
type WalkerOptions struct {
	BaseURL  string
	PageSize int
	Layout   archive.Layout
	// Location publish times are rendered in; defaults to time.Local
	Location *time.Location
}

// NewWalker creates a listing walker
func NewWalker(client ListingClient, signer URLSigner, throttle ratelimit.Limiter, opts WalkerOptions, log logger.Logger) *Walker {
	if throttle == nil {
		throttle = ratelimit.Noop{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = douyin.BaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = douyin.DefaultPageSize
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		client:   client,
		signer:   signer,
		throttle: throttle,
		layout:   opts.Layout,
		baseURL:  opts.BaseURL,
		pageSize: opts.PageSize,
		loc:      opts.Location,
		logger:   log,
	}
}

// Walk scans every page of secUID. Any page failure aborts the walk with
// a listing fetch error; records already emitted stay recorded.
func (w *Walker) Walk(ctx context.Context, secUID string, emit func(*models.MediaRecord)) (*ScanResult, error) {
	result := &ScanResult{SecUID: secUID}
	var cursor int64

	for {
		page, err := w.fetchPage(ctx, secUID, cursor)
		if err != nil {
			return result, errs.Wrap(errs.ErrorTypeListingFetch,
				fmt.Sprintf("listing page %d (cursor %d) of %s", result.Pages+1, cursor, secUID), err)
		}
		result.Pages++
		logger.LogScanPage(w.logger, secUID, result.Pages, cursor, len(page.AwemeList), bool(page.HasMore))

		for i, raw := range page.AwemeList {
			post, err := douyin.DecodePost(raw)
			if err != nil {
				w.logger.WithError(err).DebugWithFields("Skipping malformed post", map[string]interface{}{
					"sec_uid": secUID,
					"page":    result.Pages,
					"index":   i,
				})
				continue
			}
			if result.Nickname == "" {
				result.Nickname = post.Author.Nickname
			}

			if post.IsImageSet() {
				result.PictureURLs = append(result.PictureURLs, post.PictureURLs()...)
				continue
			}
			result.Videos++
			emit(metadata.FromPost(post, w.layout, w.loc))
		}

		if !page.HasMore {
			return result, nil
		}
		cursor = page.MaxCursor

		if err := w.throttle.Wait(ctx); err != nil {
			return result, err
		}
	}
}

func (w *Walker) fetchPage(ctx context.Context, secUID string, cursor int64) (*douyin.PostListResponse, error) {
	signed, err := w.signer.Build(ctx, douyin.PostListURL(w.baseURL, secUID, w.pageSize, cursor))
	if err != nil {
		return nil, err
	}

	var page douyin.PostListResponse
	if err := w.client.GetJSON(ctx, signed, &page); err != nil {
		return nil, err
	}
	if page.StatusCode != 0 {
		return nil, errs.WithCode(errs.ErrorTypeServerError,
			fmt.Sprintf("listing returned status_code %d", page.StatusCode), page.StatusCode)
	}
	return &page, nil
}
