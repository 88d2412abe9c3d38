package scraper

import (
	"context"
	"io"

	"dyscraper/pkg/models"
)

// ListingClient fetches and decodes listing pages
type ListingClient interface {
	GetJSON(ctx context.Context, url string, target interface{}) error
}

// MediaClient streams media files
type MediaClient interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// URLSigner turns an unsigned listing URL into a signed one
type URLSigner interface {
	Build(ctx context.Context, unsignedURL string) (string, error)
}

// IdentityResolver maps a creator URL to its secUID
type IdentityResolver interface {
	Resolve(ctx context.Context, input string) (string, error)
}

// RecordStore persists newly discovered posts
type RecordStore interface {
	Insert(ctx context.Context, rec *models.MediaRecord) error
}

// PendingStore loads and completes pending posts
type PendingStore interface {
	LoadPending(ctx context.Context, nickname string) ([]models.WorkItem, error)
	MarkDone(ctx context.Context, postID string) (bool, error)
}
