package archive

import (
	"context"
	"fmt"
	"strings"

	"dyscraper/pkg/config"
)

// Archiver stores a local file in durable object storage. Uploads to an
// existing key overwrite it, so retries are idempotent.
type Archiver interface {
	Upload(ctx context.Context, key, localPath string) error
}

// Layout maps creators and descriptions onto object keys
type Layout struct {
	Scheme    string
	Bucket    string
	Namespace string
	Category  string
}

// LayoutFromConfig derives the key layout from the archive settings
func LayoutFromConfig(cfg config.ArchiveConfig) Layout {
	return Layout{
		Scheme:    cfg.Provider,
		Bucket:    cfg.Bucket,
		Namespace: cfg.Namespace,
		Category:  cfg.Category,
	}
}

// ArchivePath is the full storage URI recorded for a post, without the
// file extension
func (l Layout) ArchivePath(nickname, name string) string {
	scheme := l.Scheme
	if scheme == "" {
		scheme = "oss"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, l.Bucket, l.join(nickname, name))
}

// ObjectKey is the key a video is uploaded under
func (l Layout) ObjectKey(nickname, name string) string {
	return l.join(nickname, name) + ".mp4"
}

// join drops empty segments and trims spaces and slashes around each one
func (l Layout) join(nickname, name string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Namespace, l.Category, nickname, name} {
		if p = strings.Trim(p, "/ "); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// New creates the archiver selected by cfg.Provider
func New(cfg config.ArchiveConfig) (Archiver, error) {
	switch cfg.Provider {
	case "oss":
		return NewOSSArchiver(cfg)
	case "s3":
		return NewS3Archiver(cfg)
	default:
		return nil, fmt.Errorf("unsupported archive provider %q", cfg.Provider)
	}
}
