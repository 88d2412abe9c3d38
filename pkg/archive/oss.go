package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"dyscraper/pkg/config"
	errs "dyscraper/pkg/errors"
)

// OSSArchiver uploads to an Aliyun OSS bucket
type OSSArchiver struct {
	bucket *oss.Bucket
}

// NewOSSArchiver connects to the bucket named in cfg
func NewOSSArchiver(cfg config.ArchiveConfig) (*OSSArchiver, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("oss endpoint is required")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.Bucket, err)
	}
	return &OSSArchiver{bucket: bucket}, nil
}

func (a *OSSArchiver) Upload(ctx context.Context, key, localPath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return errs.Wrap(errs.ErrorTypeArchive, "local file missing", err)
	}
	if err := a.bucket.PutObjectFromFile(key, localPath, oss.WithContext(ctx)); err != nil {
		return errs.Wrap(errs.ErrorTypeArchive, fmt.Sprintf("failed to upload %s", key), err)
	}
	return nil
}
