package archive

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"dyscraper/pkg/config"
	errs "dyscraper/pkg/errors"
)

// S3Archiver uploads to an S3 compatible bucket
type S3Archiver struct {
	client *s3.S3
	bucket string
}

// NewS3Archiver creates an archiver for cfg.Bucket. A custom endpoint
// switches to path-style addressing for S3 compatible stores.
func NewS3Archiver(cfg config.ArchiveConfig) (*S3Archiver, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if awsCfg.Region == nil || *awsCfg.Region == "" {
		awsCfg.Region = aws.String("us-east-1")
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.AccessKeySecret, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return &S3Archiver{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

func (a *S3Archiver) Upload(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeArchive, "local file missing", err)
	}
	defer f.Close()

	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return errs.Wrap(errs.ErrorTypeArchive, fmt.Sprintf("failed to upload %s", key), err)
	}
	return nil
}
