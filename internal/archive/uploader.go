// Package archive copies finished export files to S3-compatible object
// storage (AWS S3 or MinIO) for long-term retention.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings holds the object-storage connection parameters. BaseEndpoint is
// set only for non-AWS backends such as MinIO.
type Settings struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// ObjectPutter is the part of the S3 API the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts export files into one bucket.
type Uploader struct {
	bucket string
	client ObjectPutter
}

// NewUploader builds an Uploader with static credentials. When BaseEndpoint
// is set the client also switches to path-style addressing, which MinIO
// requires.
func NewUploader(ctx context.Context, s Settings) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKey, s.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{bucket: s.Bucket, client: client}, nil
}

// StorageKey builds the object key for one export file: a date-partitioned
// prefix, the run id, and the original file name.
func StorageKey(runID, path string, now time.Time) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/%s-%s",
		now.Year(), now.Month(), now.Day(), runID, filepath.Base(path))
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// UploadFile puts the file at path into the bucket and returns the object
// key it was stored under.
func (u *Uploader) UploadFile(ctx context.Context, runID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	key := StorageKey(runID, path, time.Now())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return "", fmt.Errorf("put %s to bucket %s: %w", key, u.bucket, err)
	}
	return key, nil
}
