package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// StorageConfig points at an S3-compatible bucket. PublicBaseURL is the
// prefix of the image URLs stored on advertisements.
type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type ImageStorage struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

func NewImageStorage(cfg StorageConfig) (*ImageStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	base := cfg.PublicBaseURL
	if base == "" && cfg.Endpoint != "" {
		base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &ImageStorage{client: s3.New(sess), bucket: cfg.Bucket, baseURL: base}, nil
}

// DeleteImages removes the objects behind the given image URLs. URLs that
// do not belong to the bucket are skipped.
func (s *ImageStorage) DeleteImages(ctx context.Context, urls []string) error {
	var objects []*s3.ObjectIdentifier
	for _, u := range urls {
		key := s.objectKey(u)
		if key == "" {
			continue
		}
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
	}
	if len(objects) == 0 {
		return nil
	}
	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("unable to delete images from S3: %w", err)
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("unable to delete %d of %d images: %s", len(out.Errors), len(objects), aws.StringValue(out.Errors[0].Message))
	}
	return nil
}

func (s *ImageStorage) objectKey(url string) string {
	if s.baseURL == "" {
		return ""
	}
	prefix := strings.TrimSuffix(s.baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
