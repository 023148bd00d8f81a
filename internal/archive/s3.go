package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"wedding-rsvp/internal/config"
	"wedding-rsvp/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNoBucket = errors.New("archive: bucket is required")

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies generated exports to S3-compatible storage.
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
	log    logger.Logger
}

func NewUploader(client ObjectPutter, bucket, prefix string, log logger.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

// NewS3Client builds a client from ARCHIVE_* settings. Static credentials and
// a custom endpoint are optional; without them the default AWS chain applies.
func NewS3Client(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload stores body under <prefix>/<filename> and returns the object key.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, body []byte) (string, error) {
	if u.bucket == "" {
		return "", ErrNoBucket
	}

	key := u.ObjectKey(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("archive: put s3://%s/%s: %w", u.bucket, key, err)
	}

	u.log.Info("archive: export uploaded", "bucket", u.bucket, "key", key, "bytes", len(body))
	return key, nil
}

func (u *Uploader) ObjectKey(filename string) string {
	if u.prefix == "" {
		return filename
	}
	return path.Join(u.prefix, filename)
}
