package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"community-platform-backend/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Options struct {
	Bucket string
	Region string
	// Endpoint targets S3 compatible services such as MinIO. Path style
	// addressing is used when it is set.
	Endpoint string
}

type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	opts      S3Options
}

// NewS3Storage loads credentials from the default AWS chain
func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		opts:      opts,
	}, nil
}

func (s *S3Storage) SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	// The SDK signs the payload and needs a seekable body
	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	logger.ExternalServiceCall("S3", "PutObject", "bucket", s.opts.Bucket, "key", key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	logger.ExternalServiceResult("S3", "PutObject", err)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *S3Storage) GeneratePresignedDownloadURL(ctx context.Context, key, filename string, expiresIn time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}
	if filename != "" {
		input.ResponseContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}

	req, err := s.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.opts.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}

func (s *S3Storage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, aws.ToInt64(out.ContentLength), nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	logger.ExternalServiceCall("S3", "DeleteObject", "bucket", s.opts.Bucket, "key", key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	logger.ExternalServiceResult("S3", "DeleteObject", err)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
