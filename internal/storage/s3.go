package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/fitfuel/fitfuel/internal/config"
	"github.com/google/uuid"
)

// PhotoStore keeps meal photos. Keys are opaque; URLs are time-limited.
type PhotoStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// PhotoKey builds a per-owner object key for a new meal photo.
func PhotoKey(ownerID, ext string) string {
	return path.Join("meals", ownerID, uuid.New().String()+ext)
}

// S3Store works with AWS S3 and S3-compatible services (MinIO, R2, Spaces).
type S3Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
}

type S3Config struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // optional, switches to path-style addressing
	PresignExpiry time.Duration
}

// New returns nil without error when no bucket is configured; photo
// uploads are then rejected by the caller.
func New(ctx context.Context, c *cfg.Config) (PhotoStore, error) {
	if !c.PhotosEnabled() {
		slog.Info("meal photo storage disabled", "hint", "set S3_BUCKET to enable")
		return nil, nil
	}
	slog.Info("initializing S3 photo storage", "bucket", c.S3Bucket, "region", c.S3Region, "endpoint", c.S3Endpoint)
	return NewS3Store(ctx, S3Config{
		Region:        c.S3Region,
		Bucket:        c.S3Bucket,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Endpoint:      c.S3Endpoint,
		PresignExpiry: c.S3PresignExpiry,
	})
}

func NewS3Store(ctx context.Context, sc S3Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(sc.Region)}
	if sc.AccessKey != "" && sc.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := sc.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	store := &S3Store{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        sc.Bucket,
		presignExpiry: expiry,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// URL presigns a GET for key.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return req.URL, nil
}
