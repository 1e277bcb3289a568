package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const uploadPrefix = "uploads/"

// テストで差し替えるためPutObjectだけ切り出す
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3互換ストレージ（AWS S3 / MinIO など）に保存する
type S3ImageStore struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

type S3ImageStoreOption func(*S3ImageStore)

func WithLogger(logger *zap.Logger) S3ImageStoreOption {
	return func(s *S3ImageStore) {
		s.logger = logger
	}
}

func NewS3ImageStore(ctx context.Context, cfg config.S3Config, opts ...S3ImageStoreOption) (*S3ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = defaultPublicBaseURL(cfg)
	}

	return newS3ImageStore(client, cfg.Bucket, base, opts...), nil
}

func newS3ImageStore(client putObjectAPI, bucket, publicBaseURL string, opts ...S3ImageStoreOption) *S3ImageStore {
	s := &S3ImageStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// public_base_url 未設定時の既定URL
func defaultPublicBaseURL(cfg config.S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (s *S3ImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext, err := extensionOf(filename)
	if err != nil {
		return "", err
	}
	key := uploadPrefix + newObjectName(ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(allowedExtensions[ext]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info("image uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return s.publicBaseURL + "/" + key, nil
}
