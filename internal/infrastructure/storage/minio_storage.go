package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/billed-app/billed-api/internal/application/port"
)

// MinioConfig holds object storage connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	BaseURL   string
}

// MinioReceiptStorage implements port.ReceiptStorage against a MinIO or
// S3-compatible bucket.
type MinioReceiptStorage struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
	logger  *zap.Logger
}

// NewMinioReceiptStorage creates a MinIO-backed receipt storage
func NewMinioReceiptStorage(cfg MinioConfig, logger *zap.Logger) (*MinioReceiptStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &MinioReceiptStorage{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}, nil
}

// EnsureBucket makes sure the receipt bucket exists before first use
func (s *MinioReceiptStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("Created receipt bucket", zap.String("bucket", s.bucket))
	}
	return nil
}

// Put stores a receipt object and returns its public URL
func (s *MinioReceiptStorage) Put(ctx context.Context, objectKey string, content []byte, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		s.logger.Error("Failed to upload receipt",
			zap.String("key", objectKey),
			zap.Error(err))
		return "", fmt.Errorf("upload receipt object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey), nil
}

// Get fetches the stored receipt bytes
func (s *MinioReceiptStorage) Get(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get receipt object: %w", err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("read receipt object: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes a stored receipt
func (s *MinioReceiptStorage) Delete(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove receipt object: %w", err)
	}
	return nil
}

var _ port.ReceiptStorage = (*MinioReceiptStorage)(nil)
