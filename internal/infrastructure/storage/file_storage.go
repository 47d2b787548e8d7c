package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/billed-app/billed-api/internal/application/port"
)

// LocalReceiptStorage implements port.ReceiptStorage on the local filesystem.
// Returned URLs join the configured base URL with the object key, so the HTTP
// layer can serve the directory statically.
type LocalReceiptStorage struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

// NewLocalReceiptStorage creates a LocalReceiptStorage rooted at baseDir
func NewLocalReceiptStorage(baseDir, baseURL string, logger *zap.Logger) *LocalReceiptStorage {
	return &LocalReceiptStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Put stores a receipt object and returns its public URL
func (s *LocalReceiptStorage) Put(ctx context.Context, objectKey string, content []byte, contentType string) (string, error) {
	fullPath, err := s.resolve(objectKey)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create receipt directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("create receipt directory: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("write receipt: %w", err)
	}

	s.logger.Debug("Receipt stored",
		zap.String("key", objectKey),
		zap.Int("size", len(content)))

	return s.baseURL + "/" + objectKey, nil
}

// Get fetches the stored receipt bytes
func (s *LocalReceiptStorage) Get(ctx context.Context, objectKey string) ([]byte, error) {
	fullPath, err := s.resolve(objectKey)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	return content, nil
}

// Delete removes a stored receipt
func (s *LocalReceiptStorage) Delete(ctx context.Context, objectKey string) error {
	fullPath, err := s.resolve(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete receipt: %w", err)
	}
	return nil
}

// resolve joins the object key under the base directory and refuses keys
// that would escape it
func (s *LocalReceiptStorage) resolve(objectKey string) (string, error) {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(objectKey))

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("resolve receipt path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("receipt key escapes storage root: %s", objectKey)
	}

	return fullPath, nil
}

var _ port.ReceiptStorage = (*LocalReceiptStorage)(nil)
