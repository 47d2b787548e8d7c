package port

import "context"

// ReceiptStorage defines where receipt file bytes live. The gateway records
// only the URL it returns; the bytes themselves go through this port.
type ReceiptStorage interface {
	// Put stores a receipt object and returns its public URL
	Put(ctx context.Context, objectKey string, content []byte, contentType string) (string, error)

	// Get fetches the stored receipt bytes
	Get(ctx context.Context, objectKey string) ([]byte, error)

	// Delete removes a stored receipt
	Delete(ctx context.Context, objectKey string) error
}
